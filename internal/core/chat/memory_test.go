package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	sharederrors "evocrm/internal/core/shared/errors"
)

// Fakes em memória com a mesma semântica das constraints do Postgres:
// unicidade por (instance_id, numero) e (instance_id, contato_id),
// upsert idempotente, dedup de mensagem por provider_message_id.

type memContactRepo struct {
	mu       sync.Mutex
	contacts map[string]*Contact // chave: instanceID + "/" + numero
}

func newMemContactRepo() *memContactRepo {
	return &memContactRepo{contacts: make(map[string]*Contact)}
}

func contactKey(instanceID uuid.UUID, numero string) string {
	return instanceID.String() + "/" + numero
}

func (r *memContactRepo) Upsert(_ context.Context, contact *Contact) (*Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contactKey(contact.InstanceID, contact.Numero)
	if existing, ok := r.contacts[key]; ok {
		existing.UltimaInteracao = contact.UltimaInteracao
		if (existing.Nome == nil || *existing.Nome == "") && contact.Nome != nil && *contact.Nome != "" {
			existing.Nome = contact.Nome
		}
		copied := *existing
		return &copied, nil
	}

	stored := *contact
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.contacts[key] = &stored

	copied := stored
	return &copied, nil
}

func (r *memContactRepo) UpsertProfile(ctx context.Context, contact *Contact) error {
	r.mu.Lock()
	key := contactKey(contact.InstanceID, contact.Numero)
	if existing, ok := r.contacts[key]; ok {
		existing.UltimaInteracao = contact.UltimaInteracao
		if contact.Nome != nil && *contact.Nome != "" {
			existing.Nome = contact.Nome
		}
		if contact.AvatarURL != nil {
			existing.AvatarURL = contact.AvatarURL
		}
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	_, err := r.Upsert(ctx, contact)
	return err
}

func (r *memContactRepo) GetByNumero(_ context.Context, instanceID uuid.UUID, numero string) (*Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if contact, ok := r.contacts[contactKey(instanceID, numero)]; ok {
		copied := *contact
		return &copied, nil
	}
	return nil, sharederrors.ErrContactNotFound
}

func (r *memContactRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contacts)
}

type memConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*Conversation // chave: instanceID + "/" + contatoID
	byID          map[uuid.UUID]*Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: make(map[string]*Conversation),
		byID:          make(map[uuid.UUID]*Conversation),
	}
}

func (r *memConversationRepo) GetOrCreate(_ context.Context, conv *Conversation) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := conv.InstanceID.String() + "/" + conv.ContatoID.String()
	if existing, ok := r.conversations[key]; ok {
		copied := *existing
		return &copied, nil
	}

	stored := *conv
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.conversations[key] = &stored
	r.byID[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (r *memConversationRepo) RecordIncoming(_ context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.byID[id]
	if !ok {
		return sharederrors.ErrConversationNotFound
	}
	conv.NaoLidas++
	if conv.UltimaMensagemTimestamp == nil || !conv.UltimaMensagemTimestamp.After(timestamp) {
		conv.UltimaMensagem = &ultimaMensagem
		conv.UltimaMensagemTimestamp = &timestamp
	}
	return nil
}

func (r *memConversationRepo) RecordOutgoing(_ context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.byID[id]
	if !ok {
		return sharederrors.ErrConversationNotFound
	}
	conv.NaoLidas = 0
	if conv.UltimaMensagemTimestamp == nil || !conv.UltimaMensagemTimestamp.After(timestamp) {
		conv.UltimaMensagem = &ultimaMensagem
		conv.UltimaMensagemTimestamp = &timestamp
	}
	return nil
}

func (r *memConversationRepo) GetByID(_ context.Context, id uuid.UUID) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.byID[id]; ok {
		copied := *conv
		return &copied, nil
	}
	return nil, sharederrors.ErrConversationNotFound
}

func (r *memConversationRepo) ListByInstance(_ context.Context, instanceID uuid.UUID) ([]*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Conversation
	for _, conv := range r.byID {
		if conv.InstanceID == instanceID {
			copied := *conv
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memConversationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*Message
	seen     map[string]bool // chave: conversaID + "/" + providerID
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{seen: make(map[string]bool)}
}

func (r *memMessageRepo) Create(_ context.Context, msg *Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ProviderMessageID != nil {
		key := msg.ConversaID.String() + "/" + *msg.ProviderMessageID
		if r.seen[key] {
			return false, nil
		}
		r.seen[key] = true
	}

	stored := *msg
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.messages = append(r.messages, &stored)
	return true, nil
}

func (r *memMessageRepo) ListByConversation(_ context.Context, conversationID uuid.UUID, limit, offset int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Message
	for _, msg := range r.messages {
		if msg.ConversaID == conversationID {
			copied := *msg
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
