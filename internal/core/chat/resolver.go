package chat

import (
	"context"
	"fmt"
	"time"

	"evocrm/internal/core/instance"
	"evocrm/platform/logger"
)

// Resolver mapeia um identificador remoto para o par Contact/Conversation
// persistido, criando ambos quando ausentes. A segurança sob concorrência
// vem das constraints de unicidade (instance_id, numero) e
// (instance_id, contato_id): criação é tratada como upsert idempotente,
// nunca lookup-then-insert.
type Resolver struct {
	contacts      ContactRepository
	conversations ConversationRepository
	logger        *logger.Logger
}

// NewResolver cria um novo resolvedor de identidade
func NewResolver(contacts ContactRepository, conversations ConversationRepository, logger *logger.Logger) *Resolver {
	return &Resolver{
		contacts:      contacts,
		conversations: conversations,
		logger:        logger,
	}
}

// Resolve retorna o contato e a conversa do identificador, criando-os se
// necessário. nome é opcional e nunca sobrescreve um nome já preenchido.
func (r *Resolver) Resolve(ctx context.Context, inst *instance.Instance, numero, nome string) (*Contact, *Conversation, error) {
	if numero == "" {
		return nil, nil, fmt.Errorf("numero is required")
	}

	now := time.Now().UTC()

	contact := &Contact{
		EmpresaID:       inst.EmpresaID,
		InstanceID:      inst.ID,
		Numero:          numero,
		UltimaInteracao: &now,
	}
	if nome != "" {
		contact.Nome = &nome
	}

	persisted, err := r.contacts.Upsert(ctx, contact)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upsert contact: %w", err)
	}

	conversation, err := r.conversations.GetOrCreate(ctx, &Conversation{
		EmpresaID:  inst.EmpresaID,
		InstanceID: inst.ID,
		ContatoID:  persisted.ID,
		Status:     ConversationStatusOpen,
		NaoLidas:   0,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}

	r.logger.DebugWithFields("Identity resolved", map[string]interface{}{
		"instance_id":     inst.ID.String(),
		"numero":          numero,
		"contact_id":      persisted.ID.String(),
		"conversation_id": conversation.ID.String(),
	})

	return persisted, conversation, nil
}
