package chat

import (
	"context"
	"fmt"
	"time"

	"evocrm/internal/core/events"
	"evocrm/internal/core/instance"
	"evocrm/platform/logger"
)

// Reconciler aplica eventos normalizados ao estado persistido: anexa a
// mensagem e mantém a projeção da conversa (última mensagem, contador de
// não lidas) consistente a cada escrita.
type Reconciler struct {
	messages      MessageRepository
	conversations ConversationRepository
	contacts      ContactRepository
	logger        *logger.Logger
}

// NewReconciler cria um novo reconciliador de estado
func NewReconciler(messages MessageRepository, conversations ConversationRepository, contacts ContactRepository, logger *logger.Logger) *Reconciler {
	return &Reconciler{
		messages:      messages,
		conversations: conversations,
		contacts:      contacts,
		logger:        logger,
	}
}

// RecordIncoming persiste uma mensagem recebida e incrementa nao_lidas.
// Redelivery do mesmo provider_message_id é no-op: nem mensagem duplicada,
// nem contador inflado.
func (rc *Reconciler) RecordIncoming(ctx context.Context, inst *instance.Instance, conv *Conversation, evt *events.MessageEvent) error {
	message := &Message{
		EmpresaID:          inst.EmpresaID,
		ConversaID:         conv.ID,
		NumeroRemetente:    evt.Numero,
		NumeroDestinatario: inst.Nome,
		Conteudo:           evt.Conteudo,
		Tipo:               "text",
		Direcao:            DirectionIncoming,
		TimestampEvolution: evt.Timestamp,
		Status:             MessageStatusReceived,
	}
	if evt.ProviderMessageID != "" {
		providerID := evt.ProviderMessageID
		message.ProviderMessageID = &providerID
	}

	inserted, err := rc.messages.Create(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to persist incoming message: %w", err)
	}
	if !inserted {
		rc.logger.DebugWithFields("Duplicate message delivery ignored", map[string]interface{}{
			"conversation_id":     conv.ID.String(),
			"provider_message_id": evt.ProviderMessageID,
		})
		return nil
	}

	if err := rc.conversations.RecordIncoming(ctx, conv.ID, evt.Conteudo, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update conversation projection: %w", err)
	}

	rc.logger.InfoWithFields("Incoming message recorded", map[string]interface{}{
		"conversation_id": conv.ID.String(),
		"numero":          evt.Numero,
	})

	return nil
}

// RecordOutgoing persiste uma mensagem enviada pelo operador e zera
// nao_lidas: responder marca a conversa como lida.
func (rc *Reconciler) RecordOutgoing(ctx context.Context, inst *instance.Instance, conv *Conversation, numero, texto, providerMessageID string) error {
	message := &Message{
		EmpresaID:          inst.EmpresaID,
		ConversaID:         conv.ID,
		NumeroRemetente:    inst.Nome,
		NumeroDestinatario: numero,
		Conteudo:           texto,
		Tipo:               "text",
		Direcao:            DirectionOutgoing,
		TimestampEvolution: time.Now().UTC(),
		Status:             MessageStatusSent,
	}
	if providerMessageID != "" {
		message.ProviderMessageID = &providerMessageID
	}

	inserted, err := rc.messages.Create(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to persist outgoing message: %w", err)
	}
	if !inserted {
		return nil
	}

	if err := rc.conversations.RecordOutgoing(ctx, conv.ID, texto, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update conversation projection: %w", err)
	}

	rc.logger.InfoWithFields("Outgoing message recorded", map[string]interface{}{
		"conversation_id": conv.ID.String(),
		"numero":          numero,
	})

	return nil
}

// ApplyContacts aplica um lote normalizado de contatos. Só toca contatos,
// nunca conversas.
func (rc *Reconciler) ApplyContacts(ctx context.Context, inst *instance.Instance, records []events.ContactRecord) error {
	now := time.Now().UTC()

	for _, record := range records {
		contact := &Contact{
			EmpresaID:       inst.EmpresaID,
			InstanceID:      inst.ID,
			Numero:          record.Numero,
			UltimaInteracao: &now,
		}
		if record.Nome != "" {
			nome := record.Nome
			contact.Nome = &nome
		}
		if record.AvatarURL != "" {
			avatar := record.AvatarURL
			contact.AvatarURL = &avatar
		}

		if err := rc.contacts.UpsertProfile(ctx, contact); err != nil {
			return fmt.Errorf("failed to upsert contact %s: %w", record.Numero, err)
		}
	}

	rc.logger.InfoWithFields("Contact batch applied", map[string]interface{}{
		"instance_id": inst.ID.String(),
		"count":       len(records),
	})

	return nil
}
