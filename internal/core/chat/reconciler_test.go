package chat

import (
	"context"
	"testing"
	"time"

	"evocrm/internal/core/events"
)

type reconcilerFixture struct {
	contacts      *memContactRepo
	conversations *memConversationRepo
	messages      *memMessageRepo
	resolver      *Resolver
	reconciler    *Reconciler
}

func newReconcilerFixture() *reconcilerFixture {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	messages := newMemMessageRepo()
	log := testLogger()

	return &reconcilerFixture{
		contacts:      contacts,
		conversations: conversations,
		messages:      messages,
		resolver:      NewResolver(contacts, conversations, log),
		reconciler:    NewReconciler(messages, conversations, contacts, log),
	}
}

func incomingEvent(numero, conteudo, providerID string) *events.MessageEvent {
	return &events.MessageEvent{
		Numero:            numero,
		Conteudo:          conteudo,
		Incoming:          true,
		ProviderMessageID: providerID,
		Timestamp:         time.Now().UTC(),
	}
}

func TestReconciler_FirstIncomingMessage(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	_, conv, err := f.resolver.Resolve(ctx, inst, "5511999", "Ana")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if err := f.reconciler.RecordIncoming(ctx, inst, conv, incomingEvent("5511999", "hello", "MSG1")); err != nil {
		t.Fatalf("RecordIncoming failed: %v", err)
	}

	updated, err := f.conversations.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.NaoLidas != 1 {
		t.Errorf("expected unread 1, got %d", updated.NaoLidas)
	}
	if updated.UltimaMensagem == nil || *updated.UltimaMensagem != "hello" {
		t.Errorf("expected last message hello, got %v", updated.UltimaMensagem)
	}
	if f.messages.count() != 1 {
		t.Errorf("expected 1 message, got %d", f.messages.count())
	}

	msgs, _ := f.messages.ListByConversation(ctx, conv.ID, 50, 0)
	if msgs[0].Direcao != DirectionIncoming {
		t.Errorf("expected incoming direction, got %s", msgs[0].Direcao)
	}
	if msgs[0].NumeroRemetente != "5511999" || msgs[0].NumeroDestinatario != inst.Nome {
		t.Errorf("unexpected sender/recipient: %s -> %s", msgs[0].NumeroRemetente, msgs[0].NumeroDestinatario)
	}
}

func TestReconciler_UnreadCountsConsecutiveIncoming(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	_, conv, err := f.resolver.Resolve(ctx, inst, "5511999", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		evt := incomingEvent("5511999", "msg", "")
		if err := f.reconciler.RecordIncoming(ctx, inst, conv, evt); err != nil {
			t.Fatalf("RecordIncoming %d failed: %v", i, err)
		}
	}

	updated, _ := f.conversations.GetByID(ctx, conv.ID)
	if updated.NaoLidas != n {
		t.Errorf("expected unread %d, got %d", n, updated.NaoLidas)
	}
	if f.messages.count() != n {
		t.Errorf("expected %d messages, got %d", n, f.messages.count())
	}
}

func TestReconciler_OutgoingResetsUnread(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	_, conv, err := f.resolver.Resolve(ctx, inst, "5511999", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := f.reconciler.RecordIncoming(ctx, inst, conv, incomingEvent("5511999", "ping", "")); err != nil {
			t.Fatalf("RecordIncoming failed: %v", err)
		}
	}

	if err := f.reconciler.RecordOutgoing(ctx, inst, conv, "5511999", "oi", ""); err != nil {
		t.Fatalf("RecordOutgoing failed: %v", err)
	}

	updated, _ := f.conversations.GetByID(ctx, conv.ID)
	if updated.NaoLidas != 0 {
		t.Errorf("outgoing message should reset unread to 0, got %d", updated.NaoLidas)
	}
	if updated.UltimaMensagem == nil || *updated.UltimaMensagem != "oi" {
		t.Errorf("expected last message oi, got %v", updated.UltimaMensagem)
	}

	msgs, _ := f.messages.ListByConversation(ctx, conv.ID, 50, 0)
	last := msgs[len(msgs)-1]
	if last.Direcao != DirectionOutgoing {
		t.Errorf("expected outgoing direction, got %s", last.Direcao)
	}
	if last.NumeroRemetente != inst.Nome || last.NumeroDestinatario != "5511999" {
		t.Errorf("unexpected sender/recipient: %s -> %s", last.NumeroRemetente, last.NumeroDestinatario)
	}
}

func TestReconciler_RedeliveryIsNoOp(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	_, conv, err := f.resolver.Resolve(ctx, inst, "5511999", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	evt := incomingEvent("5511999", "hello", "MSG1")
	if err := f.reconciler.RecordIncoming(ctx, inst, conv, evt); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := f.reconciler.RecordIncoming(ctx, inst, conv, evt); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}

	if f.messages.count() != 1 {
		t.Errorf("redelivery should not append a second message, got %d", f.messages.count())
	}
	updated, _ := f.conversations.GetByID(ctx, conv.ID)
	if updated.NaoLidas != 1 {
		t.Errorf("redelivery should not inflate unread, got %d", updated.NaoLidas)
	}
}

func TestReconciler_MessagesWithoutProviderIDAlwaysAppend(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	_, conv, err := f.resolver.Resolve(ctx, inst, "5511999", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// formatos legados sem id do provedor não participam do dedup
	for i := 0; i < 2; i++ {
		if err := f.reconciler.RecordIncoming(ctx, inst, conv, incomingEvent("5511999", "same", "")); err != nil {
			t.Fatalf("RecordIncoming failed: %v", err)
		}
	}

	if f.messages.count() != 2 {
		t.Errorf("expected 2 messages without provider id, got %d", f.messages.count())
	}
}

func TestReconciler_ApplyContacts(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	records := []events.ContactRecord{
		{Numero: "5511999", Nome: "Ana", AvatarURL: "http://pic/1"},
		{Numero: "5521888", Nome: "Bruno"},
	}

	if err := f.reconciler.ApplyContacts(ctx, inst, records); err != nil {
		t.Fatalf("ApplyContacts failed: %v", err)
	}

	if f.contacts.count() != 2 {
		t.Fatalf("expected 2 contacts, got %d", f.contacts.count())
	}
	contact, err := f.contacts.GetByNumero(ctx, inst.ID, "5511999")
	if err != nil {
		t.Fatalf("GetByNumero failed: %v", err)
	}
	if contact.AvatarURL == nil || *contact.AvatarURL != "http://pic/1" {
		t.Errorf("expected avatar url, got %v", contact.AvatarURL)
	}
	// lote de contatos não cria conversas
	if f.conversations.count() != 0 {
		t.Errorf("contact batch must not create conversations, got %d", f.conversations.count())
	}
}

func TestReconciler_ContactBatchRefreshesName(t *testing.T) {
	f := newReconcilerFixture()
	inst := testInstance()
	ctx := context.Background()

	nome := "Ana"
	now := time.Now().UTC()
	if _, err := f.contacts.Upsert(ctx, &Contact{
		EmpresaID:       inst.EmpresaID,
		InstanceID:      inst.ID,
		Numero:          "5511999",
		Nome:            &nome,
		UltimaInteracao: &now,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	records := []events.ContactRecord{{Numero: "5511999", Nome: "Ana Maria Souza"}}
	if err := f.reconciler.ApplyContacts(ctx, inst, records); err != nil {
		t.Fatalf("ApplyContacts failed: %v", err)
	}

	contact, err := f.contacts.GetByNumero(ctx, inst.ID, "5511999")
	if err != nil {
		t.Fatalf("GetByNumero failed: %v", err)
	}
	if contact.Nome == nil || *contact.Nome != "Ana Maria Souza" {
		t.Errorf("expected batch name to refresh stored name, got %v", contact.Nome)
	}

	// lote sem nome não rebaixa o nome armazenado
	if err := f.reconciler.ApplyContacts(ctx, inst, []events.ContactRecord{{Numero: "5511999"}}); err != nil {
		t.Fatalf("ApplyContacts failed: %v", err)
	}
	contact, err = f.contacts.GetByNumero(ctx, inst.ID, "5511999")
	if err != nil {
		t.Fatalf("GetByNumero failed: %v", err)
	}
	if contact.Nome == nil || *contact.Nome != "Ana Maria Souza" {
		t.Errorf("empty batch name must not downgrade stored name, got %v", contact.Nome)
	}
}
