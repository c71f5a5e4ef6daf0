package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"evocrm/internal/core/instance"
	"evocrm/platform/logger"
)

func testInstance() *instance.Instance {
	return &instance.Instance{
		ID:        uuid.New(),
		EmpresaID: uuid.New(),
		Nome:      "Sales",
		Status:    "connected",
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.TestConfig())
}

func TestResolver_CreatesContactAndConversation(t *testing.T) {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	resolver := NewResolver(contacts, conversations, testLogger())
	inst := testInstance()

	contact, conv, err := resolver.Resolve(context.Background(), inst, "5511999", "Ana")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if contact.Numero != "5511999" {
		t.Errorf("expected numero 5511999, got %s", contact.Numero)
	}
	if contact.Nome == nil || *contact.Nome != "Ana" {
		t.Errorf("expected nome Ana, got %v", contact.Nome)
	}
	if conv.Status != ConversationStatusOpen {
		t.Errorf("expected open conversation, got %s", conv.Status)
	}
	if conv.NaoLidas != 0 {
		t.Errorf("new conversation should have 0 unread, got %d", conv.NaoLidas)
	}
	if conv.ContatoID != contact.ID {
		t.Error("conversation not linked to contact")
	}
}

func TestResolver_ReusesExistingPair(t *testing.T) {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	resolver := NewResolver(contacts, conversations, testLogger())
	inst := testInstance()

	first, firstConv, err := resolver.Resolve(context.Background(), inst, "5511999", "")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	second, secondConv, err := resolver.Resolve(context.Background(), inst, "5511999", "")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	if first.ID != second.ID {
		t.Error("expected same contact on second resolve")
	}
	if firstConv.ID != secondConv.ID {
		t.Error("expected same conversation on second resolve")
	}
	if contacts.count() != 1 || conversations.count() != 1 {
		t.Errorf("expected 1 contact and 1 conversation, got %d/%d", contacts.count(), conversations.count())
	}
}

func TestResolver_NameNeverDowngraded(t *testing.T) {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	resolver := NewResolver(contacts, conversations, testLogger())
	inst := testInstance()

	if _, _, err := resolver.Resolve(context.Background(), inst, "5511999", "Ana"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// evento posterior sem pushName não apaga o nome armazenado
	contact, _, err := resolver.Resolve(context.Background(), inst, "5511999", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if contact.Nome == nil || *contact.Nome != "Ana" {
		t.Errorf("stored name should survive empty update, got %v", contact.Nome)
	}
}

func TestResolver_FillsEmptyName(t *testing.T) {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	resolver := NewResolver(contacts, conversations, testLogger())
	inst := testInstance()

	if _, _, err := resolver.Resolve(context.Background(), inst, "5511999", ""); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	contact, _, err := resolver.Resolve(context.Background(), inst, "5511999", "Ana")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if contact.Nome == nil || *contact.Nome != "Ana" {
		t.Errorf("empty name should be filled by later event, got %v", contact.Nome)
	}
}

func TestResolver_RequiresNumero(t *testing.T) {
	resolver := NewResolver(newMemContactRepo(), newMemConversationRepo(), testLogger())

	if _, _, err := resolver.Resolve(context.Background(), testInstance(), "", "Ana"); err == nil {
		t.Error("expected error for empty numero")
	}
}

func TestResolver_ConcurrentSameIdentifier(t *testing.T) {
	contacts := newMemContactRepo()
	conversations := newMemConversationRepo()
	resolver := NewResolver(contacts, conversations, testLogger())
	inst := testInstance()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := resolver.Resolve(context.Background(), inst, "5511999", "Ana"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Resolve failed: %v", err)
	}
	if contacts.count() != 1 {
		t.Errorf("expected exactly 1 contact, got %d", contacts.count())
	}
	if conversations.count() != 1 {
		t.Errorf("expected exactly 1 conversation, got %d", conversations.count())
	}
}
