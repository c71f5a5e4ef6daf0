package events

import (
	"time"
)

// Kind categoria canônica de um evento de webhook
type Kind string

const (
	KindMessage      Kind = "message"
	KindConnection   Kind = "connection"
	KindContacts     Kind = "contacts"
	KindUnrecognized Kind = "unrecognized"
)

// ConnectionStatus status de conexão normalizado da instância
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// InboundEvent representação canônica de um payload de webhook.
// Exatamente um dos campos de variante é preenchido conforme Kind.
type InboundEvent struct {
	Kind     Kind
	Event    string
	Message  *MessageEvent
	Status   ConnectionStatus
	Contacts []ContactRecord
}

// MessageEvent mensagem normalizada extraída do payload
type MessageEvent struct {
	Numero            string
	PushName          string
	Conteudo          string
	Incoming          bool
	ProviderMessageID string
	Timestamp         time.Time
}

// ContactRecord registro de contato normalizado de um lote contacts.upsert
type ContactRecord struct {
	Numero    string
	Nome      string
	AvatarURL string
}
