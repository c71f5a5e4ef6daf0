package chat

import (
	"time"

	"github.com/google/uuid"
)

// Direção de uma mensagem
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Status de entrega de uma mensagem
const (
	MessageStatusReceived = "received"
	MessageStatusSent     = "sent"
)

// ConversationStatusOpen status inicial de toda conversa
const ConversationStatusOpen = "open"

// Contact representa um interlocutor remoto em uma instância.
// Existe no máximo um contato por (instance_id, numero).
type Contact struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	EmpresaID       uuid.UUID  `json:"empresaId" db:"empresa_id"`
	InstanceID      uuid.UUID  `json:"instanceId" db:"instance_id"`
	Numero          string     `json:"numero" db:"numero"`
	Nome            *string    `json:"nome,omitempty" db:"nome"`
	AvatarURL       *string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	UltimaInteracao *time.Time `json:"ultimaInteracao,omitempty" db:"ultima_interacao"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// Conversation é a única thread aberta por (instância, contato). Carrega a
// projeção materializada de última mensagem e o contador de não lidas,
// mantidos consistentes pelo reconciliador a cada escrita.
type Conversation struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	EmpresaID               uuid.UUID  `json:"empresaId" db:"empresa_id"`
	InstanceID              uuid.UUID  `json:"instanceId" db:"instance_id"`
	ContatoID               uuid.UUID  `json:"contatoId" db:"contato_id"`
	Status                  string     `json:"status" db:"status"`
	UltimaMensagem          *string    `json:"ultimaMensagem,omitempty" db:"ultima_mensagem"`
	UltimaMensagemTimestamp *time.Time `json:"ultimaMensagemTimestamp,omitempty" db:"ultima_mensagem_timestamp"`
	NaoLidas                int        `json:"naoLidas" db:"nao_lidas"`
	CreatedAt               time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt               time.Time  `json:"updatedAt" db:"updated_at"`
}

// Message registro imutável de uma comunicação; append-only
type Message struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	EmpresaID          uuid.UUID `json:"empresaId" db:"empresa_id"`
	ConversaID         uuid.UUID `json:"conversaId" db:"conversa_id"`
	NumeroRemetente    string    `json:"numeroRemetente" db:"numero_remetente"`
	NumeroDestinatario string    `json:"numeroDestinatario" db:"numero_destinatario"`
	Conteudo           string    `json:"conteudo" db:"conteudo"`
	Tipo               string    `json:"tipo" db:"tipo"`
	Direcao            string    `json:"direcao" db:"direcao"`
	ProviderMessageID  *string   `json:"providerMessageId,omitempty" db:"provider_message_id"`
	TimestampEvolution time.Time `json:"timestampEvolution" db:"timestamp_evolution"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// DisplayName retorna o nome do contato ou o número quando sem nome
func (c *Contact) DisplayName() string {
	if c.Nome != nil && *c.Nome != "" {
		return *c.Nome
	}
	return c.Numero
}
