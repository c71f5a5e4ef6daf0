package instance

import (
	"time"

	"github.com/google/uuid"
)

// Instance representa um canal/conta conectado gerenciado pelo provedor
type Instance struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmpresaID  uuid.UUID `json:"empresaId" db:"empresa_id"`
	Nome       string    `json:"nome" db:"nome"`
	Status     string    `json:"status" db:"status"`
	ServerURL  string    `json:"serverUrl" db:"server_url"`
	APIKey     string    `json:"-" db:"api_key"`
	WebhookURL *string   `json:"webhookUrl,omitempty" db:"webhook_url"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// Summary projeção de instância publicada pela listagem, com credencial oculta
type Summary struct {
	ID                string  `json:"id"`
	Nome              string  `json:"nome"`
	Status            string  `json:"status"`
	ServerURL         string  `json:"server_url"`
	APIKey            string  `json:"api_key"`
	WebhookURL        *string `json:"webhook_url"`
	PhoneNumber       *string `json:"phone_number"`
	ProfileName       *string `json:"profileName"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
	CreatedAt         string  `json:"created_at"`
}

// ProviderInstance instância bruta retornada pelo fetchInstances do provedor
type ProviderInstance struct {
	InstanceID        string
	Nome              string
	State             string
	WebhookURL        string
	PhoneNumber       string
	ProfileName       string
	ProfilePictureURL string
}
