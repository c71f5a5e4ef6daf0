package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"evocrm/internal/core/instance"
	"evocrm/platform/logger"
)

// Client implementa a interface instance.Gateway para a Evolution API
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient cria um novo cliente da Evolution API
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ServerURL retorna a URL base configurada do provedor
func (c *Client) ServerURL() string {
	return c.baseURL
}

// SendText envia uma mensagem de texto pela instância informada. Usa as
// credenciais próprias da instância quando presentes, senão as globais.
func (c *Client) SendText(ctx context.Context, inst *instance.Instance, numero, texto string) (json.RawMessage, error) {
	serverURL := inst.ServerURL
	if serverURL == "" {
		serverURL = c.baseURL
	}
	apiKey := inst.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}

	payload := map[string]interface{}{
		"number": numero,
		"text":   texto,
	}

	endpoint := fmt.Sprintf("%s/message/sendText/%s", serverURL, url.PathEscape(inst.Nome))

	body, err := c.makeRequest(ctx, "POST", endpoint, apiKey, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to send text message: %w", err)
	}

	return body, nil
}

// providerInstancePayload cobre os dois formatos retornados pelo
// fetchInstances: campos no nível raiz ou aninhados em "instance"
type providerInstancePayload struct {
	Instance *struct {
		InstanceID        string `json:"instanceId"`
		InstanceName      string `json:"instanceName"`
		State             string `json:"state"`
		Status            string `json:"status"`
		Owner             string `json:"owner"`
		ProfileName       string `json:"profileName"`
		ProfilePictureURL string `json:"profilePictureUrl"`
	} `json:"instance"`
	ID                string `json:"id"`
	Name              string `json:"name"`
	InstanceName      string `json:"instanceName"`
	ConnectionStatus  string `json:"connectionStatus"`
	State             string `json:"state"`
	Number            string `json:"number"`
	OwnerJid          string `json:"ownerJid"`
	ProfileName       string `json:"profileName"`
	ProfilePictureURL string `json:"profilePicUrl"`
	Webhook           struct {
		URL string `json:"url"`
	} `json:"webhook"`
}

// FetchInstances lista as instâncias registradas no provedor
func (c *Client) FetchInstances(ctx context.Context) ([]instance.ProviderInstance, error) {
	endpoint := fmt.Sprintf("%s/instance/fetchInstances", c.baseURL)

	body, err := c.makeRequest(ctx, "GET", endpoint, c.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instances: %w", err)
	}

	var payloads []providerInstancePayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("failed to decode instances response: %w", err)
	}

	instances := make([]instance.ProviderInstance, 0, len(payloads))
	for _, p := range payloads {
		instances = append(instances, p.toProviderInstance())
	}

	return instances, nil
}

func (p *providerInstancePayload) toProviderInstance() instance.ProviderInstance {
	out := instance.ProviderInstance{
		InstanceID:        p.ID,
		Nome:              firstNonEmpty(p.Name, p.InstanceName),
		State:             firstNonEmpty(p.ConnectionStatus, p.State),
		WebhookURL:        p.Webhook.URL,
		PhoneNumber:       firstNonEmpty(p.Number, p.OwnerJid),
		ProfileName:       p.ProfileName,
		ProfilePictureURL: p.ProfilePictureURL,
	}

	if p.Instance != nil {
		out.InstanceID = firstNonEmpty(out.InstanceID, p.Instance.InstanceID)
		out.Nome = firstNonEmpty(out.Nome, p.Instance.InstanceName)
		out.State = firstNonEmpty(out.State, p.Instance.State, p.Instance.Status)
		out.PhoneNumber = firstNonEmpty(out.PhoneNumber, p.Instance.Owner)
		out.ProfileName = firstNonEmpty(out.ProfileName, p.Instance.ProfileName)
		out.ProfilePictureURL = firstNonEmpty(out.ProfilePictureURL, p.Instance.ProfilePictureURL)
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint, apiKey string, payload interface{}) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
