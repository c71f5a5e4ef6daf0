package events

import (
	"encoding/json"
	"strings"
	"time"
)

// Conteúdos substitutos quando o payload não traz texto extraível.
// Os literais seguem o formato histórico gravado no banco.
const (
	ContentImagePlaceholder       = "[Imagem]"
	ContentUnsupportedPlaceholder = "[Mensagem não suportada]"
	ContentEmptyPlaceholder       = "[Sem conteúdo]"
)

// envelope campos de topo sondados em ordem no payload bruto
type envelope struct {
	Event    string          `json:"event"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	Message  json.RawMessage `json:"message"`
	Contacts json.RawMessage `json:"contacts"`
}

// messagePayload cobre os dois formatos de mensagem da Evolution API:
// o formato padrão (key/message/messageTimestamp) e o alternativo (from/body)
type messagePayload struct {
	Key struct {
		RemoteJid string `json:"remoteJid"`
		FromMe    bool   `json:"fromMe"`
		ID        string `json:"id"`
	} `json:"key"`
	Message struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
		ImageMessage *struct {
			Caption string `json:"caption"`
		} `json:"imageMessage"`
	} `json:"message"`
	MessageTimestamp float64 `json:"messageTimestamp"`
	PushName         string  `json:"pushName"`

	// formato alternativo
	From   string `json:"from"`
	Body   string `json:"body"`
	Text   string `json:"text"`
	FromMe bool   `json:"fromMe"`
	ID     string `json:"id"`
}

// connectionPayload campos relevantes de um connection.update
type connectionPayload struct {
	State  string          `json:"state"`
	Status string          `json:"status"`
	QRCode json.RawMessage `json:"qrcode"`
}

// contactPayload registro bruto de um lote de contatos
type contactPayload struct {
	ID                string `json:"id"`
	Number            string `json:"number"`
	Name              string `json:"name"`
	PushName          string `json:"pushname"`
	VerifiedName      string `json:"verifiedName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// Normalize converte um payload de webhook arbitrário para a representação
// canônica. Função pura: payloads desconhecidos viram KindUnrecognized,
// nunca erro. O parâmetro now é usado quando o payload não traz timestamp.
func Normalize(body []byte, now time.Time) *InboundEvent {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &InboundEvent{Kind: KindUnrecognized}
	}

	event := env.Event
	if event == "" {
		event = env.Type
	}

	switch event {
	case "messages.upsert", "message.received", "message.sent":
		return normalizeMessage(event, env, body, now)
	case "connection.update", "qrcode.updated":
		return normalizeConnection(event, env, body)
	case "contacts.upsert", "contact.updated":
		return normalizeContacts(event, env)
	default:
		return &InboundEvent{Kind: KindUnrecognized, Event: event}
	}
}

// normalizeMessage extrai a mensagem sondando data, message e a raiz, nessa ordem
func normalizeMessage(event string, env envelope, body []byte, now time.Time) *InboundEvent {
	for _, raw := range []json.RawMessage{env.Data, env.Message, body} {
		if len(raw) == 0 {
			continue
		}

		var payload messagePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}

		if msg := extractMessage(&payload, now); msg != nil {
			return &InboundEvent{Kind: KindMessage, Event: event, Message: msg}
		}
	}

	// nenhum formato conhecido rendeu um número remoto
	return &InboundEvent{Kind: KindUnrecognized, Event: event}
}

// extractMessage aplica a política de fallback de conteúdo do formato padrão
// e do alternativo; retorna nil quando não há identificador numérico
func extractMessage(p *messagePayload, now time.Time) *MessageEvent {
	if p.Key.RemoteJid != "" {
		// formato padrão da Evolution API
		numero := stripSuffix(p.Key.RemoteJid)
		if numero == "" {
			return nil
		}

		conteudo := ContentUnsupportedPlaceholder
		switch {
		case p.Message.Conversation != "":
			conteudo = p.Message.Conversation
		case p.Message.ExtendedTextMessage.Text != "":
			conteudo = p.Message.ExtendedTextMessage.Text
		case p.Message.ImageMessage != nil:
			conteudo = p.Message.ImageMessage.Caption
			if conteudo == "" {
				conteudo = ContentImagePlaceholder
			}
		}

		timestamp := now
		if p.MessageTimestamp > 0 {
			// o provedor envia epoch em segundos; persistimos com precisão de milissegundos
			timestamp = time.UnixMilli(int64(p.MessageTimestamp * 1000)).UTC()
		}

		return &MessageEvent{
			Numero:            numero,
			PushName:          p.PushName,
			Conteudo:          conteudo,
			Incoming:          !p.Key.FromMe,
			ProviderMessageID: p.Key.ID,
			Timestamp:         timestamp,
		}
	}

	if p.From != "" {
		// formato alternativo
		numero := stripSuffix(p.From)
		if numero == "" {
			return nil
		}

		conteudo := p.Body
		if conteudo == "" {
			conteudo = p.Text
		}
		if conteudo == "" {
			conteudo = ContentEmptyPlaceholder
		}

		return &MessageEvent{
			Numero:            numero,
			PushName:          p.PushName,
			Conteudo:          conteudo,
			Incoming:          !p.FromMe,
			ProviderMessageID: p.ID,
			Timestamp:         now,
		}
	}

	return nil
}

// normalizeConnection mapeia tokens de estado do provedor para o status canônico
func normalizeConnection(event string, env envelope, body []byte) *InboundEvent {
	raw := env.Data
	if len(raw) == 0 {
		raw = body
	}

	var payload connectionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &InboundEvent{Kind: KindConnection, Event: event, Status: StatusDisconnected}
	}

	status := StatusDisconnected
	switch {
	case payload.State == "open" || payload.Status == "connected":
		status = StatusConnected
	case hasValue(payload.QRCode):
		status = StatusConnecting
	}

	return &InboundEvent{Kind: KindConnection, Event: event, Status: status}
}

// normalizeContacts normaliza um lote de contatos; registros sem
// identificador numérico são descartados
func normalizeContacts(event string, env envelope) *InboundEvent {
	raw := env.Data
	if len(raw) == 0 {
		raw = env.Contacts
	}

	var payloads []contactPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return &InboundEvent{Kind: KindContacts, Event: event}
	}

	records := make([]ContactRecord, 0, len(payloads))
	for _, p := range payloads {
		numero := stripSuffix(p.ID)
		if numero == "" {
			numero = stripSuffix(p.Number)
		}
		if numero == "" {
			continue
		}

		nome := p.Name
		if nome == "" {
			nome = p.PushName
		}
		if nome == "" {
			nome = p.VerifiedName
		}

		records = append(records, ContactRecord{
			Numero:    numero,
			Nome:      nome,
			AvatarURL: p.ProfilePictureURL,
		})
	}

	return &InboundEvent{Kind: KindContacts, Event: event, Contacts: records}
}

// stripSuffix remove o sufixo de domínio de um JID (ex: 5511999@s.whatsapp.net)
func stripSuffix(jid string) string {
	if idx := strings.Index(jid, "@"); idx >= 0 {
		return jid[:idx]
	}
	return jid
}

// hasValue verifica se um campo JSON bruto carrega valor não nulo
func hasValue(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null" && trimmed != `""` && trimmed != "{}"
}
