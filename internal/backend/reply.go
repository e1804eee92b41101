package backend

import (
	"encoding/json"
	"mime"
	"strings"
)

// MimePDF - тип содержимого PDF-отчёта
const MimePDF = "application/pdf"

// ReplyKind - вариант ответа внешнего сервиса
type ReplyKind int

const (
	// ReplyBinary - двоичное тело (PDF), текст не разбирается
	ReplyBinary ReplyKind = iota + 1
	// ReplyStructured - тело является корректным JSON
	ReplyStructured
	// ReplyPlainText - тело не удалось разобрать как JSON
	ReplyPlainText
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyBinary:
		return "binary"
	case ReplyStructured:
		return "structured"
	case ReplyPlainText:
		return "plain_text"
	default:
		return "unknown"
	}
}

// Payload - разобранный JSON-ответ. Response == nil, если поле отсутствует
// или не является строкой.
type Payload struct {
	Response *string
}

// Reply - ответ сервиса, классифицированный один раз при получении.
// Дальнейший код не смотрит на заголовки.
type Reply struct {
	Kind     ReplyKind
	Body     []byte
	MimeType string
	Payload  Payload
	Text     string
}

// BinaryReply создаёт двоичный ответ
func BinaryReply(body []byte, mimeType string) Reply {
	return Reply{Kind: ReplyBinary, Body: body, MimeType: mimeType}
}

// StructuredReply создаёт разобранный JSON-ответ
func StructuredReply(payload Payload) Reply {
	return Reply{Kind: ReplyStructured, Payload: payload}
}

// PlainTextReply создаёт текстовый ответ
func PlainTextReply(text string) Reply {
	return Reply{Kind: ReplyPlainText, Text: text}
}

// DecodeReply классифицирует ответ по заголовку Content-Type и телу.
// Отсутствующий заголовок означает "не PDF".
func DecodeReply(contentType string, body []byte) Reply {
	if isPDF(contentType) {
		return BinaryReply(body, MimePDF)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return PlainTextReply(string(body))
	}

	var payload Payload
	if obj, ok := raw.(map[string]any); ok {
		if s, ok := obj["response"].(string); ok {
			payload.Response = &s
		}
	}
	return StructuredReply(payload)
}

// MessageText возвращает текст для показа в чате; fallback используется,
// когда в ответе нет содержательного текста.
func (r Reply) MessageText(fallback string) string {
	switch r.Kind {
	case ReplyStructured:
		if r.Payload.Response != nil && *r.Payload.Response != "" {
			return *r.Payload.Response
		}
	case ReplyPlainText:
		if r.Text != "" {
			return r.Text
		}
	}
	return fallback
}

func isPDF(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), MimePDF)
	}
	return mediaType == MimePDF
}
