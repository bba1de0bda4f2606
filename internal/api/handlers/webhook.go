package handlers

import (
	"bytes"
	"chat-rag/internal/app"
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	chatService "chat-rag/internal/service/chat"
	"chat-rag/internal/service/messaging"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Scheme names the payload layout an inbound message was read from
type Scheme string

const (
	// SchemeKeyMessage reads data.key.remoteJid and data.message.text
	SchemeKeyMessage Scheme = "key_message"
	// SchemeFromBody reads data.from and data.body
	SchemeFromBody Scheme = "from_body"
)

// InboundMessage is a messaging event resolved to a sender and a text
type InboundMessage struct {
	Scheme          Scheme
	CorrespondentID string
	Text            string
}

// webhookFields holds the raw members of the payload's data object. Each
// candidate is decoded on its own so one odd field cannot void the event.
type webhookFields map[string]json.RawMessage

// ParseInbound extracts the correspondent and text from a webhook body. The
// key/message layout wins over from/body field by field. It reports false when
// either value is missing, which callers acknowledge without processing.
func ParseInbound(body []byte) (InboundMessage, bool) {
	var payload struct {
		Data webhookFields `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data == nil {
		return InboundMessage{}, false
	}
	data := payload.Data

	msg := InboundMessage{Scheme: SchemeFromBody, CorrespondentID: data.text("from"), Text: data.text("body")}
	if jid := data.nested("key").text("remoteJid"); jid != "" {
		msg.Scheme = SchemeKeyMessage
		msg.CorrespondentID = jid
	}
	if text := data.nested("message").text("text"); text != "" {
		msg.Text = text
	}

	if msg.CorrespondentID == "" || strings.TrimSpace(msg.Text) == "" {
		return InboundMessage{}, false
	}
	return msg, true
}

// nested decodes the named member as an object, or returns nil
func (f webhookFields) nested(name string) webhookFields {
	var inner webhookFields
	if err := json.Unmarshal(f[name], &inner); err != nil {
		return nil
	}
	return inner
}

// text returns the named member as a string. Numbers keep their literal
// digits so numeric phone ids survive; anything else reads as empty.
func (f webhookFields) text(name string) string {
	raw, ok := f[name]
	if !ok {
		return ""
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}

type WebhookResponse struct {
	OK        bool `json:"ok"`
	Processed bool `json:"processed,omitempty"`
}

type WebhookHandlers struct {
	chatService *chatService.ChatService
	messenger   messaging.Sender
	maxBody     int64
}

func NewWebhookHandlers(config *app.Config) *WebhookHandlers {
	return &WebhookHandlers{
		chatService: config.Chat,
		messenger:   config.Messenger,
		maxBody:     1 << 20,
	}
}

// WebhookHandler verifies subscriptions on GET and answers inbound messages on POST
func (h *WebhookHandlers) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if challenge := r.URL.Query().Get("challenge"); challenge != "" {
			sendJSON(w, http.StatusOK, ChallengeResponse{Challenge: challenge})
			return
		}
		sendJSON(w, http.StatusOK, WebhookResponse{OK: true})
	case http.MethodPost:
		h.handleInbound(w, r)
	default:
		sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

func (h *WebhookHandlers) handleInbound(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&raw); err != nil {
		logger.Log.WithError(err).Warn("Unreadable webhook payload")
		sendJSON(w, http.StatusOK, WebhookResponse{OK: true})
		return
	}

	msg, ok := ParseInbound(raw)
	if !ok {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		logger.Log.Info("Webhook event without sender or text")
		sendJSON(w, http.StatusOK, WebhookResponse{OK: true})
		return
	}
	metrics.WebhookEvents.WithLabelValues(string(msg.Scheme)).Inc()

	entry := logger.Log.WithFields(logrus.Fields{
		"correspondent": msg.CorrespondentID,
		"scheme":        msg.Scheme,
	})
	entry.Info("Webhook message received")

	reply := ""
	result, err := h.chatService.Reply(r.Context(), chatService.ReplyRequest{
		CorrespondentID: msg.CorrespondentID,
		Message:         msg.Text,
		Title:           chatService.WebhookTitle,
	})
	if err != nil {
		entry.WithError(err).Error("Error processing webhook message")
		reply = chatService.ApologyFor(err)
	} else {
		reply = result.Response
	}

	if !h.messenger.SendText(r.Context(), msg.CorrespondentID, reply) {
		entry.Error("Failed to deliver reply")
	}

	sendJSON(w, http.StatusOK, WebhookResponse{OK: true, Processed: true})
}
