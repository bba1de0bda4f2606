package messaging

import (
	"bytes"
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sender pushes a text message to a messaging-platform correspondent.
// SendText reports delivery success; it never returns an error and never retries.
type Sender interface {
	SendText(ctx context.Context, number, text string) bool
}

// EvolutionClient sends WhatsApp messages through an Evolution API instance
type EvolutionClient struct {
	config *config.MessagingConfig
	client *http.Client
}

// Ensure EvolutionClient implements Sender
var _ Sender = (*EvolutionClient)(nil)

// NewEvolutionClient creates a client for the configured Evolution API instance
func NewEvolutionClient(messagingConfig *config.MessagingConfig) *EvolutionClient {
	return &EvolutionClient{
		config: messagingConfig,
		client: &http.Client{Timeout: messagingConfig.ClientTimeout},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendURL returns the sendText endpoint of the configured instance
func (c *EvolutionClient) SendURL() string {
	instance := c.config.Instance
	if instance == "" {
		instance = config.DefaultInstance
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/message/sendText/" + url.PathEscape(instance)
}

// SendText delivers text to number once
func (c *EvolutionClient) SendText(ctx context.Context, number, text string) bool {
	log := logger.Log.WithField("number", number)

	if c.config.BaseURL == "" {
		metrics.MessagesDelivered.WithLabelValues("skipped").Inc()
		log.Error("Messaging gateway URL not configured, reply not sent")
		return false
	}

	payload, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		metrics.MessagesDelivered.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Error marshaling message")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SendURL(), bytes.NewBuffer(payload))
	if err != nil {
		metrics.MessagesDelivered.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Error creating messaging request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.MessagesDelivered.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Error sending WhatsApp message")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		metrics.MessagesDelivered.WithLabelValues("failed").Inc()
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Evolution API error")
		return false
	}

	metrics.MessagesDelivered.WithLabelValues("sent").Inc()
	log.Info("Message sent")
	return true
}
