package llm

import (
	"bytes"
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	// Temperature and MaxTokens are fixed for every completion
	Temperature = 0.7
	MaxTokens   = 1000

	// NoResponse replaces a structurally valid reply without content
	NoResponse = "Sem resposta"

	defaultUpstreamMessage = "Erro ao chamar Open Router"
	defaultTitle           = "Chat IA com RAG"
)

// OpenRouterProvider implements CompletionProvider using direct OpenRouter API calls
type OpenRouterProvider struct {
	config *config.LLMConfig
	models *config.ModelsConfig
	client *http.Client
}

// NewOpenRouterProvider creates a new OpenRouter provider with config
func NewOpenRouterProvider(llmConfig *config.LLMConfig, modelsConfig *config.ModelsConfig) *OpenRouterProvider {
	return &OpenRouterProvider{
		config: llmConfig,
		models: modelsConfig,
		client: &http.Client{Timeout: llmConfig.ClientTimeout},
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message *Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CompletionRequest carries everything one completion call needs
type CompletionRequest struct {
	APIKey       string
	Model        string
	SystemPrompt string
	UserMessage  string
	// Title is sent as X-Title; defaults to "Chat IA com RAG"
	Title string
}

// UpstreamError is returned when the provider answers with a non-2xx status.
// Message holds the provider's error.message when it could be parsed.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("OpenRouter returned status %d: %s", e.StatusCode, e.Message)
}

// Model returns the model a request will use
func (p *OpenRouterProvider) Model(requested string) string {
	if requested != "" {
		return requested
	}
	return p.models.GetDefaultModel()
}

// Complete sends one system message and one user message and returns the
// first choice's content, or NoResponse when the reply carries none
func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.APIKey == "" {
		return "", fmt.Errorf("OpenRouter API key not configured")
	}

	model := p.Model(req.Model)
	title := req.Title
	if title == "" {
		title = defaultTitle
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         model,
		"prompt_length": len(req.SystemPrompt),
		"message_chars": len(req.UserMessage),
	}).Info("Calling OpenRouter API")

	reqBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserMessage},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.CompletionURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("HTTP-Referer", p.config.SiteURL)
	httpReq.Header.Set("X-Title", title)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		metrics.CompletionCalls.WithLabelValues(model, "transport_error").Inc()
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CompletionCalls.WithLabelValues(model, "transport_error").Inc()
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.CompletionCalls.WithLabelValues(model, "upstream_error").Inc()
		upstreamErr := &UpstreamError{StatusCode: resp.StatusCode, Message: parseErrorMessage(body)}
		logger.Log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("OpenRouter error")
		return "", upstreamErr
	}

	logger.Log.WithField("response_length", len(body)).Debug("Received raw response")

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		metrics.CompletionCalls.WithLabelValues(model, "decode_error").Inc()
		return "", fmt.Errorf("error decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message == nil || chatResp.Choices[0].Message.Content == "" {
		metrics.CompletionCalls.WithLabelValues(model, "empty").Inc()
		logger.Log.WithField("generation_id", chatResp.ID).Warn("Completion carried no content")
		return NoResponse, nil
	}

	metrics.CompletionCalls.WithLabelValues(model, "success").Inc()
	content := chatResp.Choices[0].Message.Content
	logger.Log.WithFields(logrus.Fields{
		"generation_id":  chatResp.ID,
		"content_length": len(content),
	}).Debug("Extracted content from response")
	return content, nil
}

func parseErrorMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == nil || errResp.Error.Message == "" {
		return defaultUpstreamMessage
	}
	return errResp.Error.Message
}
