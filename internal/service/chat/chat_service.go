package chat

import (
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/prompt"
	"chat-rag/internal/repository/db"
	"chat-rag/internal/service/conversation"
	"chat-rag/internal/service/document"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/service/settings"
	"chat-rag/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// X-Title values sent to OpenRouter per entry point
const (
	ChatTitle    = "Chat IA com RAG"
	WebhookTitle = "Chat IA com RAG WhatsApp"
)

// Fixed replies sent to messaging correspondents when the flow fails
const (
	ApologyNotConfigured  = "Sistema não está configurado. Entre em contato com o administrador."
	ApologyMissingAPIKey  = "API de IA não configurada."
	ApologyUpstreamFailed = "Desculpe, ocorreu um erro ao processar sua mensagem."
	ApologyUnexpected     = "Desculpe, ocorreu um erro. Tente novamente."
)

// ReplyRequest contains everything needed to answer one message
type ReplyRequest struct {
	// CorrespondentID is logged as whatsapp_id
	CorrespondentID string
	Message         string
	Title           string
}

// ReplyResult is the outcome of a successful reply
type ReplyResult struct {
	Response    string
	Model       string
	DocumentIDs []string
	// Logged reports whether the conversation log write succeeded
	Logged bool
}

// ChatService runs the retrieval-augmented reply flow shared by all entry points
type ChatService struct {
	settings      *settings.SettingsService
	documents     *document.DocumentService
	conversations *conversation.ConversationService
	llmProvider   llm.CompletionProvider
	validator     *validation.ChatRequestValidator
}

// NewChatService creates a new ChatService
func NewChatService(
	settingsService *settings.SettingsService,
	documentService *document.DocumentService,
	conversationService *conversation.ConversationService,
	llmProvider llm.CompletionProvider,
) *ChatService {
	return &ChatService{
		settings:      settingsService,
		documents:     documentService,
		conversations: conversationService,
		llmProvider:   llmProvider,
		validator:     validation.NewChatRequestValidator(),
	}
}

// Reply validates the message, loads the active configuration and the recent
// documents, asks the completion provider and logs the exchange. Steps run
// strictly in order and the first failure aborts the flow; a failed log write
// only clears ReplyResult.Logged.
func (s *ChatService) Reply(ctx context.Context, req ReplyRequest) (*ReplyResult, error) {
	if err := s.validator.ValidateMessage(req.Message); err != nil {
		return nil, err
	}

	active, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.Recent(ctx)
	if err != nil {
		return nil, err
	}

	model := active.SelectedModel
	if model == "" {
		model = config.DefaultModel
	}
	systemPrompt := prompt.Build(active.SystemPrompt, docs)

	logger.Log.WithFields(logrus.Fields{
		"correspondent": req.CorrespondentID,
		"model":         model,
		"documents":     len(docs),
	}).Debug("Prepared completion context")

	response, err := s.llmProvider.Complete(ctx, llm.CompletionRequest{
		APIKey:       active.APIKeyOpenRouter,
		Model:        model,
		SystemPrompt: systemPrompt,
		UserMessage:  req.Message,
		Title:        req.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	documentIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		documentIDs = append(documentIDs, strconv.FormatInt(doc.ID, 10))
	}

	logged := s.conversations.Record(ctx, db.Conversation{
		WhatsAppID:    req.CorrespondentID,
		UserMessage:   req.Message,
		AIResponse:    response,
		ModelUsed:     model,
		DocumentsUsed: documentIDs,
	})

	return &ReplyResult{
		Response:    response,
		Model:       model,
		DocumentIDs: documentIDs,
		Logged:      logged,
	}, nil
}

// ApologyFor maps a Reply failure onto the text sent back to a messaging
// correspondent
func ApologyFor(err error) string {
	var upstreamErr *llm.UpstreamError
	switch {
	case errors.Is(err, settings.ErrNotConfigured):
		return ApologyNotConfigured
	case errors.Is(err, settings.ErrMissingAPIKey):
		return ApologyMissingAPIKey
	case errors.As(err, &upstreamErr):
		return ApologyUpstreamFailed
	default:
		return ApologyUnexpected
	}
}
