package handlers

import (
	"chat-rag/internal/app"
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	chatService "chat-rag/internal/service/chat"
	"chat-rag/internal/service/conversation"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/service/settings"
	"chat-rag/pkg/validation"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ModelsResponse struct {
	Models       []config.Model `json:"models"`
	DefaultModel string         `json:"default_model"`
}

type ChatHandlers struct {
	config      *app.Config
	chatService *chatService.ChatService
}

func NewChatHandlers(config *app.Config) *ChatHandlers {
	return &ChatHandlers{
		config:      config,
		chatService: config.Chat,
	}
}

// ChatHandler answers one message from the web client
func (ch *ChatHandlers) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("Invalid chat request body")
		sendError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	result, err := ch.chatService.Reply(r.Context(), chatService.ReplyRequest{
		CorrespondentID: conversation.LocalChatID,
		Message:         req.Message,
		Title:           chatService.ChatTitle,
	})
	if err != nil {
		ch.sendReplyError(w, err)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"model":     result.Model,
		"documents": len(result.DocumentIDs),
		"logged":    result.Logged,
	}).Info("Chat reply sent")
	sendJSON(w, http.StatusOK, ChatResponse{Response: result.Response})
}

func (ch *ChatHandlers) sendReplyError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	var upstreamErr *llm.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		sendError(w, http.StatusBadRequest, validationErr.Message)
	case settings.IsNotConfigured(err):
		logger.Log.WithError(err).Warn("Chat requested before configuration")
		sendError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstreamErr):
		logger.Log.WithError(err).WithField("status", upstreamErr.StatusCode).Error("OpenRouter error")
		sendError(w, http.StatusInternalServerError, upstreamErr.Message)
	default:
		logger.Log.WithError(err).Error("Error from chat service")
		sendError(w, http.StatusInternalServerError, "Erro: "+err.Error())
	}
}

// GetModelsHandler returns the list of available models
func (ch *ChatHandlers) GetModelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	models := ch.config.ModelsConfig()
	sendJSON(w, http.StatusOK, ModelsResponse{
		Models:       models.GetAvailableModels(),
		DefaultModel: models.GetDefaultModel(),
	})
}
