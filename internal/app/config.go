package app

import (
	"chat-rag/internal/config"
	"chat-rag/internal/repository/db"
	"chat-rag/internal/service/chat"
	"chat-rag/internal/service/conversation"
	"chat-rag/internal/service/document"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/service/messaging"
	"chat-rag/internal/service/settings"
)

// Config holds all application dependencies and configuration
type Config struct {
	// Store is the relational store behind every service
	Store db.Store
	// Centralized application configuration
	AppConfig *config.AppConfig

	Settings      *settings.SettingsService
	Documents     *document.DocumentService
	Conversations *conversation.ConversationService
	Chat          *chat.ChatService
	Messenger     messaging.Sender
}

// NewConfig wires the services on top of an already opened store
func NewConfig(store db.Store, appConfig *config.AppConfig, provider llm.CompletionProvider, messenger messaging.Sender) *Config {
	settingsService := settings.NewSettingsService(store)
	documentService := document.NewDocumentService(store, &appConfig.Upload)
	conversationService := conversation.NewConversationService(store)

	return &Config{
		Store:         store,
		AppConfig:     appConfig,
		Settings:      settingsService,
		Documents:     documentService,
		Conversations: conversationService,
		Chat:          chat.NewChatService(settingsService, documentService, conversationService, provider),
		Messenger:     messenger,
	}
}

// ModelsConfig returns the model catalog
func (c *Config) ModelsConfig() *config.ModelsConfig {
	return c.AppConfig.Models
}
