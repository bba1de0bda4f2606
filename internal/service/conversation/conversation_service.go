package conversation

import (
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	"chat-rag/internal/repository/db"
	"context"

	"github.com/sirupsen/logrus"
)

// LocalChatID identifies exchanges made through the HTTP chat endpoint
const LocalChatID = "local_chat"

// ConversationService appends exchanges to the conversation log
type ConversationService struct {
	store db.Store
}

// NewConversationService creates a new ConversationService
func NewConversationService(store db.Store) *ConversationService {
	return &ConversationService{
		store: store,
	}
}

// Record writes one exchange. A failed write is logged and counted but never
// returned: the caller's reply must not depend on it.
func (s *ConversationService) Record(ctx context.Context, conv db.Conversation) bool {
	if _, err := s.store.Insert(ctx, db.TableConversations, conv.Record()); err != nil {
		metrics.ConversationLogWrites.WithLabelValues("failure").Inc()
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"whatsapp_id": conv.WhatsAppID,
			"model":       conv.ModelUsed,
		}).Error("Failed to log conversation")
		return false
	}

	metrics.ConversationLogWrites.WithLabelValues("success").Inc()
	logger.Log.WithFields(logrus.Fields{
		"whatsapp_id":    conv.WhatsAppID,
		"documents_used": len(conv.DocumentsUsed),
	}).Debug("Logged conversation")
	return true
}
