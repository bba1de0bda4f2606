package prompt

import (
	"chat-rag/internal/logger"
	"chat-rag/internal/repository/db"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultSystemPrompt is used when the stored configuration has none
	DefaultSystemPrompt = "Você é um assistente útil."

	contextHeader     = "\n\nContexto dos documentos:\n"
	documentSeparator = "\n\n---\n\n"
	noDocuments       = "Nenhum documento disponível"
)

// Build returns the system instruction: the configured prompt (or the
// default), the documents header, then every document in input order.
// The result is never truncated.
func Build(systemPrompt string, docs []db.Document) string {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	built := systemPrompt + contextHeader + DocumentsContext(docs)

	logger.Log.WithFields(logrus.Fields{
		"documents":     len(docs),
		"prompt_length": len(built),
	}).Debug("Built system prompt with document context")

	return built
}

// DocumentsContext renders the document block of the system instruction
func DocumentsContext(docs []db.Document) string {
	if len(docs) == 0 {
		return noDocuments
	}

	entries := make([]string, len(docs))
	for i, doc := range docs {
		entries[i] = "Documento: " + doc.Filename + "\n" + doc.Content
	}
	return strings.Join(entries, documentSeparator)
}
