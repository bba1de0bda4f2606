package llm

import "context"

// CompletionProvider sends a single system+user exchange to a chat-completion API
type CompletionProvider interface {
	// Complete returns the text of the first completion choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
