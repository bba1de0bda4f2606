package testutil

import (
	"chat-rag/internal/config"
	"chat-rag/internal/repository/db"
	"chat-rag/internal/service/llm"
	"context"
	"errors"
	"time"
)

// MockStore is a mock implementation of db.Store for testing
type MockStore struct {
	SelectFunc func(ctx context.Context, table db.Table, opts db.QueryOptions) ([]db.Record, error)
	InsertFunc func(ctx context.Context, table db.Table, record db.Record) (db.Record, error)
	UpdateFunc func(ctx context.Context, table db.Table, patch db.Record, filters []db.Filter) ([]db.Record, error)
	DeleteFunc func(ctx context.Context, table db.Table, filters []db.Filter) error

	// Calls counts invocations per operation ("select", "insert", "update", "delete")
	Calls map[string]int
}

func (m *MockStore) count(op string) {
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[op]++
}

func (m *MockStore) Select(ctx context.Context, table db.Table, opts db.QueryOptions) ([]db.Record, error) {
	m.count("select")
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, table, opts)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) Insert(ctx context.Context, table db.Table, record db.Record) (db.Record, error) {
	m.count("insert")
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, table, record)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) Update(ctx context.Context, table db.Table, patch db.Record, filters []db.Filter) ([]db.Record, error) {
	m.count("update")
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, table, patch, filters)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) Delete(ctx context.Context, table db.Table, filters []db.Filter) error {
	m.count("delete")
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, table, filters)
	}
	return errors.New("not implemented")
}

// TotalCalls returns the number of store operations of any kind
func (m *MockStore) TotalCalls() int {
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

// MockCompletionProvider is a mock implementation of llm.CompletionProvider for testing
type MockCompletionProvider struct {
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)
	Requests     []llm.CompletionRequest
}

func (m *MockCompletionProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}

// SentMessage records one MockSender delivery attempt
type SentMessage struct {
	Number string
	Text   string
}

// MockSender is a mock implementation of messaging.Sender for testing
type MockSender struct {
	Result bool
	Sent   []SentMessage
}

func (m *MockSender) SendText(ctx context.Context, number, text string) bool {
	m.Sent = append(m.Sent, SentMessage{Number: number, Text: text})
	return m.Result
}

// ConfigRecord builds a configs row as the store would return it
func ConfigRecord(id int64, apiKey, model, systemPrompt string) db.Record {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return db.Record{
		"id":                 id,
		"api_key_openrouter": apiKey,
		"selected_model":     model,
		"system_prompt":      systemPrompt,
		"created_at":         now,
		"updated_at":         now,
	}
}

// DocumentRecord builds a documents row as the store would return it
func DocumentRecord(id int64, filename, content string) db.Record {
	return db.Record{
		"id":         id,
		"filename":   filename,
		"content":    content,
		"file_type":  "plain",
		"file_size":  int64(len(content)),
		"created_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewMockModelsConfig returns the built-in model catalog
func NewMockModelsConfig() *config.ModelsConfig {
	return config.DefaultModelsConfig()
}
