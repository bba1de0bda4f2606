package chat

import (
	"chat-rag/internal/config"
	"chat-rag/internal/repository/db"
	"chat-rag/internal/service/conversation"
	"chat-rag/internal/service/document"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/service/settings"
	"chat-rag/internal/testutil"
	"chat-rag/pkg/validation"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// routedStore answers per table so one mock can back every service
type routedStore struct {
	configs    []db.Record
	configsErr error
	documents  []db.Record
	insertErr  error
	inserted   []db.Record
}

func (r *routedStore) mock() *testutil.MockStore {
	return &testutil.MockStore{
		SelectFunc: func(ctx context.Context, table db.Table, opts db.QueryOptions) ([]db.Record, error) {
			switch table {
			case db.TableConfigs:
				return r.configs, r.configsErr
			case db.TableDocuments:
				return r.documents, nil
			}
			return nil, fmt.Errorf("unexpected table %s", table)
		},
		InsertFunc: func(ctx context.Context, table db.Table, record db.Record) (db.Record, error) {
			if table != db.TableConversations {
				return nil, fmt.Errorf("unexpected insert into %s", table)
			}
			if r.insertErr != nil {
				return nil, r.insertErr
			}
			r.inserted = append(r.inserted, record)
			return record, nil
		},
	}
}

func newTestService(store db.Store, provider llm.CompletionProvider) *ChatService {
	return NewChatService(
		settings.NewSettingsService(store),
		document.NewDocumentService(store, &config.UploadConfig{MaxFileBytes: 1024}),
		conversation.NewConversationService(store),
		provider,
	)
}

func answering(text string) *testutil.MockCompletionProvider {
	return &testutil.MockCompletionProvider{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			return text, nil
		},
	}
}

func TestNewChatService(t *testing.T) {
	service := newTestService(&testutil.MockStore{}, answering("x"))

	if service == nil {
		t.Fatal("Expected service to be created, got nil")
	}
	if service.settings == nil || service.documents == nil || service.conversations == nil {
		t.Error("Expected collaborators to be set")
	}
	if service.llmProvider == nil {
		t.Error("Expected llmProvider to be set")
	}
}

func TestReply_AssemblesContextAndLogsExchange(t *testing.T) {
	routes := &routedStore{
		configs:   []db.Record{testutil.ConfigRecord(1, "sk-or", "gpt-4", "You help.")},
		documents: []db.Record{testutil.DocumentRecord(7, "a.txt", "hello")},
	}
	provider := answering("Hi")
	service := newTestService(routes.mock(), provider)

	result, err := service.Reply(context.Background(), ReplyRequest{
		CorrespondentID: conversation.LocalChatID,
		Message:         "What?",
		Title:           ChatTitle,
	})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if len(provider.Requests) != 1 {
		t.Fatalf("completion called %d times, want 1", len(provider.Requests))
	}
	got := provider.Requests[0]
	wantPrompt := "You help.\n\nContexto dos documentos:\nDocumento: a.txt\nhello"
	if got.SystemPrompt != wantPrompt {
		t.Errorf("system prompt = %q, want %q", got.SystemPrompt, wantPrompt)
	}
	if got.APIKey != "sk-or" || got.Model != "gpt-4" || got.UserMessage != "What?" || got.Title != ChatTitle {
		t.Errorf("completion request = %+v", got)
	}

	if result.Response != "Hi" || result.Model != "gpt-4" || !result.Logged {
		t.Errorf("Reply() = %+v", result)
	}
	if !reflect.DeepEqual(result.DocumentIDs, []string{"7"}) {
		t.Errorf("DocumentIDs = %v, want [7]", result.DocumentIDs)
	}

	if len(routes.inserted) != 1 {
		t.Fatalf("conversation inserts = %d, want 1", len(routes.inserted))
	}
	want := db.Record{
		"whatsapp_id":    "local_chat",
		"user_message":   "What?",
		"ai_response":    "Hi",
		"model_used":     "gpt-4",
		"documents_used": []string{"7"},
	}
	if !reflect.DeepEqual(routes.inserted[0], want) {
		t.Errorf("logged = %v, want %v", routes.inserted[0], want)
	}
}

func TestReply_NoDocumentsAndDefaultModel(t *testing.T) {
	routes := &routedStore{
		configs: []db.Record{testutil.ConfigRecord(1, "sk-or", "", "")},
	}
	provider := answering("ok")
	service := newTestService(routes.mock(), provider)

	result, err := service.Reply(context.Background(), ReplyRequest{CorrespondentID: "5511@s.whatsapp.net", Message: "oi"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	wantPrompt := "Você é um assistente útil.\n\nContexto dos documentos:\nNenhum documento disponível"
	if provider.Requests[0].SystemPrompt != wantPrompt {
		t.Errorf("system prompt = %q", provider.Requests[0].SystemPrompt)
	}
	if result.Model != "gpt-3.5-turbo" || provider.Requests[0].Model != "gpt-3.5-turbo" {
		t.Errorf("model = %s, want gpt-3.5-turbo", result.Model)
	}
	if len(result.DocumentIDs) != 0 || result.DocumentIDs == nil {
		t.Errorf("DocumentIDs = %#v, want empty", result.DocumentIDs)
	}
}

func TestReply_LogFailureStillAnswers(t *testing.T) {
	routes := &routedStore{
		configs:   []db.Record{testutil.ConfigRecord(1, "sk-or", "gpt-4", "p")},
		insertErr: &db.StoreError{Op: "inserting into", Table: db.TableConversations, Err: errors.New("boom")},
	}
	service := newTestService(routes.mock(), answering("still here"))

	result, err := service.Reply(context.Background(), ReplyRequest{Message: "oi"})
	if err != nil {
		t.Fatalf("Reply() error = %v, want nil despite log failure", err)
	}
	if result.Response != "still here" {
		t.Errorf("Response = %q", result.Response)
	}
	if result.Logged {
		t.Error("Logged = true, want false")
	}
}

func TestReply_FailuresStopTheFlow(t *testing.T) {
	upstream := &llm.UpstreamError{StatusCode: 401, Message: "Invalid key"}

	tests := []struct {
		name          string
		message       string
		routes        *routedStore
		completionErr error
		wantCalls     int
		check         func(t *testing.T, err error)
	}{
		{
			name:      "blank message",
			message:   "   ",
			routes:    &routedStore{},
			wantCalls: 0,
			check: func(t *testing.T, err error) {
				var validationErr *validation.Error
				if !errors.As(err, &validationErr) {
					t.Errorf("error = %v, want validation error", err)
				}
			},
		},
		{
			name:      "no configuration",
			message:   "oi",
			routes:    &routedStore{},
			wantCalls: 0,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, settings.ErrNotConfigured) {
					t.Errorf("error = %v, want ErrNotConfigured", err)
				}
			},
		},
		{
			name:      "missing api key",
			message:   "oi",
			routes:    &routedStore{configs: []db.Record{testutil.ConfigRecord(1, "", "gpt-4", "")}},
			wantCalls: 0,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, settings.ErrMissingAPIKey) {
					t.Errorf("error = %v, want ErrMissingAPIKey", err)
				}
			},
		},
		{
			name:          "upstream failure",
			message:       "oi",
			routes:        &routedStore{configs: []db.Record{testutil.ConfigRecord(1, "sk", "gpt-4", "")}},
			completionErr: upstream,
			wantCalls:     1,
			check: func(t *testing.T, err error) {
				var target *llm.UpstreamError
				if !errors.As(err, &target) || target.Message != "Invalid key" {
					t.Errorf("error = %v, want wrapped UpstreamError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &testutil.MockCompletionProvider{
				CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
					return "", tt.completionErr
				},
			}
			service := newTestService(tt.routes.mock(), provider)

			result, err := service.Reply(context.Background(), ReplyRequest{Message: tt.message})
			if err == nil {
				t.Fatalf("Reply() = %+v, want error", result)
			}
			tt.check(t, err)
			if len(provider.Requests) != tt.wantCalls {
				t.Errorf("completion calls = %d, want %d", len(provider.Requests), tt.wantCalls)
			}
			if len(tt.routes.inserted) != 0 {
				t.Errorf("conversation logged %d times, want 0", len(tt.routes.inserted))
			}
		})
	}
}

func TestApologyFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not configured", err: settings.ErrNotConfigured, want: ApologyNotConfigured},
		{name: "missing key", err: settings.ErrMissingAPIKey, want: ApologyMissingAPIKey},
		{name: "upstream", err: fmt.Errorf("completion failed: %w", &llm.UpstreamError{StatusCode: 500}), want: ApologyUpstreamFailed},
		{name: "store fault", err: &db.StoreError{Op: "selecting from", Table: db.TableDocuments, Err: errors.New("x")}, want: ApologyUnexpected},
		{name: "transport fault", err: errors.New("dial tcp: refused"), want: ApologyUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApologyFor(tt.err); got != tt.want {
				t.Errorf("ApologyFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
