package messaging

import (
	"chat-rag/internal/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendText_Success(t *testing.T) {
	var got sendTextRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message/sendText/my-instance" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.Header.Get("apikey"); key != "evo-key" {
			t.Errorf("apikey = %s", key)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewEvolutionClient(&config.MessagingConfig{
		BaseURL:       server.URL + "/",
		Instance:      "my-instance",
		APIKey:        "evo-key",
		ClientTimeout: time.Second,
	})

	if !client.SendText(context.Background(), "5511999999999@s.whatsapp.net", "Olá") {
		t.Fatal("SendText() = false, want true")
	}
	if got.Number != "5511999999999@s.whatsapp.net" || got.Text != "Olá" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendText_FailureIsReportedNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"instance offline"}`))
	}))
	defer server.Close()

	client := NewEvolutionClient(&config.MessagingConfig{BaseURL: server.URL, ClientTimeout: time.Second})

	if client.SendText(context.Background(), "123", "text") {
		t.Error("SendText() = true, want false on 500")
	}
	if calls != 1 {
		t.Errorf("gateway called %d times, want exactly 1", calls)
	}
}

func TestSendText_UnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewEvolutionClient(&config.MessagingConfig{BaseURL: url, ClientTimeout: time.Second})
	if client.SendText(context.Background(), "123", "text") {
		t.Error("SendText() = true, want false for unreachable gateway")
	}
}

func TestSendText_NotConfigured(t *testing.T) {
	client := NewEvolutionClient(&config.MessagingConfig{})
	if client.SendText(context.Background(), "123", "text") {
		t.Error("SendText() = true, want false without base URL")
	}
}

func TestSendURL_DefaultInstance(t *testing.T) {
	client := NewEvolutionClient(&config.MessagingConfig{BaseURL: "https://evo.example.com"})
	if got := client.SendURL(); got != "https://evo.example.com/message/sendText/chat-rag" {
		t.Errorf("SendURL() = %s", got)
	}
}
