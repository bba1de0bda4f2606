package db

import (
	"strconv"
	"time"
)

// Record is one row as returned by the store, keyed by column name
type Record map[string]any

// String returns the column as a string, or "" when absent or NULL
func (r Record) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Int64 returns the column as an int64, or 0 when absent or not numeric
func (r Record) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// Time returns the column as a time.Time, or the zero time
func (r Record) Time(column string) time.Time {
	if v, ok := r[column].(time.Time); ok {
		return v
	}
	return time.Time{}
}

// Config is the operator's provider configuration
type Config struct {
	ID               int64     `json:"id"`
	APIKeyOpenRouter string    `json:"api_key_openrouter"`
	SelectedModel    string    `json:"selected_model"`
	SystemPrompt     string    `json:"system_prompt"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ConfigFromRecord maps a configs row
func ConfigFromRecord(r Record) Config {
	return Config{
		ID:               r.Int64("id"),
		APIKeyOpenRouter: r.String("api_key_openrouter"),
		SelectedModel:    r.String("selected_model"),
		SystemPrompt:     r.String("system_prompt"),
		CreatedAt:        r.Time("created_at"),
		UpdatedAt:        r.Time("updated_at"),
	}
}

// Document is an uploaded reference file
type Document struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentFromRecord maps a documents row
func DocumentFromRecord(r Record) Document {
	return Document{
		ID:        r.Int64("id"),
		Filename:  r.String("filename"),
		Content:   r.String("content"),
		FileType:  r.String("file_type"),
		FileSize:  r.Int64("file_size"),
		CreatedAt: r.Time("created_at"),
	}
}

// Conversation is one logged exchange
type Conversation struct {
	WhatsAppID    string
	UserMessage   string
	AIResponse    string
	ModelUsed     string
	DocumentsUsed []string
}

// Record maps the conversation onto a conversations row for insertion
func (c Conversation) Record() Record {
	documentsUsed := c.DocumentsUsed
	if documentsUsed == nil {
		documentsUsed = []string{}
	}
	return Record{
		"whatsapp_id":    c.WhatsAppID,
		"user_message":   c.UserMessage,
		"ai_response":    c.AIResponse,
		"model_used":     c.ModelUsed,
		"documents_used": documentsUsed,
	}
}
