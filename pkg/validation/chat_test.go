package validation

import (
	"errors"
	"testing"
)

func TestChatRequestValidator_ValidateMessage(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name    string
		message string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid message",
			message: "Hello, world!",
			wantErr: false,
		},
		{
			name:    "valid message with surrounding spaces",
			message: "  oi  ",
			wantErr: false,
		},
		{
			name:    "valid message with special characters",
			message: "Test!@#$%^&*()",
			wantErr: false,
		},
		{
			name:    "empty message",
			message: "",
			wantErr: true,
			errMsg:  "Mensagem vazia",
		},
		{
			name:    "whitespace-only message",
			message: " \t\n ",
			wantErr: true,
			errMsg:  "Mensagem vazia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if err.Error() != tt.errMsg {
					t.Errorf("ValidateMessage() error message = %v, want %v", err.Error(), tt.errMsg)
				}
				var validationErr *Error
				if !errors.As(err, &validationErr) || validationErr.Field != "message" {
					t.Errorf("ValidateMessage() error = %#v, want *Error for field message", err)
				}
			}
		})
	}
}

func TestConfigRequestValidator(t *testing.T) {
	validator := NewConfigRequestValidator()

	if err := validator.ValidateCreate("sk-or-v1-abc"); err != nil {
		t.Errorf("ValidateCreate() error = %v, want nil", err)
	}
	if err := validator.ValidateCreate(""); err == nil || err.Error() != "API Key é obrigatória" {
		t.Errorf("ValidateCreate(\"\") error = %v", err)
	}

	if err := validator.ValidateUpdate(12); err != nil {
		t.Errorf("ValidateUpdate() error = %v, want nil", err)
	}
	if err := validator.ValidateUpdate(0); err == nil || err.Error() != "ID é obrigatório" {
		t.Errorf("ValidateUpdate(0) error = %v", err)
	}
}

func TestDocumentRequestValidator_ValidateFileSize(t *testing.T) {
	validator := NewDocumentRequestValidator(10 * 1024 * 1024)

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{name: "empty file", size: 0, wantErr: false},
		{name: "exactly at limit", size: 10 * 1024 * 1024, wantErr: false},
		{name: "one byte over", size: 10*1024*1024 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateFileSize(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestDocumentRequestValidator_ParseDocumentID(t *testing.T) {
	validator := NewDocumentRequestValidator(1)

	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "numeric id", raw: "17", want: 17},
		{name: "missing id", raw: "", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ParseDocumentID(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDocumentID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDocumentID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
