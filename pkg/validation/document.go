package validation

import (
	"fmt"
	"strconv"
)

// DocumentRequestValidator validates document uploads and deletions
type DocumentRequestValidator struct {
	maxFileBytes int64
}

// NewDocumentRequestValidator creates a validator enforcing maxFileBytes per upload
func NewDocumentRequestValidator(maxFileBytes int64) *DocumentRequestValidator {
	return &DocumentRequestValidator{maxFileBytes: maxFileBytes}
}

// MaxFileBytes returns the upload ceiling
func (v *DocumentRequestValidator) MaxFileBytes() int64 {
	return v.maxFileBytes
}

// ValidateFileSize rejects files above the ceiling
func (v *DocumentRequestValidator) ValidateFileSize(size int64) error {
	if size > v.maxFileBytes {
		return v.TooLarge()
	}
	return nil
}

// TooLarge is the error reported for any upload above the ceiling
func (v *DocumentRequestValidator) TooLarge() error {
	return newError("file", fmt.Sprintf("Arquivo excede o limite de %d bytes", v.maxFileBytes))
}

// ParseDocumentID parses the id query parameter of a delete request
func (v *DocumentRequestValidator) ParseDocumentID(raw string) (int64, error) {
	if raw == "" {
		return 0, newError("id", "ID é obrigatório")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newError("id", fmt.Sprintf("ID inválido: %s", raw))
	}
	return id, nil
}
