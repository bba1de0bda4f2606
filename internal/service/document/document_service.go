package document

import (
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	"chat-rag/internal/repository/db"
	"chat-rag/pkg/validation"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RecentLimit is how many documents are injected into every prompt
	RecentLimit = 5

	unknownType = "unknown"
	octetStream = "application/octet-stream"
)

// Upload is one file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// DocumentService stores and lists the reference documents used as context
type DocumentService struct {
	store     db.Store
	validator *validation.DocumentRequestValidator
	tempDir   string
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(store db.Store, uploadConfig *config.UploadConfig) *DocumentService {
	return &DocumentService{
		store:     store,
		validator: validation.NewDocumentRequestValidator(uploadConfig.MaxFileBytes),
		tempDir:   uploadConfig.TempDir,
	}
}

// Validator exposes the upload limits so handlers can bound request bodies
func (s *DocumentService) Validator() *validation.DocumentRequestValidator {
	return s.validator
}

// Recent returns up to RecentLimit documents in store order
func (s *DocumentService) Recent(ctx context.Context) ([]db.Document, error) {
	return s.selectDocuments(ctx, db.QueryOptions{Limit: RecentLimit})
}

// List returns every document, newest first
func (s *DocumentService) List(ctx context.Context) ([]db.Document, error) {
	return s.selectDocuments(ctx, db.QueryOptions{
		Order: &db.Order{Column: "created_at", Ascending: false},
	})
}

func (s *DocumentService) selectDocuments(ctx context.Context, opts db.QueryOptions) ([]db.Document, error) {
	records, err := s.store.Select(ctx, db.TableDocuments, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	documents := make([]db.Document, 0, len(records))
	for _, record := range records {
		documents = append(documents, db.DocumentFromRecord(record))
	}
	return documents, nil
}

// Delete removes the document with the given id
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, db.TableDocuments, []db.Filter{db.Eq("id", id)}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	logger.Log.WithField("document_id", id).Info("Deleted document")
	return nil
}

// Ingest spools an upload to a temporary file, extracts its text and stores
// it. The size ceiling applies to the bytes actually received, since
// multipart parts carry no trustworthy length. The temporary file is removed
// on every path.
func (s *DocumentService) Ingest(ctx context.Context, upload Upload) (*db.Document, error) {
	tmp, err := os.CreateTemp(s.tempDir, "upload-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Log.WithError(err).WithField("path", tmpPath).Warn("Failed to remove temp upload")
		}
	}()

	// One byte past the ceiling is enough to detect an oversize body
	written, err := io.Copy(tmp, io.LimitReader(upload.Body, s.validator.MaxFileBytes()+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", closeErr)
	}
	if err := s.validator.ValidateFileSize(written); err != nil {
		return nil, err
	}

	filename := upload.Filename
	if filename == "" {
		filename = unknownType
	}
	fileType := detectSubtype(upload.ContentType, tmpPath)

	content, err := extractContent(filename, fileType, tmpPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat temp upload: %w", err)
	}

	record, err := s.store.Insert(ctx, db.TableDocuments, db.Record{
		"filename":  filename,
		"content":   content,
		"file_type": fileType,
		"file_size": info.Size(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	metrics.DocumentsIngested.WithLabelValues(fileType).Inc()
	document := db.DocumentFromRecord(record)
	logger.Log.WithFields(logrus.Fields{
		"document_id": document.ID,
		"filename":    filename,
		"file_type":   fileType,
		"file_size":   info.Size(),
	}).Info("Stored document")
	return &document, nil
}

// detectSubtype returns the subtype of the declared media type, sniffing the
// file when the client declared nothing useful
func detectSubtype(declared, path string) string {
	mediaType := ""
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			mediaType = parsed
		}
	}

	if mediaType == "" || mediaType == octetStream {
		if sniffed, err := mimetype.DetectFile(path); err == nil {
			if parsed, _, err := mime.ParseMediaType(sniffed.String()); err == nil && parsed != octetStream {
				mediaType = parsed
			}
		}
	}

	_, subtype, found := strings.Cut(mediaType, "/")
	if !found || subtype == "" {
		return unknownType
	}
	return subtype
}

func extractContent(filename, fileType, path string) (string, error) {
	if fileType == "pdf" {
		return PDFPlaceholder(filename), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read temp upload: %w", err)
	}
	return SanitizeText(raw), nil
}

// PDFPlaceholder is stored instead of PDF text
func PDFPlaceholder(filename string) string {
	return "[PDF] Arquivo: " + filename
}

// SanitizeText decodes raw as UTF-8, replacing invalid sequences with U+FFFD.
// NUL bytes are dropped since Postgres TEXT cannot hold them.
func SanitizeText(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), "\uFFFD")
	return strings.ReplaceAll(text, "\x00", "")
}
