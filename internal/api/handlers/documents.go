package handlers

import (
	"chat-rag/internal/app"
	"chat-rag/internal/logger"
	"chat-rag/internal/service/document"
	"chat-rag/pkg/validation"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
)

const (
	uploadField = "file"

	msgNoFile      = "Nenhum arquivo enviado"
	msgUploadError = "Erro ao processar arquivo"

	// multipartOverhead leaves room for boundaries and part headers
	multipartOverhead = 1 << 20
)

type DeleteResponse struct {
	Success bool `json:"success"`
}

type DocumentHandlers struct {
	documents *document.DocumentService
	validator *validation.DocumentRequestValidator
}

func NewDocumentHandlers(config *app.Config) *DocumentHandlers {
	return &DocumentHandlers{
		documents: config.Documents,
		validator: config.Documents.Validator(),
	}
}

// DocumentsHandler serves GET (list), POST (multipart upload) and DELETE (?id=)
func (h *DocumentHandlers) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDocuments(w, r)
	case http.MethodPost:
		h.uploadDocument(w, r)
	case http.MethodDelete:
		h.deleteDocument(w, r)
	default:
		sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

func (h *DocumentHandlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.documents.List(r.Context())
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, documents)
}

func (h *DocumentHandlers) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxFileBytes()+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		logger.Log.WithError(err).Warn("Upload is not a multipart body")
		sendError(w, http.StatusBadRequest, msgNoFile)
		return
	}

	part, err := nextFilePart(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendFailure(w, err)
			return
		}
		logger.Log.WithError(err).Warn("Malformed multipart upload")
		sendError(w, http.StatusBadRequest, msgUploadError)
		return
	}
	if part == nil {
		sendError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer part.Close()

	stored, err := h.documents.Ingest(r.Context(), document.Upload{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Body:        part,
	})
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, stored)
}

// nextFilePart returns the first part named "file" that carries a filename,
// or nil when the body has none
func nextFilePart(reader *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func (h *DocumentHandlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseDocumentID(r.URL.Query().Get("id"))
	if err != nil {
		h.sendFailure(w, err)
		return
	}

	if err := h.documents.Delete(r.Context(), id); err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

func (h *DocumentHandlers) sendFailure(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &validationErr):
		sendError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &tooLarge):
		sendError(w, http.StatusBadRequest, h.validator.TooLarge().Error())
	case errors.Is(err, io.ErrUnexpectedEOF):
		logger.Log.WithError(err).Warn("Truncated upload")
		sendError(w, http.StatusBadRequest, msgUploadError)
	default:
		logger.Log.WithError(err).Error("Documents handler error")
		sendError(w, http.StatusInternalServerError, msgInternalError)
	}
}
