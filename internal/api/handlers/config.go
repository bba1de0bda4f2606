package handlers

import (
	"bytes"
	"chat-rag/internal/app"
	"chat-rag/internal/logger"
	"chat-rag/internal/service/settings"
	"chat-rag/pkg/validation"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

type CreateConfigRequest struct {
	APIKeyOpenRouter string `json:"api_key_openrouter"`
	SelectedModel    string `json:"selected_model"`
	SystemPrompt     string `json:"system_prompt"`
}

type UpdateConfigRequest struct {
	ID               configID `json:"id"`
	APIKeyOpenRouter *string  `json:"api_key_openrouter"`
	SelectedModel    *string  `json:"selected_model"`
	SystemPrompt     *string  `json:"system_prompt"`
}

// configID accepts the id as a JSON number or a numeric string
type configID int64

func (id *configID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = configID(n)
	return nil
}

type ConfigHandlers struct {
	settings *settings.SettingsService
}

func NewConfigHandlers(config *app.Config) *ConfigHandlers {
	return &ConfigHandlers{settings: config.Settings}
}

// ConfigHandler serves GET (latest row as a list), POST (create) and PUT (patch)
func (h *ConfigHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getConfig(w, r)
	case http.MethodPost:
		h.createConfig(w, r)
	case http.MethodPut:
		h.updateConfig(w, r)
	default:
		sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

func (h *ConfigHandlers) getConfig(w http.ResponseWriter, r *http.Request) {
	configs, err := h.settings.Latest(r.Context())
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, configs)
}

func (h *ConfigHandlers) createConfig(w http.ResponseWriter, r *http.Request) {
	var req CreateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	created, err := h.settings.Create(r.Context(), settings.CreateInput{
		APIKeyOpenRouter: req.APIKeyOpenRouter,
		SelectedModel:    req.SelectedModel,
		SystemPrompt:     req.SystemPrompt,
	})
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (h *ConfigHandlers) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	updated, err := h.settings.Update(r.Context(), settings.UpdateInput{
		ID:               int64(req.ID),
		APIKeyOpenRouter: req.APIKeyOpenRouter,
		SelectedModel:    req.SelectedModel,
		SystemPrompt:     req.SystemPrompt,
	})
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	if updated == nil {
		sendJSON(w, http.StatusOK, struct{}{})
		return
	}
	sendJSON(w, http.StatusOK, updated)
}

func (h *ConfigHandlers) sendFailure(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		sendError(w, http.StatusBadRequest, validationErr.Message)
		return
	}
	logger.Log.WithError(err).Error("Config handler error")
	sendError(w, http.StatusInternalServerError, msgInternalError)
}
