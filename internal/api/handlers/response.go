package handlers

import (
	"chat-rag/internal/logger"
	"encoding/json"
	"net/http"
)

// Fixed client-facing messages
const (
	msgMethodNotAllowed = "Método não permitido"
	msgInternalError    = "Erro interno do servidor"
	msgInvalidBody      = "Corpo da requisição inválido"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Error encoding response")
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, ErrorResponse{Error: message})
}
