package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Rrens/chat-with-data/internal/api/response"
	"github.com/Rrens/chat-with-data/internal/domain"
)

// ChatAnswerer dispatches chat prompts to the completion client
type ChatAnswerer interface {
	Greeting(ctx context.Context, input string) domain.ChatResult
	AnswerSQLQuestion(ctx context.Context, input, invoiceID string) domain.ChatResult
}

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chat ChatAnswerer
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatAnswerer) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatWithData handles POST /chat_with_data. Every assistant outcome,
// including validation and upstream failures, is a 200.
func (h *ChatHandler) ChatWithData(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result := h.chat.AnswerSQLQuestion(r.Context(), req.Query, req.InvoiceID)
	response.OK(w, domain.ChatResponse{Response: result.Message()})
}

// Greeting handles POST /greeting
func (h *ChatHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	var req domain.GreetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result := h.chat.Greeting(r.Context(), req.Query)
	response.OK(w, domain.ChatResponse{Response: result.Message()})
}
