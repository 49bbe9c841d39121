package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/types"
)

const defaultHistoryLimit = 10

// ChatbotHandler provides the retrieval chatbot endpoints.
type ChatbotHandler struct {
	chatService *services.ChatService
}

func NewChatbotHandler(chatService *services.ChatService) *ChatbotHandler {
	return &ChatbotHandler{chatService: chatService}
}

// ChatbotRouter registers chatbot routes. All routes require auth.
func ChatbotRouter(r chi.Router, chatService *services.ChatService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewChatbotHandler(chatService)

	r.Use(authMiddleware)
	r.Post("/chat", handler.Chat)
	r.Get("/chat-history", handler.ChatHistory)
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatHistoryResponse struct {
	History []types.ChatLog `json:"history"`
}

func (h *ChatbotHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	response, err := h.chatService.Chat(r.Context(), user, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "an error occurred during chat")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: response})
}

func (h *ChatbotHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := defaultHistoryLimit
	if _, parsed, err := parseSkipLimit(r); err == nil && r.URL.Query().Get("limit") != "" {
		limit = parsed
	}

	history, err := h.chatService.History(r.Context(), user, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	writeJSON(w, http.StatusOK, ChatHistoryResponse{History: history})
}
