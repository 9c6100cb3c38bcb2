package handlers

import (
	"net/http"

	"github.com/sportlink/sportlink-backend/middleware"
	"github.com/sportlink/sportlink-backend/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageInput struct {
	RecipientID int    `json:"recipient_id"`
	Body        string `json:"body"`
}

// SendMessage создаёт (при необходимости) переписку с получателем и
// отправляет сообщение; получателю оно уходит и по WebSocket.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input sendMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), actorID, input.RecipientID, input.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": msg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conversations, err := h.chatService.ListConversations(r.Context(), actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"conversations": conversations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMessages — страница сообщений переписки, новые первыми.
// before_id задаёт курсор, limit — размер страницы.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), actorID, conversationID,
		queryInt(r, "before_id", 0), queryInt(r, "limit", 50))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"messages": messages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
