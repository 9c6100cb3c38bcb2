package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin фильтруется CORS-слоем; сам апгрейд пускаем отовсюду.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подключает клиента к комнате. Поддерживаются комнаты
// "tournament:{id}" (любой аутентифицированный пользователь) и "user:{id}"
// (только сам пользователь). Без параметра room клиент попадает в свою
// пользовательскую комнату.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r)
		return
	}

	room := r.URL.Query().Get("room")
	if room == "" {
		room = fmt.Sprintf("user:%d", userID)
	}
	if err := validateRoom(room, userID); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "room", room, "error", err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	slog.Debug("websocket client registered", "room", room, "user_id", userID)
}

func validateRoom(room string, userID int) error {
	switch {
	case strings.HasPrefix(room, "tournament:"):
		if _, err := strconv.Atoi(strings.TrimPrefix(room, "tournament:")); err != nil {
			return errors.New("invalid tournament room")
		}
		return nil
	case strings.HasPrefix(room, "user:"):
		id, err := strconv.Atoi(strings.TrimPrefix(room, "user:"))
		if err != nil || id != userID {
			return errors.New("cannot join another user's room")
		}
		return nil
	default:
		return errors.New("unknown room format")
	}
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusUnauthorized, "authentication required")
}
