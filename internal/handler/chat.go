package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/auth"
	"github.com/doppler-bar/barpos/internal/chat"
)

const kdsChannel = "kds"

// ChatHandler exposes the two websocket relays: a per-station channel for
// floor staff and a shared kitchen channel gated by a login token.
type ChatHandler struct {
	registry *chat.Registry
	auth     auth.Service
	upgrader websocket.Upgrader
}

func NewChatHandler(registry *chat.Registry, authService auth.Service) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		auth:     authService,
		// The POS frontends are served from other origins on the LAN.
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *ChatHandler) RegisterRoutes(router chi.Router) {
	router.Get("/ws/chat/{station}", h.handleStationChat)
	router.Get("/ws/kds_chat", h.handleKDSChat)
}

func (h *ChatHandler) handleStationChat(w http.ResponseWriter, r *http.Request) {
	station := chi.URLParam(r, "station")
	name := r.URL.Query().Get("name")
	if name == "" {
		name = station
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade chat connection")
		return
	}

	conn := h.registry.Add(station, ws, name)
	defer func() {
		h.registry.Remove(station, conn)
		ws.Close()
	}()

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		h.registry.Broadcast(station, conn, messageType, data)
	}
}

// handleKDSChat authenticates the websocket with the same token the HTTP
// API uses, passed as a query parameter because browsers cannot set
// headers on websocket handshakes.
func (h *ChatHandler) handleKDSChat(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	u, err := h.auth.UserFromToken(r.Context(), token)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade KDS chat connection")
		return
	}

	conn := h.registry.Add(kdsChannel, ws, u.FullName)
	defer func() {
		h.registry.Remove(kdsChannel, conn)
		notice := fmt.Sprintf("%s has left the kitchen chat.", u.FullName)
		h.registry.Broadcast(kdsChannel, conn, websocket.TextMessage, []byte(notice))
		ws.Close()
	}()

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		tagged := []byte(fmt.Sprintf("%s: %s", u.FullName, data))
		h.registry.Broadcast(kdsChannel, conn, messageType, tagged)
	}
}
