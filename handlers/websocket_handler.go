package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-rewards/live"
	"github.com/Dosada05/tournament-rewards/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	responder
	hub               *live.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; an empty list or "*" allows any origin.
func NewWebSocketHandler(hub *live.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		responder:         responder{logger: logger},
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWs подписывает клиента на события турнира: /ws/tournaments/{id}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	board, err := h.tournamentService.Leaderboard(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		h.logger.Warn("websocket upgrade failed", slog.String("tournament_id", id.String()), slog.Any("error", err))
		return
	}

	room := live.RoomForTournament(id.String())
	client := live.NewClient(h.hub, conn, room)
	// Текущее состояние уходит первым сообщением.
	snapshot, err := json.Marshal(live.Message{Type: live.EventLeaderboardUpdated, Payload: board, RoomID: room})
	if err == nil {
		client.Send <- snapshot
	}
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
	h.logger.Info("websocket client subscribed", slog.String("room", room))
}
