package session

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/moonbet/crash-engine/internal/ledger"
	"github.com/moonbet/crash-engine/internal/metrics"
	"github.com/moonbet/crash-engine/internal/model"
	"github.com/moonbet/crash-engine/internal/sim"
	"github.com/moonbet/crash-engine/internal/store"
)

const (
	readDeadline = 60 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins during development.
	},
}

// Server owns the shared collaborators and spawns one Session per
// WebSocket connection. It also serves the REST query surface.
type Server struct {
	ledger *ledger.Ledger
	store  store.Store
	newRNG func() *rand.Rand
}

// NewServer creates a Server. Each session gets its own rand source so
// simulators never share state across goroutines.
func NewServer(l *ledger.Ledger, st store.Store) *Server {
	return &Server{
		ledger: l,
		store:  st,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// HandleWS upgrades GET /ws and runs the session loop until the client
// disconnects. The handler goroutine owns all session transitions; a
// second goroutine pumps inbound frames into a channel.
func (srv *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sess := New(srv.ledger, srv.store, sim.New(srv.newRNG()), &wsWriter{conn: conn})

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	slog.Info("session connected", "player", sess.PlayerID())
	defer slog.Info("session disconnected", "player", sess.PlayerID())

	inbound := make(chan []byte, 16)

	// Read pump: detects disconnects and feeds the session loop.
	go func() {
		defer close(inbound)
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(readDeadline))
			return nil
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case inbound <- data:
			case <-r.Context().Done():
				return
			}
		}
	}()

	sess.Run(r.Context(), inbound)
}

// wsWriter adapts *websocket.Conn to MessageWriter/Pinger. All writes
// happen on the session goroutine, so no write lock is needed.
type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) WriteJSON(v any) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(v)
}

func (w *wsWriter) Ping() error {
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// --- REST handlers ---

// GetBalance handles GET /api/v1/players/{playerID}/balance
func (srv *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	balance, err := srv.ledger.Balance(playerID)
	if err != nil {
		writeError(w, "player not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"player_id": playerID,
		"balance":   balance.StringFixed(2),
	})
}

// GetPlayerBets handles GET /api/v1/players/{playerID}/bets
func (srv *Server) GetPlayerBets(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	records, err := srv.store.GetPlayerBets(r.Context(), playerID)
	if err != nil {
		writeError(w, "failed to load bet history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.BetRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetPrices handles GET /api/v1/prices — a snapshot of the shared
// price table written by set_price commands.
func (srv *Server) GetPrices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(srv.ledger.Prices())
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
