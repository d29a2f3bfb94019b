// Package session implements the per-connection bet lifecycle: the
// state machine translating protocol messages into ledger operations,
// the one-second valuation tick, and the WebSocket/HTTP transport
// around it.
//
// A session is Idle (no asset, no bet) or Active (asset selected, bet
// open, ticking). All transitions for one session run on a single
// goroutine — the Run loop multiplexes inbound messages and the tick
// timer — so no two transitions for the same player ever execute
// concurrently. Ledger calls are short critical sections; the ledger
// lock is never held across a tick or a network send.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/ledger"
	"github.com/moonbet/crash-engine/internal/metrics"
	"github.com/moonbet/crash-engine/internal/model"
	"github.com/moonbet/crash-engine/internal/sim"
	"github.com/moonbet/crash-engine/internal/store"
	"github.com/moonbet/crash-engine/internal/valuation"
)

// Protocol error messages. Fixed strings; clients match on them.
const (
	errInvalidMessage      = "Invalid message"
	errInvalidAmount       = "Invalid amount"
	errConversionFailed    = "Conversion failed"
	errInsufficientBalance = "Insufficient balance"
	errBetAlreadyActive    = "Bet already active"
	errNoActiveBet         = "No active bet"
	errUnsupportedCrypto   = "Unsupported crypto type"
)

const (
	tickInterval = time.Second
	pingInterval = 30 * time.Second
)

// MessageWriter delivers outbound protocol messages to the client.
// *websocket.Conn satisfies it; tests supply a recorder.
type MessageWriter interface {
	WriteJSON(v any) error
}

// Pinger is implemented by transports that support keepalive pings.
type Pinger interface {
	Ping() error
}

// Session is one connected player's view of the game. Not safe for
// concurrent use; all calls must come from the owning goroutine.
type Session struct {
	playerID string
	ledger   *ledger.Ledger
	store    store.Store
	sim      *sim.Simulator
	writer   MessageWriter
	now      func() time.Time

	// Active-state fields; zero values mean Idle. The open bet
	// mirrored here must always match the ledger's record.
	asset     string
	price     float64
	startTime time.Time
	betQty    float64
	floorUSD  float64
	betID     string
}

// New registers a fresh player on the ledger and returns an Idle
// session bound to the given writer.
func New(l *ledger.Ledger, st store.Store, simulator *sim.Simulator, w MessageWriter) *Session {
	return &Session{
		playerID: l.Register(),
		ledger:   l,
		store:    st,
		sim:      simulator,
		writer:   w,
		now:      time.Now,
	}
}

// PlayerID returns the session's player id.
func (s *Session) PlayerID() string {
	return s.playerID
}

// Run drives the session until ctx is cancelled or inbound closes
// (client disconnect). Inbound messages and ticks are serialized here.
func (s *Session) Run(ctx context.Context, inbound <-chan []byte) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-inbound:
			if !ok {
				return
			}
			s.HandleMessage(ctx, data)

		case <-ticker.C:
			s.Tick()

		case <-ping.C:
			if p, ok := s.writer.(Pinger); ok {
				if err := p.Ping(); err != nil {
					return
				}
			}
		}
	}
}

// HandleMessage decodes one inbound message and applies its transition.
// Every failure is reported as a protocol error; none close the session.
func (s *Session) HandleMessage(ctx context.Context, data []byte) {
	var msg clientMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(errInvalidMessage)
		return
	}

	switch msg.Type {
	case msgStart:
		s.handleStart(ctx, msg)
	case msgStop:
		s.handleStop(ctx)
	case msgSetPrice:
		s.handleSetPrice(msg)
	default:
		s.sendError(errInvalidMessage)
	}
}

// handleStart places a bet: parses the fiat amount, sizes the wager at
// the asset's fixed base price, and debits the ledger. The session
// state updates only after the ledger accepts the bet, so a failure
// leaves the session fully Idle.
func (s *Session) handleStart(ctx context.Context, msg clientMsg) {
	if s.active() {
		s.sendError(errBetAlreadyActive)
		return
	}

	// ParseFloat accepts "NaN" and "Inf"; a wager must be a finite
	// positive amount.
	usd, err := strconv.ParseFloat(msg.Amount, 64)
	if err != nil || math.IsNaN(usd) || math.IsInf(usd, 0) || usd <= 0 {
		s.sendError(errInvalidAmount)
		return
	}

	asset := strings.ToLower(msg.Crypto)
	basePrice := valuation.BasePrice(asset)

	qty, err := valuation.ToAsset(usd, basePrice)
	if err != nil {
		s.sendError(errConversionFailed)
		return
	}

	start := s.now()
	if err := s.ledger.PlaceBet(s.playerID, ledger.Bet{
		Asset:    asset,
		Quantity: qty,
		PlacedAt: start,
	}); err != nil {
		s.sendError(errInsufficientBalance)
		return
	}

	s.asset = asset
	s.price = basePrice
	s.startTime = start
	s.betQty = qty
	s.floorUSD = usd
	s.betID = uuid.New().String()

	s.recordBet(ctx, start)
	metrics.BetsPlaced.WithLabelValues(asset).Inc()
	slog.Info("bet placed",
		"player", s.playerID,
		"asset", asset,
		"usd", usd,
		"qty", qty,
	)
}

// handleStop cashes out the open bet at the locally simulated price,
// applying the no-loss floor to the reported fiat amount.
func (s *Session) handleStop(ctx context.Context) {
	if !s.active() {
		s.sendError(errNoActiveBet)
		return
	}

	if !valuation.Supported(s.asset) {
		s.sendError(errUnsupportedCrypto)
		return
	}

	multiplier := valuation.Multiplier(s.now().Sub(s.startTime).Seconds())
	price := s.price
	cryptoAmount := s.betQty * multiplier

	usdAmount := valuation.MarkToMarket(s.betQty, multiplier, price, s.floorUSD)
	if usdAmount < 0 {
		usdAmount = 0
	}

	newBalance, err := s.ledger.CashOut(s.playerID, multiplier, price)
	if err != nil {
		// Session thought a bet was open but the ledger disagrees.
		// Report and reset so the two views converge on Idle.
		slog.Warn("cash-out desync", "player", s.playerID, "err", err)
		s.clearBet()
		s.sendError(errNoActiveBet)
		return
	}

	s.settleBet(ctx, multiplier, usdAmount)
	metrics.Cashouts.WithLabelValues(s.asset).Inc()
	slog.Info("cashed out",
		"player", s.playerID,
		"asset", s.asset,
		"multiplier", multiplier,
		"usd", usdAmount,
		"balance", newBalance.StringFixed(2),
	)

	s.clearBet()
	s.send(cashoutResult(newBalance.StringFixed(2), cryptoAmount, usdAmount))
}

// handleSetPrice writes the shared price table and, when the named
// asset is the session's own, overrides the locally simulated price.
// The echoed update is display-only: multiplier 1.0, no floor.
func (s *Session) handleSetPrice(msg clientMsg) {
	asset := strings.ToLower(msg.Crypto)
	s.ledger.SetPrice(asset, msg.Price)

	if s.asset == asset {
		s.price = msg.Price
	}

	s.send(priceUpdate(msg.Price, 1.0, s.betQty*msg.Price))
}

// Tick advances the simulated price one step and emits the current
// valuation. A no-op while Idle.
func (s *Session) Tick() {
	if !s.active() {
		return
	}

	s.price = s.sim.NextPrice(s.price)
	multiplier := valuation.Multiplier(s.now().Sub(s.startTime).Seconds())
	usdValue := valuation.MarkToMarket(s.betQty, multiplier, s.price, s.floorUSD)

	metrics.PriceTicks.Inc()
	s.send(priceUpdate(s.price, multiplier, usdValue))
}

func (s *Session) active() bool {
	return s.asset != ""
}

func (s *Session) clearBet() {
	s.asset = ""
	s.price = 0
	s.startTime = time.Time{}
	s.betQty = 0
	s.floorUSD = 0
	s.betID = ""
}

// recordBet appends the audit entry for a freshly placed bet.
// Best-effort: failures are logged and never affect the bet.
func (s *Session) recordBet(ctx context.Context, placedAt time.Time) {
	if s.store == nil {
		return
	}
	err := s.store.InsertBet(ctx, &model.BetRecord{
		ID:       s.betID,
		PlayerID: s.playerID,
		Asset:    s.asset,
		Quantity: decimal.NewFromFloat(s.betQty),
		Status:   model.BetStatusOpen,
		PlacedAt: placedAt,
	})
	if err != nil {
		slog.Warn("bet record insert failed", "bet", s.betID, "err", err)
	}
}

func (s *Session) settleBet(ctx context.Context, multiplier, payout float64) {
	if s.store == nil {
		return
	}
	err := s.store.SettleBet(ctx, s.betID,
		decimal.NewFromFloat(multiplier),
		decimal.NewFromFloat(payout),
		s.now(),
	)
	if err != nil {
		slog.Warn("bet record settle failed", "bet", s.betID, "err", err)
	}
}

func (s *Session) sendError(message string) {
	metrics.ProtocolErrors.Inc()
	s.send(protocolError(message))
}

func (s *Session) send(v any) {
	if err := s.writer.WriteJSON(v); err != nil {
		slog.Warn("write failed", "player", s.playerID, "err", err)
	}
}
