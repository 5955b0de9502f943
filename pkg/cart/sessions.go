package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/pkg/catalog"
)

const (
	// queueTimeout bounds how long a caller waits for the sessions goroutine.
	queueTimeout = 2 * time.Second

	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepInterval = time.Minute
)

// ErrClosed is returned once the registry has been shut down.
var ErrClosed = errors.New("cart sessions closed")

type action int

const (
	actionAdd action = iota
	actionUpdate
	actionRemove
	actionClear
	actionDeduct
	actionSnapshot
	actionEnd
	actionActive
)

func (a action) String() string {
	switch a {
	case actionAdd:
		return "add"
	case actionUpdate:
		return "update"
	case actionRemove:
		return "remove"
	case actionClear:
		return "clear"
	case actionDeduct:
		return "deduct"
	case actionSnapshot:
		return "snapshot"
	case actionEnd:
		return "end"
	case actionActive:
		return "active"
	default:
		return "unknown"
	}
}

// command carries one cart operation to the goroutine that owns every session.
type command struct {
	action    action
	sessionID string
	item      catalog.Item
	productID string
	quantity  int
	lines     []Line
	reply     chan commandResult
}

type commandResult struct {
	state  State
	active int
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// SessionsOptions tunes expiry. Zero values fall back to the defaults.
type SessionsOptions struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Sessions keeps one Store per browsing session. A single goroutine applies
// every operation in the order it was dispatched; idle sessions are dropped
// after the TTL. Nothing is persisted.
type Sessions struct {
	logger   *zap.Logger
	ttl      time.Duration
	sweep    time.Duration
	now      func() time.Time
	commands chan command
	quit     chan struct{}
	done     chan struct{}
	sessions map[string]*session
}

// NewSessions starts the registry goroutine.
func NewSessions(opts SessionsOptions, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Sessions{
		logger:   logger.Named("cart"),
		ttl:      opts.TTL,
		sweep:    opts.SweepInterval,
		now:      opts.Now,
		commands: make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		sessions: make(map[string]*session),
	}
	go s.loop()
	return s
}

func (s *Sessions) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-s.commands:
			if cmd.action == actionActive {
				cmd.reply <- commandResult{active: len(s.sessions)}
				continue
			}
			cmd.reply <- commandResult{state: s.apply(cmd)}
		case <-ticker.C:
			s.expire()
		case <-s.quit:
			return
		}
	}
}

func (s *Sessions) apply(cmd command) State {
	sess, ok := s.sessions[cmd.sessionID]
	if ok {
		sess.lastSeen = s.now()
	}

	switch cmd.action {
	case actionSnapshot:
		if !ok {
			return *newState(nil)
		}
		return sess.store.Snapshot()
	case actionEnd:
		delete(s.sessions, cmd.sessionID)
		if ok {
			s.logger.Debug("session ended", zap.String("session_id", cmd.sessionID))
		}
		return *newState(nil)
	}

	if !ok {
		// only adding an item opens a cart
		if cmd.action != actionAdd {
			return *newState(nil)
		}
		sess = &session{store: NewStore(), lastSeen: s.now()}
		s.sessions[cmd.sessionID] = sess
	}

	switch cmd.action {
	case actionAdd:
		if !cmd.item.InStock {
			s.logger.Info("ignoring out of stock product",
				zap.String("session_id", cmd.sessionID), zap.String("product_id", cmd.item.ID))
		}
		return sess.store.AddItem(cmd.item)
	case actionUpdate:
		return sess.store.UpdateQuantity(cmd.productID, cmd.quantity)
	case actionRemove:
		return sess.store.RemoveItem(cmd.productID)
	case actionClear:
		return sess.store.Clear()
	case actionDeduct:
		return sess.store.Deduct(cmd.lines)
	default:
		return sess.store.Snapshot()
	}
}

// expire drops sessions idle for longer than the TTL.
func (s *Sessions) expire() {
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			s.logger.Debug("session expired", zap.String("session_id", id))
		}
	}
}

// send hands a command to the goroutine and waits for the resulting state.
func (s *Sessions) send(ctx context.Context, cmd command) (commandResult, error) {
	if err := ctx.Err(); err != nil {
		return commandResult{}, err
	}
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-s.quit:
		return commandResult{}, ErrClosed
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(queueTimeout):
		return commandResult{}, errors.New("cart queue is busy")
	}

	select {
	case res := <-cmd.reply:
		switch cmd.action {
		case actionSnapshot, actionActive, actionEnd:
		default:
			s.logger.Debug("cart updated",
				zap.String("session_id", cmd.sessionID),
				zap.Stringer("action", cmd.action),
				zap.Int("item_count", res.state.ItemCount),
				zap.String("total", res.state.Total.String()))
		}
		return res, nil
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(queueTimeout):
		return commandResult{}, errors.New("cart request timed out")
	}
}

func (s *Sessions) state(ctx context.Context, cmd command) (State, error) {
	res, err := s.send(ctx, cmd)
	return res.state, err
}

// Add puts one unit of item into the session's cart.
func (s *Sessions) Add(ctx context.Context, sessionID string, item catalog.Item) (State, error) {
	return s.state(ctx, command{action: actionAdd, sessionID: sessionID, item: item})
}

// UpdateQuantity sets a line's quantity; quantities below 1 remove the line.
func (s *Sessions) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (State, error) {
	return s.state(ctx, command{action: actionUpdate, sessionID: sessionID, productID: productID, quantity: quantity})
}

// Remove drops a product from the session's cart.
func (s *Sessions) Remove(ctx context.Context, sessionID, productID string) (State, error) {
	return s.state(ctx, command{action: actionRemove, sessionID: sessionID, productID: productID})
}

// Clear empties the session's cart.
func (s *Sessions) Clear(ctx context.Context, sessionID string) (State, error) {
	return s.state(ctx, command{action: actionClear, sessionID: sessionID})
}

// Deduct removes the units of lines from the session's cart, typically the
// lines of a placed order. Anything added since those lines were read is kept.
func (s *Sessions) Deduct(ctx context.Context, sessionID string, lines []Line) (State, error) {
	return s.state(ctx, command{action: actionDeduct, sessionID: sessionID, lines: lines})
}

// Snapshot returns the session's cart. Unknown sessions read as empty and are not created.
func (s *Sessions) Snapshot(ctx context.Context, sessionID string) (State, error) {
	return s.state(ctx, command{action: actionSnapshot, sessionID: sessionID})
}

// End discards the session's cart.
func (s *Sessions) End(ctx context.Context, sessionID string) error {
	_, err := s.send(ctx, command{action: actionEnd, sessionID: sessionID})
	return err
}

// Active reports how many carts are currently held.
func (s *Sessions) Active(ctx context.Context) (int, error) {
	res, err := s.send(ctx, command{action: actionActive})
	return res.active, err
}

// Close stops the goroutine and discards every cart.
func (s *Sessions) Close() {
	close(s.quit)
	<-s.done
}
