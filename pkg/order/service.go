package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/money"
)

const queueTimeout = 2 * time.Second

// command envelopes the work the service goroutine must perform.
type command struct {
	ctx   context.Context
	order Order
	reply chan commandResult
}

// query requests either one order by id or, with an empty id, all of them.
type query struct {
	ctx   context.Context
	id    string
	reply chan queryResult
}

type commandResult struct {
	order Order
	err   error
}

type queryResult struct {
	orders []Order
	err    error
}

// Service validates and stores orders from a single goroutine.
type Service struct {
	repo     *Repository
	logger   *zap.Logger
	now      func() time.Time
	commands chan command
	queries  chan query
	quit     chan struct{}
	done     chan struct{}
}

// NewService launches the coordinating goroutine immediately.
func NewService(repo *Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		repo:     repo,
		logger:   logger.Named("order"),
		now:      time.Now,
		commands: make(chan command),
		queries:  make(chan query),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go svc.loop()
	return svc
}

func (s *Service) loop() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.commands:
			cmd.reply <- s.place(cmd.ctx, cmd.order)
		case q := <-s.queries:
			if q.id != "" {
				order, err := s.repo.Get(q.ctx, q.id)
				q.reply <- queryResult{orders: []Order{order}, err: err}
				continue
			}
			orders, err := s.repo.List(q.ctx)
			q.reply <- queryResult{orders: orders, err: err}
		case <-s.quit:
			return
		}
	}
}

func (s *Service) place(ctx context.Context, order Order) commandResult {
	if err := validateOrder(order); err != nil {
		return commandResult{err: err}
	}
	order.ID = uuid.NewString()
	order.Status = StatusPending
	order.CreatedAt = s.now().UTC()
	stored, err := s.repo.Save(ctx, order)
	if err != nil {
		return commandResult{err: fmt.Errorf("store order: %w", err)}
	}
	s.logger.Info("order placed",
		zap.String("order_id", stored.ID),
		zap.Int("item_count", stored.ItemCount()),
		zap.String("total", money.FormatUSD(stored.Total)))
	return commandResult{order: stored}
}

// Submit validates an order and waits for the background goroutine to persist it.
// The id, status and creation time are assigned here.
func (s *Service) Submit(ctx context.Context, order Order) (Order, error) {
	if len(order.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	reply := make(chan commandResult, 1)

	select {
	case s.commands <- command{ctx: ctx, order: order, reply: reply}:
	case <-ctx.Done():
		return Order{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Order{}, errors.New("queue is busy processing other orders")
	}

	select {
	case res := <-reply:
		if res.err != nil {
			s.logger.Warn("order rejected", zap.Error(res.err))
			return Order{}, res.err
		}
		s.logger.Info("order placed",
			zap.String("order_id", res.order.ID),
			zap.Int("items", res.order.ItemCount()),
			zap.String("total", res.order.Total.StringFixed(2)))
		return res.order, nil
	case <-ctx.Done():
		return Order{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Order{}, errors.New("order processing took too long")
	}
}

func (s *Service) ask(ctx context.Context, id string) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := make(chan queryResult, 1)

	select {
	case s.queries <- query{ctx: ctx, id: id, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("queue is busy processing other orders")
	}

	select {
	case res := <-reply:
		return res.orders, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("listing orders took too long")
	}
}

// List returns the stored orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.ask(ctx, "")
}

// Get returns one order or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if id == "" {
		return Order{}, ErrNotFound
	}
	orders, err := s.ask(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// Close stops the goroutine to allow graceful shutdown.
func (s *Service) Close() {
	close(s.quit)
	<-s.done
}

// validateOrder keeps the checkout rules next to the service so every entry point shares them.
func validateOrder(order Order) error {
	addr := order.ShippingAddress
	if strings.TrimSpace(addr.Name) == "" {
		return newValidationError("name is required")
	}
	if strings.TrimSpace(addr.Email) == "" {
		return newValidationError("email is required")
	}
	if _, err := mail.ParseAddress(addr.Email); err != nil {
		return newValidationError("email is not valid")
	}
	if strings.TrimSpace(addr.Address) == "" {
		return newValidationError("address is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		return newValidationError("city is required")
	}
	if strings.TrimSpace(addr.PostalCode) == "" {
		return newValidationError("postal code is required")
	}
	if len(order.Lines) == 0 {
		return newValidationError("at least one item is required")
	}
	for _, line := range order.Lines {
		if line.Quantity <= 0 {
			return newValidationError(fmt.Sprintf("quantity for %s must be positive", line.ProductID))
		}
	}
	return nil
}
