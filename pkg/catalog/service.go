package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// queueTimeout bounds how long a caller waits for the service goroutine.
const queueTimeout = 2 * time.Second

type action int

const (
	actionSave action = iota
	actionUpdate
	actionDelete
	actionGet
	actionList
	actionSeed
)

// command defines one request so the goroutine can serialize reads and writes through a channel.
type command struct {
	ctx    context.Context
	action action
	item   Item
	items  []Item
	id     string
	reply  chan commandResult
}

type commandResult struct {
	item  Item
	items []Item
	count int
	err   error
}

// Service owns the catalog repository from a single goroutine.
type Service struct {
	repo     *Repository
	logger   *zap.Logger
	commands chan command
	quit     chan struct{}
	done     chan struct{}
}

// NewService starts the background goroutine immediately.
func NewService(repo *Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		repo:     repo,
		logger:   logger.Named("catalog"),
		commands: make(chan command),
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
			cmd.reply <- s.handle(cmd)
		case <-s.quit:
			return
		}
	}
}

func (s *Service) handle(cmd command) commandResult {
	ctx := cmd.ctx
	switch cmd.action {
	case actionSave:
		stored, err := s.repo.Save(ctx, cmd.item)
		return commandResult{item: stored, err: err}
	case actionUpdate:
		return commandResult{item: cmd.item, err: s.repo.Update(ctx, cmd.item)}
	case actionDelete:
		return commandResult{err: s.repo.Delete(ctx, cmd.id)}
	case actionGet:
		item, err := s.repo.Get(ctx, cmd.id)
		return commandResult{item: item, err: err}
	case actionList:
		items, err := s.repo.List(ctx)
		return commandResult{items: items, err: err}
	case actionSeed:
		n, err := s.repo.Count(ctx)
		if err != nil || n > 0 {
			return commandResult{count: 0, err: err}
		}
		for _, item := range cmd.items {
			if _, err := s.repo.Save(ctx, item); err != nil {
				return commandResult{err: err}
			}
		}
		return commandResult{count: len(cmd.items)}
	default:
		return commandResult{err: errors.New("unknown catalog action")}
	}
}

// do hands a command to the goroutine and waits for its reply.
func (s *Service) do(ctx context.Context, cmd command) commandResult {
	if err := ctx.Err(); err != nil {
		return commandResult{err: err}
	}
	cmd.ctx = ctx
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	case <-time.After(queueTimeout):
		return commandResult{err: errors.New("catalog queue is busy")}
	}

	select {
	case res := <-cmd.reply:
		return res
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	case <-time.After(queueTimeout):
		return commandResult{err: errors.New("catalog request timed out")}
	}
}

// Add validates and stores a product, replacing any product with the same id.
func (s *Service) Add(ctx context.Context, item Item) (Item, error) {
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	res := s.do(ctx, command{action: actionSave, item: item})
	if res.err != nil {
		s.logger.Warn("product save failed", zap.String("product_id", item.ID), zap.Error(res.err))
		return Item{}, res.err
	}
	s.logger.Info("product saved", zap.String("product_id", item.ID), zap.Bool("in_stock", item.InStock))
	return res.item, nil
}

// Update edits an existing product. Carts keep the copy they already hold.
func (s *Service) Update(ctx context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	res := s.do(ctx, command{action: actionUpdate, item: item})
	if res.err != nil {
		return res.err
	}
	s.logger.Info("product updated", zap.String("product_id", item.ID), zap.Bool("in_stock", item.InStock))
	return nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.do(ctx, command{action: actionDelete, id: id})
	if res.err == nil {
		s.logger.Info("product deleted", zap.String("product_id", id))
	}
	return res.err
}

// Get returns a single product or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	res := s.do(ctx, command{action: actionGet, id: id})
	return res.item, res.err
}

// List returns every product in catalog order.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	res := s.do(ctx, command{action: actionList})
	return res.items, res.err
}

// Search lists the catalog and applies the shop page query.
func (s *Service) Search(ctx context.Context, q Query) ([]Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(items, q), nil
}

// Seed stores items only when the catalog is empty and reports how many were written.
func (s *Service) Seed(ctx context.Context, items []Item) (int, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, err
		}
	}
	res := s.do(ctx, command{action: actionSeed, items: items})
	if res.err != nil {
		return 0, res.err
	}
	if res.count > 0 {
		s.logger.Info("catalog seeded", zap.Int("products", res.count))
	}
	return res.count, nil
}

// Close stops the background goroutine and waits for it to exit.
func (s *Service) Close() {
	close(s.quit)
	<-s.done
}
