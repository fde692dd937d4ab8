package service

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// LedgerService implements CrowdfundingService on top of a LedgerStore and an AssetMover
type LedgerService struct {
	store     LedgerStore
	mover     AssetMover
	publisher EventPublisher
	logger    log.Logger
	now       func() time.Time
}

// Option configures a LedgerService
type Option func(*LedgerService)

// WithPublisher sets the publisher that receives committed events
func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) {
		s.publisher = p
	}
}

// WithLogger sets the logger used for failures that do not fail an operation
func WithLogger(logger log.Logger) Option {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store LedgerStore, mover AssetMover, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:  store,
		mover:  mover,
		logger: log.NewNopLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inFlightKey marks a context derived inside a running ledger operation.
// Asset movers receive such a context; calling back into the service with it is rejected.
type inFlightKey struct{}

// unitOfWork returns the events to append once the state changes succeed
type unitOfWork func(ctx context.Context, tx LedgerTx) ([]models.Event, error)

// atomic runs work as a single serialized operation, appends its events in the
// same unit and publishes them after commit
func (s *LedgerService) atomic(ctx context.Context, work unitOfWork) error {
	if ctx.Value(inFlightKey{}) != nil {
		return models.ErrReentrantCall
	}
	ctx = context.WithValue(ctx, inFlightKey{}, struct{}{})

	var committed []models.Event
	err := s.store.Atomic(ctx, func(tx LedgerTx) error {
		pending, err := work(ctx, tx)
		if err != nil {
			return err
		}
		committed = committed[:0]
		for _, e := range pending {
			e.RecordedAt = s.now()
			stored, err := tx.AppendEvent(ctx, e)
			if err != nil {
				return err
			}
			committed = append(committed, stored)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, committed)
	return nil
}

// publish hands committed events to the publisher. The events are already
// persisted, so a publish failure is logged and never fails the operation.
func (s *LedgerService) publish(ctx context.Context, events []models.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		level.Warn(s.logger).Log("msg", "failed to publish ledger events", "count", len(events), "err", err)
	}
}

// requireCaller rejects operations without an identified principal
func requireCaller(caller models.Address) error {
	if caller.IsZero() {
		return models.ErrMissingCaller
	}
	return nil
}

// ListEvents returns events from the append-only log
func (s *LedgerService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	return s.store.ListEvents(ctx, filter)
}
