package repository

import (
	"context"
	"errors"

	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// InstrumentedRepository wraps a ledger store with metrics collection
type InstrumentedRepository struct {
	next    service.LedgerStore
	metrics *metrics.Metrics
}

// NewInstrumentedRepository creates a new instrumented repository
func NewInstrumentedRepository(repo service.LedgerStore, metrics *metrics.Metrics) service.LedgerStore {
	return &InstrumentedRepository{
		next:    repo,
		metrics: metrics,
	}
}

// observe counts a query against table and, for failures other than domain
// conditions, an error
func observe(m *metrics.Metrics, operation, table string, err error) {
	m.RecordDatabaseQuery(operation, table)
	if err == nil {
		return
	}
	var ledgerErr *models.Error
	switch {
	case errors.As(err, &ledgerErr):
		// domain outcome, not a storage failure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.RecordDatabaseError(operation, "canceled")
	default:
		m.RecordDatabaseError(operation, "query_error")
	}
}

func (r *InstrumentedRepository) GetCampaign(ctx context.Context, id uint64) (c models.Campaign, err error) {
	defer func() { observe(r.metrics, "select", "campaigns", err) }()
	return r.next.GetCampaign(ctx, id)
}

func (r *InstrumentedRepository) ListCampaigns(ctx context.Context) (cs []models.Campaign, err error) {
	defer func() { observe(r.metrics, "select", "campaigns", err) }()
	return r.next.ListCampaigns(ctx)
}

func (r *InstrumentedRepository) GetContribution(ctx context.Context, id uint64, contributor models.Address) (c models.Contribution, err error) {
	defer func() { observe(r.metrics, "select", "contributions", err) }()
	return r.next.GetContribution(ctx, id, contributor)
}

func (r *InstrumentedRepository) IsAuthorisedToken(ctx context.Context, asset models.Address) (ok bool, err error) {
	defer func() { observe(r.metrics, "select", "authorised_tokens", err) }()
	return r.next.IsAuthorisedToken(ctx, asset)
}

func (r *InstrumentedRepository) Owner(ctx context.Context) (owner models.Address, err error) {
	defer func() { observe(r.metrics, "select", "ledger_owner", err) }()
	return r.next.Owner(ctx)
}

func (r *InstrumentedRepository) ListEvents(ctx context.Context, filter models.EventFilter) (events []models.Event, err error) {
	defer func() { observe(r.metrics, "select", "ledger_events", err) }()
	return r.next.ListEvents(ctx, filter)
}

// Atomic implements service.LedgerStore, counting the unit of work and every write made in it
func (r *InstrumentedRepository) Atomic(ctx context.Context, fn func(tx service.LedgerTx) error) (err error) {
	defer func() { observe(r.metrics, "transaction", "ledger", err) }()
	return r.next.Atomic(ctx, func(tx service.LedgerTx) error {
		return fn(&instrumentedTx{LedgerTx: tx, metrics: r.metrics})
	})
}

// instrumentedTx counts the writes of a unit of work. Reads made inside the
// unit go straight to the underlying tx.
type instrumentedTx struct {
	service.LedgerTx
	metrics *metrics.Metrics
}

func (t *instrumentedTx) InsertCampaign(ctx context.Context, c models.Campaign) (id uint64, err error) {
	defer func() { observe(t.metrics, "insert", "campaigns", err) }()
	return t.LedgerTx.InsertCampaign(ctx, c)
}

func (t *instrumentedTx) SaveCampaign(ctx context.Context, c models.Campaign) (err error) {
	defer func() { observe(t.metrics, "update", "campaigns", err) }()
	return t.LedgerTx.SaveCampaign(ctx, c)
}

func (t *instrumentedTx) SaveContribution(ctx context.Context, c models.Contribution) (err error) {
	defer func() { observe(t.metrics, "upsert", "contributions", err) }()
	return t.LedgerTx.SaveContribution(ctx, c)
}

func (t *instrumentedTx) SetAuthorisedToken(ctx context.Context, asset models.Address, authorised bool) (err error) {
	defer func() { observe(t.metrics, "upsert", "authorised_tokens", err) }()
	return t.LedgerTx.SetAuthorisedToken(ctx, asset, authorised)
}

func (t *instrumentedTx) SetOwner(ctx context.Context, owner models.Address) (err error) {
	defer func() { observe(t.metrics, "upsert", "ledger_owner", err) }()
	return t.LedgerTx.SetOwner(ctx, owner)
}

func (t *instrumentedTx) AppendEvent(ctx context.Context, e models.Event) (stored models.Event, err error) {
	defer func() { observe(t.metrics, "insert", "ledger_events", err) }()
	return t.LedgerTx.AppendEvent(ctx, e)
}
