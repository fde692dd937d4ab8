package assets

import (
	"context"

	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// InstrumentedMover wraps an asset mover with transfer metrics
type InstrumentedMover struct {
	next    service.AssetMover
	metrics *metrics.Metrics
}

// NewInstrumentedMover creates a new instrumented mover
func NewInstrumentedMover(next service.AssetMover, m *metrics.Metrics) *InstrumentedMover {
	return &InstrumentedMover{next: next, metrics: m}
}

func (m *InstrumentedMover) Pull(ctx context.Context, asset, from models.Address, amount models.Amount) error {
	err := m.next.Pull(ctx, asset, from, amount)
	m.metrics.RecordTransfer("pull", assetKind(asset), outcome(err))
	return err
}

func (m *InstrumentedMover) Push(ctx context.Context, asset, to models.Address, amount models.Amount) error {
	err := m.next.Push(ctx, asset, to, amount)
	m.metrics.RecordTransfer("push", assetKind(asset), outcome(err))
	return err
}

func assetKind(asset models.Address) string {
	if asset.IsNative() {
		return "native"
	}
	return "token"
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
