package service

import (
	"context"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// CrowdfundingService defines the public operations of the crowdfunding ledger.
// Mutating operations take the calling principal explicitly.
type CrowdfundingService interface {
	// Campaign store
	AddCampaign(ctx context.Context, caller models.Address, in models.CampaignInput) (uint64, error)
	GetCampaign(ctx context.Context, id uint64) (models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	UpdateCampaign(ctx context.Context, caller models.Address, id uint64, in models.CampaignInput) error
	ModifyCampaignSuccessStatus(ctx context.Context, caller models.Address, id uint64, isSuccessful bool) error

	// Authorization registry
	SetAuthorisedToken(ctx context.Context, caller, asset models.Address, authorised bool) error
	UnsetAuthorisedToken(ctx context.Context, caller, asset models.Address) error
	IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error)
	Owner(ctx context.Context) (models.Address, error)
	TransferOwnership(ctx context.Context, caller, newOwner models.Address) error

	// Funding engine
	ContributeWithEther(ctx context.Context, caller models.Address, id uint64, amount models.Amount) error
	ContributeWithToken(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) error
	Refund(ctx context.Context, caller models.Address, id uint64) (models.Contribution, error)
	GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error)

	// Event log
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// LedgerReader is the read side of ledger storage
type LedgerReader interface {
	// GetCampaign returns models.ErrCampaignNotFound when the id was never assigned
	GetCampaign(ctx context.Context, id uint64) (models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	// GetContribution returns an empty entry for a contributor who never contributed
	GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error)
	IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error)
	Owner(ctx context.Context) (models.Address, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// LedgerTx is a unit of work. Reads observe the writes made earlier in the same unit.
type LedgerTx interface {
	LedgerReader
	// InsertCampaign assigns the next sequential id and stores the campaign
	InsertCampaign(ctx context.Context, c models.Campaign) (uint64, error)
	SaveCampaign(ctx context.Context, c models.Campaign) error
	SaveContribution(ctx context.Context, c models.Contribution) error
	SetAuthorisedToken(ctx context.Context, asset models.Address, authorised bool) error
	SetOwner(ctx context.Context, owner models.Address) error
	// AppendEvent assigns the next sequence number and stores the event
	AppendEvent(ctx context.Context, e models.Event) (models.Event, error)
}

// LedgerStore persists ledger state. Atomic runs fn as one serialized unit of
// work: every write made through the tx is committed if fn returns nil and
// discarded otherwise. No two units of work run concurrently.
type LedgerStore interface {
	LedgerReader
	Atomic(ctx context.Context, fn func(tx LedgerTx) error) error
}

// AssetMover moves funds between principals and the ledger's custody.
// Pull and Push run inside a ledger operation while the store is serialized.
// An implementation that calls back into the ledger must pass on the ctx it
// was given: that call then fails with models.ErrReentrantCall, while a call
// made with a fresh context waits on the running operation forever.
type AssetMover interface {
	// Pull moves amount of asset from the principal into custody
	Pull(ctx context.Context, asset, from models.Address, amount models.Amount) error
	// Push moves amount of asset from custody to the principal
	Push(ctx context.Context, asset, to models.Address, amount models.Amount) error
}

// EventPublisher distributes committed ledger events
type EventPublisher interface {
	Publish(ctx context.Context, events []models.Event) error
}
