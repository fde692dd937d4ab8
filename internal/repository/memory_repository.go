package repository

import (
	"context"
	"sync"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

type contributionKey struct {
	campaignID  uint64
	contributor models.Address
}

// memoryState is the committed ledger state
type memoryState struct {
	owner         models.Address
	campaigns     []models.Campaign
	contributions map[contributionKey]models.Contribution
	tokens        map[models.Address]bool
	events        []models.Event
}

// MemoryRepository implements service.LedgerStore in process memory.
// Units of work are serialized by writeMu and stage their writes; committed
// state is only locked while being read or while a commit is merged, so reads
// never wait on an operation that is moving funds.
type MemoryRepository struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   memoryState
}

// NewMemoryRepository creates an empty ledger whose admin principal is owner
func NewMemoryRepository(owner models.Address) *MemoryRepository {
	return &MemoryRepository{
		state: memoryState{
			owner:         owner,
			contributions: make(map[contributionKey]models.Contribution),
			tokens:        make(map[models.Address]bool),
		},
	}
}

// Atomic implements service.LedgerStore
func (r *MemoryRepository) Atomic(ctx context.Context, fn func(tx service.LedgerTx) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		repo:          r,
		campaigns:     make(map[uint64]models.Campaign),
		contributions: make(map[contributionKey]models.Contribution),
		tokens:        make(map[models.Address]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	r.commit(tx)
	return nil
}

// commit merges the staged writes into the committed state
func (r *MemoryRepository) commit(tx *memoryTx) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.owner != nil {
		r.state.owner = *tx.owner
	}
	r.state.campaigns = append(r.state.campaigns, tx.inserted...)
	for id, c := range tx.campaigns {
		r.state.campaigns[id] = c
	}
	for k, c := range tx.contributions {
		r.state.contributions[k] = c
	}
	for asset, ok := range tx.tokens {
		r.state.tokens[asset] = ok
	}
	r.state.events = append(r.state.events, tx.events...)
}

// GetCampaign implements service.LedgerReader
func (r *MemoryRepository) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id >= uint64(len(r.state.campaigns)) {
		return models.Campaign{}, models.CampaignNotFound(id)
	}
	return r.state.campaigns[id], nil
}

// ListCampaigns implements service.LedgerReader
func (r *MemoryRepository) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaigns := make([]models.Campaign, len(r.state.campaigns))
	copy(campaigns, r.state.campaigns)
	return campaigns, nil
}

// GetContribution implements service.LedgerReader
func (r *MemoryRepository) GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.state.contributions[contributionKey{id, contributor}]; ok {
		return c, nil
	}
	return models.EmptyContribution(id, contributor), nil
}

// IsAuthorisedToken implements service.LedgerReader
func (r *MemoryRepository) IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.tokens[asset], nil
}

// Owner implements service.LedgerReader
func (r *MemoryRepository) Owner(ctx context.Context) (models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.owner, nil
}

// ListEvents implements service.LedgerReader
func (r *MemoryRepository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterEvents(r.state.events, filter), nil
}

func filterEvents(events []models.Event, filter models.EventFilter) []models.Event {
	limit := filter.EffectiveLimit()
	matched := make([]models.Event, 0)
	for _, e := range events {
		if !filter.Matches(e) {
			continue
		}
		matched = append(matched, e)
		if len(matched) == limit {
			break
		}
	}
	return matched
}

// memoryTx stages writes on top of the committed state
type memoryTx struct {
	repo          *MemoryRepository
	owner         *models.Address
	inserted      []models.Campaign
	campaigns     map[uint64]models.Campaign
	contributions map[contributionKey]models.Contribution
	tokens        map[models.Address]bool
	events        []models.Event
}

func (tx *memoryTx) committedCampaigns() uint64 {
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()
	return uint64(len(tx.repo.state.campaigns))
}

func (tx *memoryTx) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	if c, ok := tx.campaigns[id]; ok {
		return c, nil
	}
	base := tx.committedCampaigns()
	if id >= base && id-base < uint64(len(tx.inserted)) {
		return tx.inserted[id-base], nil
	}
	return tx.repo.GetCampaign(ctx, id)
}

func (tx *memoryTx) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	campaigns, err := tx.repo.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	campaigns = append(campaigns, tx.inserted...)
	for id, c := range tx.campaigns {
		campaigns[id] = c
	}
	return campaigns, nil
}

func (tx *memoryTx) GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error) {
	if c, ok := tx.contributions[contributionKey{id, contributor}]; ok {
		return c, nil
	}
	return tx.repo.GetContribution(ctx, id, contributor)
}

func (tx *memoryTx) IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error) {
	if ok, staged := tx.tokens[asset]; staged {
		return ok, nil
	}
	return tx.repo.IsAuthorisedToken(ctx, asset)
}

func (tx *memoryTx) Owner(ctx context.Context) (models.Address, error) {
	if tx.owner != nil {
		return *tx.owner, nil
	}
	return tx.repo.Owner(ctx)
}

func (tx *memoryTx) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	tx.repo.mu.RLock()
	all := make([]models.Event, 0, len(tx.repo.state.events)+len(tx.events))
	all = append(all, tx.repo.state.events...)
	tx.repo.mu.RUnlock()

	all = append(all, tx.events...)
	return filterEvents(all, filter), nil
}

func (tx *memoryTx) InsertCampaign(ctx context.Context, c models.Campaign) (uint64, error) {
	c.ID = tx.committedCampaigns() + uint64(len(tx.inserted))
	tx.inserted = append(tx.inserted, c)
	return c.ID, nil
}

func (tx *memoryTx) SaveCampaign(ctx context.Context, c models.Campaign) error {
	base := tx.committedCampaigns()
	if c.ID >= base {
		idx := c.ID - base
		if idx >= uint64(len(tx.inserted)) {
			return models.CampaignNotFound(c.ID)
		}
		tx.inserted[idx] = c
		return nil
	}
	tx.campaigns[c.ID] = c
	return nil
}

func (tx *memoryTx) SaveContribution(ctx context.Context, c models.Contribution) error {
	tx.contributions[contributionKey{c.CampaignID, c.Contributor}] = c
	return nil
}

func (tx *memoryTx) SetAuthorisedToken(ctx context.Context, asset models.Address, authorised bool) error {
	tx.tokens[asset] = authorised
	return nil
}

func (tx *memoryTx) SetOwner(ctx context.Context, owner models.Address) error {
	tx.owner = &owner
	return nil
}

func (tx *memoryTx) AppendEvent(ctx context.Context, e models.Event) (models.Event, error) {
	tx.repo.mu.RLock()
	committed := uint64(len(tx.repo.state.events))
	tx.repo.mu.RUnlock()

	e.Seq = committed + uint64(len(tx.events)) + 1
	tx.events = append(tx.events, e)
	return e, nil
}
