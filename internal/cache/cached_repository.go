package cache

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// CachedRepository wraps a ledger store with read-through campaign caching.
// Campaigns written by a unit of work replace their cached copy before it
// commits; read misses fill the cache only where nothing newer was stored meanwhile.
type CachedRepository struct {
	service.LedgerStore
	cache   Cache
	ttl     time.Duration
	logger  log.Logger
	metrics *metrics.Metrics
}

// NewCachedRepository creates a new cached repository. m may be nil.
func NewCachedRepository(repo service.LedgerStore, cache Cache, ttl time.Duration, logger log.Logger, m *metrics.Metrics) *CachedRepository {
	return &CachedRepository{
		LedgerStore: repo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
		metrics:     m,
	}
}

// GetCampaign retrieves a campaign from cache first, then the store
func (cr *CachedRepository) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	campaign, err := cr.cache.GetCampaign(ctx, id)
	if cr.metrics != nil {
		cr.metrics.RecordCacheLookup(err == nil)
	}
	if err == nil {
		return campaign, nil
	}

	campaign, err = cr.LedgerStore.GetCampaign(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}

	if err := cr.cache.SetCampaignIfAbsent(ctx, campaign, cr.ttl); err != nil {
		level.Warn(cr.logger).Log("msg", "failed to cache campaign", "campaign_id", id, "err", err)
	}
	return campaign, nil
}

// Atomic runs the unit of work on the underlying store. The cached copy of
// every campaign it wrote is replaced as the last step of the unit, while the
// store still serializes it, so cache writes land in commit order. A unit that
// then fails to commit drops those entries again.
func (cr *CachedRepository) Atomic(ctx context.Context, fn func(tx service.LedgerTx) error) error {
	var written []models.Campaign
	refreshed := false
	err := cr.LedgerStore.Atomic(ctx, func(tx service.LedgerTx) error {
		written = written[:0]
		if err := fn(&recordingTx{LedgerTx: tx, written: &written}); err != nil {
			return err
		}
		cr.refresh(ctx, written)
		refreshed = true
		return nil
	})
	if err != nil && refreshed {
		for _, campaign := range written {
			cr.invalidate(ctx, campaign.ID)
		}
	}
	return err
}

func (cr *CachedRepository) refresh(ctx context.Context, written []models.Campaign) {
	for _, campaign := range written {
		if err := cr.cache.SetCampaign(ctx, campaign, cr.ttl); err != nil {
			level.Warn(cr.logger).Log("msg", "failed to refresh cached campaign, invalidating", "campaign_id", campaign.ID, "err", err)
			cr.invalidate(ctx, campaign.ID)
		}
	}
}

func (cr *CachedRepository) invalidate(ctx context.Context, id uint64) {
	if err := cr.cache.InvalidateCampaign(ctx, id); err != nil {
		level.Error(cr.logger).Log("msg", "failed to invalidate cached campaign", "campaign_id", id, "err", err)
	}
}

// InvalidateCache clears all cached data
func (cr *CachedRepository) InvalidateCache(ctx context.Context) error {
	return cr.cache.InvalidateAll(ctx)
}

// GetCacheStats returns cache performance statistics
func (cr *CachedRepository) GetCacheStats() CacheStats {
	return cr.cache.GetStats()
}

// recordingTx remembers the campaigns written through it
type recordingTx struct {
	service.LedgerTx
	written *[]models.Campaign
}

func (tx *recordingTx) InsertCampaign(ctx context.Context, c models.Campaign) (uint64, error) {
	id, err := tx.LedgerTx.InsertCampaign(ctx, c)
	if err != nil {
		return 0, err
	}
	c.ID = id
	*tx.written = append(*tx.written, c)
	return id, nil
}

func (tx *recordingTx) SaveCampaign(ctx context.Context, c models.Campaign) error {
	if err := tx.LedgerTx.SaveCampaign(ctx, c); err != nil {
		return err
	}
	*tx.written = append(*tx.written, c)
	return nil
}
