package service

import (
	"context"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// AddCampaign registers a campaign owned by caller and returns its id
func (s *LedgerService) AddCampaign(ctx context.Context, caller models.Address, in models.CampaignInput) (uint64, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var id uint64
	err := s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		now := s.now()
		campaign := models.Campaign{
			Creator:   caller,
			CreatedAt: now,
			UpdatedAt: now,
		}
		campaign.Apply(in)

		var err error
		id, err = tx.InsertCampaign(ctx, campaign)
		if err != nil {
			return nil, err
		}
		campaign.ID = id
		return []models.Event{models.NewCampaignAddedEvent(campaign)}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetCampaign returns a campaign by id
func (s *LedgerService) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// ListCampaigns returns every campaign in id order
func (s *LedgerService) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.store.ListCampaigns(ctx)
}

// UpdateCampaign overwrites the editable fields. Creator or owner only.
func (s *LedgerService) UpdateCampaign(ctx context.Context, caller models.Address, id uint64, in models.CampaignInput) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		campaign, err := requireCreatorOrAdmin(ctx, tx, id, caller)
		if err != nil {
			return nil, err
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		campaign.Apply(in)
		campaign.UpdatedAt = s.now()
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return nil, err
		}
		return []models.Event{models.NewCampaignUpdatedEvent(campaign)}, nil
	})
}

// ModifyCampaignSuccessStatus sets the flag that gates contributions and refunds. Creator or owner only.
func (s *LedgerService) ModifyCampaignSuccessStatus(ctx context.Context, caller models.Address, id uint64, isSuccessful bool) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		campaign, err := requireCreatorOrAdmin(ctx, tx, id, caller)
		if err != nil {
			return nil, err
		}
		campaign.IsSuccessful = isSuccessful
		campaign.UpdatedAt = s.now()
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return nil, err
		}
		return []models.Event{models.NewSuccessStatusChangedEvent(id, isSuccessful)}, nil
	})
}
