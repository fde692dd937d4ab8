package service

import (
	"context"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// requireOwner fails unless caller is the admin principal
func requireOwner(ctx context.Context, r LedgerReader, caller models.Address) error {
	owner, err := r.Owner(ctx)
	if err != nil {
		return err
	}
	if caller != owner {
		return models.ErrNotOwner.With("caller", caller)
	}
	return nil
}

// isCreatorOrAdmin is the single authorization predicate for creator-gated operations
func isCreatorOrAdmin(ctx context.Context, r LedgerReader, campaign models.Campaign, caller models.Address) (bool, error) {
	if caller == campaign.Creator {
		return true, nil
	}
	owner, err := r.Owner(ctx)
	if err != nil {
		return false, err
	}
	return caller == owner, nil
}

// requireCreatorOrAdmin loads the campaign and checks the caller may modify it
func requireCreatorOrAdmin(ctx context.Context, tx LedgerTx, id uint64, caller models.Address) (models.Campaign, error) {
	campaign, err := tx.GetCampaign(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	ok, err := isCreatorOrAdmin(ctx, tx, campaign, caller)
	if err != nil {
		return models.Campaign{}, err
	}
	if !ok {
		return models.Campaign{}, models.ErrNotCreatorOrOwner.With("campaign_id", id).With("caller", caller)
	}
	return campaign, nil
}

// SetAuthorisedToken sets the allow-list flag of a token asset. Owner only.
func (s *LedgerService) SetAuthorisedToken(ctx context.Context, caller, asset models.Address, authorised bool) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if asset.IsZero() {
		return models.ErrNativeAssetListed.With("asset", asset)
	}
	return s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return nil, err
		}
		if err := tx.SetAuthorisedToken(ctx, asset, authorised); err != nil {
			return nil, err
		}
		return []models.Event{models.NewTokenAuthorisationChangedEvent(asset, authorised)}, nil
	})
}

// UnsetAuthorisedToken removes a token asset from the allow-list. Owner only.
func (s *LedgerService) UnsetAuthorisedToken(ctx context.Context, caller, asset models.Address) error {
	return s.SetAuthorisedToken(ctx, caller, asset, false)
}

// IsAuthorisedToken reports the allow-list flag, false for assets never listed
func (s *LedgerService) IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error) {
	if asset.IsZero() {
		return false, nil
	}
	return s.store.IsAuthorisedToken(ctx, asset)
}

// Owner returns the admin principal
func (s *LedgerService) Owner(ctx context.Context) (models.Address, error) {
	return s.store.Owner(ctx)
}

// TransferOwnership hands the admin role to newOwner. Owner only.
func (s *LedgerService) TransferOwnership(ctx context.Context, caller, newOwner models.Address) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return models.ErrZeroOwner
	}
	return s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return nil, err
		}
		if err := tx.SetOwner(ctx, newOwner); err != nil {
			return nil, err
		}
		return []models.Event{models.NewOwnershipTransferredEvent(caller, newOwner)}, nil
	})
}
