package service

import (
	"context"
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// ContributeWithEther contributes native value to a campaign
func (s *LedgerService) ContributeWithEther(ctx context.Context, caller models.Address, id uint64, amount models.Amount) error {
	return s.contribute(ctx, caller, id, amount, models.NativeAsset, false)
}

// ContributeWithToken contributes an authorised token to a campaign.
// The caller must have granted custody an allowance of at least amount beforehand.
// The native asset is never on the allow-list, so it is rejected here.
func (s *LedgerService) ContributeWithToken(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) error {
	return s.contribute(ctx, caller, id, amount, asset, true)
}

func (s *LedgerService) contribute(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address, token bool) error {
	if err := requireCaller(caller); err != nil {
		return err
	}

	pulled := false
	err := s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		campaign, err := tx.GetCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		if !campaign.AcceptsContributions() {
			return nil, models.ErrCampaignNotActive.With("campaign_id", id)
		}
		if amount.IsZero() {
			return nil, models.ErrAmountZero
		}
		if token {
			ok, err := tokenAccepted(ctx, tx, asset)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, models.ErrTokenNotAccepted.With("asset", asset)
			}
		}

		if err := s.mover.Pull(ctx, asset, caller, amount); err != nil {
			return nil, fmt.Errorf("failed to pull %s of %s from %s: %w", amount, asset, caller, err)
		}
		pulled = true

		entry, err := tx.GetContribution(ctx, id, caller)
		if err != nil {
			return nil, err
		}
		if err := tx.SaveContribution(ctx, entry.Credit(amount, asset)); err != nil {
			return nil, err
		}
		return []models.Event{models.NewContributionMadeEvent(id, caller, amount, asset)}, nil
	})
	if err != nil && pulled {
		s.returnPulledFunds(ctx, caller, id, amount, asset)
	}
	return err
}

// tokenAccepted reports whether asset is on the allow-list. The native and empty addresses never are.
func tokenAccepted(ctx context.Context, tx LedgerTx, asset models.Address) (bool, error) {
	if asset.IsZero() {
		return false, nil
	}
	return tx.IsAuthorisedToken(ctx, asset)
}

// returnPulledFunds undoes a pull whose ledger credit was rolled back
func (s *LedgerService) returnPulledFunds(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) {
	if err := s.mover.Push(ctx, asset, caller, amount); err != nil {
		level.Error(s.logger).Log(
			"msg", "failed to return pulled funds after rolled back contribution",
			"campaign_id", id,
			"contributor", caller,
			"asset", asset,
			"amount", amount,
			"err", err,
		)
	}
}

// Refund returns the caller's recorded contribution, in the recorded asset,
// while the campaign is not marked successful. The entry is zeroed before the
// transfer so a transfer that calls back into the ledger finds nothing left to refund.
// An empty entry refunds zero without moving funds.
func (s *LedgerService) Refund(ctx context.Context, caller models.Address, id uint64) (models.Contribution, error) {
	if err := requireCaller(caller); err != nil {
		return models.Contribution{}, err
	}

	var refunded models.Contribution
	pushed := false
	err := s.atomic(ctx, func(ctx context.Context, tx LedgerTx) ([]models.Event, error) {
		campaign, err := tx.GetCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		if !campaign.AllowsRefunds() {
			return nil, models.ErrCampaignSuccessful.With("campaign_id", id)
		}

		entry, err := tx.GetContribution(ctx, id, caller)
		if err != nil {
			return nil, err
		}
		if err := tx.SaveContribution(ctx, entry.Cleared()); err != nil {
			return nil, err
		}

		if !entry.Amount.IsZero() {
			if err := s.mover.Push(ctx, entry.Asset, caller, entry.Amount); err != nil {
				return nil, fmt.Errorf("failed to push %s of %s to %s: %w", entry.Amount, entry.Asset, caller, err)
			}
			pushed = true
		}

		refunded = entry
		return []models.Event{models.NewRefundedEvent(id, caller, entry.Amount, entry.Asset)}, nil
	})
	if err != nil {
		if pushed {
			level.Error(s.logger).Log(
				"msg", "refund transfer completed but the ledger update did not commit",
				"campaign_id", id,
				"contributor", caller,
				"asset", refunded.Asset,
				"amount", refunded.Amount,
				"err", err,
			)
		}
		return models.Contribution{}, err
	}
	return refunded, nil
}

// GetContribution returns the refundable entry of a contributor in a campaign
func (s *LedgerService) GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error) {
	if _, err := s.store.GetCampaign(ctx, id); err != nil {
		return models.Contribution{}, err
	}
	return s.store.GetContribution(ctx, id, contributor)
}
