package models

import (
	"strings"
)

// CampaignInput carries the editable fields of a campaign for create and update
type CampaignInput struct {
	Goal        Amount `json:"goal"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Validate checks the goal is positive and no text field is empty.
// Each failure is reported as its own condition, checked in declaration order.
func (in *CampaignInput) Validate() error {
	if in.Goal.IsZero() {
		return ErrGoalNotPositive.With("goal", in.Goal)
	}
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameEmpty
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrDescriptionEmpty
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return ErrImageURLEmpty
	}
	return nil
}

// ContributionRequest is a contribution of amount to a campaign.
// An empty or native Asset means a native value contribution.
type ContributionRequest struct {
	CampaignID uint64  `json:"campaignId"`
	Amount     Amount  `json:"amount"`
	Asset      Address `json:"asset,omitempty"`
}

// IsNative returns true if the request contributes the native asset
func (r *ContributionRequest) IsNative() bool {
	return r.Asset == "" || r.Asset.IsNative()
}
