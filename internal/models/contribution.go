package models

// Contribution is the refundable balance a contributor holds in one campaign.
// A single asset is recorded per entry: a later contribution in another asset
// replaces it while the amounts keep accumulating.
type Contribution struct {
	CampaignID  uint64  `json:"campaignId" db:"campaign_id"`
	Contributor Address `json:"contributor" db:"contributor"`
	Amount      Amount  `json:"amount" db:"amount"`
	Asset       Address `json:"asset" db:"asset"`
}

// EmptyContribution is the entry of a contributor who never contributed
func EmptyContribution(campaignID uint64, contributor Address) Contribution {
	return Contribution{
		CampaignID:  campaignID,
		Contributor: contributor,
		Amount:      Amount{},
		Asset:       NativeAsset,
	}
}

// Credit adds amount to the entry and records asset as the entry's asset
func (c Contribution) Credit(amount Amount, asset Address) Contribution {
	c.Amount = c.Amount.Add(amount)
	c.Asset = asset
	return c
}

// Cleared returns the entry with its amount zeroed and its asset kept
func (c Contribution) Cleared() Contribution {
	c.Amount = Amount{}
	return c
}
