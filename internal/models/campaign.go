package models

import (
	"time"
)

// Campaign is a funding goal registered by a creator. Contributions are accepted
// until the creator or the owner marks it successful; while it is not successful
// contributors may ask for their funds back.
type Campaign struct {
	ID           uint64    `json:"id" db:"id"`
	Creator      Address   `json:"creator" db:"creator"`
	Goal         Amount    `json:"goal" db:"goal"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	IsSuccessful bool      `json:"isSuccessful" db:"is_successful"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AcceptsContributions returns true if the campaign has not been marked successful
func (c *Campaign) AcceptsContributions() bool {
	return !c.IsSuccessful
}

// AllowsRefunds returns true if the campaign has not been marked successful.
// Open and failed campaigns share this state.
func (c *Campaign) AllowsRefunds() bool {
	return !c.IsSuccessful
}

// Apply overwrites the editable fields with a validated input
func (c *Campaign) Apply(in CampaignInput) {
	c.Goal = in.Goal
	c.Name = in.Name
	c.Description = in.Description
	c.ImageURL = in.ImageURL
}
