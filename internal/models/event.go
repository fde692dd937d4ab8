package models

import (
	"time"
)

// EventType names an entry kind in the ledger event log
type EventType string

// enum values for EventType
const (
	EventCampaignAdded             EventType = "CampaignAdded"
	EventCampaignUpdated           EventType = "CampaignUpdated"
	EventCampaignSuccessChanged    EventType = "CampaignSuccessStatusChanged"
	EventTokenAuthorisationChanged EventType = "TokenAuthorisationChanged"
	EventContributionMade          EventType = "ContributionMade"
	EventRefunded                  EventType = "Refunded"
	EventOwnershipTransferred      EventType = "OwnershipTransferred"
)

// Event is one append-only entry of the ledger log. Only the fields relevant
// to the event type are populated.
type Event struct {
	Seq          uint64    `json:"seq" db:"seq"`
	Type         EventType `json:"type" db:"type"`
	CampaignID   *uint64   `json:"campaignId,omitempty" db:"campaign_id"`
	Creator      Address   `json:"creator,omitempty"`
	Contributor  Address   `json:"contributor,omitempty"`
	Name         string    `json:"name,omitempty"`
	Goal         *Amount   `json:"goal,omitempty"`
	Amount       *Amount   `json:"amount,omitempty"`
	Asset        Address   `json:"asset,omitempty"`
	IsSuccessful *bool     `json:"isSuccessful,omitempty"`
	Authorised   *bool     `json:"authorised,omitempty"`
	PrevOwner    Address   `json:"previousOwner,omitempty"`
	NewOwner     Address   `json:"newOwner,omitempty"`
	RecordedAt   time.Time `json:"recordedAt" db:"recorded_at"`
}

// EventFilter selects events from the log
type EventFilter struct {
	Type       EventType
	CampaignID *uint64
	AfterSeq   uint64
	Limit      int
}

// DefaultEventLimit caps a listing when the filter does not
const DefaultEventLimit = 100

// Matches reports whether an event passes the type and campaign constraints
func (f EventFilter) Matches(e Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.CampaignID != nil && (e.CampaignID == nil || *e.CampaignID != *f.CampaignID) {
		return false
	}
	return e.Seq > f.AfterSeq
}

// EffectiveLimit returns the limit to apply
func (f EventFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > 1000 {
		return DefaultEventLimit
	}
	return f.Limit
}

func NewCampaignAddedEvent(c Campaign) Event {
	return Event{Type: EventCampaignAdded, CampaignID: ptr(c.ID), Creator: c.Creator, Name: c.Name, Goal: ptr(c.Goal)}
}

func NewCampaignUpdatedEvent(c Campaign) Event {
	return Event{Type: EventCampaignUpdated, CampaignID: ptr(c.ID), Creator: c.Creator, Name: c.Name, Goal: ptr(c.Goal)}
}

func NewSuccessStatusChangedEvent(id uint64, isSuccessful bool) Event {
	return Event{Type: EventCampaignSuccessChanged, CampaignID: ptr(id), IsSuccessful: ptr(isSuccessful)}
}

func NewTokenAuthorisationChangedEvent(asset Address, authorised bool) Event {
	return Event{Type: EventTokenAuthorisationChanged, Asset: asset, Authorised: ptr(authorised)}
}

func NewContributionMadeEvent(id uint64, contributor Address, amount Amount, asset Address) Event {
	return Event{Type: EventContributionMade, CampaignID: ptr(id), Contributor: contributor, Amount: ptr(amount), Asset: asset}
}

func NewRefundedEvent(id uint64, contributor Address, amount Amount, asset Address) Event {
	return Event{Type: EventRefunded, CampaignID: ptr(id), Contributor: contributor, Amount: ptr(amount), Asset: asset}
}

func NewOwnershipTransferredEvent(prev, next Address) Event {
	return Event{Type: EventOwnershipTransferred, PrevOwner: prev, NewOwner: next}
}

func ptr[T any](v T) *T {
	return &v
}
