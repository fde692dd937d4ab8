package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies ledger failures
type ErrorKind string

// enum values for ErrorKind
const (
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindInvalidState    ErrorKind = "INVALID_STATE"
)

// Error is a ledger failure: a kind, a stable condition code and the values that triggered it.
// errors.Is matches on kind alone when the target has no code, otherwise on kind and code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", k, e.Details[k])
	}
	b.WriteString(")")
	return b.String()
}

// Is implements errors.Is matching
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// With returns a copy of the error carrying an extra detail
func (e *Error) With(key string, value any) *Error {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = fmt.Sprint(value)
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: details}
}

// Kind-level sentinels, match any condition of that kind
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
)

// Conditions
var (
	ErrGoalNotPositive   = &Error{Kind: KindInvalidArgument, Code: "goal_not_positive", Message: "goal must be greater than 0"}
	ErrNameEmpty         = &Error{Kind: KindInvalidArgument, Code: "name_empty", Message: "name cannot be empty"}
	ErrDescriptionEmpty  = &Error{Kind: KindInvalidArgument, Code: "description_empty", Message: "description cannot be empty"}
	ErrImageURLEmpty     = &Error{Kind: KindInvalidArgument, Code: "image_url_empty", Message: "imageUrl cannot be empty"}
	ErrAmountZero        = &Error{Kind: KindInvalidArgument, Code: "amount_zero", Message: "amount must be greater than 0"}
	ErrInvalidAmount     = &Error{Kind: KindInvalidArgument, Code: "invalid_amount", Message: "amount must be a non-negative base-10 integer"}
	ErrInvalidAddress    = &Error{Kind: KindInvalidArgument, Code: "invalid_address", Message: "address must be 0x followed by 40 hex characters"}
	ErrNativeAssetListed = &Error{Kind: KindInvalidArgument, Code: "native_asset_listed", Message: "native asset is always accepted and cannot be listed"}
	ErrZeroOwner         = &Error{Kind: KindInvalidArgument, Code: "zero_owner", Message: "new owner is the zero address"}
	ErrInvalidCampaignID = &Error{Kind: KindInvalidArgument, Code: "invalid_campaign_id", Message: "campaign id must be a non-negative integer"}
	ErrMalformedBody     = &Error{Kind: KindInvalidArgument, Code: "malformed_body", Message: "request body is not valid JSON"}
	ErrInvalidQuery      = &Error{Kind: KindInvalidArgument, Code: "invalid_query", Message: "query parameter is invalid"}

	ErrCampaignNotFound = &Error{Kind: KindNotFound, Code: "campaign_not_found", Message: "campaign does not exist"}

	ErrNotOwner          = &Error{Kind: KindUnauthorized, Code: "not_owner", Message: "caller is not the owner"}
	ErrNotCreatorOrOwner = &Error{Kind: KindUnauthorized, Code: "not_creator_or_owner", Message: "caller is not the creator or the owner"}
	ErrMissingCaller     = &Error{Kind: KindUnauthorized, Code: "missing_caller", Message: "caller identity is required"}
	ErrInvalidToken      = &Error{Kind: KindUnauthorized, Code: "invalid_token", Message: "bearer token is invalid or expired"}

	ErrTokenNotAccepted = &Error{Kind: KindForbidden, Code: "token_not_accepted", Message: "token not accepted"}

	ErrCampaignNotActive  = &Error{Kind: KindInvalidState, Code: "campaign_not_active", Message: "campaign is not active or already successful"}
	ErrCampaignSuccessful = &Error{Kind: KindInvalidState, Code: "campaign_successful", Message: "campaign is successful, no refunds"}
	ErrReentrantCall      = &Error{Kind: KindInvalidState, Code: "reentrant_call", Message: "ledger operation already in progress on this call path"}
)

// CampaignNotFound builds the not-found condition for a campaign id
func CampaignNotFound(id uint64) *Error {
	return ErrCampaignNotFound.With("campaign_id", id)
}

// ErrorKindOf returns the kind of a ledger error, or "" for any other error
func ErrorKindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
