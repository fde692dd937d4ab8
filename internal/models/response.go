package models

import (
	"errors"
)

// ErrorResponse represents error response format
type ErrorResponse struct {
	Error   string            `json:"error"`
	Kind    ErrorKind         `json:"kind,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err error) ErrorResponse {
	var le *Error
	if errors.As(err, &le) {
		return ErrorResponse{
			Error:   le.Error(),
			Kind:    le.Kind,
			Code:    le.Code,
			Details: le.Details,
		}
	}
	return ErrorResponse{Error: err.Error()}
}

// CampaignCreatedResponse is returned when a campaign is registered
type CampaignCreatedResponse struct {
	ID uint64 `json:"id"`
}

// TokenAuthorisationResponse reports the allow-list flag of an asset
type TokenAuthorisationResponse struct {
	Asset      Address `json:"asset"`
	Authorised bool    `json:"authorised"`
}

// OwnerResponse reports the admin principal
type OwnerResponse struct {
	Owner Address `json:"owner"`
}
