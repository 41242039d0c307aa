package handler

import "shipdesk/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// SetModeRequest represents the set entry mode request body.
type SetModeRequest struct {
	Mode domain.EntryMode `json:"mode" binding:"required" example:"document"`
}

// --- Response Types ---

// AutoFilledResponse reports whether a draft field was filled from documents.
type AutoFilledResponse struct {
	Path       string `json:"path" example:"packages[0].products[1].hsCode"`
	AutoFilled bool   `json:"autoFilled" example:"true"`
}

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
