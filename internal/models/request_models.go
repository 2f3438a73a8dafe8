package models

import "encoding/json"

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// CalculateRequest carries the resource-request list for an ad-hoc cost
// calculation. RawOptions keeps the undecoded payload so a non-list shape can
// be rejected explicitly instead of silently binding to nothing.
type CalculateRequest struct {
	RawOptions json.RawMessage `json:"laaSOptions"`
}

type CreateConfigurationRequest struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	IsPublic         bool              `json:"isPublic"`
	ResourceRequests []ResourceRequest `json:"resourceRequests"`
	Notes            string            `json:"notes"`
}

type UpdateConfigurationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`

	// When present, a new version is computed from these requests and
	// appended.
	NewResourceRequests []ResourceRequest `json:"newResourceRequests"`
	Notes               string            `json:"notes"`
}
