// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ErrorResponse represents the uniform API error body
type ErrorResponse struct {
	Error    string   `json:"error"`
	Required []string `json:"required,omitempty"` // Field names for missing-field errors
}

// HealthResponse represents the root health check payload
type HealthResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
