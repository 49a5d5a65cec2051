// Package businessflow contains the core business logic and use cases for account lifecycle workflows
package businessflow

// ClientMetadata carries request-scoped client information for logging
type ClientMetadata struct {
	IPAddress string
	UserAgent string
}

// NewClientMetadata creates client metadata from request information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}
