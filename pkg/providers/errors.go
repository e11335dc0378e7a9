package providers

import (
	"fmt"
	"time"
)

// ProviderError reports one adapter's failed fetch. The aggregation service
// collects these during a fan-out instead of raising them; raw transport
// errors never cross the adapter boundary.
type ProviderError struct {
	Provider  string
	Message   string
	Timestamp time.Time
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func newProviderError(provider, format string, args ...any) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
}
