package resilience

// DegradedStatus is the status reported by a graceful fallback response.
const DegradedStatus = "degraded"

// DefaultFallbackMessage is used when no fallback message is supplied.
const DefaultFallbackMessage = "Temporarily unavailable"

// Graceful is a safe fallback payload shaped for callers when an upstream
// call fails even after retries or a breaker rejection.
type Graceful struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
	Status  string `json:"status"`
}

// GracefulError shapes err into a degraded-mode payload. Pure, no side
// effects.
func GracefulError(err error, fallbackMessage string) Graceful {
	msg := fallbackMessage
	if msg == "" {
		msg = DefaultFallbackMessage
	}

	reason := "unknown"
	if err != nil && err.Error() != "" {
		reason = err.Error()
	}

	return Graceful{
		Message: msg,
		Reason:  reason,
		Status:  DegradedStatus,
	}
}
