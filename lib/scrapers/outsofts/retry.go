package outsofts

import "time"

// RetryPolicy governs the capture-polling loop of the detail fetcher.
// Waits grow linearly because the portal backend returns detail payloads
// slowly under load, not transiently.
type RetryPolicy struct {
	MaxAttempts int
	BaseWait    time.Duration
	WaitStep    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseWait:    10 * time.Second,
		WaitStep:    5 * time.Second,
	}
}

// Wait returns how long to poll after the given zero-based attempt.
func (p RetryPolicy) Wait(attempt int) time.Duration {
	return p.BaseWait + time.Duration(attempt)*p.WaitStep
}
