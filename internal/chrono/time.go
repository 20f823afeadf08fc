package chrono

import (
	"context"
	"time"
)

var cst *time.Location

func init() {
	var err error
	cst, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		panic(err)
	}
}

// CST returns a [*time.Location] for Asia/Shanghai, the timezone every
// timestamp on the portal is rendered in.
func CST() *time.Location {
	return cst
}

// TimeAPI is the interface that anything depending on the system clock
// should use, so tests can substitute a fake.
type TimeAPI interface {
	// Now returns the current time in Asia/Shanghai.
	Now() time.Time
	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err()
	// in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardTime is the standard implementation of TimeAPI using the
// standard library.
type StandardTime struct{}

func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(cst)
}

func (s StandardTime) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
