package position

import (
	"context"
	"errors"
	"time"
)

// Source yields a device position reading. Implementations wrap whatever the
// client device exposes (browser geolocation relayed over the wire, a mobile
// SDK callback, a test stub). Acquisition must respect ctx cancellation.
type Source interface {
	Position(ctx context.Context) (Reading, error)
}

// Reading is one raw position sample from a device.
type Reading struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Mocked         bool // provider reported a simulated/mock location
	RecordedAt     time.Time
}

// Typed acquisition failures. All of them surface to the caller as a
// recoverable LocationUnavailable condition.
var (
	ErrDenied      = errors.New("position access denied by the device")
	ErrTimeout     = errors.New("position acquisition timed out")
	ErrUnavailable = errors.New("position provider unavailable")
)

// Acquire obtains a reading within the bounded window. A source that does not
// resolve before the deadline yields ErrTimeout instead of hanging the
// transition.
func Acquire(ctx context.Context, src Source, timeout time.Duration) (Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		reading Reading
		err     error
	}

	ch := make(chan outcome, 1)
	go func() {
		r, err := src.Position(ctx)
		ch <- outcome{reading: r, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return Reading{}, ErrTimeout
			}
			return Reading{}, out.err
		}
		return out.reading, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reading{}, ErrTimeout
		}
		return Reading{}, ctx.Err()
	}
}

// Static wraps an already-resolved reading, e.g. one relayed by the client in
// the request body.
func Static(r Reading) Source {
	return staticSource{reading: r}
}

// Failed wraps a device-reported acquisition failure.
func Failed(err error) Source {
	return staticSource{err: err}
}

type staticSource struct {
	reading Reading
	err     error
}

func (s staticSource) Position(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	return s.reading, s.err
}

// FromCode maps a device-reported error code to the typed failure.
func FromCode(code string) error {
	switch code {
	case "denied":
		return ErrDenied
	case "timeout":
		return ErrTimeout
	default:
		return ErrUnavailable
	}
}

// IsUnavailable reports whether err is any of the typed acquisition failures.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDenied) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}
