package payment

import (
	"context"
	"fmt"
	"time"
)

// CaptureRequest describes a single charge for a booking.
type CaptureRequest struct {
	Amount      float64
	Description string
	PayerEmail  string
}

type Receipt struct {
	Reference  string
	CapturedAt time.Time
}

// Capturer is the seam between booking creation and the payment
// gateway. The booking state machine only cares whether the capture
// succeeded; swapping in an async gateway later means returning the
// receipt from a webhook instead of inline.
type Capturer interface {
	Capture(ctx context.Context, req CaptureRequest) (*Receipt, error)
}

// SimulatedCapturer approves every charge. It is the default and
// mirrors the behavior the platform launched with.
type SimulatedCapturer struct{}

func NewSimulated() *SimulatedCapturer {
	return &SimulatedCapturer{}
}

func (s *SimulatedCapturer) Capture(ctx context.Context, req CaptureRequest) (*Receipt, error) {
	now := time.Now()
	return &Receipt{
		Reference:  fmt.Sprintf("sim-%d", now.UnixNano()),
		CapturedAt: now,
	}, nil
}
