package payment

import (
	"context"
	"time"
)

// Processor simulates a card charge. No money moves anywhere; it exists so
// the upgrade flow has the same shape it would have with a real billing
// provider: submit, wait out processing, then confirm.
type Processor struct {
	ProcessingDelay time.Duration
}

func NewProcessor(delay time.Duration) *Processor {
	if delay < 0 {
		delay = 0
	}
	return &Processor{ProcessingDelay: delay}
}

// Charge waits out the fake processing delay and reports success.
func (p *Processor) Charge(ctx context.Context) error {
	if p.ProcessingDelay <= 0 {
		return nil
	}
	t := time.NewTimer(p.ProcessingDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
