package pulsar

import (
	"context"
	"time"
)

// Pulsar emits pulses at a fixed interval until its context is cancelled.
// It backs the periodic maintenance loops (expired-lock sweeping) without
// each caller owning a ticker:
//
//	p := pulsar.NewPulsar(ctx, time.Minute)
//	for range p.Pulsate() {
//		sweep()
//	}
type Pulsar struct {
	Period time.Duration

	ctx     context.Context
	pulse   *time.Ticker
	pulsate chan time.Time
}

func NewPulsar(ctx context.Context, period time.Duration) *Pulsar {
	return &Pulsar{
		Period:  period,
		ctx:     ctx,
		pulse:   time.NewTicker(period),
		pulsate: make(chan time.Time),
	}
}

// Pulsate returns the channel pulses are delivered on. The channel is closed
// when the pulsar's context is cancelled, releasing any consumer ranging
// over it.
func (p *Pulsar) Pulsate() chan time.Time {
	go func() {
		defer p.pulse.Stop()
		defer close(p.pulsate)

		for {
			select {
			case <-p.ctx.Done():
				return
			case t := <-p.pulse.C:
				select {
				case p.pulsate <- t:
				case <-p.ctx.Done():
					return
				}
			}
		}
	}()

	return p.pulsate
}
