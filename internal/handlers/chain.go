package handlers

import (
	"github.com/lukmusial/tradecore/internal/ring"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// Chain wires an ordered list of Handlers onto a ring's staged consumer
// chain and runs each one on its own goroutine, one per stage, via a
// panic-safe conc.WaitGroup (grounded on the lambda fan-out pattern in the
// example pack's coachpo-meltica-gateway lambda base).
type Chain struct {
	stages   []*ring.Stage
	handlers []Handler
	log      zerolog.Logger
	wg       conc.WaitGroup
}

// NewChain pairs each ring.Stage with the Handler at the same index.
// len(stages) must equal len(handlers).
func NewChain(stages []*ring.Stage, handlers []Handler, log zerolog.Logger) *Chain {
	return &Chain{
		stages:   stages,
		handlers: handlers,
		log:      log.With().Str("component", "handler_chain").Logger(),
	}
}

// Start launches one goroutine per stage, each draining its Stage in a
// tight Next/Handle/Release loop until Stop is called.
func (c *Chain) Start() {
	for i := range c.stages {
		stage := c.stages[i]
		handler := c.handlers[i]
		c.wg.Go(func() {
			c.run(stage, handler)
		})
	}
}

func (c *Chain) run(stage *ring.Stage, handler Handler) {
	for {
		slot, seq, ok := stage.Next()
		if !ok {
			return
		}
		handler.Handle(slot)
		stage.Release(seq)
	}
}

// Stop signals every stage to unwind and blocks until all handler
// goroutines have returned. A panic inside a handler goroutine is
// recovered by conc.WaitGroup and re-raised here, surfacing it to the
// caller rather than silently killing one stage.
func (c *Chain) Stop() {
	for _, s := range c.stages {
		s.Stop()
	}
	c.wg.Wait()
}
