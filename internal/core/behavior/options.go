package behavior

import (
	"math/rand/v2"

	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

type options struct {
	id        string
	logger    log.Log
	observers []Observer
	rng       *rand.Rand
}

// Option customizes a Runner.
type Option func(*options)

// WithID sets the runner identifier used in logs and events.
// A random UUID is used otherwise.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLogger sets the logger; activity is logged at debug level.
func WithLogger(l log.Log) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer. It may be given several times.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithRand sets the random source used by Random nodes.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed makes Random nodes reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}
