package behavior

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

// RunnerConfig configures a Runner.
type RunnerConfig[C any] struct {
	// Tree is the root node; required.
	Tree Node[C]
}

// Runner drives one activation of a tree for one subject.
//
// It keeps the cursor: the stack of activation frames from the root down to
// the node that returned RUNNING on the previous tick. The next Run descends
// along those frames instead of restarting, so started nodes are never
// started twice. A Runner is not safe for concurrent use; drive distinct
// subjects with distinct runners, which may share the same tree.
type Runner[C any] struct {
	id        string
	root      Node[C]
	path      []*frame[C]
	rng       *rand.Rand
	log       log.Log
	observers []Observer
	ticks     uint64
}

// NewRunner returns an idle runner for cfg.Tree.
func NewRunner[C any](cfg RunnerConfig[C], opts ...Option) (*Runner[C], error) {
	if isNil(cfg.Tree) {
		return nil, fmt.Errorf("%w: runner: tree", ErrMissingRequiredField)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.logger == nil {
		o.logger = log.Nop()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Runner[C]{
		id:        o.id,
		root:      cfg.Tree,
		rng:       o.rng,
		log:       o.logger.With(log.String("runner", o.id)),
		observers: o.observers,
	}, nil
}

func (r *Runner[C]) ID() string    { return r.id }
func (r *Runner[C]) Root() Node[C] { return r.root }

// Ticks returns the number of completed Run calls.
func (r *Runner[C]) Ticks() uint64 { return r.ticks }

// Running reports whether an activation is in progress.
func (r *Runner[C]) Running() bool { return len(r.path) > 0 }

// Depth returns the cursor length; 0 when idle.
func (r *Runner[C]) Depth() int { return len(r.path) }

// Path returns the node names on the cursor, root first.
func (r *Runner[C]) Path() []string {
	if len(r.path) == 0 {
		return nil
	}
	names := make([]string, len(r.path))
	for i, f := range r.path {
		names[i] = f.node.Name()
	}
	return names
}

// Run performs one tick with ctx as the blackboard and args forwarded to
// task hooks. It resumes the running activation if there is one, otherwise
// starts the tree from the root. Panics raised by task logic propagate.
func (r *Runner[C]) Run(ctx C, args ...any) Status {
	resumed := len(r.path) > 0
	r.ticks++

	st := r.root.tick(r, 0, ctx, args)

	if r.log.Enabled(log.LevelDebug) {
		r.log.Debug("tick completed",
			log.Uint64("tick", r.ticks),
			log.Stringer("status", st),
			log.Bool("resumed", resumed),
			log.Int("depth", len(r.path)),
		)
	}
	if len(r.observers) > 0 {
		e := TickEvent{RunnerID: r.id, Tick: r.ticks, Status: st, Resumed: resumed, Path: r.Path()}
		for _, obs := range r.observers {
			obs.TickCompleted(e)
		}
	}
	return st
}

// Reset abandons the running activation. Every node on the cursor is
// finished with FAIL, deepest first, so task Finish hooks see a matching
// call for each Start. Reset on an idle runner does nothing.
func (r *Runner[C]) Reset(ctx C) {
	for depth := len(r.path) - 1; depth >= 0; depth-- {
		n := r.path[depth].node
		r.pop(depth)
		if t, ok := n.(*Task[C]); ok {
			t.finish(ctx, StatusFail)
		}
		r.finished(n, depth, StatusFail)
	}
	if r.log.Enabled(log.LevelDebug) {
		r.log.Debug("activation reset", log.Uint64("tick", r.ticks))
	}
}

// enter returns the frame of n at depth, opening a new activation when the
// cursor does not reach that deep.
func (r *Runner[C]) enter(n Node[C], depth int) (*frame[C], bool) {
	if depth < len(r.path) {
		return r.path[depth], false
	}
	f := &frame[C]{node: n}
	r.path = append(r.path, f)

	if r.log.Enabled(log.LevelDebug) {
		r.log.Debug("node started",
			log.String("node", n.Name()),
			log.Stringer("kind", n.Kind()),
			log.Int("depth", depth),
		)
	}
	if len(r.observers) > 0 {
		e := NodeEvent{RunnerID: r.id, Tick: r.ticks, Depth: depth, Node: n.Name(), Kind: n.Kind().String(), Status: StatusRunning}
		for _, obs := range r.observers {
			obs.NodeStarted(e)
		}
	}
	return f, true
}

// pop truncates the cursor to depth.
func (r *Runner[C]) pop(depth int) {
	for i := depth; i < len(r.path); i++ {
		r.path[i] = nil
	}
	r.path = r.path[:depth]
}

// exit ends the activation of n at depth.
func (r *Runner[C]) exit(n Node[C], depth int, st Status) {
	r.pop(depth)
	r.finished(n, depth, st)
}

func (r *Runner[C]) finished(n Node[C], depth int, st Status) {
	if r.log.Enabled(log.LevelDebug) {
		r.log.Debug("node finished",
			log.String("node", n.Name()),
			log.Stringer("kind", n.Kind()),
			log.Int("depth", depth),
			log.Stringer("status", st),
		)
	}
	if len(r.observers) > 0 {
		e := NodeEvent{RunnerID: r.id, Tick: r.ticks, Depth: depth, Node: n.Name(), Kind: n.Kind().String(), Status: st}
		for _, obs := range r.observers {
			obs.NodeFinished(e)
		}
	}
}
