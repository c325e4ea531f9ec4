package behavior

import "fmt"

// Invert swaps SUCCESS and FAIL of its single child; RUNNING passes through.
type Invert[C any] struct {
	baseNode
	child Node[C]
}

// NewInvert fails with ErrInvalidChildCount unless exactly one node is given.
func NewInvert[C any](cfg CompositeConfig[C]) (*Invert[C], error) {
	base, err := newBaseNode(KindInvert, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	child, err := checkSingle(KindInvert, base.name, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	return &Invert[C]{baseNode: base, child: child}, nil
}

func (n *Invert[C]) Kind() Kind          { return KindInvert }
func (n *Invert[C]) Children() []Node[C] { return []Node[C]{n.child} }

func (n *Invert[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	r.enter(n, depth)
	st := n.child.tick(r, depth+1, ctx, args)
	switch st {
	case StatusRunning:
		return st
	case StatusSuccess:
		st = StatusFail
	default:
		st = StatusSuccess
	}
	r.exit(n, depth, st)
	return st
}

// RepeatConfig configures a Repeat node.
type RepeatConfig[C any] struct {
	Name  string
	Nodes []Node[C]
	// Count is the number of child activations to run; must be positive.
	Count int
	// BreakOnFail stops the loop with FAIL on the first failing activation.
	BreakOnFail bool
	Weight      float64
}

// Repeat runs its single child Count times, one activation per tick at most.
// It reports RUNNING while iterations remain and SUCCESS once all of them
// completed, unless BreakOnFail cut the loop short with FAIL.
type Repeat[C any] struct {
	baseNode
	child       Node[C]
	count       int
	breakOnFail bool
}

func NewRepeat[C any](cfg RepeatConfig[C]) (*Repeat[C], error) {
	base, err := newBaseNode(KindRepeat, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("%w: repeat %q: count must be positive, got %d", ErrInvalidConfiguration, base.name, cfg.Count)
	}
	child, err := checkSingle(KindRepeat, base.name, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	return &Repeat[C]{baseNode: base, child: child, count: cfg.Count, breakOnFail: cfg.BreakOnFail}, nil
}

func (n *Repeat[C]) Kind() Kind          { return KindRepeat }
func (n *Repeat[C]) Children() []Node[C] { return []Node[C]{n.child} }

// Count returns the configured number of iterations.
func (n *Repeat[C]) Count() int { return n.count }

// BreakOnFail reports whether a failing iteration ends the loop.
func (n *Repeat[C]) BreakOnFail() bool { return n.breakOnFail }

func (n *Repeat[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	f, _ := r.enter(n, depth)
	st := n.child.tick(r, depth+1, ctx, args)
	if st == StatusRunning {
		return st
	}
	if st == StatusFail && n.breakOnFail {
		r.exit(n, depth, StatusFail)
		return StatusFail
	}
	f.iteration++
	if f.iteration >= n.count {
		r.exit(n, depth, StatusSuccess)
		return StatusSuccess
	}
	return StatusRunning
}
