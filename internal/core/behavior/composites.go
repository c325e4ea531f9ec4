package behavior

// CompositeConfig configures Sequence, Selector, Random and Invert nodes.
type CompositeConfig[C any] struct {
	Name   string
	Nodes  []Node[C]
	Weight float64
}

// Sequence ticks children in order until one does not succeed.
// An empty sequence succeeds.
type Sequence[C any] struct {
	baseNode
	children []Node[C]
}

func NewSequence[C any](cfg CompositeConfig[C]) (*Sequence[C], error) {
	base, err := newBaseNode(KindSequence, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	children, err := checkNodes(KindSequence, base.name, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	return &Sequence[C]{baseNode: base, children: children}, nil
}

func (s *Sequence[C]) Kind() Kind          { return KindSequence }
func (s *Sequence[C]) Children() []Node[C] { return copyNodes(s.children) }

func (s *Sequence[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	f, _ := r.enter(s, depth)
	return advance(r, s, f, depth, ctx, args, s.children, StatusSuccess)
}

// Selector ticks children in order until one does not fail.
// An empty selector fails.
type Selector[C any] struct {
	baseNode
	children []Node[C]
}

func NewSelector[C any](cfg CompositeConfig[C]) (*Selector[C], error) {
	base, err := newBaseNode(KindSelector, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	children, err := checkNodes(KindSelector, base.name, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	return &Selector[C]{baseNode: base, children: children}, nil
}

func (s *Selector[C]) Kind() Kind          { return KindSelector }
func (s *Selector[C]) Children() []Node[C] { return copyNodes(s.children) }

func (s *Selector[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	f, _ := r.enter(s, depth)
	return advance(r, s, f, depth, ctx, args, s.children, StatusFail)
}

// advance resumes at f.pos and keeps moving while children return pass.
// RUNNING pauses with the position kept in the frame; any other terminal
// status resolves the composite. When f.order is set it maps positions to
// child indices.
func advance[C any](r *Runner[C], n Node[C], f *frame[C], depth int, ctx C, args []any, children []Node[C], pass Status) Status {
	for f.pos < len(children) {
		idx := f.pos
		if f.order != nil {
			idx = f.order[f.pos]
		}
		switch st := children[idx].tick(r, depth+1, ctx, args); st {
		case StatusRunning:
			return StatusRunning
		case pass:
			f.pos++
		default:
			r.exit(n, depth, st)
			return st
		}
	}
	r.exit(n, depth, pass)
	return pass
}
