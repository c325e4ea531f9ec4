package behavior

// Random ticks its children in a random order.
//
// When no child declares a weight it behaves as a Selector over a permutation
// drawn once per activation; resumption after RUNNING continues the same
// permutation. When at least one child declares a weight, a single child is
// drawn per activation with probability weight/sum (children without a weight
// count as DefaultWeight) and its status is returned as is. An empty Random
// fails.
type Random[C any] struct {
	baseNode
	children []Node[C]
	weighted bool
	picker   weightedPicker
}

func NewRandom[C any](cfg CompositeConfig[C]) (*Random[C], error) {
	base, err := newBaseNode(KindRandom, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	children, err := checkNodes(KindRandom, base.name, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	n := &Random[C]{baseNode: base, children: children}
	weights := make([]float64, len(children))
	for i, ch := range children {
		weights[i] = ch.Weight()
		if weights[i] > 0 {
			n.weighted = true
		}
	}
	if n.weighted {
		n.picker = newWeightedPicker(weights)
	}
	return n, nil
}

func (n *Random[C]) Kind() Kind          { return KindRandom }
func (n *Random[C]) Children() []Node[C] { return copyNodes(n.children) }

// Weighted reports whether the node picks a single child by weight.
func (n *Random[C]) Weighted() bool { return n.weighted }

func (n *Random[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	f, fresh := r.enter(n, depth)
	if len(n.children) == 0 {
		r.exit(n, depth, StatusFail)
		return StatusFail
	}
	if !n.weighted {
		if fresh {
			f.order = r.rng.Perm(len(n.children))
		}
		return advance(r, n, f, depth, ctx, args, n.children, StatusFail)
	}

	if fresh {
		f.order = []int{n.picker.pick(r.rng)}
	}
	st := n.children[f.order[0]].tick(r, depth+1, ctx, args)
	if st == StatusRunning {
		return st
	}
	r.exit(n, depth, st)
	return st
}
