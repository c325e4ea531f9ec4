package behavior

import (
	"fmt"
	"math"
	"reflect"
)

// Kind identifies the node variant.
type Kind uint8

const (
	KindTask Kind = iota + 1
	KindSequence
	KindSelector
	KindRandom
	KindInvert
	KindRepeat
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "Task"
	case KindSequence:
		return "Sequence"
	case KindSelector:
		return "Selector"
	case KindRandom:
		return "Random"
	case KindInvert:
		return "Invert"
	case KindRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// Node is a behavior tree node operating on a caller-owned context of type C.
//
// Nodes are immutable once built and keep no per-activation state, so one
// node graph can back any number of runners. All activation bookkeeping
// lives in the Runner that ticks it.
type Node[C any] interface {
	// Name returns the node name used in logs, events and cursor paths.
	Name() string
	// Kind returns the node variant.
	Kind() Kind
	// Weight returns the declared selection weight, 0 when undeclared.
	Weight() float64
	// Children returns a copy of the child list; nil for tasks.
	Children() []Node[C]

	tick(r *Runner[C], depth int, ctx C, args []any) Status
}

type baseNode struct {
	name   string
	weight float64
}

func (b baseNode) Name() string    { return b.name }
func (b baseNode) Weight() float64 { return b.weight }

func newBaseNode(kind Kind, name string, weight float64) (baseNode, error) {
	if name == "" {
		name = kind.String()
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return baseNode{}, fmt.Errorf("%w: %s %q: weight must be a finite non-negative number, got %v",
			ErrInvalidConfiguration, kind, name, weight)
	}
	return baseNode{name: name, weight: weight}, nil
}

// checkNodes validates a child list and returns a private copy of it.
func checkNodes[C any](kind Kind, name string, nodes []Node[C]) ([]Node[C], error) {
	out := make([]Node[C], len(nodes))
	for i, n := range nodes {
		if isNil(n) {
			return nil, fmt.Errorf("%w: %s %q: node %d is nil", ErrInvalidConfiguration, kind, name, i)
		}
		out[i] = n
	}
	return out, nil
}

// checkSingle validates the child list of a decorator.
func checkSingle[C any](kind Kind, name string, nodes []Node[C]) (Node[C], error) {
	if len(nodes) != 1 {
		return nil, fmt.Errorf("%w: %s %q takes exactly one node, got %d", ErrInvalidChildCount, kind, name, len(nodes))
	}
	checked, err := checkNodes(kind, name, nodes)
	if err != nil {
		return nil, err
	}
	return checked[0], nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func copyNodes[C any](nodes []Node[C]) []Node[C] {
	out := make([]Node[C], len(nodes))
	copy(out, nodes)
	return out
}

// Must panics if err is non-nil. Handy for static trees built at init time.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
