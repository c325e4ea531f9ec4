package behavior

import "fmt"

// TaskConfig describes a leaf node. Run is required; Start and Finish are
// optional lifecycle hooks.
type TaskConfig[C any] struct {
	Name string
	// Start is called once when the task is entered from idle, with the
	// arguments given to Runner.Run on that tick.
	Start func(ctx C, args ...any)
	// Run is called on every tick while the task is active.
	Run func(ctx C, args ...any) Status
	// Finish is called once with the terminal status of the activation.
	Finish func(ctx C, status Status)
	// Weight is only consulted by a weighted Random parent.
	Weight float64
}

// Task is a leaf wrapping user logic.
type Task[C any] struct {
	baseNode
	start  func(ctx C, args ...any)
	run    func(ctx C, args ...any) Status
	finish func(ctx C, status Status)
}

// NewTask builds a Task. It fails with ErrMissingRequiredField when Run is nil.
func NewTask[C any](cfg TaskConfig[C]) (*Task[C], error) {
	base, err := newBaseNode(KindTask, cfg.Name, cfg.Weight)
	if err != nil {
		return nil, err
	}
	if cfg.Run == nil {
		return nil, fmt.Errorf("%w: task %q: run", ErrMissingRequiredField, base.name)
	}
	t := &Task[C]{
		baseNode: base,
		start:    cfg.Start,
		run:      cfg.Run,
		finish:   cfg.Finish,
	}
	if t.start == nil {
		t.start = func(C, ...any) {}
	}
	if t.finish == nil {
		t.finish = func(C, Status) {}
	}
	return t, nil
}

func (t *Task[C]) Kind() Kind          { return KindTask }
func (t *Task[C]) Children() []Node[C] { return nil }

func (t *Task[C]) tick(r *Runner[C], depth int, ctx C, args []any) Status {
	if _, fresh := r.enter(t, depth); fresh {
		t.start(ctx, args...)
	}
	st := t.run(ctx, args...).normalize()
	if st == StatusRunning {
		return st
	}
	// The frame is dropped before Finish runs so a panicking hook cannot leave
	// a finished task on the cursor.
	r.pop(depth)
	t.finish(ctx, st)
	r.finished(t, depth, st)
	return st
}
