package behavior

import (
	"fmt"
	"math/rand/v2"
)

// trace is the blackboard used by most tests. Every counter lives here, never
// in the nodes, so trees can be shared between runners.
type trace struct {
	events   []string
	runs     []string
	starts   map[string]int
	finishes map[string]int
	calls    map[string]int // run calls in the current activation
	total    map[string]int // run calls over all activations
	open     map[string]bool
	errs     []string
	args     [][]any
	rng      *rand.Rand
}

func newTrace() *trace {
	return &trace{
		starts:   make(map[string]int),
		finishes: make(map[string]int),
		calls:    make(map[string]int),
		total:    make(map[string]int),
		open:     make(map[string]bool),
		rng:      rand.New(rand.NewPCG(1, 2)),
	}
}

func (tr *trace) started(name string) {
	if tr.open[name] {
		tr.errs = append(tr.errs, "start while active: "+name)
	}
	tr.open[name] = true
	tr.starts[name]++
	tr.calls[name] = 0
	tr.events = append(tr.events, "start:"+name)
}

func (tr *trace) finished(name string, st Status) {
	if !tr.open[name] {
		tr.errs = append(tr.errs, "finish without start: "+name)
	}
	if !st.Terminal() {
		tr.errs = append(tr.errs, fmt.Sprintf("finish with %s: %s", st, name))
	}
	tr.open[name] = false
	tr.finishes[name]++
	tr.events = append(tr.events, "finish:"+name+":"+st.String())
}

func (tr *trace) ran(name string) {
	tr.calls[name]++
	tr.total[name]++
	tr.runs = append(tr.runs, name)
	tr.events = append(tr.events, "run:"+name)
}

func (tr *trace) anyOpen() bool {
	for _, open := range tr.open {
		if open {
			return true
		}
	}
	return false
}

func at(script []Status, i int) Status {
	if i >= len(script) {
		return script[len(script)-1]
	}
	return script[i]
}

// scripted returns a task replaying script within each activation; the last
// entry repeats.
func scripted(name string, script ...Status) *Task[*trace] {
	return weightedScripted(name, 0, script...)
}

func weightedScripted(name string, weight float64, script ...Status) *Task[*trace] {
	return Must(NewTask(TaskConfig[*trace]{
		Name:   name,
		Weight: weight,
		Start:  func(tr *trace, _ ...any) { tr.started(name) },
		Run: func(tr *trace, _ ...any) Status {
			i := tr.calls[name]
			tr.ran(name)
			return at(script, i)
		},
		Finish: func(tr *trace, st Status) { tr.finished(name, st) },
	}))
}

// perCall returns a task replaying script across activations.
func perCall(name string, script ...Status) *Task[*trace] {
	return Must(NewTask(TaskConfig[*trace]{
		Name:  name,
		Start: func(tr *trace, _ ...any) { tr.started(name) },
		Run: func(tr *trace, _ ...any) Status {
			i := tr.total[name]
			tr.ran(name)
			return at(script, i)
		},
		Finish: func(tr *trace, st Status) { tr.finished(name, st) },
	}))
}

// chaotic returns a task whose outcome is drawn from the trace's generator.
func chaotic(name string, weight float64) *Task[*trace] {
	return Must(NewTask(TaskConfig[*trace]{
		Name:   name,
		Weight: weight,
		Start:  func(tr *trace, _ ...any) { tr.started(name) },
		Run: func(tr *trace, _ ...any) Status {
			tr.ran(name)
			return []Status{StatusSuccess, StatusFail, StatusRunning}[tr.rng.IntN(3)]
		},
		Finish: func(tr *trace, st Status) { tr.finished(name, st) },
	}))
}

func nodes(ns ...Node[*trace]) []Node[*trace] { return ns }

func runner(tree Node[*trace], opts ...Option) *Runner[*trace] {
	return Must(NewRunner(RunnerConfig[*trace]{Tree: tree}, append([]Option{WithSeed(7)}, opts...)...))
}
