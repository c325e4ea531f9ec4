package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

func TestRunnerForwardsArgs(t *testing.T) {
	type blackboard struct {
		i       int
		started []any
		ran     []any
		outcome Status
	}
	// counts to five, then fails on any further run
	task := Must(NewTask(TaskConfig[*blackboard]{
		Start: func(bb *blackboard, args ...any) {
			bb.i = 0
			bb.started = args
		},
		Run: func(bb *blackboard, args ...any) Status {
			bb.ran = args
			bb.i++
			switch {
			case bb.i == 5:
				return StatusSuccess
			case bb.i > 5:
				return StatusFail
			default:
				return StatusRunning
			}
		},
		Finish: func(bb *blackboard, st Status) {
			bb.i = -1
			bb.outcome = st
		},
	}))
	r := Must(NewRunner(RunnerConfig[*blackboard]{Tree: task}))
	bb := &blackboard{}

	ticks := 0
	var st Status
	for st = StatusRunning; st == StatusRunning; ticks++ {
		st = r.Run(bb, "Some run data", ticks)
	}

	assert.Equal(t, StatusSuccess, st)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, []any{"Some run data", 0}, bb.started)
	assert.Equal(t, []any{"Some run data", 4}, bb.ran)
	assert.Equal(t, -1, bb.i)
	assert.Equal(t, StatusSuccess, bb.outcome)
	assert.Equal(t, uint64(5), r.Ticks())
}

func TestSharedTreeAcrossRunners(t *testing.T) {
	tree := Must(NewSequence(CompositeConfig[*trace]{Nodes: nodes(
		scripted("a", StatusSuccess),
		scripted("b", StatusRunning, StatusRunning, StatusSuccess),
	)}))
	r1, r2 := runner(tree), runner(tree)
	tr1, tr2 := newTrace(), newTrace()

	assert.Equal(t, StatusRunning, r1.Run(tr1))
	assert.Equal(t, StatusRunning, r2.Run(tr2))
	assert.Equal(t, StatusRunning, r1.Run(tr1))
	assert.Equal(t, StatusSuccess, r1.Run(tr1))
	assert.Equal(t, StatusRunning, r2.Run(tr2))
	assert.Equal(t, StatusSuccess, r2.Run(tr2))

	for _, tr := range []*trace{tr1, tr2} {
		assert.Equal(t, 1, tr.starts["a"])
		assert.Equal(t, 1, tr.starts["b"])
		assert.Equal(t, []string{"a", "b", "b", "b"}, tr.runs)
		assert.Empty(t, tr.errs)
	}
	assert.NotEqual(t, r1.ID(), r2.ID())
	assert.Same(t, r1.Root(), r2.Root())
}

func TestLifecyclePairing(t *testing.T) {
	tree := Must(NewSequence(CompositeConfig[*trace]{Name: "root", Nodes: nodes(
		Must(NewSelector(CompositeConfig[*trace]{Nodes: nodes(chaotic("t1", 0), chaotic("t2", 0))})),
		Must(NewRepeat(RepeatConfig[*trace]{Nodes: nodes(chaotic("t3", 0)), Count: 2})),
		Must(NewInvert(CompositeConfig[*trace]{Nodes: nodes(chaotic("t4", 0))})),
		Must(NewRandom(CompositeConfig[*trace]{Nodes: nodes(chaotic("t5", 2), chaotic("t6", 0))})),
		Must(NewRandom(CompositeConfig[*trace]{Nodes: nodes(chaotic("t7", 0), chaotic("t8", 0))})),
		Must(NewRepeat(RepeatConfig[*trace]{Nodes: nodes(chaotic("t9", 0)), Count: 3, BreakOnFail: true})),
	)}))
	r := runner(tree)
	tr := newTrace()

	terminal := 0
	for i := 0; i < 5000; i++ {
		if st := r.Run(tr); st.Terminal() {
			terminal++
			assert.False(t, tr.anyOpen(), "tick %d left a task active", i)
			assert.False(t, r.Running())
		} else {
			assert.True(t, r.Running())
		}
	}
	require.Empty(t, tr.errs)
	assert.Positive(t, terminal)
	for name, starts := range tr.starts {
		finishes := tr.finishes[name]
		if tr.open[name] {
			finishes++
		}
		assert.Equal(t, starts, finishes, name)
	}
}

func TestRunnerObserver(t *testing.T) {
	tree := Must(NewSequence(CompositeConfig[*trace]{Name: "seq", Nodes: nodes(
		scripted("a", StatusSuccess),
		scripted("b", StatusRunning, StatusSuccess),
	)}))

	var started, finished []NodeEvent
	var ticks []TickEvent
	r := runner(tree, WithID("npc-1"), WithObserver(ObserverFuncs{
		OnStart:  func(e NodeEvent) { started = append(started, e) },
		OnFinish: func(e NodeEvent) { finished = append(finished, e) },
		OnTick:   func(e TickEvent) { ticks = append(ticks, e) },
	}), WithObserver(nil))
	tr := newTrace()

	r.Run(tr)
	r.Run(tr)

	require.Len(t, started, 3)
	assert.Equal(t, NodeEvent{RunnerID: "npc-1", Tick: 1, Depth: 0, Node: "seq", Kind: "Sequence", Status: StatusRunning}, started[0])
	assert.Equal(t, "a", started[1].Node)
	assert.Equal(t, "b", started[2].Node)
	assert.Equal(t, 1, started[2].Depth)

	require.Len(t, finished, 3)
	assert.Equal(t, "a", finished[0].Node)
	assert.Equal(t, "b", finished[1].Node)
	assert.Equal(t, uint64(2), finished[1].Tick)
	assert.Equal(t, "seq", finished[2].Node)
	assert.Equal(t, StatusSuccess, finished[2].Status)

	require.Len(t, ticks, 2)
	assert.Equal(t, TickEvent{RunnerID: "npc-1", Tick: 1, Status: StatusRunning, Path: []string{"seq", "b"}}, ticks[0])
	assert.Equal(t, TickEvent{RunnerID: "npc-1", Tick: 2, Status: StatusSuccess, Resumed: true}, ticks[1])
}

func TestRunnerReset(t *testing.T) {
	tree := Must(NewSequence(CompositeConfig[*trace]{Nodes: nodes(
		scripted("a", StatusSuccess),
		scripted("b", StatusRunning),
	)}))
	var finished []string
	r := runner(tree, WithObserver(ObserverFuncs{OnFinish: func(e NodeEvent) {
		finished = append(finished, e.Node+":"+e.Status.String())
	}}))
	tr := newTrace()

	require.Equal(t, StatusRunning, r.Run(tr))
	finished = nil
	r.Reset(tr)

	assert.False(t, r.Running())
	assert.Equal(t, []string{"b:FAIL", "Sequence:FAIL"}, finished)
	assert.Equal(t, 1, tr.finishes["b"])
	assert.False(t, tr.anyOpen())

	require.Equal(t, StatusRunning, r.Run(tr))
	assert.Equal(t, 2, tr.starts["a"])
	assert.Equal(t, 2, tr.starts["b"])
	assert.Empty(t, tr.errs)

	idle := runner(tree)
	idle.Reset(tr)
	assert.False(t, idle.Running())
}

func TestRunnerPanicKeepsCursor(t *testing.T) {
	calls := 0
	boom := Must(NewTask(TaskConfig[*trace]{
		Name:   "boom",
		Start:  func(tr *trace, _ ...any) { tr.started("boom") },
		Finish: func(tr *trace, st Status) { tr.finished("boom", st) },
		Run: func(*trace, ...any) Status {
			calls++
			if calls == 1 {
				panic("task failure")
			}
			return StatusSuccess
		},
	}))
	tree := Must(NewSequence(CompositeConfig[*trace]{Name: "seq", Nodes: nodes(scripted("a", StatusSuccess), boom)}))
	r := runner(tree)
	tr := newTrace()

	assert.PanicsWithValue(t, "task failure", func() { r.Run(tr) })
	assert.Equal(t, []string{"seq", "boom"}, r.Path())

	assert.Equal(t, StatusSuccess, r.Run(tr))
	assert.Equal(t, 1, tr.starts["boom"])
	assert.Equal(t, 1, tr.finishes["boom"])
	assert.Equal(t, 1, tr.starts["a"])
	assert.Empty(t, tr.errs)
}

func TestRunnerLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	task := scripted("leaf", StatusSuccess)
	r := runner(task, WithID("r-1"), WithLogger(log.Wrap(zap.New(core))))

	r.Run(newTrace())

	assert.Equal(t, 1, logs.FilterMessage("node started").Len())
	assert.Equal(t, 1, logs.FilterMessage("node finished").Len())
	ticks := logs.FilterMessage("tick completed").All()
	require.Len(t, ticks, 1)
	fields := ticks[0].ContextMap()
	assert.Equal(t, "r-1", fields["runner"])
	assert.Equal(t, "SUCCESS", fields["status"])
	assert.Equal(t, false, fields["resumed"])
}

func TestRunnerQuietAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := runner(scripted("leaf", StatusSuccess), WithLogger(log.Wrap(zap.New(core))))
	r.Run(newTrace())
	assert.Zero(t, logs.Len())
}
