package main

import (
	"math/rand/v2"

	"github.com/zeusync/behaviortree/internal/core/behavior"
	"github.com/zeusync/behaviortree/internal/core/blackboard"
)

type (
	node = behavior.Node[*blackboard.Blackboard]
	task = behavior.TaskConfig[*blackboard.Blackboard]
)

// counterTask counts to five over five ticks. Ticking it again after that
// without a fresh Start would fail.
func counterTask() node {
	return behavior.Must(behavior.NewTask(task{
		Name: "count",
		Start: func(bb *blackboard.Blackboard, args ...any) {
			bb.Set("i", 0)
			if len(args) > 0 {
				bb.Set("start_data", args[0])
			}
		},
		Run: func(bb *blackboard.Blackboard, _ ...any) behavior.Status {
			i, _ := bb.Incr("i", 1)
			switch {
			case i == 5:
				return behavior.StatusSuccess
			case i > 5:
				return behavior.StatusFail
			default:
				return behavior.StatusRunning
			}
		},
		Finish: func(bb *blackboard.Blackboard, st behavior.Status) {
			bb.Delete("i")
			bb.Set("outcome", st.String())
		},
	}))
}

// visit records its name and always succeeds.
func visit(name string, weight float64) node {
	return behavior.Must(behavior.NewTask(task{
		Name:   name,
		Weight: weight,
		Run: func(bb *blackboard.Blackboard, _ ...any) behavior.Status {
			bb.Set("last", name)
			_, _ = bb.Incr("visits:"+name, 1)
			return behavior.StatusSuccess
		},
	}))
}

// flaky fails one time in ten.
func flaky(name string, weight float64) node {
	return behavior.Must(behavior.NewTask(task{
		Name:   name,
		Weight: weight,
		Run: func(bb *blackboard.Blackboard, _ ...any) behavior.Status {
			if rand.IntN(10) == 0 {
				_, _ = bb.Incr("failures", 1)
				return behavior.StatusFail
			}
			return behavior.StatusSuccess
		},
	}))
}

// registerDemoTrees installs the built-in trees.
func registerDemoTrees(reg *behavior.Registry[*blackboard.Blackboard]) error {
	node1 := visit("node1", 10)
	node2 := visit("node2", 10)
	node3 := visit("node3", 200)
	crazy := flaky("crazy", 200)

	composite := func(nodes ...node) behavior.CompositeConfig[*blackboard.Blackboard] {
		return behavior.CompositeConfig[*blackboard.Blackboard]{Nodes: nodes}
	}

	trees := map[string]node{
		"counter":  counterTask(),
		"wander":   behavior.Must(behavior.NewRandom(composite(node1, node2, node3))),
		"patrol":   behavior.Must(behavior.NewSequence(composite(node1, node2, crazy, node3))),
		"priority": behavior.Must(behavior.NewSelector(composite(node1, node2, node3))),
		"sulk":     behavior.Must(behavior.NewInvert(composite(node1))),
		"drill": behavior.Must(behavior.NewRepeat(behavior.RepeatConfig[*blackboard.Blackboard]{
			Nodes:       []node{crazy},
			Count:       3,
			BreakOnFail: true,
		})),
	}
	for name, tree := range trees {
		if err := reg.Register(name, tree); err != nil {
			return err
		}
	}
	return nil
}
