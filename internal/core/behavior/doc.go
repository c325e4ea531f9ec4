// Package behavior is a tick-driven behavior tree engine.
//
// A tree is built from Task leaves and the Sequence, Selector, Random,
// Invert and Repeat composites. Nodes are immutable and generic over the
// caller's blackboard type C. A Runner ticks one tree for one subject: each
// Run call performs exactly one tick and returns SUCCESS, FAIL or RUNNING.
// After RUNNING the next Run resumes at the node that was running, without
// re-entering nodes that already started, and Start/Finish hooks of every
// task fire exactly once per activation.
//
//	patrol := behavior.Must(behavior.NewSequence(behavior.CompositeConfig[*Guard]{
//		Nodes: []behavior.Node[*Guard]{walk, look},
//	}))
//	r := behavior.Must(behavior.NewRunner(behavior.RunnerConfig[*Guard]{Tree: patrol}))
//	for r.Run(guard) == behavior.StatusRunning {
//		waitForNextFrame()
//	}
package behavior
