package behavior

// NodeEvent describes a node activation starting or finishing.
type NodeEvent struct {
	RunnerID string `json:"runner"`
	Tick     uint64 `json:"tick"`
	Depth    int    `json:"depth"`
	Node     string `json:"node"`
	Kind     string `json:"kind"`
	// Status is the terminal status on finish, StatusRunning on start.
	Status Status `json:"status"`
}

// TickEvent summarizes one Runner.Run call.
type TickEvent struct {
	RunnerID string `json:"runner"`
	Tick     uint64 `json:"tick"`
	Status   Status `json:"status"`
	// Resumed is set when the tick continued a running activation.
	Resumed bool `json:"resumed"`
	// Path lists node names from the root to the running leaf after the tick.
	Path []string `json:"path,omitempty"`
}

// Observer receives runner activity. Callbacks run synchronously on the
// goroutine calling Runner.Run and must not call back into the runner.
type Observer interface {
	NodeStarted(e NodeEvent)
	NodeFinished(e NodeEvent)
	TickCompleted(e TickEvent)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped.
type ObserverFuncs struct {
	OnStart  func(NodeEvent)
	OnFinish func(NodeEvent)
	OnTick   func(TickEvent)
}

func (o ObserverFuncs) NodeStarted(e NodeEvent) {
	if o.OnStart != nil {
		o.OnStart(e)
	}
}

func (o ObserverFuncs) NodeFinished(e NodeEvent) {
	if o.OnFinish != nil {
		o.OnFinish(e)
	}
}

func (o ObserverFuncs) TickCompleted(e TickEvent) {
	if o.OnTick != nil {
		o.OnTick(e)
	}
}
