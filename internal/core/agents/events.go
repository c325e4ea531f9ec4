package agents

import (
	"github.com/zeusync/behaviortree/internal/core/behavior"
	"github.com/zeusync/behaviortree/internal/core/events/bus"
	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

// Event types published on the bus. Event.Source is the agent id.
const (
	EventAgentSpawned = "agent.spawned"
	EventAgentRemoved = "agent.removed"
	// EventAgentTick carries a behavior.TickEvent.
	EventAgentTick = "agent.tick"
	// EventNodeStarted and EventNodeFinished carry a behavior.NodeEvent and
	// are only published when Config.NodeEvents is set.
	EventNodeStarted  = "node.started"
	EventNodeFinished = "node.finished"
)

// AgentInfo is the payload of spawn and remove events.
type AgentInfo struct {
	ID   string `json:"id"`
	Tree string `json:"tree"`
}

// publisher forwards runner activity of one agent to the bus.
type publisher struct {
	agent string
	bus   bus.EventBus
	nodes bool
	log   log.Log
}

func (p *publisher) publish(typ string, data any) {
	if err := p.bus.Publish(bus.NewEvent(typ, p.agent, data)); err != nil {
		p.log.Warn("event handler failed",
			log.String("event", typ),
			log.Error(err),
		)
	}
}

func (p *publisher) NodeStarted(e behavior.NodeEvent) {
	if p.nodes {
		p.publish(EventNodeStarted, e)
	}
}

func (p *publisher) NodeFinished(e behavior.NodeEvent) {
	if p.nodes {
		p.publish(EventNodeFinished, e)
	}
}

func (p *publisher) TickCompleted(e behavior.TickEvent) {
	p.publish(EventAgentTick, e)
}
