package main

import (
	"context"
	"fmt"

	"github.com/zeusync/behaviortree/internal/config"
	"github.com/zeusync/behaviortree/internal/core/agents"
	"github.com/zeusync/behaviortree/internal/core/behavior"
	"github.com/zeusync/behaviortree/internal/core/blackboard"
	"github.com/zeusync/behaviortree/internal/core/events/bus"
	"github.com/zeusync/behaviortree/internal/core/observability/log"
	"github.com/zeusync/behaviortree/internal/monitor"
)

type app struct {
	Config   *config.Config
	Log      log.Log
	Events   bus.EventBus
	Registry *behavior.Registry[*blackboard.Blackboard]
	Manager  *agents.Manager[*blackboard.Blackboard]
	// Monitor is nil when disabled.
	Monitor *monitor.Server
}

func provideLogger(cfg *config.Config) (log.Log, func(), error) {
	l, err := log.New(cfg.Level())
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return l, func() { _ = l.Sync() }, nil
}

func provideRegistry(logger log.Log) (*behavior.Registry[*blackboard.Blackboard], error) {
	reg := behavior.NewRegistry[*blackboard.Blackboard]()
	if err := registerDemoTrees(reg); err != nil {
		return nil, fmt.Errorf("register trees: %w", err)
	}
	logger.Debug("trees registered", log.Any("trees", reg.Names()))
	return reg, nil
}

func provideManager(
	cfg *config.Config,
	reg *behavior.Registry[*blackboard.Blackboard],
	events bus.EventBus,
	logger log.Log,
) *agents.Manager[*blackboard.Blackboard] {
	return agents.NewManager(reg, events, logger, agents.Config{
		Workers:    cfg.Workers,
		Seed:       cfg.Seed,
		NodeEvents: cfg.NodeEvents,
		MaxTicks:   cfg.MaxTicks,
	})
}

func provideMonitor(cfg *config.Config, events bus.EventBus, logger log.Log) (*monitor.Server, func(), error) {
	if !cfg.Monitor.Enabled {
		return nil, func() {}, nil
	}
	srv, err := monitor.New(events, logger, monitor.Config{Addr: cfg.Monitor.Addr, Buffer: cfg.Monitor.Buffer})
	if err != nil {
		return nil, nil, err
	}
	return srv, func() { _ = srv.Close() }, nil
}

// spawn creates the configured agents, each with its own blackboard.
func (a *app) spawn() error {
	for _, ac := range a.Config.Agents {
		for _, id := range ac.AgentIDs() {
			bb := blackboard.New()
			for k, v := range ac.Data {
				bb.Set(k, v)
			}
			if _, err := a.Manager.Spawn(id, ac.Tree, bb); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *app) run(ctx context.Context) error {
	if err := a.spawn(); err != nil {
		return err
	}

	sub, err := a.Events.Subscribe(agents.EventAgentTick, func(e bus.Event) error {
		if te, ok := e.Data().(behavior.TickEvent); ok && te.Status.Terminal() {
			a.Log.Info("tree completed",
				log.String("agent", e.Source()),
				log.Stringer("status", te.Status),
				log.Uint64("tick", te.Tick),
			)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Events.Unsubscribe(sub) }()

	if a.Monitor != nil {
		if err := a.Monitor.Start(ctx); err != nil {
			return err
		}
	}

	if err := a.Manager.Run(ctx, a.Config.TickInterval); err != nil {
		return err
	}

	for _, id := range a.Manager.Agents() {
		agent, err := a.Manager.Get(id)
		if err != nil {
			continue
		}
		a.Log.Info("agent summary",
			log.String("agent", id),
			log.String("tree", agent.Tree()),
			log.Uint64("completions", agent.Completions()),
			log.Stringer("status", agent.Status()),
		)
	}
	return nil
}
