package agents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behaviortree/internal/core/behavior"
	"github.com/zeusync/behaviortree/internal/core/events/bus"
	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

var (
	ErrAgentExists     = errors.New("agent already exists")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrTaskPanic       = errors.New("behavior tree panicked")
	ErrInvalidInterval = errors.New("tick interval must be positive")
)

// Config controls a Manager.
type Config struct {
	// Workers bounds how many agents tick in parallel. Zero means one per agent.
	Workers int
	// Seed is mixed with each agent id to derive the agent's random source,
	// so a given (Seed, id) pair always makes the same choices.
	Seed uint64
	// NodeEvents enables per-node started/finished events.
	NodeEvents bool
	// MaxTicks stops Run after that many ticks. Zero runs until cancelled.
	MaxTicks uint64
}

// Agent pairs a runner with the context it ticks.
type Agent[C any] struct {
	id     string
	tree   string
	ctx    C
	runner *behavior.Runner[C]

	mu          sync.Mutex
	last        behavior.Status
	completions uint64
}

func (a *Agent[C]) ID() string                  { return a.id }
func (a *Agent[C]) Tree() string                { return a.tree }
func (a *Agent[C]) Context() C                  { return a.ctx }
func (a *Agent[C]) Runner() *behavior.Runner[C] { return a.runner }

// Status returns the status of the most recent tick.
func (a *Agent[C]) Status() behavior.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Completions counts ticks that ended with SUCCESS or FAIL.
func (a *Agent[C]) Completions() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.completions
}

func (a *Agent[C]) tick(args []any) (st behavior.Status, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			st = behavior.StatusFail
			err = fmt.Errorf("%w: agent %s: %v", ErrTaskPanic, a.id, rec)
		}
		a.mu.Lock()
		a.last = st
		if st.Terminal() {
			a.completions++
		}
		a.mu.Unlock()
	}()
	return a.runner.Run(a.ctx, args...), nil
}

// Manager owns many agents built from the trees of a registry and ticks
// them concurrently.
type Manager[C any] struct {
	registry *behavior.Registry[C]
	events   bus.EventBus
	log      log.Log
	cfg      Config

	mu     sync.RWMutex
	agents map[string]*Agent[C]

	tickMu sync.Mutex
	ticks  uint64
}

func NewManager[C any](registry *behavior.Registry[C], events bus.EventBus, logger log.Log, cfg Config) *Manager[C] {
	if logger == nil {
		logger = log.Nop()
	}
	if events == nil {
		events = bus.New()
	}
	return &Manager[C]{
		registry: registry,
		events:   events,
		log:      logger.Named("agents"),
		cfg:      cfg,
		agents:   make(map[string]*Agent[C]),
	}
}

// Events returns the bus the manager publishes on.
func (m *Manager[C]) Events() bus.EventBus { return m.events }

// Spawn creates an agent ticking the registered tree with the given context.
// An empty id is replaced by a random UUID.
func (m *Manager[C]) Spawn(id, tree string, ctx C) (*Agent[C], error) {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	if _, exists := m.agents[id]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAgentExists, id)
	}

	pub := &publisher{agent: id, bus: m.events, nodes: m.cfg.NodeEvents, log: m.log.With(log.String("agent", id))}
	runner, err := m.registry.NewRunner(tree,
		behavior.WithID(id),
		behavior.WithSeed(xxhash.Sum64String(id)^m.cfg.Seed),
		behavior.WithLogger(m.log.Named("runner")),
		behavior.WithObserver(pub),
	)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("spawn %s: %w", id, err)
	}

	a := &Agent[C]{id: id, tree: tree, ctx: ctx, runner: runner}
	m.agents[id] = a
	m.mu.Unlock()

	m.log.Info("agent spawned", log.String("agent", id), log.String("tree", tree))
	pub.publish(EventAgentSpawned, AgentInfo{ID: id, Tree: tree})
	return a, nil
}

// Remove drops the agent, failing any task it left running.
func (m *Manager[C]) Remove(id string) error {
	m.mu.Lock()
	a, ok := m.agents[id]
	if ok {
		delete(m.agents, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}

	m.tickMu.Lock()
	a.runner.Reset(a.ctx)
	m.tickMu.Unlock()

	m.log.Info("agent removed", log.String("agent", id))
	if err := m.events.Publish(bus.NewEvent(EventAgentRemoved, id, AgentInfo{ID: id, Tree: a.tree})); err != nil {
		m.log.Warn("event handler failed", log.String("event", EventAgentRemoved), log.Error(err))
	}
	return nil
}

func (m *Manager[C]) Get(id string) (*Agent[C], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return a, nil
}

// Agents returns the ids of all agents, sorted.
func (m *Manager[C]) Agents() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.agents))
	for id := range m.agents {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (m *Manager[C]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Ticks returns how many manager ticks have completed.
func (m *Manager[C]) Ticks() uint64 {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.ticks
}

// Tick runs every agent once, at most Config.Workers at a time, and returns
// the resulting statuses by agent id. A panicking tree is reported as
// ErrTaskPanic without stopping the other agents.
func (m *Manager[C]) Tick(ctx context.Context, args ...any) (map[string]behavior.Status, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	m.mu.RLock()
	agents := make([]*Agent[C], 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	m.mu.RUnlock()

	results := make([]behavior.Status, len(agents))
	errs := make([]error, len(agents))

	g, gctx := errgroup.WithContext(ctx)
	if m.cfg.Workers > 0 {
		g.SetLimit(m.cfg.Workers)
	}
	for i, a := range agents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = a.tick(args)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.ticks++

	statuses := make(map[string]behavior.Status, len(agents))
	for i, a := range agents {
		statuses[a.id] = results[i]
		if errs[i] != nil {
			m.log.Error("agent tick failed", log.String("agent", a.id), log.Error(errs[i]))
		}
	}
	return statuses, errors.Join(errs...)
}

// Run ticks all agents every interval until ctx is cancelled or MaxTicks is
// reached. Tree panics are logged and do not stop the loop.
func (m *Manager[C]) Run(ctx context.Context, interval time.Duration, args ...any) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info("agent loop started",
		log.Duration("interval", interval),
		log.Int("agents", m.Len()),
	)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("agent loop stopped", log.Uint64("ticks", m.Ticks()))
			return nil
		case <-ticker.C:
			if _, err := m.Tick(ctx, args...); err != nil {
				if ctx.Err() != nil {
					continue
				}
				if !errors.Is(err, ErrTaskPanic) {
					return err
				}
			}
			if m.cfg.MaxTicks > 0 && m.Ticks() >= m.cfg.MaxTicks {
				m.log.Info("agent loop finished", log.Uint64("ticks", m.Ticks()))
				return nil
			}
		}
	}
}
