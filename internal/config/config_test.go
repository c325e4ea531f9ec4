package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, log.LevelInfo, c.Level())
	assert.Equal(t, 100*time.Millisecond, c.TickInterval)
}

func TestLoadEmptyKeepsDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad(t *testing.T) {
	src := `
log_level: debug
tick_interval: 250ms
max_ticks: 40
workers: 4
seed: 7
node_events: true
agents:
  - id: guard
    tree: patrol
    count: 3
    data:
      hp: 10
monitor:
  enabled: true
  addr: 127.0.0.1:9000
`
	c, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, log.LevelDebug, c.Level())
	assert.Equal(t, 250*time.Millisecond, c.TickInterval)
	assert.Equal(t, uint64(40), c.MaxTicks)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, uint64(7), c.Seed)
	assert.True(t, c.NodeEvents)
	require.Len(t, c.Agents, 1)
	assert.Equal(t, []string{"guard-0", "guard-1", "guard-2"}, c.Agents[0].AgentIDs())
	assert.Equal(t, 10, c.Agents[0].Data["hp"])
	assert.True(t, c.Monitor.Enabled)
	assert.Equal(t, "127.0.0.1:9000", c.Monitor.Addr)
	assert.Equal(t, 256, c.Monitor.Buffer)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("tick_rate: 1s\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.TickInterval = 0
	c.Workers = -1
	c.LogLevel = "loud"
	c.Agents = []AgentConfig{{ID: "a", Tree: "t"}, {ID: "a", Tree: "t"}, {Tree: "t", Count: -1}}
	c.Monitor = MonitorConfig{Enabled: true, Buffer: -1}

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"tick_interval", "workers", "loud", "duplicate agent id", "id is required", "count", "monitor.addr", "monitor.buffer"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.Equal(t, log.LevelInfo, c.Level())
}

func TestValidateExpandedIDs(t *testing.T) {
	c := Default()
	c.Agents = []AgentConfig{{ID: "guard", Tree: "t", Count: 2}, {ID: "guard-1", Tree: "t"}}
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `duplicate agent id "guard-1"`)

	c.Agents = []AgentConfig{{ID: "guard", Tree: "t", Count: 2}, {ID: "guard", Tree: "t"}}
	assert.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "behaviord.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Workers)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
