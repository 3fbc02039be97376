package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, "u1"), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, "u1"), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", "u1"))
	assert.False(t, m.Enabled("never", "u1"))
	assert.False(t, m.Enabled("broken", "u1"))

	first := m.Enabled("canary", "65a1f0c2e4b0a1b2c3d4e5f6")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", "65a1f0c2e4b0a1b2c3d4e5f6"), "rollout must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", ""), "percentage rollout requires a user")
	assert.False(t, m.EnabledGlobally("canary"))
	assert.True(t, m.EnabledGlobally("always"))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,Post_Events=on, y = 20% ,rate_limits=off ")

	raw := m.Raw()
	require.Len(t, raw, 3)
	assert.Equal(t, map[string]string{"post_events": "on", "y": "20%", "rate_limits": "off"}, raw)

	assert.True(t, m.EnabledGlobally(PostEvents))
	assert.False(t, m.EnabledGlobally(RateLimits))
	assert.Len(t, m.Snapshot("u1"), 3)
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(PostEvents, "u1"))
}
