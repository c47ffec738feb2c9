package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopYAML = `
transport_id: shuttle-7
mpg: 30
capacity: 4
waypoints:
  - "200 University Ave W, Waterloo, ON"
  - "  100 King St S, Waterloo, ON "
  - "50 Westmount Rd N, Waterloo, ON"
`

func writeLoop(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// cleanEnv blanks every key Load reads so the host environment cannot leak in.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "PORT", "DB_PATH", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD",
		"ROUTE_CACHE_TTL", "ORS_API_KEY", "ORS_PROFILE", "LOOP_FILE", "TICK_INTERVAL",
		"MOVE_DELTA", "ARRIVAL_EPSILON", "HOLD_UNTIL_ROUTED", "KAFKA_BROKERS",
		"KAFKA_GROUP_ID", "FLEET_ROUTES_TOPIC", "FLEET_UPDATES_TOPIC", "TRANSPORT_ID",
		"TRANSPORT_MPG", "TRANSPORT_CAPACITY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("LOOP_FILE", writeLoop(t, loopYAML))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 0.002, cfg.Delta)
	assert.Equal(t, 0.004, cfg.Epsilon)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.HoldUntilRouted)
	assert.Equal(t, "shuttle-7", cfg.Loop.TransportID)
	assert.Equal(t, 4, cfg.Loop.Capacity)
	require.Len(t, cfg.Loop.Waypoints, 3)
	assert.Equal(t, "100 King St S, Waterloo, ON", cfg.Loop.Waypoints[1])
}

func TestLoadWithKafkaHoldsUntilRouted(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("LOOP_FILE", writeLoop(t, loopYAML))
	t.Setenv("KAFKA_BROKERS", "localhost:9092, localhost:9093")
	t.Setenv("TRANSPORT_ID", "override")
	t.Setenv("TRANSPORT_CAPACITY", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.HoldUntilRouted)
	assert.Equal(t, "override", cfg.Loop.TransportID)
	assert.Equal(t, 12, cfg.Loop.Capacity)
	assert.Equal(t, 30, cfg.Loop.MPG)
}

func TestLoadRejectsEpsilonBelowDelta(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("LOOP_FILE", writeLoop(t, loopYAML))
	t.Setenv("MOVE_DELTA", "0.002")
	t.Setenv("ARRIVAL_EPSILON", "0.001")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARRIVAL_EPSILON")
}

func TestLoadRequiresTwoWaypointsAndKey(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ORS_API_KEY", "")
	t.Setenv("LOOP_FILE", writeLoop(t, "waypoints: [\"only one\"]\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORS_API_KEY")
	assert.Contains(t, err.Error(), "at least two waypoints")
}

func TestLoadLoopRejectsBlankWaypoint(t *testing.T) {
	_, err := LoadLoop(writeLoop(t, "waypoints: [\"a\", \"  \"]\n"))
	assert.Error(t, err)
}

func TestLoadGeneratesTransportID(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("LOOP_FILE", writeLoop(t, "waypoints: [\"a\", \"b\"]\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Loop.TransportID)
}
