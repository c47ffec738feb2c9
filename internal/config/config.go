package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv string
	Port   string

	DBPath      string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RouteCacheTTL time.Duration

	ORSAPIKey  string
	ORSProfile string

	LoopFile string
	Loop     LoopConfig

	TickInterval time.Duration
	// Delta is the distance moved per tick; Epsilon the arrival threshold.
	// Epsilon must be at least Delta.
	Delta           float64
	Epsilon         float64
	HoldUntilRouted bool

	Kafka KafkaConfig
}

type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	RoutesTopic  string
	UpdatesTopic string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// LoopConfig is the YAML loop file: the waypoint addresses walked in order and
// the metadata the transport registers with.
type LoopConfig struct {
	TransportID string   `yaml:"transport_id"`
	Waypoints   []string `yaml:"waypoints"`
	MPG         int      `yaml:"mpg"`
	Capacity    int      `yaml:"capacity"`
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment and the loop file.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        Get("APP_ENV", "production"),
		Port:          Get("PORT", "8080"),
		DBPath:        Get("DB_PATH", "data/app.db"),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RedisAddr:     Get("REDIS_ADDR", ""),
		RedisPassword: Get("REDIS_PASSWORD", ""),
		ORSAPIKey:     Get("ORS_API_KEY", ""),
		ORSProfile:    Get("ORS_PROFILE", "driving-car"),
		LoopFile:      Get("LOOP_FILE", "data/loop.yaml"),
		Kafka: KafkaConfig{
			Brokers:      splitList(Get("KAFKA_BROKERS", "")),
			GroupID:      Get("KAFKA_GROUP_ID", "transport-simulator"),
			RoutesTopic:  Get("FLEET_ROUTES_TOPIC", "fleet.routes"),
			UpdatesTopic: Get("FLEET_UPDATES_TOPIC", "fleet.updates"),
		},
	}

	var err error
	if cfg.RouteCacheTTL, err = getDuration("ROUTE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.Delta, err = getFloat("MOVE_DELTA", 0.002); err != nil {
		return nil, err
	}
	if cfg.Epsilon, err = getFloat("ARRIVAL_EPSILON", 2*cfg.Delta); err != nil {
		return nil, err
	}
	// Without a fleet nothing would ever release a held vehicle.
	if cfg.HoldUntilRouted, err = getBool("HOLD_UNTIL_ROUTED", cfg.Kafka.Enabled()); err != nil {
		return nil, err
	}

	loop, err := LoadLoop(cfg.LoopFile)
	if err != nil {
		return nil, err
	}
	cfg.Loop = *loop

	if id := Get("TRANSPORT_ID", ""); id != "" {
		cfg.Loop.TransportID = id
	}
	if cfg.Loop.TransportID == "" {
		cfg.Loop.TransportID = uuid.New().String()
	}
	if cfg.Loop.MPG, err = getInt("TRANSPORT_MPG", cfg.Loop.MPG); err != nil {
		return nil, err
	}
	if cfg.Loop.Capacity, err = getInt("TRANSPORT_CAPACITY", cfg.Loop.Capacity); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLoop parses the YAML loop file.
func LoadLoop(path string) (*LoopConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load loop: read %q: %w", path, err)
	}

	var loop LoopConfig
	if err := yaml.Unmarshal(data, &loop); err != nil {
		return nil, fmt.Errorf("load loop: parse yaml: %w", err)
	}

	waypoints := make([]string, 0, len(loop.Waypoints))
	for i, w := range loop.Waypoints {
		w = strings.TrimSpace(w)
		if w == "" {
			return nil, fmt.Errorf("load loop: waypoint at index %d: address cannot be empty", i+1)
		}
		waypoints = append(waypoints, w)
	}
	loop.Waypoints = waypoints

	return &loop, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.ORSAPIKey == "" {
		errs = append(errs, errors.New("ORS_API_KEY is required"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("TICK_INTERVAL must be positive"))
	}
	if c.Delta <= 0 {
		errs = append(errs, errors.New("MOVE_DELTA must be positive"))
	}
	if c.Epsilon < c.Delta {
		errs = append(errs, fmt.Errorf("ARRIVAL_EPSILON (%g) must be at least MOVE_DELTA (%g)", c.Epsilon, c.Delta))
	}
	if len(c.Loop.Waypoints) < 2 {
		errs = append(errs, fmt.Errorf("loop file %q must list at least two waypoints", c.LoopFile))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
