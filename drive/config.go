package drive

import (
	"fmt"
	"math"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the driving core.
type Config struct {
	Sensor     SensorConfig
	Network    NetworkConfig
	QLearning  QConfig
	Reward     RewardConfig
	Simulation SimulationConfig
}

// SensorConfig holds the ray-fan parameters.
type SensorConfig struct {
	RayCount  int     `ini:"ray_count"`
	RayLength float64 `ini:"ray_length"`
	RaySpread float64 `ini:"ray_spread"`
}

// NetworkConfig holds the perceptron network shape and the mutation amount
// used by the evolutionary search.
type NetworkConfig struct {
	LayerSizes   []int   `ini:"layer_sizes" delim:" "` // Space-separated list, inputs first
	MutateAmount float64 `ini:"mutate_amount"`
	PopSize      int     `ini:"pop_size"`
	Elites       int     `ini:"elites"`
}

// QConfig holds the tabular Q-learning hyperparameters.
type QConfig struct {
	StateSize      int     `ini:"state_size"`
	ActionSize     int     `ini:"action_size"`
	BatchSize      int     `ini:"batch_size"`
	Gamma          float64 `ini:"gamma"`
	Epsilon        float64 `ini:"epsilon"`
	EpsilonMin     float64 `ini:"epsilon_min"`
	EpsilonDecay   float64 `ini:"epsilon_decay"`
	LearningRate   float64 `ini:"learning_rate"`
	ReplayCapacity int     `ini:"replay_capacity"`
	ReplayTrimTo   int     `ini:"replay_trim_to"`
	KeyCodec       string  `ini:"key_codec"` // "rounded" or "hashed"
}

// RewardConfig holds the reward-shaping weights and thresholds.
type RewardConfig struct {
	CollisionPenalty   float64 `ini:"collision_penalty"`
	TimeoutPenalty     float64 `ini:"timeout_penalty"`
	ProgressBonus      float64 `ini:"progress_bonus"`
	ProgressThreshold  float64 `ini:"progress_threshold"`
	TickCost           float64 `ini:"tick_cost"`
	MinSpeed           float64 `ini:"min_speed"`
	SlowPenalty        float64 `ini:"slow_penalty"`
	ProximityThreshold float64 `ini:"proximity_threshold"`
	ProximityPenalty   float64 `ini:"proximity_penalty"`
	LaneChangeRebate   float64 `ini:"lane_change_rebate"`
	CenteringBonus     float64 `ini:"centering_bonus"`
}

// SimulationConfig describes the road geometry and episode bounds the core
// needs for state normalization and truncation.
type SimulationConfig struct {
	RoadLeft    float64 `ini:"road_left"`
	RoadRight   float64 `ini:"road_right"`
	LaneCount   int     `ini:"lane_count"`
	RoadLength  float64 `ini:"road_length"`
	MaxSteps    int     `ini:"max_steps"`
	LearnPeriod int     `ini:"learn_period"` // Ticks between Learn() calls
}

// DefaultConfig returns a Config populated with the stated defaults.
// No hidden globals: every numeric hyperparameter is settable here.
func DefaultConfig() *Config {
	return &Config{
		Sensor: SensorConfig{
			RayCount:  5,
			RayLength: 120,
			RaySpread: math.Pi / 2,
		},
		Network: NetworkConfig{
			LayerSizes:   []int{5, 6, 4},
			MutateAmount: 0.1,
			PopSize:      32,
			Elites:       2,
		},
		QLearning: QConfig{
			StateSize:      9,
			ActionSize:     5,
			BatchSize:      32,
			Gamma:          0.95,
			Epsilon:        1.0,
			EpsilonMin:     0.05,
			EpsilonDecay:   0.999,
			LearningRate:   0.005,
			ReplayCapacity: 10000,
			ReplayTrimTo:   8000,
			KeyCodec:       "rounded",
		},
		Reward: RewardConfig{
			CollisionPenalty:   -100,
			TimeoutPenalty:     -20,
			ProgressBonus:      50,
			ProgressThreshold:  500,
			TickCost:           -0.1,
			MinSpeed:           0.5,
			SlowPenalty:        -1,
			ProximityThreshold: 0.6,
			ProximityPenalty:   -2,
			LaneChangeRebate:   0.5,
			CenteringBonus:     1,
		},
		Simulation: SimulationConfig{
			RoadLeft:    0,
			RoadRight:   300,
			LaneCount:   3,
			RoadLength:  1000,
			MaxSteps:    1000,
			LearnPeriod: 4,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file. Missing keys
// keep their defaults; present keys are validated.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()

	if err := cfg.Section("Sensor").MapTo(&config.Sensor); err != nil {
		return nil, fmt.Errorf("failed to map [Sensor] section: %w", err)
	}
	if err := cfg.Section("Network").MapTo(&config.Network); err != nil {
		return nil, fmt.Errorf("failed to map [Network] section: %w", err)
	}
	if err := cfg.Section("QLearning").MapTo(&config.QLearning); err != nil {
		return nil, fmt.Errorf("failed to map [QLearning] section: %w", err)
	}
	if err := cfg.Section("Reward").MapTo(&config.Reward); err != nil {
		return nil, fmt.Errorf("failed to map [Reward] section: %w", err)
	}
	if err := cfg.Section("Simulation").MapTo(&config.Simulation); err != nil {
		return nil, fmt.Errorf("failed to map [Simulation] section: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate performs basic range validation over the configuration.
func (c *Config) Validate() error {
	if c.Sensor.RayCount <= 0 {
		return fmt.Errorf("config error: ray_count must be positive")
	}
	if c.Sensor.RayLength <= 0 {
		return fmt.Errorf("config error: ray_length must be positive")
	}
	if c.Sensor.RaySpread <= 0 || c.Sensor.RaySpread > 2*math.Pi {
		return fmt.Errorf("config error: ray_spread must be in (0, 2*pi]")
	}
	if len(c.Network.LayerSizes) < 2 {
		return fmt.Errorf("config error: layer_sizes needs at least an input and an output width")
	}
	for _, n := range c.Network.LayerSizes {
		if n <= 0 {
			return fmt.Errorf("config error: layer_sizes entries must be positive")
		}
	}
	if c.Network.MutateAmount < 0 || c.Network.MutateAmount > 1 {
		return fmt.Errorf("config error: mutate_amount must be between 0 and 1")
	}
	if c.Network.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Network.Elites < 0 || c.Network.Elites > c.Network.PopSize {
		return fmt.Errorf("config error: elites must be in [0, pop_size]")
	}
	if c.QLearning.StateSize <= 0 {
		return fmt.Errorf("config error: state_size must be positive")
	}
	if c.QLearning.ActionSize <= 0 {
		return fmt.Errorf("config error: action_size must be positive")
	}
	if c.QLearning.BatchSize <= 0 {
		return fmt.Errorf("config error: batch_size must be positive")
	}
	if c.QLearning.Gamma < 0 || c.QLearning.Gamma > 1 {
		return fmt.Errorf("config error: gamma must be between 0 and 1")
	}
	if c.QLearning.Epsilon < 0 || c.QLearning.Epsilon > 1 {
		return fmt.Errorf("config error: epsilon must be between 0 and 1")
	}
	if c.QLearning.EpsilonMin < 0 || c.QLearning.EpsilonMin > c.QLearning.Epsilon {
		return fmt.Errorf("config error: epsilon_min must be in [0, epsilon]")
	}
	if c.QLearning.EpsilonDecay <= 0 || c.QLearning.EpsilonDecay > 1 {
		return fmt.Errorf("config error: epsilon_decay must be in (0, 1]")
	}
	if c.QLearning.LearningRate <= 0 || c.QLearning.LearningRate > 1 {
		return fmt.Errorf("config error: learning_rate must be in (0, 1]")
	}
	if c.QLearning.ReplayCapacity <= 0 {
		return fmt.Errorf("config error: replay_capacity must be positive")
	}
	if c.QLearning.ReplayTrimTo <= 0 || c.QLearning.ReplayTrimTo > c.QLearning.ReplayCapacity {
		return fmt.Errorf("config error: replay_trim_to must be in (0, replay_capacity]")
	}
	switch c.QLearning.KeyCodec {
	case "", "rounded", "hashed":
	default:
		return fmt.Errorf("config error: invalid key_codec '%s', must be 'rounded' or 'hashed'", c.QLearning.KeyCodec)
	}
	if c.Simulation.RoadRight <= c.Simulation.RoadLeft {
		return fmt.Errorf("config error: road_right must be greater than road_left")
	}
	if c.Simulation.LaneCount <= 0 {
		return fmt.Errorf("config error: lane_count must be positive")
	}
	if c.Simulation.MaxSteps <= 0 {
		return fmt.Errorf("config error: max_steps must be positive")
	}
	if c.Simulation.LearnPeriod <= 0 {
		return fmt.Errorf("config error: learn_period must be positive")
	}
	return nil
}

// Road returns the road geometry description derived from the simulation
// section.
func (c *Config) Road() Road {
	return Road{
		Left:      c.Simulation.RoadLeft,
		Right:     c.Simulation.RoadRight,
		LaneCount: c.Simulation.LaneCount,
		Length:    c.Simulation.RoadLength,
	}
}
