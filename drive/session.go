package drive

import (
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observation is the plain per-tick data handed over by the kinematics layer:
// the current pose, the static border segments, the obstacle footprints, the
// cumulative forward distance of the episode and whether the vehicle is in
// collision.
type Observation struct {
	Pose      Pose
	Borders   []Segment
	Obstacles []Polygon
	Distance  float64
	Collision bool
}

// Session threads one agent through the perception-cognition-learning loop.
// It is an explicit object constructed by the caller - there are no ambient
// module-level singletons. Within a tick, sensing always precedes action
// selection, and every stored experience pairs the state before the action
// with the state after it.
//
// A session is single-threaded; parallel simulations each get their own
// session with independent state.
type Session struct {
	cfg    *Config
	sensor *Sensor
	agent  *Agent
	reward *RewardModel
	logger *zap.Logger

	episodeID   string
	episodes    int
	steps       int
	totalReward float64
	prevState   []float64
	prevAction  int
	hasPrev     bool
}

// NewSession builds a session from the config: sensor, Q-learning agent with
// the configured key codec, and reward model over the configured road. A nil
// config gets DefaultConfig(); a nil logger a no-op logger.
func NewSession(cfg *Config, logger *zap.Logger) *Session {
	return NewSessionWithRand(cfg, logger, nil)
}

// NewSessionWithRand is NewSession with an explicit random source, for
// deterministic simulations and tests.
func NewSessionWithRand(cfg *Config, logger *zap.Logger, rng *rand.Rand) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Simulation.LearnPeriod <= 0 {
		cfg.Simulation.LearnPeriod = DefaultConfig().Simulation.LearnPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	road := cfg.Road()
	s := &Session{
		cfg:    cfg,
		sensor: NewSensor(cfg.Sensor),
		agent:  NewAgent(cfg.QLearning, nil, rng, logger),
		reward: NewRewardModel(cfg.Reward, road, cfg.Simulation.MaxSteps),
		logger: logger,
	}
	s.beginEpisode()
	return s
}

// Agent returns the session's Q-learning agent, e.g. for persistence.
func (s *Session) Agent() *Agent {
	return s.agent
}

// Episodes returns the number of completed episodes.
func (s *Session) Episodes() int {
	return s.episodes
}

// Step runs one simulation tick: sense, encode, score the previous action,
// store the transition, learn, and select the next action. The returned
// command is what the kinematics layer should apply for the next integration
// step. On a terminal tick the episode is closed out, a no-op command is
// returned and the next Step starts a fresh episode.
func (s *Session) Step(obs Observation) ControlCommand {
	readings := s.sensor.Scan(obs.Pose, obs.Borders, obs.Obstacles)
	state := EncodeState(readings, obs.Pose, s.cfg.Road(), s.cfg.QLearning.StateSize)

	if s.hasPrev {
		s.steps++
		outcome := Outcome{
			Pose:      obs.Pose,
			Readings:  readings,
			Distance:  obs.Distance,
			Collision: obs.Collision,
			Steps:     s.steps,
		}
		r := s.reward.Reward(s.prevState, s.prevAction, outcome)
		cause := s.reward.Cause(outcome)
		done := cause != CauseNone

		s.agent.StoreExperience(s.prevState, s.prevAction, r, state, done)
		s.totalReward += r

		if done || s.steps%s.cfg.Simulation.LearnPeriod == 0 {
			s.agent.Learn(s.cfg.QLearning.BatchSize)
		}

		if done {
			s.endEpisode(cause)
			return ControlCommand{}
		}
	}

	action := s.agent.SelectAction(state)
	s.prevState = state
	s.prevAction = action
	s.hasPrev = true
	return DecodeAction(action, s.cfg.QLearning.ActionSize)
}

// Reset abandons the current episode without a terminal transition and
// starts a new one, e.g. when the external driver respawns the vehicle.
func (s *Session) Reset() {
	s.beginEpisode()
}

func (s *Session) beginEpisode() {
	s.episodeID = uuid.NewString()
	s.steps = 0
	s.totalReward = 0
	s.prevState = nil
	s.prevAction = 0
	s.hasPrev = false
	s.reward.Reset()
}

func (s *Session) endEpisode(cause TerminalCause) {
	s.episodes++
	s.logger.Info("episode finished",
		zap.String("episode", s.episodeID),
		zap.Int("number", s.episodes),
		zap.String("cause", cause.String()),
		zap.Int("steps", s.steps),
		zap.Float64("total_reward", s.totalReward),
		zap.Float64("epsilon", s.agent.Epsilon()),
		zap.Int("table_size", s.agent.TableSize()),
		zap.Int("buffer_len", s.agent.BufferLen()))
	s.beginEpisode()
}
