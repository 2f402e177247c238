package drive

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// minLearnFloor is the smallest number of stored experiences Learn will
// accept before it considers a batch worth sampling.
const minLearnFloor = 100

// epsilonDecayMinBuffer gates exploration decay: epsilon only decays once
// the replay buffer has accumulated this many experiences.
const epsilonDecayMinBuffer = 500

// Agent is a tabular Q-learning agent: an epsilon-greedy policy over a
// sparse state -> action-value table, backed by a bounded experience-replay
// buffer and a batched fixed-step update rule.
//
// The table and buffer are mutated only by the owning agent; the agent is
// single-threaded by contract. Malformed numeric input never raises - states
// are re-validated on entry, actions clamp into range, and corrections are
// surfaced as log diagnostics so a long-running learning loop never crashes
// on transient bad input.
type Agent struct {
	cfg     QConfig
	epsilon float64
	table   map[string][]float64
	replay  *ReplayBuffer
	codec   KeyCodec
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewAgent creates an Agent. Zero-valued hyperparameters fall back to the
// stated defaults. A nil codec gets the default rounded codec, a nil rng a
// time-seeded source, and a nil logger a no-op logger.
func NewAgent(cfg QConfig, codec KeyCodec, rng *rand.Rand, logger *zap.Logger) *Agent {
	defaults := DefaultConfig().QLearning
	if cfg.StateSize <= 0 {
		cfg.StateSize = defaults.StateSize
	}
	if cfg.ActionSize <= 0 {
		cfg.ActionSize = defaults.ActionSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.Gamma == 0 {
		cfg.Gamma = defaults.Gamma
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = defaults.Epsilon
	}
	if cfg.EpsilonMin == 0 {
		cfg.EpsilonMin = defaults.EpsilonMin
	}
	if cfg.EpsilonDecay == 0 {
		cfg.EpsilonDecay = defaults.EpsilonDecay
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.ReplayCapacity <= 0 {
		cfg.ReplayCapacity = defaults.ReplayCapacity
	}
	if cfg.ReplayTrimTo <= 0 {
		cfg.ReplayTrimTo = defaults.ReplayTrimTo
	}
	if codec == nil {
		// Sensor dims = everything before the 4 kinematic coordinates.
		codec = NewKeyCodec(cfg.KeyCodec, cfg.StateSize-4)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		cfg:     cfg,
		epsilon: cfg.Epsilon,
		table:   make(map[string][]float64),
		replay:  NewReplayBuffer(cfg.ReplayCapacity, cfg.ReplayTrimTo),
		codec:   codec,
		rng:     rng,
		logger:  logger,
	}
}

// SelectAction chooses an action for the given state using the
// epsilon-greedy policy: with probability epsilon a uniformly random action,
// otherwise the argmax of the state's table row (a zero row if the state is
// unseen) with uniform random tie-breaking among equally maximal actions.
func (a *Agent) SelectAction(state []float64) int {
	if a.rng.Float64() < a.epsilon {
		return a.rng.Intn(a.cfg.ActionSize)
	}
	row := a.row(a.codec.Key(a.validState(state)))
	return argmaxRandomTie(row, a.rng)
}

// StoreExperience appends a transition to the replay buffer. The states are
// re-validated, the action clamps into range and the reward is sanitized;
// storage itself never fails.
func (a *Agent) StoreExperience(state []float64, action int, reward float64, nextState []float64, done bool) {
	a.replay.Add(Experience{
		State:     a.validState(state),
		Action:    a.validAction(action),
		Reward:    sanitize(reward, 0),
		NextState: a.validState(nextState),
		Done:      done,
	})
}

// Learn performs one batched tabular update. It is a no-op until the buffer
// holds at least min(batchSize, 100) experiences; it then samples batchSize
// experiences uniformly with replacement and applies the fixed-step rule
//
//	target = reward + gamma * max(row(nextState))   (0 future term when done)
//	row[action] += learningRate * (target - row[action])
//
// After a learning step epsilon decays toward EpsilonMin, but only once the
// buffer has passed epsilonDecayMinBuffer experiences.
func (a *Agent) Learn(batchSize int) {
	if batchSize <= 0 {
		batchSize = a.cfg.BatchSize
	}
	required := batchSize
	if required > minLearnFloor {
		required = minLearnFloor
	}
	if a.replay.Len() < required {
		return
	}

	for _, exp := range a.replay.Sample(batchSize, a.rng) {
		key := a.codec.Key(exp.State)
		nextKey := a.codec.Key(exp.NextState)
		row := a.row(key)
		nextRow := a.row(nextKey)

		target := exp.Reward
		if !exp.Done {
			target += a.cfg.Gamma * MaxFloat(nextRow)
		}
		action := a.validAction(exp.Action)
		row[action] += a.cfg.LearningRate * (target - row[action])
	}

	if a.replay.Len() > epsilonDecayMinBuffer && a.epsilon > a.cfg.EpsilonMin {
		a.epsilon *= a.cfg.EpsilonDecay
		if a.epsilon < a.cfg.EpsilonMin {
			a.epsilon = a.cfg.EpsilonMin
		}
	}
}

// row returns the action-value row for a table key, creating a
// zero-initialized row on first access. A row whose length drifted from the
// declared action count is corrected in place by padding or truncation.
func (a *Agent) row(key string) []float64 {
	row, ok := a.table[key]
	if !ok {
		row = make([]float64, a.cfg.ActionSize)
		a.table[key] = row
		return row
	}
	if len(row) != a.cfg.ActionSize {
		a.logger.Warn("q-table row length corrected",
			zap.String("key", key),
			zap.Int("got", len(row)),
			zap.Int("want", a.cfg.ActionSize))
		fixed := make([]float64, a.cfg.ActionSize)
		copy(fixed, row)
		a.table[key] = fixed
		return fixed
	}
	return row
}

// validState corrects a state vector's shape and contents before use.
func (a *Agent) validState(state []float64) []float64 {
	if len(state) != a.cfg.StateSize {
		a.logger.Warn("state vector length corrected",
			zap.Int("got", len(state)),
			zap.Int("want", a.cfg.StateSize))
	}
	return ValidateState(state, a.cfg.StateSize)
}

// validAction clamps an action index into [0, ActionSize).
func (a *Agent) validAction(action int) int {
	if action >= 0 && action < a.cfg.ActionSize {
		return action
	}
	a.logger.Warn("action index clamped",
		zap.Int("got", action),
		zap.Int("actions", a.cfg.ActionSize))
	if action < 0 {
		return 0
	}
	return a.cfg.ActionSize - 1
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// SetEpsilon overrides the exploration rate (e.g. 0 for pure exploitation
// during evaluation). The value is clamped to [0, 1].
func (a *Agent) SetEpsilon(epsilon float64) {
	a.epsilon = clamp(sanitize(epsilon, a.cfg.EpsilonMin), 0, 1)
}

// BufferLen returns the number of stored experiences.
func (a *Agent) BufferLen() int {
	return a.replay.Len()
}

// TableSize returns the number of distinct discretized states seen so far.
// The table grows without eviction; see the scaling note in the package
// documentation.
func (a *Agent) TableSize() int {
	return len(a.table)
}

// Table exposes the underlying key -> action-values mapping for
// serialization by the persistence boundary.
func (a *Agent) Table() map[string][]float64 {
	return a.table
}

// SetTable replaces the agent's table, e.g. after loading a persisted blob.
// A nil table resets to empty; row lengths are corrected lazily on access.
func (a *Agent) SetTable(table map[string][]float64) {
	if table == nil {
		table = make(map[string][]float64)
	}
	a.table = table
}
