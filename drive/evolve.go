package drive

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baldhumanity/qdrive-go/drive/nn"
)

// Candidate pairs a network with its most recent fitness score.
type Candidate struct {
	Network *nn.Network
	Fitness float64
}

// FitnessFunc evaluates one candidate network, typically by running it
// through a full simulated episode, and returns its fitness. Implementations
// must not share mutable state across candidates; each call receives a
// network owned exclusively by its candidate.
type FitnessFunc func(ctx context.Context, net *nn.Network) (float64, error)

// Evolver runs the mutation-based weight search over a population of
// perceptron networks: evaluate everyone, keep the elites, refill the rest
// of the population with mutated copies of the survivors. This is the sole
// training mechanism for the hand-evolved steering network - there is no
// gradient anywhere.
type Evolver struct {
	cfg        NetworkConfig
	candidates []*Candidate
	generation int
	best       *Candidate
	rng        *rand.Rand
	logger     *zap.Logger
}

// NewEvolver creates a population of PopSize freshly randomized networks.
func NewEvolver(cfg NetworkConfig, rng *rand.Rand, logger *zap.Logger) (*Evolver, error) {
	defaults := DefaultConfig().Network
	if cfg.PopSize <= 0 {
		cfg.PopSize = defaults.PopSize
	}
	if cfg.MutateAmount <= 0 {
		cfg.MutateAmount = defaults.MutateAmount
	}
	if cfg.Elites <= 0 || cfg.Elites > cfg.PopSize {
		cfg.Elites = defaults.Elites
		if cfg.Elites > cfg.PopSize {
			cfg.Elites = cfg.PopSize
		}
	}
	if len(cfg.LayerSizes) < 2 {
		return nil, fmt.Errorf("evolver needs at least 2 layer sizes, got %d", len(cfg.LayerSizes))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	candidates := make([]*Candidate, cfg.PopSize)
	for i := range candidates {
		net, err := nn.NewNetwork(cfg.LayerSizes, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create candidate %d: %w", i, err)
		}
		candidates[i] = &Candidate{Network: net}
	}

	return &Evolver{
		cfg:        cfg,
		candidates: candidates,
		rng:        rng,
		logger:     logger,
	}, nil
}

// Generation returns the number of completed generations.
func (e *Evolver) Generation() int {
	return e.generation
}

// Best returns the best candidate seen across all generations, or nil before
// the first generation completes.
func (e *Evolver) Best() *Candidate {
	return e.best
}

// RunGeneration evaluates every candidate concurrently with the provided
// fitness function, then reproduces: the top Elites networks survive
// unchanged and every remaining slot is refilled with a mutated deep copy of
// a surviving elite. Returns the generation's best candidate.
func (e *Evolver) RunGeneration(ctx context.Context, fitness FitnessFunc) (*Candidate, error) {
	e.generation++

	g, ctx := errgroup.WithContext(ctx)
	for _, cand := range e.candidates {
		cand := cand
		g.Go(func() error {
			f, err := fitness(ctx, cand.Network)
			if err != nil {
				return err
			}
			cand.Fitness = sanitize(f, 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", e.generation, err)
	}

	sort.SliceStable(e.candidates, func(i, j int) bool {
		return e.candidates[i].Fitness > e.candidates[j].Fitness
	})

	genBest := e.candidates[0]
	if e.best == nil || genBest.Fitness > e.best.Fitness {
		e.best = &Candidate{Network: genBest.Network.Copy(), Fitness: genBest.Fitness}
	}

	e.logger.Info("generation finished",
		zap.Int("generation", e.generation),
		zap.Float64("best_fitness", genBest.Fitness),
		zap.Float64("mean_fitness", e.meanFitness()))

	// Reproduce: elites survive, everyone else is a mutated copy of an elite.
	for i := e.cfg.Elites; i < len(e.candidates); i++ {
		parent := e.candidates[e.rng.Intn(e.cfg.Elites)]
		child := parent.Network.Copy()
		child.Mutate(e.cfg.MutateAmount, e.rng)
		e.candidates[i] = &Candidate{Network: child}
	}

	return genBest, nil
}

func (e *Evolver) meanFitness() float64 {
	values := make([]float64, len(e.candidates))
	for i, c := range e.candidates {
		values[i] = c.Fitness
	}
	return Mean(values)
}
