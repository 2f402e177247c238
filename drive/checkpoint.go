package drive

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"github.com/baldhumanity/qdrive-go/drive/nn"
)

// Persistence boundary. The Q-table serializes to a flat key -> array-of-
// floats JSON mapping and the network to its nested per-layer weight/bias
// arrays, so an external collaborator (e.g. a browser key-value store shim)
// can hold either blob. A missing or corrupt blob is never fatal: the OrNew
// variants fall back to an empty table or a freshly initialized network and
// the learning loop continues uninterrupted.

// SaveTable writes the Q-table as flat JSON.
func SaveTable(filePath string, table map[string][]float64) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create table file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(table); err != nil {
		return fmt.Errorf("failed to encode q-table: %w", err)
	}
	return nil
}

// LoadTable reads a Q-table from flat JSON.
func LoadTable(filePath string) (map[string][]float64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file '%s': %w", filePath, err)
	}
	defer file.Close()

	table := make(map[string][]float64)
	if err := json.NewDecoder(file).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode q-table from '%s': %w", filePath, err)
	}
	return table, nil
}

// LoadTableOrNew loads a persisted Q-table, falling back to an empty table
// when the blob is missing or corrupt.
func LoadTableOrNew(filePath string, logger *zap.Logger) map[string][]float64 {
	if logger == nil {
		logger = zap.NewNop()
	}
	table, err := LoadTable(filePath)
	if err != nil {
		logger.Warn("q-table load failed, starting with empty table",
			zap.String("path", filePath),
			zap.Error(err))
		return make(map[string][]float64)
	}
	return table
}

// SaveNetwork writes the network's layer parameters as nested-array JSON.
func SaveNetwork(filePath string, net *nn.Network) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create network file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(net); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return nil
}

// LoadNetwork reads a network from nested-array JSON.
func LoadNetwork(filePath string) (*nn.Network, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open network file '%s': %w", filePath, err)
	}
	defer file.Close()

	net := &nn.Network{}
	if err := json.NewDecoder(file).Decode(net); err != nil {
		return nil, fmt.Errorf("failed to decode network from '%s': %w", filePath, err)
	}
	if len(net.Layers) == 0 {
		return nil, fmt.Errorf("network file '%s' holds no layers", filePath)
	}
	return net, nil
}

// LoadNetworkOrNew loads a persisted network, falling back to a freshly
// randomized network with the given layer sizes when the blob is missing or
// corrupt.
func LoadNetworkOrNew(filePath string, layerSizes []int, rng *rand.Rand, logger *zap.Logger) (*nn.Network, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	net, err := LoadNetwork(filePath)
	if err == nil {
		return net, nil
	}
	logger.Warn("network load failed, initializing fresh network",
		zap.String("path", filePath),
		zap.Error(err))
	return nn.NewNetwork(layerSizes, rng)
}
