// Package nn implements the minimal threshold perceptron network used by the
// evolutionary steering agent. Layers are dense weight matrices with hard
// step-function units; the only training mechanism is randomized perturbation
// of the parameters (mutation), with selection handled by the caller.
package nn

import (
	"fmt"
	"math/rand"
	"time"
)

// Layer maps inputCount inputs to outputCount outputs via a weight matrix
// Weights[input][output] and a bias per output unit.
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// Network is an ordered stack of layers. The output vector of layer i is the
// input vector of layer i+1; the final layer's output is the binary action
// vector, one entry per control dimension.
type Network struct {
	Layers []Layer `json:"layers"`
}

// NewNetwork creates a network for the given layer sizes (inputs first) with
// every weight and bias drawn independently and uniformly from [-1, 1].
// A nil rng falls back to a time-seeded source.
func NewNetwork(layerSizes []int, rng *rand.Rand) (*Network, error) {
	if len(layerSizes) < 2 {
		return nil, fmt.Errorf("network needs at least 2 layer sizes, got %d", len(layerSizes))
	}
	for i, n := range layerSizes {
		if n <= 0 {
			return nil, fmt.Errorf("layer size %d must be positive, got %d", i, n)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	net := &Network{Layers: make([]Layer, len(layerSizes)-1)}
	for i := 0; i < len(layerSizes)-1; i++ {
		net.Layers[i] = newLayer(layerSizes[i], layerSizes[i+1], rng)
	}
	return net, nil
}

func newLayer(inputCount, outputCount int, rng *rand.Rand) Layer {
	layer := Layer{
		Weights: make([][]float64, inputCount),
		Biases:  make([]float64, outputCount),
	}
	for k := range layer.Weights {
		layer.Weights[k] = make([]float64, outputCount)
		for j := range layer.Weights[k] {
			layer.Weights[k][j] = rng.Float64()*2 - 1
		}
	}
	for j := range layer.Biases {
		layer.Biases[j] = rng.Float64()*2 - 1
	}
	return layer
}

// Forward computes the layer's output for the given inputs. Output unit j
// fires (1) iff the weighted input sum strictly exceeds its bias; a sum
// exactly equal to the bias yields 0. A mismatched input length is a
// programming error and fails fast.
func (l *Layer) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != len(l.Weights) {
		return nil, fmt.Errorf("mismatch between input count (%d) and layer input width (%d)", len(inputs), len(l.Weights))
	}

	outputs := make([]float64, len(l.Biases))
	for j := range l.Biases {
		sum := 0.0
		for k, in := range inputs {
			sum += in * l.Weights[k][j]
		}
		if sum > l.Biases[j] {
			outputs[j] = 1
		}
	}
	return outputs, nil
}

// Activate feeds the input vector through every layer in order and returns
// the final layer's binary output vector.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	values := inputs
	for i := range n.Layers {
		out, err := n.Layers[i].Forward(values)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		values = out
	}
	return values, nil
}

// Mutate perturbs every weight and bias in place: each value v becomes
// lerp(v, U(-1,1), amount), so amount 0 leaves the network unchanged and
// amount 1 fully rerandomizes it. Amount is clamped to [0, 1].
func (n *Network) Mutate(amount float64, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if amount < 0 {
		amount = 0
	} else if amount > 1 {
		amount = 1
	}

	for li := range n.Layers {
		layer := &n.Layers[li]
		for k := range layer.Weights {
			for j := range layer.Weights[k] {
				layer.Weights[k][j] = lerp(layer.Weights[k][j], rng.Float64()*2-1, amount)
			}
		}
		for j := range layer.Biases {
			layer.Biases[j] = lerp(layer.Biases[j], rng.Float64()*2-1, amount)
		}
	}
}

// Copy creates a deep copy of the network. Two agents never share parameter
// storage.
func (n *Network) Copy() *Network {
	out := &Network{Layers: make([]Layer, len(n.Layers))}
	for i, layer := range n.Layers {
		cl := Layer{
			Weights: make([][]float64, len(layer.Weights)),
			Biases:  make([]float64, len(layer.Biases)),
		}
		for k := range layer.Weights {
			cl.Weights[k] = make([]float64, len(layer.Weights[k]))
			copy(cl.Weights[k], layer.Weights[k])
		}
		copy(cl.Biases, layer.Biases)
		out.Layers[i] = cl
	}
	return out
}

// LayerSizes returns the layer widths of the network, inputs first.
func (n *Network) LayerSizes() []int {
	if len(n.Layers) == 0 {
		return nil
	}
	sizes := make([]int, 0, len(n.Layers)+1)
	sizes = append(sizes, len(n.Layers[0].Weights))
	for _, layer := range n.Layers {
		sizes = append(sizes, len(layer.Biases))
	}
	return sizes
}

// lerp duplicates drive.Lerp to keep this package free of an import cycle
// with the core package.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
