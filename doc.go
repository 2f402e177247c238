// Package qdrive provides the perception-cognition-learning core for a
// lane-driving agent: a ray-cast proximity sensor over 2-D scene geometry,
// a minimal threshold perceptron network with mutation-based weight search,
// and a tabular Q-learning agent with experience replay and reward shaping.
//
// The core is deliberately small and synchronous. Rendering, input handling
// and vehicle kinematics live outside it; each simulation tick the caller
// hands in plain scene data (pose, border segments, obstacle polygons) and
// receives a control command back.
//
// Basic usage:
//
//	// Load configuration
//	config, err := drive.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a learning session
//	session := drive.NewSession(config, logger)
//
//	// Drive the loop from your simulation
//	for running {
//		cmd := session.Step(observe(world))
//		world.Apply(cmd)
//	}
package qdrive
