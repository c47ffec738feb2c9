package services

import (
	"errors"
	"fmt"
)

// EngineConfig holds the movement tuning of a MovementEngine.
//
// Delta and Epsilon are independent but related: every Tick moves the vehicle
// at most Delta along its path, so a target lying on the path is sampled at
// least once within Delta/2 of it. Epsilon >= Delta keeps that sample inside
// the arrival band with margin. The default ratio is 2:1.
type EngineConfig struct {
	// Distance travelled per Tick, in coordinate degrees.
	Delta float64
	// Arrival threshold around an action target, in coordinate degrees.
	Epsilon float64
	// Keep the vehicle parked at the loop start until the first assignment arrives.
	HoldUntilRouted bool
}

const (
	DefaultDelta   = 0.002
	DefaultEpsilon = 2 * DefaultDelta
)

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Delta: DefaultDelta, Epsilon: DefaultEpsilon}
}

func (c EngineConfig) Validate() error {
	if c.Delta <= 0 {
		return errors.New("engine config: delta must be positive")
	}
	if c.Epsilon < c.Delta {
		return fmt.Errorf("engine config: epsilon %g must be at least delta %g", c.Epsilon, c.Delta)
	}
	return nil
}
