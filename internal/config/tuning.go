package config

import (
	"fmt"
	"log"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the empirical constants of the simulator. None of these are
// derived from material physics; they are tuned by feel and kept out of code
// so a table can be re-tuned without a rebuild.
type Tuning struct {
	Physics struct {
		BallRestitution    float64 `yaml:"ballRestitution"`
		CushionRestitution float64 `yaml:"cushionRestitution"`
		BallFriction       float64 `yaml:"ballFriction"`
		RollingDamping     float64 `yaml:"rollingDamping"` // fraction of speed lost per reference step
		BallDensity        float64 `yaml:"ballDensity"`    // mass per unit area per ms^2
		RestThreshold      float64 `yaml:"restThreshold"`
		MaxSpeedDiameters  float64 `yaml:"maxSpeedDiameters"`
		EscapeRadii        float64 `yaml:"escapeRadii"`
		MaxSubsteps        int     `yaml:"maxSubsteps"`
	} `yaml:"physics"`
	Pockets struct {
		CaptureMultiplier float64 `yaml:"captureMultiplier"`
	} `yaml:"pockets"`
	Layout struct {
		OverlapMultiplier float64 `yaml:"overlapMultiplier"`
		ClusterAttempts   int     `yaml:"clusterAttempts"`
	} `yaml:"layout"`
	Shot struct {
		BaseForce   float64 `yaml:"baseForce"`
		LogCapacity int     `yaml:"logCapacity"`
	} `yaml:"shot"`
	Predictor struct {
		MaxBounces int `yaml:"maxBounces"`
	} `yaml:"predictor"`
}

// DefaultTuning returns the stock table feel.
func DefaultTuning() Tuning {
	var t Tuning
	t.Physics.BallRestitution = 0.9
	t.Physics.CushionRestitution = 0.95
	t.Physics.BallFriction = 0.05
	t.Physics.RollingDamping = 0.014
	t.Physics.BallDensity = 0.001
	t.Physics.RestThreshold = 0.08
	t.Physics.MaxSpeedDiameters = 4.2
	t.Physics.EscapeRadii = 4
	t.Physics.MaxSubsteps = 5
	t.Pockets.CaptureMultiplier = 1.18
	t.Layout.OverlapMultiplier = 2.05
	t.Layout.ClusterAttempts = 300
	t.Shot.BaseForce = 0.012
	t.Shot.LogCapacity = 60
	t.Predictor.MaxBounces = 3
	return t
}

// LoadTuning reads a YAML tuning file on top of the defaults. Keys missing
// from the file keep their default value.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("parse tuning file: %w", err)
	}

	t.sanitize()
	return t, nil
}

// sanitize replaces values that would break the simulation with defaults.
func (t *Tuning) sanitize() {
	d := DefaultTuning()

	fix := func(name string, v *float64, def float64, lo, hi float64) {
		if math.IsNaN(*v) || *v < lo || *v > hi {
			log.Printf("[CONFIG] tuning %s=%v out of range [%v,%v], using %v", name, *v, lo, hi, def)
			*v = def
		}
	}
	fixInt := func(name string, v *int, def int, lo int) {
		if *v < lo {
			log.Printf("[CONFIG] tuning %s=%d below %d, using %d", name, *v, lo, def)
			*v = def
		}
	}

	fix("physics.ballRestitution", &t.Physics.BallRestitution, d.Physics.BallRestitution, 0, 1)
	fix("physics.cushionRestitution", &t.Physics.CushionRestitution, d.Physics.CushionRestitution, 0, 1)
	fix("physics.ballFriction", &t.Physics.BallFriction, d.Physics.BallFriction, 0, 1)
	fix("physics.rollingDamping", &t.Physics.RollingDamping, d.Physics.RollingDamping, 0, 0.99)
	fix("physics.ballDensity", &t.Physics.BallDensity, d.Physics.BallDensity, 1e-9, math.MaxFloat64)
	fix("physics.restThreshold", &t.Physics.RestThreshold, d.Physics.RestThreshold, 0, math.MaxFloat64)
	fix("physics.maxSpeedDiameters", &t.Physics.MaxSpeedDiameters, d.Physics.MaxSpeedDiameters, 0.1, math.MaxFloat64)
	fix("physics.escapeRadii", &t.Physics.EscapeRadii, d.Physics.EscapeRadii, 0, math.MaxFloat64)
	fix("pockets.captureMultiplier", &t.Pockets.CaptureMultiplier, d.Pockets.CaptureMultiplier, 0, math.MaxFloat64)
	fix("layout.overlapMultiplier", &t.Layout.OverlapMultiplier, d.Layout.OverlapMultiplier, 2, math.MaxFloat64)
	fix("shot.baseForce", &t.Shot.BaseForce, d.Shot.BaseForce, 0, math.MaxFloat64)

	fixInt("physics.maxSubsteps", &t.Physics.MaxSubsteps, d.Physics.MaxSubsteps, 1)
	fixInt("layout.clusterAttempts", &t.Layout.ClusterAttempts, d.Layout.ClusterAttempts, 1)
	fixInt("shot.logCapacity", &t.Shot.LogCapacity, d.Shot.LogCapacity, 1)
	fixInt("predictor.maxBounces", &t.Predictor.MaxBounces, d.Predictor.MaxBounces, 0)
}
