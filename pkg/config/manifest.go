package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest captures the resolved parameters and outcome of one run, for
// reproducibility. It is written after a run completes (or is interrupted)
// and is not read back by pewr itself. It reuses the teacher's own
// config-persistence library (gopkg.in/yaml.v3), repointed at this
// after-the-fact artifact instead of at the run's own settings, since the
// run configuration itself must stay in spec.md §6's text format.
type Manifest struct {
	Size    int `yaml:"size"`
	Padding int `yaml:"padding"`
	NPlanes int `yaml:"nplanes"`

	Qmax   float64 `yaml:"qmax"`
	Lambda float64 `yaml:"lambda"`
	Psize  float64 `yaml:"psize"`

	RequestedIters int `yaml:"requestedIters"`
	CompletedIters int `yaml:"completedIters"`
	Interrupted    bool `yaml:"interrupted"`

	OutputPrefix string `yaml:"outputPrefix"`
	Threads      int    `yaml:"threads"`
}

// FromConfig builds a Manifest's static fields from the run configuration
// that produced it; CompletedIters and Interrupted are filled in by the
// caller once the run finishes.
func FromConfig(cfg *Config) *Manifest {
	return &Manifest{
		Size:           cfg.Size,
		Padding:        cfg.Padding,
		NPlanes:        cfg.NPlanes,
		Qmax:           cfg.Qmax,
		Lambda:         cfg.Lambda,
		Psize:          cfg.Psize,
		RequestedIters: cfg.Iters,
		OutputPrefix:   cfg.OutputPrefix,
		Threads:        cfg.Threads,
	}
}

// Save writes m to path as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("config: marshal manifest: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
