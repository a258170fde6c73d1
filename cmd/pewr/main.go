// Command pewr runs the Parallel Exit-Wave Reconstruction engine described
// in spec.md against a textual run configuration, writing one binary
// complex-grid file per emitted iteration. Its structure (flag parsing,
// fmt.Println progress, log.Fatalf on setup failure) follows the teacher's
// own cmd/mrislicesto3d/main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"pewr/internal/interrupt"
	"pewr/internal/rawio"
	"pewr/pkg/config"
	"pewr/pkg/grid"
	"pewr/pkg/plane"
	"pewr/pkg/propagator"
	"pewr/pkg/reconstruct"
)

func main() {
	verbose := flag.Bool("verbose", false, "force stage-timing output even if the config omits 'verbose'")
	manifestPath := flag.String("manifest", "", "path for the post-run YAML manifest (default: <output prefix>.manifest.yaml)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pewr <config-file>")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *verbose {
		cfg.Verbose = true
	}
	if *manifestPath == "" {
		*manifestPath = cfg.OutputPrefix + ".manifest.yaml"
	}
	if cfg.Threads > 0 {
		runtime.GOMAXPROCS(cfg.Threads)
	}

	fmt.Println("================================")
	fmt.Println("PARALLEL EXIT-WAVE RECONSTRUCTION")
	fmt.Println("================================")
	fmt.Printf("size=%d padding=%d nplanes=%d iters=%d\n", cfg.Size, cfg.Padding, cfg.NPlanes, cfg.Iters)

	planes, err := buildPlanes(cfg)
	if err != nil {
		log.Fatalf("setup error: %v", err)
	}

	mask := propagator.Mask(cfg.Padding, cfg.Psize, cfg.Qmax)
	rec := reconstruct.New(reconstruct.Params{
		Size:        cfg.Size,
		Padding:     cfg.Padding,
		OutputFreq:  cfg.OutputFreq,
		OutputGeom:  cfg.OutputGeom,
		OutputLast:  cfg.OutputLast,
		Verbose:     cfg.Verbose,
		PreviewPath: previewPath(cfg),
	}, mask, planes)

	guess, startIter, err := loadGuess(cfg)
	if err != nil {
		log.Fatalf("setup error: %v", err)
	}
	rec.Init(guess, startIter)

	watcher := interrupt.New(nil)
	watcher.Start(os.Interrupt)
	defer watcher.Stop()

	emitter := &fileEmitter{prefix: cfg.OutputPrefix}

	fmt.Println("starting reconstruction...")
	start := time.Now()
	if err := rec.Run(cfg.Iters, watcher.Interrupted, emitter); err != nil {
		log.Fatalf("reconstruction failed: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed %d/%d iterations in %s\n", rec.Iteration(), cfg.Iters, elapsed)

	m := config.FromConfig(cfg)
	m.CompletedIters = rec.Iteration()
	m.Interrupted = watcher.Interrupted()
	if err := m.Save(*manifestPath); err != nil {
		log.Fatalf("failed to write manifest: %v", err)
	}
	fmt.Printf("manifest written to %s\n", *manifestPath)
}

func previewPath(cfg *config.Config) string {
	if !cfg.Verbose {
		return ""
	}
	return cfg.OutputPrefix
}

// buildPlanes reads every plane's raw intensity file, normalizes them into
// amplitude images (spec.md §3), precomputes each plane's Fresnel
// propagator, and constructs the Plane set.
func buildPlanes(cfg *config.Config) ([]*plane.Plane, error) {
	raw := make([][]float64, cfg.NPlanes)
	for i := 0; i < cfg.NPlanes; i++ {
		f, err := cfg.OpenPlane(i)
		if err != nil {
			return nil, err
		}
		intensities, err := rawio.ReadIntensity(f, cfg.Size, cfg.Type)
		f.Close()
		if err != nil {
			return nil, &config.IOError{Path: cfg.PlaneFiles[i], Err: err}
		}
		raw[i] = intensities
	}

	amplitudes, mu := plane.Normalize(raw, cfg.Size)
	if mu == 0 {
		return nil, fmt.Errorf("mean intensity across planes is zero")
	}

	props := propagator.Tables(cfg.Padding, cfg.Psize, cfg.Lambda, cfg.DefocusVals)

	planes := make([]*plane.Plane, cfg.NPlanes)
	for i := range planes {
		planes[i] = plane.New(cfg.Size, cfg.Padding, cfg.DefocusVals[i], amplitudes[i], props[i])
	}
	return planes, nil
}

// loadGuess reads the prior exit-wave estimate named by the 'guess' config
// key, if any. It returns a nil guess and start iteration 0 when no guess
// was configured.
func loadGuess(cfg *config.Config) (*grid.Complex, int, error) {
	if cfg.GuessFile == "" {
		return nil, 0, nil
	}
	f, err := os.Open(cfg.GuessFile)
	if err != nil {
		return nil, 0, &config.IOError{Path: cfg.GuessFile, Err: err}
	}
	defer f.Close()

	g, err := rawio.ReadComplexGrid(f, cfg.Padding, cfg.GuessWide)
	if err != nil {
		return nil, 0, &config.IOError{Path: cfg.GuessFile, Err: err}
	}
	return g, cfg.GuessStart, nil
}

// fileEmitter writes each emitted exit-wave estimate to
// <prefix>.<iteration>, the headerless complex-grid format of spec.md §6.
type fileEmitter struct {
	prefix string
}

func (e *fileEmitter) Emit(k int, ew *grid.Complex) error {
	path := fmt.Sprintf("%s.%d", e.prefix, k)
	f, err := os.Create(path)
	if err != nil {
		return &config.IOError{Path: path, Err: err}
	}
	defer f.Close()

	if err := rawio.WriteComplexGrid(f, ew); err != nil {
		return &config.IOError{Path: path, Err: err}
	}
	fmt.Printf("emitted iteration %d -> %s\n", k, path)
	return nil
}
