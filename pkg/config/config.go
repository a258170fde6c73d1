// Package config parses the run configuration described in spec.md §6 (a
// whitespace-tokenized key/value text command language with strict
// prerequisite ordering) and captures a post-run reproducibility manifest.
// It generalizes the teacher's pkg/config (YAML Config struct plus
// DefaultConfig/LoadConfig/SaveConfig) from a single YAML document into two
// narrower pieces: Load, which speaks the original's own text format
// (original_source/pewr.cpp's `ifs >> cmd` loop), and Manifest, which still
// uses the teacher's YAML library, repointed at a reproducibility artifact
// written after a run rather than the run's own settings.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"pewr/internal/rawio"
)

// ConfigError reports a malformed or incomplete run configuration: a
// missing required key, a key used before its prerequisite, or an unknown
// key or type name (spec.md §7).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// IOError reports a failure to read or write a file named from the
// configuration (spec.md §7).
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("config: %s: %v", e.Path, e.Err) }

// Config is the fully parsed, validated run configuration: every field
// named by spec.md §6's table, with plane, guess and output paths resolved
// against the config file's directory and one defocus value per plane,
// ready for pkg/reconstruct and internal/rawio to consume.
type Config struct {
	Size    int
	Padding int
	NPlanes int

	Qmax   float64
	Lambda float64
	Psize  float64
	Iters  int

	Type        rawio.PixelType
	PlaneFiles  []string  // resolved against the config file's directory
	DefocusVals []float64 // length NPlanes

	GuessFile  string // resolved path; empty if no guess supplied
	GuessWide  bool   // true: guess file holds float64 pairs, false: float32 pairs
	GuessStart int

	OutputPrefix string // resolved against the config file's directory
	OutputFreq   int
	OutputGeom   float64
	OutputLast   int

	Threads int
	Verbose bool
}

// fields tracks which keys have been seen, to enforce spec.md §6's
// prerequisite ordering (e.g. nplanes before planes, type before planes).
type fields struct {
	size, padding, nplanes bool
	qmax, lambda, psize    bool
	iters                  bool
	typ                    bool
	planes                 bool
	fvals, frange          bool
	guess                  bool
	output                 bool
}

// Load reads and validates the run configuration at path, resolving all
// file paths referenced inside it (planes, guess, output) relative to
// path's own directory, matching the original's chdir-to-config-directory
// behavior without mutating process-global working directory state
// (SPEC_FULL.md's "Supplemented features").
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	dir := filepath.Dir(path)
	cfg := &Config{GuessWide: true}
	seen := &fields{}

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)

	for sc.Scan() {
		cmd := sc.Text()
		if err := dispatch(cmd, sc, dir, cfg, seen); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	if err := validate(cfg, seen); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dispatch(cmd string, sc *bufio.Scanner, dir string, cfg *Config, seen *fields) error {
	switch cmd {
	case "size":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Size, seen.size = v, true

	case "padding":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Padding, seen.padding = v, true

	case "nplanes":
		if !seen.size || !seen.padding {
			return configErrorf("nplanes requires size and padding to be set first")
		}
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.NPlanes, seen.nplanes = v, true

	case "qmax":
		v, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Qmax, seen.qmax = v, true

	case "lambda":
		v, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Lambda, seen.lambda = v, true

	case "psize":
		v, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Psize, seen.psize = v, true

	case "iters":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Iters, seen.iters = v, true

	case "type":
		v, err := nextToken(sc, cmd)
		if err != nil {
			return err
		}
		t := rawio.PixelType(v)
		if !t.Valid() {
			return configErrorf("type: unknown pixel type %q", v)
		}
		cfg.Type, seen.typ = t, true

	case "planes":
		if !seen.typ || !seen.nplanes {
			return configErrorf("planes requires type and nplanes to be set first")
		}
		files := make([]string, cfg.NPlanes)
		for i := 0; i < cfg.NPlanes; i++ {
			v, err := nextToken(sc, cmd)
			if err != nil {
				return err
			}
			files[i] = resolve(dir, v)
		}
		cfg.PlaneFiles, seen.planes = files, true

	case "fvals":
		if !seen.nplanes {
			return configErrorf("fvals requires nplanes to be set first")
		}
		if seen.frange {
			return configErrorf("fvals and frange are mutually exclusive")
		}
		vals := make([]float64, cfg.NPlanes)
		for i := 0; i < cfg.NPlanes; i++ {
			v, err := nextFloat(sc, cmd)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		cfg.DefocusVals, seen.fvals = vals, true

	case "frange":
		if !seen.nplanes {
			return configErrorf("frange requires nplanes to be set first")
		}
		if seen.fvals {
			return configErrorf("fvals and frange are mutually exclusive")
		}
		start, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		step, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		vals := make([]float64, cfg.NPlanes)
		for i := range vals {
			vals[i] = start + float64(i)*step
		}
		cfg.DefocusVals, seen.frange = vals, true

	case "guesstype":
		if seen.guess {
			return configErrorf("guesstype must precede guess")
		}
		v, err := nextToken(sc, cmd)
		if err != nil {
			return err
		}
		switch v {
		case "float":
			cfg.GuessWide = false
		case "double":
			cfg.GuessWide = true
		default:
			return configErrorf("guesstype: unknown element type %q", v)
		}

	case "guess":
		v, err := nextToken(sc, cmd)
		if err != nil {
			return err
		}
		start, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.GuessFile = resolve(dir, v)
		cfg.GuessStart = start
		seen.guess = true

	case "output":
		v, err := nextToken(sc, cmd)
		if err != nil {
			return err
		}
		cfg.OutputPrefix, seen.output = resolve(dir, v), true

	case "outputfreq":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.OutputFreq = v

	case "outputgeom":
		v, err := nextFloat(sc, cmd)
		if err != nil {
			return err
		}
		cfg.OutputGeom = v

	case "outputlast":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.OutputLast = v

	case "threads":
		v, err := nextInt(sc, cmd)
		if err != nil {
			return err
		}
		cfg.Threads = v

	case "verbose":
		cfg.Verbose = true

	default:
		return configErrorf("unknown command %q", cmd)
	}
	return nil
}

func validate(cfg *Config, seen *fields) error {
	switch {
	case !seen.size:
		return configErrorf("missing required key: size")
	case !seen.padding:
		return configErrorf("missing required key: padding")
	case !seen.nplanes:
		return configErrorf("missing required key: nplanes")
	case !seen.qmax:
		return configErrorf("missing required key: qmax")
	case !seen.lambda:
		return configErrorf("missing required key: lambda")
	case !seen.psize:
		return configErrorf("missing required key: psize")
	case !seen.iters:
		return configErrorf("missing required key: iters")
	case !seen.typ:
		return configErrorf("missing required key: type")
	case !seen.planes:
		return configErrorf("missing required key: planes")
	case !seen.fvals && !seen.frange:
		return configErrorf("missing required key: fvals or frange")
	case !seen.output:
		return configErrorf("missing required key: output")
	}
	if cfg.Padding < cfg.Size {
		return configErrorf("padding (%d) must be >= size (%d)", cfg.Padding, cfg.Size)
	}
	return nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func nextToken(sc *bufio.Scanner, cmd string) (string, error) {
	if !sc.Scan() {
		return "", configErrorf("%s: missing value", cmd)
	}
	return sc.Text(), nil
}

func nextInt(sc *bufio.Scanner, cmd string) (int, error) {
	tok, err := nextToken(sc, cmd)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, configErrorf("%s: invalid integer %q", cmd, tok)
	}
	return v, nil
}

func nextFloat(sc *bufio.Scanner, cmd string) (float64, error) {
	tok, err := nextToken(sc, cmd)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, configErrorf("%s: invalid number %q", cmd, tok)
	}
	return v, nil
}

// OpenPlane opens plane file i for reading, wrapping any failure as an
// IOError.
func (cfg *Config) OpenPlane(i int) (io.ReadCloser, error) {
	f, err := os.Open(cfg.PlaneFiles[i])
	if err != nil {
		return nil, &IOError{Path: cfg.PlaneFiles[i], Err: err}
	}
	return f, nil
}
