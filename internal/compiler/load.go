package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/build"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

var (
	// ErrLoadFailed wraps failures to read or parse CUE files.
	ErrLoadFailed = errors.New("loading CUE files")
	// ErrBuildFailed wraps failures to evaluate a loaded instance.
	ErrBuildFailed = errors.New("building CUE value")
)

// LoadDir loads the CUE package in dir and compiles it.
func LoadDir(dir string) (*Spec, error) {
	return loadInstances([]string{"."}, &load.Config{Dir: dir})
}

// LoadFiles loads the given .cue files as a single instance and compiles
// them.
func LoadFiles(paths []string) (*Spec, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", ErrLoadFailed)
	}
	return loadInstances(paths, nil)
}

func loadInstances(args []string, cfg *load.Config) (*Spec, error) {
	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: no CUE instances loaded", ErrLoadFailed)
	}
	value, err := buildValue(instances[0])
	if err != nil {
		return nil, err
	}
	return CompileSpec(value)
}

func buildValue(inst *build.Instance) (cue.Value, error) {
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrLoadFailed, inst.Err)
	}
	value := cuecontext.New().BuildInstance(inst)
	// Validate also reports conflicts below the root
	if err := value.Validate(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %w", ErrBuildFailed, formatCUEError(err))
	}
	return value, nil
}
