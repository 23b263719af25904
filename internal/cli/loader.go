package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/sqlcheck/internal/compiler"
)

// LoadMode controls how validation errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all validation errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Spec      *compiler.Spec
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Compile errors, by spec section. Spec validation uses E101-E106.
	ErrCodeInvalidTypes = "E103" // types section: bad alias, alias cycle
	ErrCodeInvalidTable = "E104" // table section
	ErrCodeInvalidExpr  = "E107" // expr section: unknown form, float literal
)

// LoadSpecs loads, compiles and validates the CUE specs in dir.
//
// A nil result means the specs could not be compiled; the single error
// says why. A non-nil result with errors carries spec validation errors
// (compiler.ValidationError). In LoadModeFailFast only the first
// validation error is returned.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	spec, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, []error{convertCompileError(err)}
	}

	result := &LoadResult{Spec: spec, FileCount: len(cueFiles)}

	var errs []error
	for _, verr := range compiler.Validate(spec) {
		errs = append(errs, verr)
		if mode == LoadModeFailFast {
			break
		}
	}
	return result, errs
}

// FindCUEFiles returns the .cue files directly in dir, which together form
// the spec package.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var cycleErr *compiler.AliasCycleError
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, compiler.ErrBuildFailed):
		le := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
		if errors.As(err, &compileErr) {
			le.Message = compileErr.Message
			le.Pos = compileErr.Pos
		}
		return le
	case errors.Is(err, compiler.ErrLoadFailed):
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	case errors.As(err, &cycleErr):
		return &LoadError{Code: ErrCodeInvalidTypes, Message: cycleErr.Error()}
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    sectionErrorCode(compileErr.Section()),
			Message: compileErr.Field + ": " + compileErr.Message,
			Pos:     compileErr.Pos,
		}
	default:
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

// MapFieldToErrorCode maps a compiler error field to an error code by the
// spec section it belongs to.
func MapFieldToErrorCode(field string) string {
	return sectionErrorCode((&compiler.CompileError{Field: field}).Section())
}

func sectionErrorCode(section string) string {
	switch section {
	case "types":
		return ErrCodeInvalidTypes
	case "table":
		return ErrCodeInvalidTable
	case "expr":
		return ErrCodeInvalidExpr
	default:
		return ErrCodeGeneric
	}
}

// loadSpecsOrExit loads specs for commands that need a valid spec. Any
// load or validation error is printed and returned as a command error.
func loadSpecsOrExit(f *OutputFormatter, dir string) (*LoadResult, error) {
	result, errs := LoadSpecs(dir, LoadModeFailFast)
	if len(errs) == 0 {
		f.VerboseLog("Loaded %d CUE file(s) from %s", result.FileCount, dir)
		return result, nil
	}

	code, message := ErrCodeGeneric, errs[0].Error()
	var loadErr *LoadError
	var verr compiler.ValidationError
	switch {
	case errors.As(errs[0], &loadErr):
		code = loadErr.Code
	case errors.As(errs[0], &verr):
		code = verr.Code
	}
	if err := f.Error(code, message, nil); err != nil {
		return nil, err
	}
	return nil, WrapExitError(ExitCommandError, "failed to load specs", errs[0])
}
