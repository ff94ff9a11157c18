package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/ir"
)

// Error code constants - unified across all CLI commands.
// Parse errors keep the compiler's P0xx codes.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeLoadFailed     = "E004" // network file could not be read
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeCUEFailed      = "E006" // CUE network failed to compile
	ErrCodeInvalidNetwork = "E007" // network parsed but cannot be simulated
	ErrCodeInvalidFlag    = "E008" // flag value out of range
)

// LoadError represents an error that occurred while loading a network.
type LoadError struct {
	Code    string
	Message string
	Line    int       // text line, if known
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadNetwork loads a text or CUE network file.
// All failures are returned as *LoadError.
func LoadNetwork(path string) (ir.NetworkSpec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ir.NetworkSpec{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("network file not found: %s", path), Err: err}
	}
	if err != nil {
		return ir.NetworkSpec{}, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
	}
	if info.IsDir() {
		return ir.NetworkSpec{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("not a file: %s", path)}
	}

	spec, err := compiler.LoadFile(path)
	if err != nil {
		return ir.NetworkSpec{}, convertLoadError(err)
	}
	return spec, nil
}

// convertLoadError converts a compiler error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var parseErr *compiler.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{
			Code:    parseErr.Code,
			Message: parseErr.Message,
			Line:    parseErr.Line,
			Err:     err,
		}
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCUEFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}

	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
}
