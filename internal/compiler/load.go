package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// LoadFile reads a network description from path. Files ending in ".cue"
// are compiled as CUE, anything else is parsed as text.
func LoadFile(path string) (ir.NetworkSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.NetworkSpec{}, fmt.Errorf("read network: %w", err)
	}
	return LoadBytes(path, data)
}

// LoadBytes compiles data as the format implied by filename.
func LoadBytes(filename string, data []byte) (ir.NetworkSpec, error) {
	if IsCUEFile(filename) {
		return CompileCUEBytes(filename, data)
	}
	return Parse(bytes.NewReader(data))
}

// IsCUEFile reports whether path names a CUE network description.
func IsCUEFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cue")
}
