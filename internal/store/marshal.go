package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// marshalNetwork converts a network declaration to canonical JSON TEXT.
func marshalNetwork(spec ir.NetworkSpec) (string, error) {
	data, err := ir.MarshalCanonical(ir.NetworkObject(spec))
	if err != nil {
		return "", fmt.Errorf("marshal network: %w", err)
	}
	return string(data), nil
}

// unmarshalNetwork parses a stored network. Source lines are not stored.
func unmarshalNetwork(text string) (ir.NetworkSpec, error) {
	var spec ir.NetworkSpec
	if err := json.Unmarshal([]byte(text), &spec); err != nil {
		return ir.NetworkSpec{}, fmt.Errorf("unmarshal network: %w", err)
	}
	return spec, nil
}

// unmarshalPulse parses a stored pulse level.
func unmarshalPulse(text string) (ir.Pulse, error) {
	p, err := ir.ParsePulse(text)
	if err != nil {
		return ir.Low, fmt.Errorf("unmarshal pulse: %w", err)
	}
	return p, nil
}
