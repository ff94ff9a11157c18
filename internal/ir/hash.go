package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows future algorithm migration.
const (
	DomainNetwork = "pulsenet/network/v1"
	DomainState   = "pulsenet/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NetworkHash identifies a network declaration. Two specs with the same
// modules, kinds, output order and entry hash identically regardless of
// whether they came from text or CUE.
func NetworkHash(spec NetworkSpec) (string, error) {
	canonical, err := MarshalCanonical(NetworkObject(spec))
	if err != nil {
		return "", fmt.Errorf("NetworkHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainNetwork, canonical), nil
}

// NetworkObject returns the canonical form of spec: the resolved entry and
// every module's name, kind and outputs. Source lines are omitted.
func NetworkObject(spec NetworkSpec) map[string]any {
	mods := make([]any, len(spec.Modules))
	for i, m := range spec.Modules {
		outputs := m.Outputs
		if outputs == nil {
			outputs = []string{}
		}
		mods[i] = map[string]any{
			"name":    m.Name,
			"kind":    m.Kind,
			"outputs": outputs,
		}
	}
	return map[string]any{
		"entry":   spec.EntryName(),
		"modules": mods,
	}
}

// StateFingerprint hashes a packed state vector for display in logs and
// traces. Cycle detection compares raw vectors, not fingerprints.
func StateFingerprint(vector []byte) string {
	return hashWithDomain(DomainState, vector)
}

