package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": "a",
		"mid":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mid":true,"zeta":1}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonical_Event(t *testing.T) {
	data, err := MarshalCanonical(Event{Seq: 3, Press: 1, Source: "broadcaster", Destination: "a", Pulse: Low})
	require.NoError(t, err)
	assert.Equal(t,
		`{"destination":"a","press":1,"pulse":"low","seq":3,"source":"broadcaster"}`,
		string(data))
}

func TestMarshalCanonical_EmptyStringSlice(t *testing.T) {
	var outputs []string
	data, err := MarshalCanonical(map[string]any{"outputs": outputs})
	require.NoError(t, err)
	assert.Equal(t, `{"outputs":[]}`, string(data))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"float", 1.5},
		{"nested float", map[string]any{"x": []any{float32(2)}}},
		{"struct", struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.in)
			assert.Error(t, err)
		})
	}
}
