package ir

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Pulse is a one-bit signal level travelling along a single edge.
type Pulse uint8

const (
	// Low is the zero level. The button always sends Low.
	Low Pulse = iota
	// High is the one level.
	High
)

// String returns "low" or "high".
func (p Pulse) String() string {
	if p == High {
		return "high"
	}
	return "low"
}

// ParsePulse parses "low"/"high" (case-insensitive).
func ParsePulse(s string) (Pulse, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	}
	return Low, fmt.Errorf("invalid pulse %q: must be low or high", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Pulse) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pulse) UnmarshalText(b []byte) error {
	v, err := ParsePulse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Kind identifies a module behavior. The set is closed: the engine switches
// over it exhaustively.
type Kind uint8

const (
	// KindUntyped is an inert sink that never emits.
	KindUntyped Kind = iota
	// KindBroadcast re-emits whatever it receives.
	KindBroadcast
	// KindFlipFlop is a 1-bit register toggled by Low pulses.
	KindFlipFlop
	// KindConjunction remembers the last pulse of every input and emits
	// their NAND.
	KindConjunction
)

var kindNames = [...]string{
	KindUntyped:     "untyped",
	KindBroadcast:   "broadcast",
	KindFlipFlop:    "flipflop",
	KindConjunction: "conjunction",
}

// String returns the lower-case kind name used in CUE and JSON output.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Marker returns the text-format prefix for k ("%", "&" or "").
func (k Kind) Marker() string {
	switch k {
	case KindFlipFlop:
		return "%"
	case KindConjunction:
		return "&"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindUntyped, fmt.Errorf("unknown module kind %q", s)
}

// DefaultEntry is the module that receives the button pulse.
const DefaultEntry = "broadcaster"

// ButtonSource is the virtual source name of the synthetic press pulse.
const ButtonSource = "button"

// ModuleDecl is one parsed module declaration.
type ModuleDecl struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Outputs []string `json:"outputs"`

	// Line is the 1-based source line, 0 when not parsed from text.
	Line int `json:"line,omitempty"`
}

// NetworkSpec is an ordered list of module declarations.
// Declaration order is preserved everywhere it is observable.
type NetworkSpec struct {
	Entry   string       `json:"entry"`
	Modules []ModuleDecl `json:"modules"`
}

// EntryName returns the entry module, defaulting to DefaultEntry.
func (s NetworkSpec) EntryName() string {
	if s.Entry == "" {
		return DefaultEntry
	}
	return s.Entry
}

// Lookup returns the declaration named name.
func (s NetworkSpec) Lookup(name string) (ModuleDecl, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleDecl{}, false
}

// Event is one edge traversal: source sent pulse to destination.
type Event struct {
	Seq         int64  `json:"seq"`
	Press       int64  `json:"press"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Pulse       Pulse  `json:"pulse"`
}

// String renders the event as "src -level-> dst".
func (e Event) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.Source, e.Pulse, e.Destination)
}

// PulseCounts tallies pulses by level.
type PulseCounts struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// Count records one pulse.
func (c *PulseCounts) Count(p Pulse) {
	if p == High {
		c.High++
	} else {
		c.Low++
	}
}

// Add returns the element-wise sum.
func (c PulseCounts) Add(o PulseCounts) PulseCounts {
	return PulseCounts{Low: c.Low + o.Low, High: c.High + o.High}
}

// ErrOverflow is returned when pulse count arithmetic does not fit in int64.
var ErrOverflow = errors.New("pulse count overflows int64")

// AddChecked is Add with overflow detection. Counts are never negative.
func (c PulseCounts) AddChecked(o PulseCounts) (PulseCounts, error) {
	low, err := addCount(c.Low, o.Low)
	if err != nil {
		return PulseCounts{}, err
	}
	high, err := addCount(c.High, o.High)
	if err != nil {
		return PulseCounts{}, err
	}
	return PulseCounts{Low: low, High: high}, nil
}

// Scale returns the counts multiplied by n, or ErrOverflow.
func (c PulseCounts) Scale(n int64) (PulseCounts, error) {
	low, err := mulCount(c.Low, n)
	if err != nil {
		return PulseCounts{}, err
	}
	high, err := mulCount(c.High, n)
	if err != nil {
		return PulseCounts{}, err
	}
	return PulseCounts{Low: low, High: high}, nil
}

// Total returns Low+High.
func (c PulseCounts) Total() int64 {
	return c.Low + c.High
}

// Product returns Low*High, the reported answer of a fixed-press run, or
// ErrOverflow.
func (c PulseCounts) Product() (int64, error) {
	return mulCount(c.Low, c.High)
}

func addCount(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrOverflow)
	}
	return a + b, nil
}

func mulCount(a, b int64) (int64, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrOverflow)
	}
	return int64(lo), nil
}
