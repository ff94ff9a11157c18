package compiler

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// Parse error codes (P001-P099)
const (
	ErrMissingArrow    = "P001" // line has no "->"
	ErrBadDeclaration  = "P002" // marker or module name is malformed
	ErrBadDestination  = "P003" // destination name is malformed
	ErrDuplicateModule = "P004" // module declared twice
	ErrScan            = "P005" // reader failure
)

// ParseError is a fatal error in a text network description.
type ParseError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %q", e.Code, e.Line, e.Message, e.Text)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseString parses a text network description.
func ParseString(src string) (ir.NetworkSpec, error) {
	return Parse(strings.NewReader(src))
}

// Parse reads a text network description. Parsing stops at the first
// malformed line; the whole network is unusable without it.
func Parse(r io.Reader) (ir.NetworkSpec, error) {
	spec := ir.NetworkSpec{Entry: ir.DefaultEntry}
	seen := make(map[string]int)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		decl, err := parseLine(line, lineNo)
		if err != nil {
			return ir.NetworkSpec{}, err
		}
		if first, dup := seen[decl.Name]; dup {
			return ir.NetworkSpec{}, &ParseError{
				Line:    lineNo,
				Code:    ErrDuplicateModule,
				Message: fmt.Sprintf("module %q already declared on line %d", decl.Name, first),
				Text:    line,
			}
		}
		seen[decl.Name] = lineNo
		spec.Modules = append(spec.Modules, decl)
	}
	if err := sc.Err(); err != nil {
		return ir.NetworkSpec{}, &ParseError{Code: ErrScan, Message: err.Error()}
	}

	return spec, nil
}

// parseLine parses "<marker><name> -> <dest>, <dest>, ...".
func parseLine(line string, lineNo int) (ir.ModuleDecl, error) {
	lhs, rhs, ok := strings.Cut(line, "->")
	if !ok {
		return ir.ModuleDecl{}, &ParseError{Line: lineNo, Code: ErrMissingArrow, Message: `expected "->"`, Text: line}
	}

	decl := ir.ModuleDecl{Line: lineNo}
	head := strings.TrimSpace(lhs)
	switch {
	case strings.HasPrefix(head, "%"):
		decl.Kind = ir.KindFlipFlop
		head = head[1:]
	case strings.HasPrefix(head, "&"):
		decl.Kind = ir.KindConjunction
		head = head[1:]
	case head == ir.DefaultEntry:
		decl.Kind = ir.KindBroadcast
	default:
		decl.Kind = ir.KindUntyped
	}
	if !namePattern.MatchString(head) {
		return ir.ModuleDecl{}, &ParseError{Line: lineNo, Code: ErrBadDeclaration, Message: "invalid module marker or name", Text: line}
	}
	decl.Name = head

	decl.Outputs = []string{}
	for _, d := range strings.Split(rhs, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if !namePattern.MatchString(d) {
			return ir.ModuleDecl{}, &ParseError{
				Line:    lineNo,
				Code:    ErrBadDestination,
				Message: fmt.Sprintf("invalid destination %q", d),
				Text:    line,
			}
		}
		decl.Outputs = append(decl.Outputs, d)
	}

	return decl, nil
}

// Format renders spec back into the text format, one module per line in
// declaration order.
func Format(spec ir.NetworkSpec) string {
	var b strings.Builder
	for _, m := range spec.Modules {
		fmt.Fprintf(&b, "%s%s -> %s\n", m.Kind.Marker(), m.Name, strings.Join(m.Outputs, ", "))
	}
	return b.String()
}
