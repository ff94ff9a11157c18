package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsenet/internal/ir"
)

// CompileCUEBytes compiles CUE source into a NetworkSpec.
// filename is used for error positions only.
func CompileCUEBytes(filename string, data []byte) (ir.NetworkSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return CompileCUE(v)
}

// CompileCUE parses a CUE value of the form:
//
//	entry: "broadcaster" // optional
//	modules: {
//		broadcaster: {kind: "broadcast", outputs: ["a"]}
//		a:           {kind: "flipflop", outputs: ["inv"]}
//		inv:         {kind: "conjunction", outputs: ["a"]}
//	}
//
// Modules keep CUE field order.
func CompileCUE(v cue.Value) (ir.NetworkSpec, error) {
	if err := v.Err(); err != nil {
		return ir.NetworkSpec{}, formatCUEError(err)
	}

	spec := ir.NetworkSpec{Entry: ir.DefaultEntry}

	if entryVal := v.LookupPath(cue.ParsePath("entry")); entryVal.Exists() {
		entry, err := entryVal.String()
		if err != nil {
			return ir.NetworkSpec{}, formatCUEError(err)
		}
		if !namePattern.MatchString(entry) {
			return ir.NetworkSpec{}, &CompileError{Field: "entry", Message: fmt.Sprintf("invalid module name %q", entry), Pos: entryVal.Pos()}
		}
		spec.Entry = entry
	}

	modsVal := v.LookupPath(cue.ParsePath("modules"))
	if !modsVal.Exists() {
		return ir.NetworkSpec{}, &CompileError{Field: "modules", Message: "modules is required", Pos: v.Pos()}
	}

	iter, err := modsVal.Fields()
	if err != nil {
		return ir.NetworkSpec{}, formatCUEError(err)
	}
	for iter.Next() {
		decl, err := compileModule(iter.Label(), iter.Value())
		if err != nil {
			return ir.NetworkSpec{}, err
		}
		spec.Modules = append(spec.Modules, decl)
	}

	return spec, nil
}

func compileModule(name string, v cue.Value) (ir.ModuleDecl, error) {
	field := "modules." + name
	if !namePattern.MatchString(name) {
		return ir.ModuleDecl{}, &CompileError{Field: field, Message: "invalid module name", Pos: v.Pos()}
	}

	decl := ir.ModuleDecl{Name: name, Outputs: []string{}}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return ir.ModuleDecl{}, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: v.Pos()}
	}
	kindStr, err := kindVal.String()
	if err != nil {
		return ir.ModuleDecl{}, formatCUEError(err)
	}
	decl.Kind, err = ir.ParseKind(kindStr)
	if err != nil {
		return ir.ModuleDecl{}, &CompileError{Field: field + ".kind", Message: err.Error(), Pos: kindVal.Pos()}
	}

	outVal := v.LookupPath(cue.ParsePath("outputs"))
	if !outVal.Exists() {
		return decl, nil
	}
	outIter, err := outVal.List()
	if err != nil {
		return ir.ModuleDecl{}, formatCUEError(err)
	}
	for outIter.Next() {
		dest, err := outIter.Value().String()
		if err != nil {
			return ir.ModuleDecl{}, formatCUEError(err)
		}
		if !namePattern.MatchString(dest) {
			return ir.ModuleDecl{}, &CompileError{
				Field:   field + ".outputs",
				Message: fmt.Sprintf("invalid destination %q", dest),
				Pos:     outIter.Value().Pos(),
			}
		}
		decl.Outputs = append(decl.Outputs, dest)
	}

	return decl, nil
}

// CompileError represents a CUE compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
