// Package compiler turns network descriptions into ir.NetworkSpec values.
//
// Two source formats are supported:
//
// Line-oriented text, one module per line:
//
//	broadcaster -> a, b, c
//	%a -> b
//	&inv -> a
//
// where "%" marks a flip-flop, "&" a conjunction and the unmarked name
// "broadcaster" the broadcast module. Blank lines and lines starting with
// "#" are ignored.
//
// CUE, compiled through the CUE Go SDK (see CompileCUE).
//
// Compilation only checks syntax and duplicate names. Semantic checks that
// do not prevent simulation (undeclared destinations, unreachable modules,
// feedback loops) are reported by Validate as warnings.
package compiler
