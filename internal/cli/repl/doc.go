// Package repl provides interactive mode for Synap CLI.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: Main REPL loop and command dispatch
//   - completer.go: Prefix completion against a fixed list of command names
//   - history.go: In-memory command history with Save/Load to a file
//
// Input is read one line at a time. The completer is not wired to the
// input reader, arguments are not completed, history cannot be searched,
// multi-line input is not supported, and output is not colored.
package repl
