// Package repl provides the interactive shell of cricket-cli.
//
// Each line is split into arguments, shell-style, and handed to an
// Executor, which runs it as a cricket-cli command. The session, the
// storage handle and the backend client stay open between lines. The
// prompt shows who is signed in.
//
// Built-ins: exit, quit, history.
package repl
