// Package command provides CLI command definitions for cricket-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and the interactive shell. Commands collect
// input, run client-local validation, call the resource APIs and drive
// the session manager. Errors are rendered through domain.UserMessage.
package command
