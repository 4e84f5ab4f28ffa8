// Package config provides the cricket-cli configuration.
//
// The file lives at ~/.cricket/cli.yaml. Values are layered by
// confloader: built-in defaults, then the file, then CRICKET_*
// environment variables, then command-line flags.
package config
