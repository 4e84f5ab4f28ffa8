// Package output renders command results for cricket-cli.
//
// Results are printed to stdout as a table (default), JSON or YAML.
// JSON and YAML keep the backend's field names; tables are for people.
// Types can implement Tabler to control their table layout.
//
// The spinner only animates on a terminal.
package output
