// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (a flat key map)
//  2. YAML file
//  3. CRICKET_* environment variables
//  4. Flag overrides (a flat key map)
//
// Environment names map to keys by dropping the prefix, lower-casing and
// turning "__" into a dot: CRICKET_STORAGE__ENCRYPTION_KEY sets
// storage.encryption_key.
//
// Watcher reports writes to a config file so long-running sessions can
// reload it.
package confloader
