// Package config loads the CLI configuration.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults (LoadDefaults)
//  2. an optional JSON file passed with -c / --config
//  3. environment variables prefixed with OFFSYNC_, optionally read from a
//     .env file (see EnvFile)
//  4. command-line flags, bound by the CLI with BindFlags
//
// Intervals in JSON accept strings such as "3s" or integer nanoseconds.
package config
