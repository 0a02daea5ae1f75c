// Package commands wires the warmup CLI.
//
// Subcommands:
//   - networks: list the known networks
//   - probe:    initialize a client for a network once and print the snapshot
//   - serve:    initialize a client and serve readiness, metrics and state
package commands
