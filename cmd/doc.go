// Package cmd implements the command-line interface for the aKV consistent
// document and journal store. It provides a hierarchical command structure
// with operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for document and binary store operations (get, set, exists, bget, bset)
//   - journal: Commands for append-only journal operations (append, read)
//   - serve: Commands for starting and configuring the akv server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See akv -help for a list of all commands.
package cmd
