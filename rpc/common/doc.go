// Package common provides core data structures and utilities shared across
// the akv client/server system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - A leveled logging implementation shared by all components
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between
//     components, with a flexible structure that adapts to different
//     operation types. Includes factory methods for creating various request
//     and response messages. Structured values travel codec-encoded in the
//     Value field; binary payloads travel in it verbatim.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into document operations, journal operations,
//     binary operations, and control messages.
//
//   - ServerConfig: Configuration for server instances, including served
//     shards, request timeouts, persistence, metrics and logging.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: Leveled logging built on the dragonboat logger facade, which
//     provides named per-component loggers with a pluggable factory while
//     keeping consistent formatting across the application.
package common
