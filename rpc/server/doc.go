// Package server implements the RPC server for the akv store.
// It provides adapters for handling RPC requests to the store and journal
// services, along with the core server implementation that manages shards
// and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for document, journal and binary operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Flexible shard configuration: every shard is an independent store
//   - Shard snapshotting to disk and restore on startup
//   - Per-operation request metrics in Prometheus format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating an adapter for the full
//     store surface, translating RPC requests to store.IStore method calls.
//
//   - NewJournalServerAdapter: Factory function creating an adapter that accepts
//     journal operations only, for shards dedicated to append-only data.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeKV},
//	    {ShardID: 200, Type: common.ShardTypeJournal},
//	  },
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports two types of shards, which can be mixed within a single server:
//
//   - ShardTypeKV: Serves the full store surface (document reads and writes,
//     journals, binary payloads).
//
//   - ShardTypeJournal: Accepts journal operations only. Useful for keeping
//     audit or event data on a shard that cannot be touched by plain writes.
//
// Shards do not share state: each one owns a backend and a lock table, so keys
// on different shards never contend. When DataDir is configured, every shard
// is snapshotted to disk on shutdown and restored on the next start.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
