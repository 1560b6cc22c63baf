// Package client implements the RPC client for the akv store.
// It provides an implementation of the store.IStore interface that
// communicates with a remote akv server via RPC.
//
// The package focuses on:
//   - Transparent RPC access to a remote store shard
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the
//     store.IStore interface. This client forwards all operations to remote
//     servers via the configured transport layer. Structured values are
//     codec-encoded for the wire, so no type information is lost.
//
// The only operation that does not travel over RPC is Update: its transform
// is an arbitrary function that cannot be serialized, so the client reports
// store.RetCUnsupportedOperation. Read-modify-write over RPC must be
// expressed with Get and Assoc (without the atomicity Update provides
// locally) or run next to the server.
//
// Usage Example:
//
//		// Configure the client
//		config := common.ClientConfig{
//		  Endpoints:              []string{"localhost:5000"},
//		  TimeoutSecond:          5,
//		  RetryCount:             3,
//		  ConnectionsPerEndpoint: 1,
//		}
//
//	 // Create a serializer
//		serializer := serializer.NewBinarySerializer()
//
//		// Create store client
//		store, _ := client.NewRPCStore(1, config, tcp.NewTCPClientTransport(), serializer)
//
//		// Use the store
//		oldVal, newVal, _ := store.Assoc([]string{"users", "alice", "age"}, int64(30))
//		value, exists, _ := store.Get([]string{"users", "alice"})
//
//		// Journals work transparently over RPC
//		entryID, _ := store.Append("events", "login")
//		elements, _ := store.ReadLog("events")
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
