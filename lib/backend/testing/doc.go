/*
Package testing provides a shared conformance suite for KVBackend
implementations.

Any engine can verify its contract by passing a factory to RunBackendTests:

	func TestMyBackend(t *testing.T) {
		backendtesting.RunBackendTests(t, "MyBackend", func() backend.KVBackend {
			return NewMyBackend(nil)
		})
	}

The suite covers document reads and writes, nested path navigation, binary
payloads, aliasing guarantees, per-key update atomicity under concurrency,
snapshot save/load and common edge cases. Tests for features an engine does
not declare via SupportsFeature are skipped.
*/
package testing
