package aspen

import (
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
	backendtesting "github.com/ValentinKolb/aKV/lib/backend/testing"
)

func TestAspenBackendInterface(t *testing.T) {
	backendtesting.RunBackendTests(t, "AspenBackend", func() backend.KVBackend {
		return NewAspenBackend(nil)
	})
}

func TestAspenBackendSingleShard(t *testing.T) {
	backendtesting.RunBackendTests(t, "AspenBackendSingleShard", func() backend.KVBackend {
		return NewAspenBackend(&Options{NumShards: 1})
	})
}
