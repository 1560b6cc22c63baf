package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/backend/engines/aspen"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/lib/store/cstore"
	"github.com/ValentinKolb/aKV/rpc/common"
	"github.com/ValentinKolb/aKV/rpc/serializer"
	"github.com/ValentinKolb/aKV/rpc/transport"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server.
// It contains the backend (kept for snapshotting), the store built on it
// and the adapter that handles requests for the store
type serverShard struct {
	Backend backend.KVBackend
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := rpc.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate shard
		shard, ok := s.shards.Load(shardId)

		// Case shard does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     "shard not found",
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request, tracking per-op metrics
				start := time.Now()
				respMsg = *shard.Adapter.Handle(&msg, shard.Store)
				observeRequest(shardId, msg.MsgType, &respMsg, start)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
		}
		return val
	})
}

// observeRequest records counters and latency for one handled request
func observeRequest(shardId uint64, op common.MessageType, resp *common.Message, start time.Time) {
	outcome := "ok"
	if resp.Err != "" {
		outcome = "error"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(
		`akv_rpc_requests_total{shard="%d",op=%q,outcome=%q}`, shardId, op.String(), outcome,
	)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(
		`akv_rpc_request_duration_seconds{shard="%d",op=%q}`, shardId, op.String(),
	)).UpdateDuration(start)
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config.LogLevel)

	// Function to create a new backend instance
	backendFactory := func() backend.KVBackend { return aspen.NewAspenBackend(nil) }

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of shards. Each shard is
		an independent store with its own lock table: keys on different shards
		never contend. A kv shard serves the full store surface, a journal
		shard accepts journal operations only.
	*/

	for _, shardConfig := range s.config.Shards {

		// Choose the appropriate adapter based on the shard type
		var adapter IRPCServerAdapter
		switch shardConfig.Type {
		case common.ShardTypeKV:
			adapter = NewIStoreServerAdapter()
		case common.ShardTypeJournal:
			adapter = NewJournalServerAdapter()
		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}

		// The backend is created once and shared between the snapshot logic
		// and the store (the store must be the only writer, see cstore docs)
		b := backendFactory()
		if err := s.restoreShard(shardConfig.ShardID, b); err != nil {
			return err
		}

		s.shards.Store(shardConfig.ShardID, serverShard{
			Backend: b,
			Store:   cstore.NewConsistentStore(func() backend.KVBackend { return b }),
			Adapter: adapter,
		})
		Logger.Infof("created %s shard %d", shardConfig.Type, shardConfig.ShardID)
	}

	Logger.Infof("akv setup completed successfully")

	// Save snapshots on shutdown signals
	s.installShutdownHandler()

	// Start the metrics endpoint if configured
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// snapshotPath returns the snapshot file for a shard
func (s *rpcServer) snapshotPath(shardId uint64) string {
	return filepath.Join(s.config.DataDir, fmt.Sprintf("shard-%d.aspen", shardId))
}

// restoreShard loads a shard snapshot from the data directory if one exists
func (s *rpcServer) restoreShard(shardId uint64, b backend.KVBackend) error {
	if s.config.DataDir == "" {
		return nil
	}

	path := s.snapshotPath(shardId)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot for shard %d: %w", shardId, err)
	}
	defer f.Close()

	if err := b.Load(f); err != nil {
		return fmt.Errorf("failed to restore shard %d from %s: %w", shardId, path, err)
	}
	Logger.Infof("restored shard %d from %s", shardId, path)
	return nil
}

// saveShards writes a snapshot of every shard to the data directory
func (s *rpcServer) saveShards() {
	if s.config.DataDir == "" {
		return
	}

	if err := os.MkdirAll(s.config.DataDir, 0o755); err != nil {
		Logger.Errorf("failed to create data directory: %v", err)
		return
	}

	s.shards.Range(func(shardId uint64, shard serverShard) bool {
		path := s.snapshotPath(shardId)

		// Write to a temp file first, then rename, so a crash mid-save never
		// corrupts the previous snapshot
		tmp := path + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			Logger.Errorf("failed to create snapshot for shard %d: %v", shardId, err)
			return true
		}

		if err := shard.Backend.Save(f); err != nil {
			Logger.Errorf("failed to save shard %d: %v", shardId, err)
			f.Close()
			os.Remove(tmp)
			return true
		}
		if err := f.Close(); err != nil {
			Logger.Errorf("failed to close snapshot for shard %d: %v", shardId, err)
			os.Remove(tmp)
			return true
		}
		if err := os.Rename(tmp, path); err != nil {
			Logger.Errorf("failed to finalize snapshot for shard %d: %v", shardId, err)
			return true
		}

		Logger.Infof("saved shard %d to %s", shardId, path)
		return true
	})
}

// installShutdownHandler saves all shards when the process is asked to stop
func (s *rpcServer) installShutdownHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		Logger.Infof("received %s, shutting down", sig)
		s.saveShards()
		os.Exit(0)
	}()
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// serveMetrics exposes the request metrics in Prometheus text format
func (s *rpcServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Infof("Starting metrics server on %s", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		Logger.Errorf("metrics server failed: %v", err)
	}
}
