package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ngaut/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/flowlog/tlogd/config"
	"github.com/flowlog/tlogd/rpc"
	"github.com/flowlog/tlogd/runtime"
	"github.com/flowlog/tlogd/tlog"
)

var (
	configPath = flag.String("config", "", "path to a tlogd TOML config file")
	listenAddr = flag.String("addr", "", "grpc listen address, overrides the config file")
	dataDir    = flag.String("data-dir", "", "data directory, overrides the config file")
	instanceID = flag.Uint64("instance-id", 0, "numeric identity reported in queuing-metrics replies")
)

// fileConfig mirrors config.Config's TOML-facing fields. Durations and
// byte sizes are plain strings/integers in the file and converted once
// loaded, matching the teacher's own config-loading style.
type fileConfig struct {
	ListenAddr string `toml:"listen-addr"`
	StatusAddr string `toml:"status-addr"`
	LogLevel   string `toml:"log-level"`
	DataDir    string `toml:"data-dir"`

	NumLoaders  int    `toml:"num-loaders"`
	NumAppliers int    `toml:"num-appliers"`
	SpillType   string `toml:"spill-type"`

	SpillThresholdBytes      uint64 `toml:"spill-threshold-bytes"`
	HardLimitBytes           uint64 `toml:"hard-limit-bytes"`
	MaxQueueCommitBytes      uint64 `toml:"max-queue-commit-bytes"`
	DefaultBlockBytes        uint64 `toml:"default-block-bytes"`
	MaxMessageSize           uint64 `toml:"max-message-size"`
	PeekMemoryBytes          uint64 `toml:"peek-memory-bytes"`
	ConcurrentLogRouterReads int    `toml:"concurrent-log-router-reads"`

	TlogMaxCreateDurationSeconds int  `toml:"tlog-max-create-duration-seconds"`
	WarningTimeoutMillis         int  `toml:"warning-timeout-millis"`
	InMemoryOnly                 bool `toml:"in-memory-only"`
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path == "" {
		return cfg, nil
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("tlogd: failed to parse config %s: %w", path, err)
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.StatusAddr != "" {
		cfg.StatusAddr = fc.StatusAddr
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.NumLoaders > 0 {
		cfg.NumLoaders = fc.NumLoaders
	}
	if fc.NumAppliers > 0 {
		cfg.NumAppliers = fc.NumAppliers
	}
	switch fc.SpillType {
	case "reference":
		cfg.SpillType = config.SpillReference
	case "value", "":
	default:
		return nil, fmt.Errorf("tlogd: unknown spill-type %q", fc.SpillType)
	}
	if fc.SpillThresholdBytes > 0 {
		cfg.SpillThresholdBytes = fc.SpillThresholdBytes
	}
	if fc.HardLimitBytes > 0 {
		cfg.HardLimitBytes = fc.HardLimitBytes
	}
	if fc.MaxQueueCommitBytes > 0 {
		cfg.MaxQueueCommitBytes = fc.MaxQueueCommitBytes
	}
	if fc.DefaultBlockBytes > 0 {
		cfg.DefaultBlockBytes = fc.DefaultBlockBytes
	}
	if fc.MaxMessageSize > 0 {
		cfg.MaxMessageSize = fc.MaxMessageSize
	}
	if fc.PeekMemoryBytes > 0 {
		cfg.PeekMemoryBytes = fc.PeekMemoryBytes
	}
	if fc.ConcurrentLogRouterReads > 0 {
		cfg.ConcurrentLogRouterReads = fc.ConcurrentLogRouterReads
	}
	if fc.TlogMaxCreateDurationSeconds > 0 {
		cfg.TlogMaxCreateDuration = time.Duration(fc.TlogMaxCreateDurationSeconds) * time.Second
	}
	if fc.WarningTimeoutMillis > 0 {
		cfg.WarningTimeout = time.Duration(fc.WarningTimeoutMillis) * time.Millisecond
	}
	cfg.InMemoryOnly = fc.InMemoryOnly
	return cfg, nil
}

func main() {
	flag.Parse()
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	log.SetLevelByString(cfg.LogLevel)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Infof("tlogd starting with config %+v", cfg)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := tlog.NewServerData(cfg, runtime.SystemClock{}, *instanceID, nil)
	adapter := rpc.NewAdapter(server)

	alivePolicy := keepalive.EnforcementPolicy{
		MinTime:             2 * time.Second,
		PermitWithoutStream: true,
	}
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(alivePolicy),
		grpc.MaxRecvMsgSize(64*1024*1024),
	)
	rpc.RegisterTLogServer(grpcServer, adapter)

	l, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatal(err)
	}

	go serveStatus(cfg.StatusAddr)
	handleSignal(grpcServer, server, cancel)

	log.Infof("tlogd listening on %s", cfg.ListenAddr)
	if err := grpcServer.Serve(l); err != nil {
		log.Fatal(err)
	}
	log.Info("tlogd stopped.")
}

func serveStatus(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("tlogd: status server on %s exited: %v", addr, err)
	}
}

func handleSignal(grpcServer *grpc.Server, server *tlog.ServerData, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-sigCh
		log.Infof("tlogd got signal [%s], shutting down.", sig)
		cancel()
		grpcServer.GracefulStop()
		if err := server.Close(); err != nil {
			log.Errorf("tlogd: error closing server state: %v", err)
		}
	}()
}
