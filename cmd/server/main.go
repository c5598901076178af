package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"randomcarnegie.app/internal/config"
	"randomcarnegie.app/internal/persistence/indexdb"
	persistlog "randomcarnegie.app/internal/persistence/log"
	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
	"randomcarnegie.app/internal/transport/api"
	"randomcarnegie.app/internal/transport/ws"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/setup.yaml", "setup config path (optional)")
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		publicURL  = flag.String("public_url", "", "public base url used in share links (overrides config)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		disableDB  = flag.Bool("disable_db", false, "disable the setup index")
		disableLog = flag.Bool("disable_request_log", false, "disable the compressed request log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	path := strings.TrimSpace(*configPath)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			logger.Printf("config %s not found; using defaults", path)
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *publicURL != "" {
		cfg.Server.PublicURL = *publicURL
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *disableDB {
		cfg.DisableDB = true
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !cfg.DisableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(cfg.DataDir, "index", "setups.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	var reqLog *persistlog.RequestLogger
	if !*disableLog {
		reqLog = persistlog.NewRequestLogger(cfg.DataDir)
		defer reqLog.Close()
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("compile schemas: %v", err)
	}

	svcCfg := service.Config{
		Defaults:  cfg.Defaults,
		PublicURL: cfg.Server.PublicURL,
		Logger:    log.New(os.Stdout, "[service] ", log.LstdFlags|log.Lmicroseconds),
	}
	if idx != nil {
		svcCfg.Index = idx
	}
	if reqLog != nil {
		svcCfg.Requests = reqLog
	}
	svc := service.New(svcCfg)

	ctx, cancel := signalContext()
	defer cancel()

	var history api.History
	if idx != nil {
		history = idx
	}
	mux := buildMux(svc, history, idx, validator, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (defaults tiles=%s limit=%s permanent=%s players=%s)",
		cfg.Server.Addr, cfg.Defaults.Tiles, cfg.Defaults.Limit, cfg.Defaults.Permanent, cfg.Defaults.Players)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func buildMux(svc *service.Service, history api.History, idx *indexdb.SQLiteIndex, validator *protocol.Validator, cfg config.Config, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, svc.Metrics(), idx)
	})
	mux.HandleFunc("/admin/v1/index/stats", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(idx.Stats())
	})

	api.NewServer(svc, history, logger).Register(mux)
	if cfg.Server.EnableWS {
		mux.HandleFunc("/v1/ws", ws.NewServer(svc, validator, cfg.Server.MaxQueue, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)).Handler())
	} else {
		logger.Printf("websocket endpoint disabled (server.enable_ws=false)")
	}
	return mux
}

func writeMetrics(rw http.ResponseWriter, m service.Metrics, idx *indexdb.SQLiteIndex) {
	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP randomcarnegie_setups_served_total Setups served by source.\n")
	fmt.Fprintf(rw, "# TYPE randomcarnegie_setups_served_total counter\n")
	for _, c := range m.Served {
		fmt.Fprintf(rw, "randomcarnegie_setups_served_total{source=%q} %d\n", c.Label, c.Value)
	}

	fmt.Fprintf(rw, "# HELP randomcarnegie_setup_failures_total Rejected setup requests by error code.\n")
	fmt.Fprintf(rw, "# TYPE randomcarnegie_setup_failures_total counter\n")
	for _, c := range m.Failures {
		fmt.Fprintf(rw, "randomcarnegie_setup_failures_total{code=%q} %d\n", c.Label, c.Value)
	}

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(rw, "# HELP randomcarnegie_index_queue_depth Index writer backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE randomcarnegie_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "randomcarnegie_index_queue_depth %d\n", st.QueueDepth)

	fmt.Fprintf(rw, "# HELP randomcarnegie_index_events_total Index writer events by outcome.\n")
	fmt.Fprintf(rw, "# TYPE randomcarnegie_index_events_total counter\n")
	fmt.Fprintf(rw, "randomcarnegie_index_events_total{outcome=%q} %d\n", "written", st.WriteTotal)
	fmt.Fprintf(rw, "randomcarnegie_index_events_total{outcome=%q} %d\n", "dropped", st.DropTotal)
	fmt.Fprintf(rw, "randomcarnegie_index_events_total{outcome=%q} %d\n", "error", st.ErrorTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
