package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wfunc/gridarena/config"
	"github.com/wfunc/gridarena/logger"
	"github.com/wfunc/gridarena/monitor"
	"github.com/wfunc/gridarena/persistence"
	"github.com/wfunc/gridarena/room"
	"github.com/wfunc/gridarena/rpc"
	"github.com/wfunc/gridarena/server"
	"github.com/wfunc/gridarena/services"
	"github.com/wfunc/gridarena/timer"
)

func usage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <port>\n", os.Args[0])
	fs.PrintDefaults()
}

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	config.Flags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		usage(fs)
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		usage(fs)
		os.Exit(1)
	}
	port, err := strconv.Atoi(fs.Arg(0))
	if err != nil || port < 0 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port %q\n", fs.Arg(0))
		os.Exit(1)
	}

	// Load configuration
	dir, _ := fs.GetString("config")
	cfg, err := config.LoadConfig(dir, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize event store
	db, err := persistence.Open(cfg.DatabaseOptions())
	if err != nil {
		logger.Log.Fatalf("Failed to open event store: %v", err)
	}
	defer db.Close()
	recorder := services.NewEventRecorder(db, services.DefaultBuffer)
	defer recorder.Close()

	mon := monitor.NewMonitor("gridarena")
	arena, err := room.New(cfg.Game.Layout(), cfg.Game.Capacity,
		room.WithMetrics(mon),
		room.WithRecorder(recorder),
	)
	if err != nil {
		logger.Log.Fatalf("Failed to create arena: %v", err)
	}
	gameServer := server.NewGameServer(arena)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	timers := timer.NewTimerManager()
	defer timers.Stop()
	if cfg.Game.BroadcastInterval > 0 {
		timers.AddTimer(cfg.Game.BroadcastInterval, cfg.Game.BroadcastInterval, arena.Refresh)
	}

	var httpServer *http.Server
	if cfg.Server.HTTPAddress != "" {
		mux := http.NewServeMux()
		mon.Register(mux)
		mux.HandleFunc("/ws", gameServer.HandleWebSocket)
		httpServer = &http.Server{Addr: cfg.Server.HTTPAddress, Handler: mux}
		go func() {
			logger.Log.Infof("HTTP server listening on %s", cfg.Server.HTTPAddress)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Errorf("HTTP server: %v", err)
			}
		}()
	}

	if cfg.Server.RPCAddress != "" {
		rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress, rpc.NewArenaService(arena, db))
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		go rpcServer.Start()
		defer rpcServer.Stop()
	}

	var health *rpc.HealthServer
	if cfg.Server.GRPCAddress != "" {
		health, err = rpc.NewHealthServer(cfg.Server.GRPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create gRPC health server: %v", err)
		}
		go health.Start()
		health.SetServing(true)
		defer health.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gameServer.Serve(ctx, ln); err != nil {
		logger.Log.Errorf("Game server: %v", err)
	}

	logger.Log.Info("Shutting down")
	if health != nil {
		health.SetServing(false)
	}
	if httpServer != nil {
		httpServer.Close()
	}
	arena.Shutdown()
	gameServer.Wait()
}
