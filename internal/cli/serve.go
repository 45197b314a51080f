package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/config"
	"github.com/a2a402/gateway/internal/engine"
	"github.com/a2a402/gateway/internal/eventlog"
	"github.com/a2a402/gateway/internal/executor"
	"github.com/a2a402/gateway/internal/facilitator"
	"github.com/a2a402/gateway/internal/gateway"
	"github.com/a2a402/gateway/internal/metrics"
	"github.com/a2a402/gateway/internal/restapi"
	"github.com/a2a402/gateway/internal/rpcapi"
	"github.com/a2a402/gateway/internal/session"
	"github.com/a2a402/gateway/internal/snapshot"
	"github.com/a2a402/gateway/internal/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the gateway HTTP server",
	RunE:  runServe,
}

// evictionInterval is how often the task-store sweep runs; terminalTaskRetention
// is how long a completed/failed/canceled task is kept around before the
// sweep reclaims it (spec §9's task-store eviction open question).
// input-required tasks are reclaimed independently, against the deadline
// internal/engine sets when it issues the payment-required challenge.
const (
	evictionInterval      = 30 * time.Second
	terminalTaskRetention = time.Hour
)

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

func buildFacilitator(cfg *config.Config, log *slog.Logger) facilitator.Client {
	switch cfg.FacilitatorMode {
	case "local-evm":
		log.Info("payment mode: local-evm facilitator", "rpc", cfg.SettlementRPCURL)
		fc, err := facilitator.NewLocalEVM(cfg.SettlementRPCURL, cfg.GatewayPrivateKey)
		if err != nil {
			log.Error("local-evm facilitator init failed", "err", err)
			os.Exit(1)
		}
		return fc
	default:
		log.Info("payment mode: in-process facilitator (test-mode settlement)")
		return facilitator.NewInProcess()
	}
}

func buildExecutors(cfg *config.Config) executor.Registry {
	reg := executor.Registry{}
	reg[catalog.SkillScreenshot] = executor.NewScreenshot(cfg.BackendServiceURL, cfg.BackendServiceKey)
	reg[catalog.SkillMarkdownToPDF] = executor.NewMarkdownToPDF()
	reg[catalog.SkillMarkdownToHTML] = executor.NewMarkdownToHTML()
	reg[catalog.SkillAIAnalysis] = executor.NewAIAnalysis("", cfg.AIProviderAPIKey)
	return reg
}

func runServe(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	events := eventlog.New()
	sessions := session.New()
	tasks := task.New()

	doc := snapshot.Load(cfg.SnapshotPath)
	snapshot.Restore(doc, events, sessions)
	tasks.SetTotalTasks(doc.TotalTasks)
	epochStart := doc.StartedAt

	fc := buildFacilitator(cfg, log)
	reg := buildExecutors(cfg)
	tokens := session.NewTokenManager(cfg.SessionJWTSecret, 0)

	eng := &engine.Engine{
		Tasks:       tasks,
		Sessions:    sessions,
		Events:      events,
		Facilitator: fc,
		Executors:   reg,
		PayTo:       cfg.GatewayPayTo,
		Tokens:      tokens,
		NewID:       func() string { return uuid.New().String() },
	}

	rpc := rpcapi.New(eng, log)
	rest := restapi.New(eng, cfg.GatewayPayTo, cfg.PublicURL, cfg.StatsAPIKey, epochStart)
	mx := metrics.New(eng)
	srv := gateway.New(eng, rpc, rest, mx, log)

	stopSnapshots := startSnapshotLoop(cfg, events, sessions, tasks, epochStart, log)
	defer stopSnapshots()

	stopEviction := startEvictionLoop(tasks, log)
	defer stopEviction()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := ":" + strconv.Itoa(cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway starting", "addr", addr, "publicURL", cfg.PublicURL, "payTo", cfg.GatewayPayTo)
		errCh <- srv.Run(addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("graceful shutdown failed", "err", err)
	}

	if err := snapshot.Save(cfg.SnapshotPath, snapshot.State{
		Log:        events,
		Sessions:   sessions,
		TotalTasks: tasks.TotalTasks,
		EpochStart: epochStart,
	}); err != nil {
		log.Error("final snapshot save failed", "err", err)
	}
	return nil
}

// startSnapshotLoop runs a periodic background save and returns a stop
// function. A save failure is logged and never crashes the process (spec
// §7).
func startSnapshotLoop(cfg *config.Config, events *eventlog.Log, sessions *session.Store, tasks *task.Store, epochStart time.Time, log *slog.Logger) func() {
	ticker := time.NewTicker(cfg.SnapshotInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				err := snapshot.Save(cfg.SnapshotPath, snapshot.State{
					Log:        events,
					Sessions:   sessions,
					TotalTasks: tasks.TotalTasks,
					EpochStart: epochStart,
				})
				if err != nil {
					log.Warn("periodic snapshot save failed", "err", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

// startEvictionLoop runs the task-store sweep on a timer and returns a stop
// function. Only internal/task's in-memory map is touched; the event log
// and session store are append-only/membership records that outlive any one
// task (spec §9).
func startEvictionLoop(tasks *task.Store, log *slog.Logger) func() {
	ticker := time.NewTicker(evictionInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := tasks.EvictExpired(time.Now(), terminalTaskRetention); n > 0 {
					log.Debug("evicted expired tasks", "count", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
