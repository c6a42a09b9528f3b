package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tessera-run/tessera/internal/api"
	"github.com/tessera-run/tessera/internal/cache"
	"github.com/tessera-run/tessera/internal/config"
	"github.com/tessera-run/tessera/internal/device"
	"github.com/tessera-run/tessera/internal/dispatch"
	"github.com/tessera-run/tessera/internal/exec"
	"github.com/tessera-run/tessera/internal/object"
	"github.com/tessera-run/tessera/internal/program"
	"github.com/tessera-run/tessera/internal/store"
)

func main() {
	// Optional .env for local development; real deployments set the
	// TESSERA_* variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("tessera: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"worker", cfg.WorkerName,
		"devices", cfg.Devices,
	)

	devices := device.NewManager()
	for _, name := range cfg.Devices {
		devices.Register(&device.Device{Name: name, Kind: device.KindOf(name)})
	}

	dctx := dispatch.NewContext(cfg.WorkerName, devices, object.NewStore())
	progCache := cache.New(program.DefaultRegistry(), logger)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Replay persisted registrations so previously registered programs
	// survive a worker restart.
	records, err := db.ListPrograms(context.Background())
	if err != nil {
		log.Fatalf("failed to list persisted programs: %v", err)
	}
	for _, rec := range records {
		progCache.Register(rec.Name, rec.Bytes)
	}
	if len(records) > 0 {
		logger.Info("replayed persisted programs", "count", len(records))
	}

	env := exec.NewEnv(logger)

	disp, err := dispatch.NewDispatcher(dctx, progCache, env, program.Compile, db, logger)
	if err != nil {
		log.Fatalf("failed to create dispatcher: %v", err)
	}

	srv := api.NewServer(cfg.ListenAddr, disp, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}

	// Let in-flight executions settle before exiting.
	env.Wait()
}
