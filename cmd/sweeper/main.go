// cmd/sweeper/main.go
//
// One-shot sweep over stale open attendance records, meant to be run once a
// day by an external scheduler. -dry-run prints what would be closed
// without touching anything.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/config"
	"attendance_backend/internal/notify"
	"attendance_backend/internal/storage"
	"attendance_backend/internal/sweep"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report planned closures without mutating state")
	flag.Parse()

	_ = godotenv.Load()

	db := storage.OpenDB()
	cfg := config.LoadEngine()

	store := storage.NewAttendanceStore(db)
	locations := storage.NewLocationDirectory(db)
	users := storage.NewUserDirectory(db)

	svc := attendance.NewService(store, locations, users, notify.LogNotifier{}, cfg)
	sweeper := sweep.New(svc, store, locations, cfg)

	report, err := sweeper.Run(context.Background(), *dryRun)
	if err != nil {
		log.Fatal("sweep failed: ", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal(err)
	}
}
