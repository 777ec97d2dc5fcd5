// cmd/server/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/config"
	"attendance_backend/internal/notify"
	"attendance_backend/internal/routes"
	"attendance_backend/internal/shifts"
	"attendance_backend/internal/storage"
	"attendance_backend/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	db := storage.OpenDB()
	cfg := config.LoadEngine()

	store := storage.NewAttendanceStore(db)
	locations := storage.NewLocationDirectory(db)
	users := storage.NewUserDirectory(db)

	svc := attendance.NewService(store, locations, users, notify.LogNotifier{}, cfg)
	sweeper := sweep.New(svc, store, locations, cfg)

	sweepAt := os.Getenv("SWEEP_TIME")
	if sweepAt == "" {
		sweepAt = "23:59"
	}
	minute, err := shifts.ParseClock(sweepAt)
	if err != nil {
		log.Fatal("invalid SWEEP_TIME: ", err)
	}
	sweeper.StartDaily(minute/60, minute%60)

	r := routes.NewRouter(db, svc, store, sweeper)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	log.Printf("Server running on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
