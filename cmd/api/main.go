package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/workpulse-hq/attendance-backend-go/internal/config"
	appHTTP "github.com/workpulse-hq/attendance-backend-go/internal/handler/http"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/cron"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/sse"
	"github.com/workpulse-hq/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse-hq/attendance-backend-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.Connect(context.Background(), cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceStore := postgresql.NewAttendanceStore(db)
	zoneDirectory := postgresql.NewZoneDirectory(db)
	policyRepo := postgresql.NewPolicyRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceStore,
		zoneDirectory,
		policyRepo,
		hub,
		cfg.Attendance,
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(attendanceStore, policyRepo,
		attendanceService.StatusEngine{DefaultHalfDayHours: cfg.Attendance.HalfDayBelowHours})
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, jwtService, hub)
	zoneHandler := appHTTP.NewZoneHandler(zoneDirectory)

	router := appHTTP.NewRouter(jwtService, attendanceHandler, zoneHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
