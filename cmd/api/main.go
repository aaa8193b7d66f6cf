package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storeops/attendance-backend-go/internal/config"
	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	appHTTP "github.com/storeops/attendance-backend-go/internal/handler/http"
	"github.com/storeops/attendance-backend-go/internal/pkg/cron"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
	"github.com/storeops/attendance-backend-go/internal/pkg/jwt"
	"github.com/storeops/attendance-backend-go/internal/pkg/storage"
	"github.com/storeops/attendance-backend-go/internal/repository/postgresql"
	approvalService "github.com/storeops/attendance-backend-go/internal/service/approval"
	attendanceService "github.com/storeops/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/storeops/attendance-backend-go/internal/service/auth"
	"github.com/storeops/attendance-backend-go/internal/service/file"
	reconcileService "github.com/storeops/attendance-backend-go/internal/service/reconcile"
	scheduleService "github.com/storeops/attendance-backend-go/internal/service/schedule"
	shiftService "github.com/storeops/attendance-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	storeRepo := postgresql.NewStoreRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	advisorScheduleRepo := postgresql.NewAdvisorScheduleRepository(db)
	weekOffRepo := postgresql.NewWeekOffRepository(db)
	exceptionRepo := postgresql.NewScheduleExceptionRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	idempotencyRepo := postgresql.NewIdempotencyRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	loc := cfg.Location()
	rules := attendance.MetricRules{
		GracePeriod:      time.Duration(cfg.Attendance.GracePeriodMinutes) * time.Minute,
		HalfDayThreshold: cfg.Attendance.HalfDayThresholdMins,
		RoundingBucket:   cfg.Attendance.RoundingBucketMins,
	}

	txRunner := postgresql.NewTxRunner(db)
	fileSvc := file.NewService(fileStorage)
	authSvc := serviceAuth.NewService(userRepo, JWTService)
	shiftSvc := shiftService.NewService(shiftRepo)
	scheduleSvc := scheduleService.NewService(
		advisorScheduleRepo,
		weekOffRepo,
		exceptionRepo,
		shiftRepo,
		userRepo,
	)
	attendanceSvc := attendanceService.NewService(
		attendanceRepo,
		requestRepo,
		idempotencyRepo,
		userRepo,
		storeRepo,
		shiftRepo,
		scheduleSvc,
		fileSvc,
		txRunner,
		rules,
		loc,
	)
	approvalSvc := approvalService.NewService(
		requestRepo,
		attendanceRepo,
		idempotencyRepo,
		userRepo,
		shiftRepo,
		txRunner,
		rules,
		cfg.Attendance.OvertimeCapMinutes,
		cfg.Attendance.ApprovalClearsPending,
		loc,
	)
	reconcileSvc := reconcileService.NewService(
		attendanceRepo,
		userRepo,
		shiftRepo,
		scheduleSvc,
		rules,
		loc,
	)

	authHandler := appHTTP.NewAuthHandler(JWTService, authSvc)
	shiftHandler := appHTTP.NewShiftHandler(shiftSvc)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, reconcileSvc, loc)
	requestHandler := appHTTP.NewRequestHandler(approvalSvc)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(reconcileSvc, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		authHandler,
		shiftHandler,
		scheduleHandler,
		attendanceHandler,
		requestHandler,
		cfg.Storage.BasePath,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
}
