package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabogan/esl-lesson-system/internal/app"
	"github.com/rabogan/esl-lesson-system/internal/config"
	"github.com/rabogan/esl-lesson-system/internal/controller"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"github.com/rabogan/esl-lesson-system/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	teacherRepo := repository.NewTeacherRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	recordRepo := repository.NewLessonRecordRepository(pool)

	slotService := service.NewSlotService(slotRepo, teacherRepo, logger)
	bookingService := service.NewBookingService(pool, slotRepo, studentRepo, bookingRepo, recordRepo, logger)
	recordService := service.NewLessonRecordService(pool, recordRepo, teacherRepo, logger)
	userService := service.NewUserService(studentRepo, teacherRepo, logger)

	validate := validator.New()

	router := controller.NewRouter(
		logger,
		controller.NewSlotHandler(slotService, userService, validate, cfg.DefaultTimezone, logger),
		controller.NewBookingHandler(bookingService, userService, validate, cfg.DefaultTimezone, logger),
		controller.NewRecordHandler(recordService, userService, validate, cfg.DefaultTimezone, logger),
		controller.NewUserHandler(userService, validate, logger),
	)

	sweeper := app.NewSweeper(slotRepo, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
