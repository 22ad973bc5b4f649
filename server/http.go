package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SalieeriW/FIB-NETFLIX/config"
	"github.com/SalieeriW/FIB-NETFLIX/constant"
	jobHandler "github.com/SalieeriW/FIB-NETFLIX/handler"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/analysis"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/rabbitmq"
	"github.com/SalieeriW/FIB-NETFLIX/repository"
	"github.com/SalieeriW/FIB-NETFLIX/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	repo := repository.NewRepo(cfg.DB)
	runner := ffmpeg.CommandRunner{}
	analysisClient := analysis.NewClient(cfg.Analysis.URL)

	transcodePool := service.NewDispatcher(cfg.Server.TranscodeWorkers)
	transcodePool.Start(ctx)
	defer transcodePool.Stop()

	coursePool := service.NewDispatcher(cfg.Server.CourseWorkers)
	coursePool.Start(ctx)
	defer coursePool.Stop()

	transcodeService := service.NewTranscodeService(repo, cfg, runner, transcodePool)
	courseService := service.NewCourseService(repo, cfg, runner, analysisClient, coursePool)

	serviceDeps := jobHandler.ServiceDependencies{
		TranscodeService: transcodeService,
		CourseService:    courseService,
	}

	transcodeConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.TranscodeRoute, cfg.Server.TranscodeWorkers, jobHandler.TranscodeHandler)
	go func() {
		if err := transcodeConsumer.Consume(ctx, serviceDeps); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("transcode consumer error")
		}
	}()

	courseConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.CourseRoute, cfg.Server.CourseWorkers, jobHandler.CourseHandler)
	go func() {
		if err := courseConsumer.Consume(ctx, serviceDeps); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("course consumer error")
		}
	}()

	r := gin.Default()
	addRoutes(r, repo, transcodeService, courseService, analysisClient)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
