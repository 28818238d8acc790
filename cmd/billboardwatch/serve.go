package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billboardwatch/internal/db"
	"billboardwatch/internal/server"
	"billboardwatch/internal/service"
	"billboardwatch/internal/storage"
	"billboardwatch/internal/store"
	"billboardwatch/internal/token"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	imageStore := storage.NewS3ImageStore(s3Client, config.ImageBucket, config.ImageBaseURL)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	reportRepo := store.NewReportRepository(pool)

	issuer := token.NewIssuer(config.TokenSecret, time.Duration(config.TokenTTLHrs)*time.Hour)

	authSvc := service.NewAuthService(userRepo, issuer, logger)
	reportSvc := service.NewReportService(reportRepo, userRepo, imageStore, logger)

	srv, err := server.New(config, logger, authSvc, reportSvc)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
