package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/config"
	"github.com/kevinaaaquil/docshare/backend/handlers"
	"github.com/kevinaaaquil/docshare/backend/logging"
	"github.com/kevinaaaquil/docshare/backend/service"
	"github.com/kevinaaaquil/docshare/backend/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logging.New(logging.Config{})
		l.Fatal().Err(err).Msg("config")
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	config.LogEnv(log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb")
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb indexes")
	}

	blobs, err := service.NewS3Service(ctx, service.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("s3")
	}

	tokens, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt")
	}
	gate, err := auth.NewGate()
	if err != nil {
		log.Fatal().Err(err).Msg("authorization gate")
	}

	users := &service.UserService{
		Users:  db,
		Hasher: auth.NewHasher(bcrypt.DefaultCost),
		Tokens: tokens,
		Log:    log.With().Str("component", "users").Logger(),
		Now:    time.Now,
	}
	docs := &service.DocumentService{
		Docs:             db,
		Blobs:            blobs,
		Users:            db,
		Sent:             db,
		MaxBytes:         cfg.MaxUploadBytes(),
		PresignTTL:       cfg.PresignTTL,
		OwnerOnlySharing: cfg.OwnerOnlySharing,
		Log:              log.With().Str("component", "documents").Logger(),
		Now:              time.Now,
	}
	var mailer *service.ShareMailer
	if cfg.MailEnabled() {
		mailer = service.NewShareMailer(service.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, db, log)
		docs.Notifier = mailer
	} else {
		log.Warn().Msg("SMTP_HOST not set; share notifications are disabled")
	}

	if err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Docs:          docs,
		Users:         users,
		Tokens:        tokens,
		Gate:          gate,
		DB:            db,
		Log:           log,
		MaxUpload:     cfg.MaxUploadBytes(),
		CORSOrigins:   cfg.CORSAllowedOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          stdLogger(log),
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if mailer != nil {
		mailer.Wait()
	}
}

func stdLogger(log zerolog.Logger) *stdlog.Logger {
	return stdlog.New(log.With().Str("component", "http").Logger(), "", 0)
}
