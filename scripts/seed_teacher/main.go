package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	"github.com/noah-isme/ai-saathi-api/internal/repository"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	"github.com/noah-isme/ai-saathi-api/pkg/config"
	"github.com/noah-isme/ai-saathi-api/pkg/database"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/logger"
)

func main() {
	var (
		email    string
		password string
		fullName string
		role     string
		language string
		timeout  time.Duration
	)

	flag.StringVar(&email, "email", "teacher@saathi.local", "Account email")
	flag.StringVar(&password, "password", os.Getenv("SEED_TEACHER_PASSWORD"), "Account password (defaults to $SEED_TEACHER_PASSWORD)")
	flag.StringVar(&fullName, "name", "Demo Teacher", "Display name")
	flag.StringVar(&role, "role", string(models.RoleTeacher), "ADMIN or TEACHER")
	flag.StringVar(&language, "language", "english", "Default dashboard language")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if password == "" {
		log.Fatal("password is required: pass -password or set SEED_TEACHER_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	info, err := auth.Register(ctx, service.RegisterUserRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		FullName: fullName,
		Role:     models.UserRole(strings.ToUpper(role)),
		Language: language,
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			logr.Info("account already exists, nothing to do", zap.String("email", email))
			return
		}
		logr.Fatal("failed to seed account", zap.Error(err))
	}

	logr.Info("account created",
		zap.String("id", info.ID),
		zap.String("email", info.Email),
		zap.String("role", string(info.Role)),
	)
}
