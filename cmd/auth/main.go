package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aircnc/aircnc-server/handlers"
	"github.com/aircnc/aircnc-server/internal/cli"
	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/internal/server"
	"github.com/aircnc/aircnc-server/internal/tokens"
	"github.com/aircnc/aircnc-server/internal/users"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/aircnc/aircnc-server/pkg/logger"
)

func main() {
	cmd := cli.NewServiceCommand(cli.ServiceOptions{
		Name:        "aircnc-auth",
		Description: "User accounts and token authentication",
		LoadConfig:  config.LoadAuthConfig,
		Serve:       serve,
		Check:       cli.CheckDependencies,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := cmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := validation.RegisterWithGin(); err != nil {
		return err
	}

	deps, err := cli.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close(context.Background())

	repo, err := users.NewRepository(ctx, deps.DB)
	if err != nil {
		return err
	}
	if deps.Redis == nil {
		logger.Warn("redis not configured, logout cannot revoke tokens")
	}
	issuer := tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expiration(), tokens.NewBlacklist(deps.Redis))

	r := server.New(server.Options{
		Name:      "auth",
		RateLimit: cfg.RateLimit,
		Redis:     deps.Redis,
		Checks:    deps.Checks(),
	})
	handlers.NewAuthHandler(users.NewService(repo), issuer, cfg.Server.Environment == "production").Register(r)
	if err := handlers.RegisterSwagger(r, "auth"); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting auth service on %s (env=%s)", addr, cfg.Server.Environment)
	return server.Run(ctx, r, addr, 15*time.Second)
}
