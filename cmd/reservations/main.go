package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aircnc/aircnc-server/handlers"
	"github.com/aircnc/aircnc-server/internal/authclient"
	"github.com/aircnc/aircnc-server/internal/cli"
	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/internal/reservation/handler"
	"github.com/aircnc/aircnc-server/internal/reservation/repository"
	"github.com/aircnc/aircnc-server/internal/reservation/service"
	"github.com/aircnc/aircnc-server/internal/server"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/aircnc/aircnc-server/pkg/middleware"
	"github.com/gin-gonic/gin"
)

func main() {
	cmd := cli.NewServiceCommand(cli.ServiceOptions{
		Name:        "aircnc-reservations",
		Description: "Reservation CRUD",
		LoadConfig:  config.LoadReservationsConfig,
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

	repo, err := repository.NewMongoRepo(ctx, deps.DB)
	if err != nil {
		return err
	}

	r := server.New(server.Options{
		Name:      "reservations",
		RateLimit: cfg.RateLimit,
		Redis:     deps.Redis,
		Checks:    deps.Checks(),
	})
	if err := handlers.RegisterSwagger(r, "reservations"); err != nil {
		return err
	}

	var api gin.IRouter = r
	if cfg.Auth.URL != "" {
		api = r.Group("/", middleware.AuthMiddleware(authclient.New(cfg.Auth.URL, cfg.Auth.Timeout, cfg.Auth.CacheTTL)))
	} else {
		logger.Warn("AUTH_URL is not set, reservation routes are unauthenticated")
	}
	handler.RegisterReservationRoutes(api, service.New(repo))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting reservations service on %s (env=%s)", addr, cfg.Server.Environment)
	return server.Run(ctx, r, addr, 15*time.Second)
}
