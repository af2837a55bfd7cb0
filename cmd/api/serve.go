package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/api/routes"
	"github.com/ArowuTest/masterstudent-moderation/internal/coinsync"
	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/ArowuTest/masterstudent-moderation/internal/handlers"
	"github.com/ArowuTest/masterstudent-moderation/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the moderation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogger(cfg.LogLevel)
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not configured")
	}
	if cfg.Admin.PasswordHash == "" {
		slog.Warn("ADMIN_PASSWORDHASH is empty, the bootstrap moderator cannot log in")
	}
	if !config.GetEnvAsBool("GIN_DEBUG", false) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.close(closeCtx)
	}()
	if cfg.Storage.ReprobeInterval > 0 {
		go st.selector.Watch(ctx, st.binding, cfg.Storage.ReprobeInterval)
	}

	ob := openOutbox(ctx, cfg)
	defer ob.close()

	sender := newSender(cfg)
	forwarder := coinsync.NewForwarder(sender, ob.store, cfg.Sync.Source)
	if ob.store != nil {
		dispatcher := newDispatcher(cfg, ob.store, sender)
		forwarder.WithWake(dispatcher.Wake)
		go dispatcher.Run(ctx)
	}

	authService := services.NewAuthService(st.admins, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	auditService := services.NewAuditService(st.binding)
	ledgerService := services.NewLedgerService(st.binding, forwarder)
	moderationService := services.NewModerationService(st.binding, ledgerService, auditService,
		services.FixedReward(cfg.Coins.ApprovalReward))
	dashboardService := services.NewDashboardService(st.binding, auditService)

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		AdminHandler:      handlers.NewAdminHandler(dashboardService, ledgerService),
		ModerationHandler: handlers.NewModerationHandler(moderationService),
		SystemHandler:     handlers.NewSystemHandler(st.binding, ob.store),
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "storage", st.binding.Kind(), "syncMode", cfg.Sync.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}
