package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kredits/oracle/internal/config"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/githubapp"
	"github.com/kredits/oracle/internal/ledger"
	"github.com/kredits/oracle/internal/service"
	"github.com/kredits/oracle/internal/session"
	myhttp "github.com/kredits/oracle/internal/transport/http"
	"github.com/kredits/oracle/pkg/logger/slogpretty"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting kredits oracle", slog.String("env", cfg.Env))

	rules, err := domain.NewRules(cfg.GitHub.AmountLabelPattern, cfg.GitHub.Amounts, cfg.GitHub.ClaimedLabel)
	if err != nil {
		return fmt.Errorf("failed to build claim rules: %v", err)
	}

	app, err := githubapp.NewApp(cfg.GitHub, log)
	if err != nil {
		return fmt.Errorf("failed to init github app: %v", err)
	}

	installations := installationResolver{app: app}
	userClient := service.UserClientFunc(func(ctx context.Context, token string) service.GitHubClient {
		return app.TokenClient(ctx, token)
	})

	gateway := ledger.NewHTTPGateway(cfg.Ledger, log)

	claims := service.NewClaimService(log, installations, userClient, gateway, rules)
	webhooks := service.NewWebhookService(log, installations, gateway, rules, cfg.Server.PublicHost)

	sessions := session.NewManager(cfg.Session.Secret)

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		Endpoint:     oauthgithub.Endpoint,
		RedirectURL:  cfg.Server.PublicHost + "/github/setup",
		Scopes:       []string{"user", "public_repo"},
	}

	srv, err := myhttp.NewServer(log, claims, webhooks, sessions, oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to init http server: %v", err)
	}

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shuting down http server: %v", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("oracle listening", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}

// installationResolver adapts the github app to the service-layer
// TokenResolver contract.
type installationResolver struct {
	app *githubapp.App
}

func (r installationResolver) ClientFor(ctx context.Context, login string) (service.GitHubClient, error) {
	client, err := r.app.ClientFor(ctx, login)
	if err != nil {
		return nil, err
	}

	return client, nil
}
