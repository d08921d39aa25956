package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-api-client/apiclient"
	"github.com/jrsteele09/go-api-client/authflow"
	"github.com/jrsteele09/go-api-client/internal/config"
	"github.com/jrsteele09/go-api-client/internal/logging"
	"github.com/jrsteele09/go-api-client/invoker"
	"github.com/jrsteele09/go-api-client/server"
	"github.com/jrsteele09/go-api-client/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const janitorInterval = 10 * time.Minute

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	if err := rootCmd(config.FromEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(settings config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api-client",
		Short: "Demo client for OAuth2 protected APIs",
		Long: `Serves a small web application that calls an unrestricted, an
application-restricted and a user-restricted API endpoint, running the
OAuth2 authorization code flow when a user token is needed.

Every flag defaults to its environment variable (a .env file is read when present).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config.New(settings))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&settings.Port, "port", settings.Port, "listen port (PORT)")
	flags.StringVar(&settings.Env, "env", settings.Env, "environment name, DEV enables console logging (ENV)")
	flags.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "log level (LOG_LEVEL)")
	flags.StringVar(&settings.APIBaseURL, "api-base-url", settings.APIBaseURL, "API and OAuth2 provider base URL (API_BASE_URL)")
	flags.StringVar(&settings.OIDCIssuer, "oidc-issuer", settings.OIDCIssuer, "discover OAuth2 endpoints from this issuer (OIDC_ISSUER)")
	flags.StringVar(&settings.RedirectURI, "redirect-uri", settings.RedirectURI, "OAuth2 callback URL (REDIRECT_URI)")
	flags.StringVar(&settings.VRN, "vrn", settings.VRN, "VAT registration number for the obligations call (VRN)")
	flags.DurationVar(&settings.HTTPTimeout, "http-timeout", settings.HTTPTimeout, "timeout for provider and API calls (HTTP_TIMEOUT)")
	flags.StringVar(&settings.RefreshFailurePolicy, "refresh-failure-policy", settings.RefreshFailurePolicy, "retain or reauthorize (REFRESH_FAILURE_POLICY)")
	flags.Float64Var(&settings.RateLimitRPS, "rate-limit-rps", settings.RateLimitRPS, "per-client requests per second, 0 disables (RATE_LIMIT_RPS)")
	flags.BoolVar(&settings.TrustProxyHeaders, "trust-proxy-headers", settings.TrustProxyHeaders, "rate limit on X-Forwarded-For behind a trusted proxy (TRUST_PROXY_HEADERS)")
	flags.StringVar(&settings.WellKnownDir, "well-known-dir", settings.WellKnownDir, "directory served under /.well-known/ (WELL_KNOWN_DIR)")

	return cmd
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	for _, name := range config.Missing(c) {
		log.Warn().Str("option", name).Msg("Option not set, calls that need it will fail")
	}

	handler, repo, err := buildServer(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.RunJanitor(ctx, repo, janitorInterval)

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}

	returnError = shutdown(srv)
	log.Info().Msg("Server stopped")
	return returnError
}

func buildServer(c config.Config) (*server.Server, sessions.Repo, error) {
	httpClient := &http.Client{Timeout: c.GetHTTPTimeout()}

	opts := []authflow.Option{authflow.WithHTTPClient(httpClient), authflow.WithTimeout(c.GetHTTPTimeout())}
	if issuer := c.GetOIDCIssuer(); issuer != "" {
		ctx, cancel := context.WithTimeout(context.Background(), c.GetHTTPTimeout())
		endpoint, err := authflow.Discover(ctx, issuer, httpClient)
		cancel()
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("authorize", endpoint.AuthURL).Str("token", endpoint.TokenURL).Msg("Discovered OAuth2 endpoints")
		opts = append(opts, authflow.WithEndpoint(endpoint))
	}
	engine := authflow.New(c, opts...)

	repo := sessions.NewInMemoryRepo(c.GetMaxSessionAge())
	api := apiclient.New(apiclient.WithHTTPClient(httpClient), apiclient.WithTimeout(c.GetHTTPTimeout()))
	inv := invoker.New(engine, repo, api,
		invoker.WithServerToken(c.GetServerToken()),
		invoker.WithRefreshFailurePolicy(c.GetRefreshFailurePolicy()),
	)

	srv, err := server.New(c, inv)
	if err != nil {
		return nil, nil, err
	}
	return srv, repo, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
