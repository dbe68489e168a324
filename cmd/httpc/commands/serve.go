package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/logging"
	"github.com/linked-planet/go-http-client/pkg/metrics"
	"github.com/spf13/cobra"
)

const proxyPrefix = "/proxy/"

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a GET proxy with health and metrics endpoints",
		Long: `Serve /health, /metrics and /proxy/<path>. A GET on /proxy/<path> is
forwarded to <base-url>/<path> with the same query parameters. Domain errors
are answered with 502 and their JSON form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := newClient()
			if err != nil {
				return err
			}
			defer closeClient()

			logger := logging.NewLogger("httpc")
			server := &http.Server{
				Addr:              addr,
				Handler:           newServeMux(client, timeout),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			logger.Info().Str("addr", addr).Strs("metrics", metrics.Names).Msg("Starting proxy server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			logger.Info().Msg("Proxy server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout of one proxied call")

	return cmd
}

func newServeMux(client httpclient.BaseHTTPClient, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc(proxyPrefix, proxyHandler(client, timeout))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func proxyHandler(client httpclient.BaseHTTPClient, timeout time.Duration) http.HandlerFunc {
	logger := logging.NewLogger("httpc")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Example: /proxy/rest/api/2/myself -> rest/api/2/myself
		path := strings.TrimPrefix(r.URL.Path, proxyPrefix)

		params := make(httpclient.Params)
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp, err := httpclient.ExecuteGetCall(ctx, client, path, params)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Str("code", domainerr.CodeOf(err)).Msg("Proxy call failed")
			w.Header().Set("Content-Type", httpclient.ContentTypeJSON)
			w.WriteHeader(http.StatusBadGateway)
			if de, ok := domainerr.As(err); ok {
				_, _ = io.WriteString(w, de.ToJSON())
			} else {
				_, _ = io.WriteString(w, domainerr.Wrap(domainerr.CodeHTTP, err.Error(), err).ToJSON())
			}
			return
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			logger.Warn().Err(err).Msg("Failed to write response")
		}
	}
}
