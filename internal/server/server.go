// Package server assembles the MCP gateway: tool registration, transport
// selection and the HTTP listener lifecycle.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/sudhagarjb/oic-mcp/internal/config"
	"github.com/sudhagarjb/oic-mcp/internal/insight"
	"github.com/sudhagarjb/oic-mcp/internal/oic"
)

type MiddlewareFunc func(http.Handler) http.Handler

func chainMiddleware(h http.Handler, middlewares ...MiddlewareFunc) http.Handler {
	for _, mw := range middlewares {
		h = mw(h)
	}
	return h
}

func newAuthMiddleware(tokens []string) MiddlewareFunc {
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(tokens) != 0 {
				token := r.Header.Get("Authorization")
				token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
				if token == "" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				if _, ok := tokenSet[token]; !ok {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loggerMiddleware(prefix string) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("<%s> Request [%s] %s", prefix, r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func recoverMiddleware(prefix string) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Printf("<%s> Recovered from panic: %v", prefix, err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newMCPServer builds the MCP server with every gateway tool registered.
func newMCPServer(cfg *config.Config) *server.MCPServer {
	api := oic.NewClient(oic.Config{
		BaseURL:      cfg.OIC.BaseURL,
		TokenURL:     cfg.OIC.TokenURL,
		ClientID:     cfg.OIC.ClientID,
		ClientSecret: cfg.OIC.ClientSecret,
		Scope:        cfg.OIC.Scope,
		Timeout:      time.Duration(cfg.OIC.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.OIC.MaxRetries,
	})

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if cfg.Server.Options.LogEnabled.OrElse(false) {
		serverOpts = append(serverOpts, server.WithLogging())
	}
	mcpServer := server.NewMCPServer(cfg.Server.Name, cfg.Server.Version, serverOpts...)
	registerTools(mcpServer, api, insight.NewService(api))
	return mcpServer
}

// Run starts the gateway on the configured transport and blocks until
// SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	mcpServer := newMCPServer(cfg)

	if cfg.Server.Type == config.ServerTypeStdio {
		log.Printf("Serving MCP over stdio")
		return server.ServeStdio(mcpServer)
	}

	var handler http.Handler
	route := "/"
	switch cfg.Server.Type {
	case config.ServerTypeWS:
		handler = newWSHandler(mcpServer)
		route = "/ws"
	case config.ServerTypeSSE:
		handler = server.NewSSEServer(
			mcpServer,
			server.WithStaticBasePath(""),
			server.WithBaseURL(cfg.Server.BaseURL),
		)
	case config.ServerTypeStreamable:
		handler = server.NewStreamableHTTPServer(
			mcpServer,
			server.WithStateLess(true),
		)
	default:
		return errors.New("unknown server type: " + string(cfg.Server.Type))
	}

	middlewares := []MiddlewareFunc{recoverMiddleware(cfg.Server.Name)}
	if cfg.Server.Options.LogEnabled.OrElse(false) {
		middlewares = append(middlewares, loggerMiddleware(cfg.Server.Name))
	}
	if len(cfg.Server.Options.AuthTokens) > 0 {
		middlewares = append(middlewares, newAuthMiddleware(cfg.Server.Options.AuthTokens))
	}

	httpMux := http.NewServeMux()
	httpMux.HandleFunc("/healthz", healthzHandler)
	httpMux.Handle(route, chainMiddleware(handler, middlewares...))

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var group errgroup.Group
	group.Go(func() error {
		log.Printf("Starting %s server", cfg.Server.Type)
		log.Printf("%s server listening on %s", cfg.Server.Type, cfg.Server.Addr)
		hErr := httpServer.ListenAndServe()
		if hErr != nil && !errors.Is(hErr, http.ErrServerClosed) {
			return hErr
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Println("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		sErr := httpServer.Shutdown(shutdownCtx)
		if sErr != nil && !errors.Is(sErr, http.ErrServerClosed) {
			return sErr
		}
		return nil
	})
	return group.Wait()
}
