package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/analyzer"
	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
)

var servePort int

// leadRunner is the part of the pipeline the HTTP API needs.
type leadRunner interface {
	Run(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error)
	AnalyzeURL(ctx context.Context, rawURL string) (model.QualityAssessment, model.WebsiteStatus)
}

type routerOptions struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
	Search         config.SearchConfig
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type analyzeResponse struct {
	URL           string                  `json:"url"`
	WebsiteStatus model.WebsiteStatus     `json:"websiteStatus"`
	Assessment    model.QualityAssessment `json:"assessment"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead search HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initPipeline(cfg, "serve")
		if err != nil {
			return err
		}

		handler := buildRouter(env.Pipeline, routerOptions{
			RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second,
			CORSOrigins:    cfg.Server.CORSOrigins,
			Search:         cfg.Search,
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.Strings("sources", cfg.Discovery.Sources),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter wires the API routes. A nil runner answers search and analyze
// requests with 503.
func buildRouter(p leadRunner, opts routerOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", func(w http.ResponseWriter, req *http.Request) {
			if p == nil {
				writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
				return
			}

			var criteria model.SearchCriteria
			if err := json.NewDecoder(req.Body).Decode(&criteria); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			applySearchBounds(&criteria, opts.Search)

			ctx, cancel := context.WithTimeout(req.Context(), opts.RequestTimeout)
			defer cancel()

			result, err := p.Run(ctx, criteria)
			var verr *model.ValidationError
			switch {
			case errors.As(err, &verr):
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":  "Missing required fields",
					"fields": verr.Missing,
				})
			case err != nil:
				zap.L().Error("search failed",
					zap.String("request_id", middleware.GetReqID(req.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, err.Error())
			default:
				writeJSON(w, http.StatusOK, result)
			}
		})

		r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
			if p == nil {
				writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
				return
			}

			var body analyzeRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.URL == "" {
				writeError(w, http.StatusBadRequest, "url is required")
				return
			}

			ctx, cancel := context.WithTimeout(req.Context(), opts.RequestTimeout)
			defer cancel()

			a, status := p.AnalyzeURL(ctx, body.URL)
			writeJSON(w, http.StatusOK, analyzeResponse{
				URL:           analyzer.NormalizeURL(body.URL),
				WebsiteStatus: status,
				Assessment:    a,
			})
		})
	})

	return r
}

// applySearchBounds fills the configured default lead count and enforces the
// configured maximum. The model's own hard cap still applies afterwards.
func applySearchBounds(c *model.SearchCriteria, sc config.SearchConfig) {
	if c.NumberOfLeads == 0 && sc.DefaultLeads > 0 {
		c.NumberOfLeads = sc.DefaultLeads
	}
	if sc.MaxLeads > 0 && c.NumberOfLeads > sc.MaxLeads {
		c.NumberOfLeads = sc.MaxLeads
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
