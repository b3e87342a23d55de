package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"scrapbookAPI/handlers"
	"scrapbookAPI/internal/catalog"
	"scrapbookAPI/internal/config"
	"scrapbookAPI/internal/media"
	"scrapbookAPI/internal/store"
	"scrapbookAPI/middleware"
	"scrapbookAPI/services"

	_ "net/http/pprof"
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireClerk(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	clerk.SetKey(cfg.ClerkSecretKey)
	log.Println("Clerk initialized successfully")

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st, err := store.Open(openCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err == nil && migrate {
		err = st.Migrate(openCtx)
	}
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing database connection pool...")
		st.Close()
	}()
	log.Printf("Connected to %s", st.Driver())

	var fonts catalog.FontSource
	if cfg.GoogleFontsAPIKey != "" {
		gf, err := catalog.NewGoogleFonts(ctx, cfg.GoogleFontsAPIKey)
		if err != nil {
			return err
		}
		fonts = gf
		log.Println("Font catalog served from Google Fonts")
	}
	cat, err := catalog.Load(fonts)
	if err != nil {
		return err
	}

	remover := media.NewBackgroundRemover("", cfg.RemoveBGAPIKey, nil)
	if !remover.Configured() {
		log.Println("Warning: REMOVE_BG_API_KEY not set, background removal disabled")
	}

	middleware.InitPrometheus()
	services.InitPrometheus()

	h := handlers.Handlers{
		Scrapbook:    handlers.NewScrapbookHandler(services.NewScrapbookService(st), services.NewAutosaveService(st)),
		Export:       handlers.NewExportHandler(services.NewExportService(st, cfg.PublicBaseURL)),
		Template:     handlers.NewTemplateHandler(services.NewTemplateService(st)),
		Collaborator: handlers.NewCollaboratorHandler(services.NewCollaboratorService(st)),
		Catalog:      handlers.NewCatalogHandler(cat),
		Media:        handlers.NewMediaHandler(remover),
		Webhook:      handlers.NewWebhookHandler(services.NewUserService(st), cfg.ClerkWebhookSecret),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "scrapbook-api"}`))
	}).Methods("GET")

	handlers.RegisterRoutes(r, h, middleware.ClerkAuthMiddleware, middleware.OptionalAuthMiddleware)

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", "X-Credits-Charged"}),
		gorillaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
