package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/pflag"

	"github.com/debemdeboas/editorial/internal/auth"
	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/db"
	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/logger"
	"github.com/debemdeboas/editorial/internal/notify"
	"github.com/debemdeboas/editorial/internal/render"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/routes"
	"github.com/debemdeboas/editorial/internal/storage"
	"github.com/debemdeboas/editorial/internal/util/compression"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the configuration file")
	pflag.Parse()

	bootLogger := logger.New("info", logger.FormatConsole)

	if err := godotenv.Load(); err != nil {
		bootLogger.Debug().Err(err).Msg("No .env file loaded")
	}

	config.SetLogger(bootLogger)
	if err := config.LoadConfig(*configPath); err != nil {
		bootLogger.Fatal().Err(err).Msgf(config.ErrLoadConfigFmt, err)
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(log)

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrInitializeDatabaseFmt, err)
	}
	defer database.Close()

	blobs, err := newStorage(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrInitializeStorageFmt, err)
	}

	provider, ed25519Provider, err := newAuthProvider(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrCreateProviderFmt, err)
	}

	events := notify.NewBroadcaster()
	svc := editing.NewService(
		repository.NewDBRepository(database),
		extension.NewClient(cfg.Extension.Timeout, cfg.Extension.UserAgent, cfg.Server.PublicURL),
		blobs,
		notify.Multi{events, notify.LogSink{}},
	)

	mux := http.NewServeMux()
	if ed25519Provider != nil {
		auth.RegisterEd25519AuthRoutes(mux, ed25519Provider)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Str("storage", cfg.Storage.Backend).Msg("Starting server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(log, mux, svc, provider, events, cfg.Rendering),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	storage.SetLogger(l.With().Str("component", "storage").Logger())
	editing.SetLogger(l.With().Str("component", "editing").Logger())
	extension.SetLogger(l.With().Str("component", "extension").Logger())
	notify.SetLogger(l.With().Str("component", "notify").Logger())
	auth.SetLogger(l.With().Str("component", "auth").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	routes.SetLogger(l.With().Str("component", "routes").Logger())
}

// newHandler mounts the API on mux and wraps it with authentication, secure
// headers and request logging.
func newHandler(log zerolog.Logger, mux *http.ServeMux, svc *editing.Service, provider auth.AuthProvider, events *notify.Broadcaster, rendering config.RenderingConfig) http.Handler {
	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	routes.NewAPI(svc, provider, events, rendering).Register(mux)

	var h http.Handler = routes.SecureHeaders(mux)
	h = provider.WithHeaderAuthorization()(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(log)(h)
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	var (
		blobs storage.Storage
		err   error
	)

	switch cfg.Backend {
	case config.StorageS3:
		blobs, err = storage.NewS3Storage(ctx,
			os.Getenv("S3_ACCESS_KEY_ID"), os.Getenv("S3_SECRET_ACCESS_KEY"), cfg.Endpoint, cfg.Bucket)
	case config.StorageFS:
		blobs, err = storage.NewFSStorage(cfg.Path)
	default:
		err = fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return storage.NewCompressed(blobs, compression.New(cfg.Compression)), nil
}

// newAuthProvider also returns the Ed25519 provider, if that is the one in
// use, so its challenge routes can be mounted.
func newAuthProvider(cfg config.AuthConfig) (auth.AuthProvider, *auth.Ed25519AuthProvider, error) {
	switch cfg.Type {
	case config.AuthClerk:
		key := os.Getenv("CLERK_API")
		if key == "" {
			return nil, nil, fmt.Errorf("CLERK_API is not set")
		}
		return auth.NewClerkAuthProvider(key), nil, nil
	case config.AuthEd25519:
		p, err := auth.NewEd25519AuthProvider(cfg.Users, cfg.Header)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unsupported auth type %q", cfg.Type)
	}
}
