package main

import (
	"context"
	"encoding/json"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fila/queue-manager/internal/announce"
	"fila/queue-manager/internal/config"
	"fila/queue-manager/internal/httpapi"
	"fila/queue-manager/internal/hub"
	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/queue"
	"fila/queue-manager/internal/store"
	"fila/queue-manager/internal/store/postgres"
	redisstore "fila/queue-manager/internal/store/redis"
	"fila/queue-manager/internal/telemetry"
	"fila/queue-manager/internal/userdir"
	"fila/queue-manager/internal/watch"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type backend interface {
	store.TicketStore
	store.UserStore
}

type snapshotEnvelope struct {
	Type        string          `json:"type"`
	SessionDate string          `json:"session_date"`
	Tickets     []models.Ticket `json:"tickets"`
	CreatedAt   time.Time       `json:"created_at"`
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry := telemetry.Setup(ctx, "queue-manager", cfg.TraceEndpoint, cfg.TraceInsecure)
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdownTelemetry(flushCtx)
	}()

	st, cleanup := openStore(ctx, cfg)
	defer cleanup()

	tickets := queue.NewService(st)
	users := userdir.New(st)
	if cfg.MasterAdminPassword != "" {
		if err := users.EnsureMasterAdmin(ctx, cfg.MasterAdminUsername, cfg.MasterAdminPassword); err != nil {
			log.Fatalf("seed master admin: %v", err)
		}
	} else {
		log.Printf("MASTER_ADMIN_PASSWORD not set, skipping master admin seed")
	}

	speech := announce.NewSpeech(announce.SpeechConfig{
		RemoteEndpoint: cfg.SynthesisEndpoint,
		APIKey:         cfg.SynthesisAPIKey,
		Voice:          cfg.SynthesisVoice,
		RemoteTimeout:  cfg.SynthesisTimeout,
		LocalProvider:  cfg.LocalSynthesis,
		PlayerCommand:  cfg.PlayerCommand,
	})
	engine := announce.NewEngine(speech, announce.Options{
		Cooldown:  cfg.AnnounceCooldown,
		MinRepeat: cfg.AnnounceMinRepeat,
	})
	go engine.Run(ctx)

	h := hub.New()
	watcher := watch.New(st, cfg.SessionDate, cfg.PollInterval)
	watcher.Notify(engine.Observe)
	watcher.NotifyChanged(func(snapshot []models.Ticket) {
		env := snapshotEnvelope{
			Type:        "tickets",
			SessionDate: cfg.SessionDate,
			Tickets:     snapshot,
			CreatedAt:   time.Now().UTC(),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			log.Printf("snapshot encode error: %v", err)
			return
		}
		h.Broadcast(payload, cfg.SessionDate)
	})
	go watcher.Run(ctx)

	handler := httpapi.NewHandler(tickets, st, users, httpapi.Options{
		Notifier: watcher,
		Caller:   engine,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute: cfg.RateLimitPerMinute,
		IPBurst:     cfg.RateLimitBurst,
	})

	routes := handler.Routes()
	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/api/", routes)
	mux.Handle("/healthz", routes)
	mux.Handle("/realtime/", sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		h.Register(client)
		defer h.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				h.UpdateSubscription(client, hub.Subscription{})
				continue
			}
			h.UpdateSubscription(client, hub.Subscription{SessionDate: parsed.SessionDate})
		}
	}))

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "queue-manager")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queue-manager listening on %s (session %s, store %s)", server.Addr, cfg.SessionDate, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (backend, func()) {
	switch cfg.StoreDriver {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:         cfg.RedisAddr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		return redisstore.NewStore(client), func() { _ = client.Close() }
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		return postgres.NewStore(pool), pool.Close
	}
}
