package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopherchat/gopherchat/internal/ai"
	"github.com/gopherchat/gopherchat/internal/config"
	"github.com/gopherchat/gopherchat/internal/convo"
	"github.com/gopherchat/gopherchat/internal/db"
	"github.com/gopherchat/gopherchat/internal/httpapi"
	"github.com/gopherchat/gopherchat/internal/storage"
	"github.com/gopherchat/gopherchat/internal/store/gormkv"
	"github.com/gopherchat/gopherchat/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	var kv storage.KV
	switch cfg.StoreBackend {
	case "redis":
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rs.Close()
		kv = rs
	default:
		gdb, err := db.Open(cfg.StoreBackend, cfg.DBDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		s, err := gormkv.New(gdb)
		if err != nil {
			log.Fatalf("migrate kv store: %v", err)
		}
		kv = s
	}

	store := storage.NewStore(kv)

	reg := ai.NewRegistry()
	reg.Register("mock", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewMockProvider(cfg.MockMinDelay, cfg.MockMaxDelay), nil
	})
	if cfg.GeminiAPIKey != "" {
		reg.Register("gemini", func(ctx context.Context) (ai.Provider, error) {
			return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel), nil
		})
	}

	svc := convo.NewService(reg)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(cfg, store, svc),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server started, addr=%s backend=%s mock_default=%v",
			cfg.HTTPAddr, cfg.StoreBackend, cfg.GeminiAPIKey == "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
