package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vidroom/server/internal/controller"
	"github.com/vidroom/server/internal/repository/connection/inmemory"
	roomRedis "github.com/vidroom/server/internal/repository/room/redis"
	"github.com/vidroom/server/internal/service/room"
	"github.com/vidroom/server/pkg/ctxlogger"
	"github.com/vidroom/server/pkg/redisclient"
	"github.com/vidroom/server/pkg/ytvideo"
)

type AppConfig struct {
	Host          string  `json:"host"`
	Port          int     `json:"port"`
	LogLevel      string  `json:"log_level"`
	RoomTTLHours  int     `json:"room_ttl_hours"`
	MessageRate   float64 `json:"message_rate"`
	RedisPort     int     `json:"redis_port"`
	RedisHost     string  `json:"redis_host"`
	RedisPassword string  `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.RoomTTLHours < 1 {
		return fmt.Errorf("room ttl must be greater than 0")
	}
	if cfg.MessageRate <= 0 {
		return fmt.Errorf("message rate must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomRedis.NewRepo(rc, time.Duration(cfg.RoomTTLHours)*time.Hour)
	connRepo := inmemory.NewRepo()
	roomService := room.NewService(roomRepo, connRepo, room.VideoDataFunc(ytvideo.GetData), logger)
	controller := controller.NewController(roomService, logger, cfg.MessageRate)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
