package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/woogles-client/internal/config"
	"github.com/DoyleJ11/woogles-client/internal/httpapi"
	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/logging"
	"github.com/DoyleJ11/woogles-client/internal/rpc"
	"github.com/DoyleJ11/woogles-client/internal/session"
	"github.com/DoyleJ11/woogles-client/internal/store"
	"github.com/DoyleJ11/woogles-client/internal/ws"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("client stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sessOpts []session.Option
	if cfg.DatabaseURL != "" {
		archive, err := store.Open(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		sessOpts = append(sessOpts, session.WithArchiver(archive))
	} else {
		log.Info("no database configured, finished games are not archived")
	}

	h := hub.NewHub(ctx, log, sessOpts...)
	api := rpc.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.RPCTimeout})
	sock := ws.NewClient(cfg.SocketURL, h, log,
		ws.WithGameID(cfg.GameID),
		ws.WithToken(cfg.Token),
		ws.WithReadTimeout(cfg.ReadTimeout),
	)

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:        h,
			History:    api,
			Joiner:     sock,
			OutboxSize: cfg.OutboxSize,
			Log:        log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sock.Run(gctx)
	})
	if cfg.GameID != "" {
		g.Go(func() error {
			// Seed the session before the socket's own snapshot arrives.
			hist, err := api.GetGameHistory(gctx, cfg.GameID)
			if err != nil {
				log.Warn("initial game history", zap.String("game_id", cfg.GameID), zap.Error(err))
				return nil
			}
			s, err := h.Ensure(gctx, cfg.GameID)
			if err != nil {
				return nil
			}
			s.Inbox() <- session.Refresh{Refresher: hist}
			return nil
		})
	}
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
