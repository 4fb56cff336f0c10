package main

import (
	"context"
	"net/http"
	"time"

	"cursed-focus/internal/app/focus"
	"cursed-focus/internal/clock"
	"cursed-focus/internal/config"
	"cursed-focus/internal/infra"
	"cursed-focus/internal/logging"
	"cursed-focus/internal/notify"
	"cursed-focus/internal/store"
	httptransport "cursed-focus/internal/transport/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	clk := clock.NewService(cfg.TimeEndpoints)
	if !clk.Sync(ctx) {
		log.Warn().Msg("initial clock sync failed, running on local time")
	}
	sched := infra.NewScheduler(clk, cfg.ClockSyncCron)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer sched.Stop()

	var sink notify.Sink = notify.LogSink{}
	if cfg.NotifyWebhook != "" {
		sink = notify.Fanout{
			notify.LogSink{},
			notify.NewWebhookSink(cfg.NotifyWebhook, time.Duration(cfg.NotifyTimeoutS)*time.Second),
		}
	}

	svc := focus.NewService(st, clk, sink)
	if err := svc.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("load state failed")
	}
	go svc.Run(ctx)

	r := httptransport.NewRouter(svc, clk, st, cfg)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
