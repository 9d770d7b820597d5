package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"dayboard/internal/config"
	"dayboard/internal/live"
	appLog "dayboard/internal/log"
	"dayboard/internal/model"
	"dayboard/internal/web"
)

type flags struct {
	configPath string
	listen     string
	once       bool
	date       string
	project    string
}

func main() {
	fl := parseFlags()

	conf, err := config.Load(fl.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", fl.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if fl.listen != "" {
		conf.Listen = fl.listen
	}

	appLog.Info("dayboard starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"snapshot", conf.SnapshotPath,
		"ics_count", len(conf.ICS),
		"once", fl.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	server := web.NewServer(conf)
	server.RefreshFeeds(ctx)

	if fl.once {
		runOnce(server, fl)
		return
	}

	// Periodic ICS refresh.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() { server.RefreshFeeds(ctx) }); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Minute tick: re-derive live status and ordering for today. The API
	// serves arbitrary dates, but only today's view changes as the clock
	// advances, so the tick just drops the cached response.
	ticker := live.NewTicker(conf.TickCron, server.InvalidateAgenda)
	if err := ticker.Track(model.FormatDate(time.Now()), time.Now()); err != nil {
		appLog.Error("failed to arm live ticker", err)
		os.Exit(1)
	}
	defer ticker.Stop()

	srv := &http.Server{Addr: conf.Listen, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("serving agenda API", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("dayboard exiting")
}

// runOnce composes a single agenda and prints it to stdout as JSON.
func runOnce(server *web.Server, fl flags) {
	date := fl.date
	if date == "" {
		date = model.FormatDate(time.Now())
	}

	resp, err := server.Agenda(date, fl.project)
	if err != nil {
		appLog.Error("agenda composition failed", err, "date", date)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		appLog.Error("failed to encode agenda", err)
		os.Exit(1)
	}
}

func parseFlags() flags {
	var fl flags

	flag.StringVar(&fl.configPath, "config", "dayboard.yaml", "Path to config file")
	flag.StringVar(&fl.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&fl.once, "once", false, "Compose a single agenda, print JSON, and exit")
	flag.StringVar(&fl.date, "date", "", "Agenda date for -once (YYYY-MM-DD, default today)")
	flag.StringVar(&fl.project, "project", "", "Project filter ('all' or a project id)")

	flag.Parse()
	return fl
}
