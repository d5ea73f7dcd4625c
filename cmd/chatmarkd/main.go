package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"pkt.systems/version"
	"tolv.systems/chatmark/chatd"
)

func init() {
	version.SetDefaultModule("tolv.systems/chatmark")
}

func main() {
	var (
		configPath  string
		addr        string
		redisURL    string
		logLevel    string
		logJSON     bool
		seed        bool
		seedClear   bool
		printConfig bool
		showVersion bool
	)

	flags := pflag.NewFlagSet("chatmarkd", pflag.ExitOnError)
	flags.StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	flags.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flags.StringVar(&redisURL, "redis-url", "", "Redis URL; empty keeps conversations in memory")
	flags.StringVar(&logLevel, "log-level", "", "Log level: trace|debug|info|warn|error|fatal")
	flags.BoolVar(&logJSON, "log-json", false, "JSON log output")
	flags.BoolVar(&seed, "seed", false, "Load example conversations at startup")
	flags.BoolVar(&seedClear, "seed-clear", false, "Clear stored conversations before seeding (implies --seed)")
	flags.BoolVar(&printConfig, "print-config", false, "Print the effective config and exit")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: chatmarkd [flags]\n")
		fmt.Fprintln(os.Stderr, "\nConfiguration layers: defaults, then --config file, then CHATMARKD_* environment, then flags.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if showVersion {
		fmt.Fprintln(os.Stdout, version.Module(), version.Current())
		return
	}

	cfg, err := chatd.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = redisURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	if printConfig {
		out, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "print config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return
	}

	root := cfg.NewLogger()
	log := root.GetLogger("chatmarkd")
	log.Info("starting", "version", version.Current(), "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store chatd.Store
	var limiter chatd.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("parse redis url", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		store = chatd.NewRedisStoreFromClient(client)
		if cfg.RateLimit.Enabled {
			limiter = chatd.NewRedisLimiter(client, cfg.RateLimit.PerMinute)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable at startup, continuing", "error", err)
		} else {
			log.Info("redis connected", "url", cfg.RedisURL)
		}
		cancel()
	} else {
		log.Info("no redis url configured, conversations are kept in memory")
		store = chatd.NewMemoryStore()
		if cfg.RateLimit.Enabled {
			limiter = chatd.NewMemoryLimiter(cfg.RateLimit.PerMinute)
		}
	}

	if seed || seedClear {
		summary, err := chatd.Seed(ctx, store, nil, seedClear)
		if err != nil {
			log.Error("seed examples", "error", err)
			os.Exit(1)
		}
		log.Info("seeded example conversations",
			"conversations", summary.Conversations,
			"messages", summary.Messages,
			"size", humanize.Bytes(uint64(summary.Bytes)),
			"cleared", summary.Cleared,
		)
	}

	if cfg.LLM.APIKey == "" {
		log.Warn("no LLM api key configured, chat replies will be canned")
	}
	llm := chatd.NewLLMClient(cfg.LLM, root.GetLogger("llm"))

	srv := chatd.NewServer(cfg, store, llm, limiter, root.GetLogger("http"))
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
