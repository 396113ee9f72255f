package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/session"
	"github.com/danielpatrickdp/nietz/internal/store"
)

// #region main
func main() {
	_ = godotenv.Load()

	cfgPath := envOr("NIETZ_CONFIG", "nietz.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)
	defer logger.Sync()

	for _, dir := range []string{cfg.Paths.Toybox, cfg.Paths.Voice} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("failed to create corpus dir", zap.String("dir", dir), zap.Error(err))
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer st.Close()

	sess, err := session.New(session.Options{Config: cfg, Store: st, Logger: logger})
	if err != nil {
		logger.Fatal("failed to wake", zap.Error(err))
	}

	fmt.Print(session.ClearScreen)
	fmt.Println(sess.WakeBanner())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, sess, cfg, logger)
}

// #endregion main

// #region loop

// run reads lines until quit, interrupt, or end of input, then reflects once.
func run(ctx context.Context, sess *session.Session, cfg *config.Config, logger *zap.Logger) {
	defer sleep(sess, cfg.Name, logger)

	lines := readLines(os.Stdin)
	for {
		fmt.Print(cfg.Prompt)
		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case l, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			line = l
		}

		resp, err := sess.Handle(line)
		if err != nil {
			logger.Fatal("turn failed", zap.Error(err))
		}
		switch resp.Kind {
		case session.KindIgnored:
			continue
		case session.KindExit:
			return
		}
		if resp.Clear {
			fmt.Print(session.ClearScreen)
		}
		fmt.Println(resp.Render())
	}
}

func readLines(f *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			out <- scanner.Text()
		}
	}()
	return out
}

func sleep(sess *session.Session, name string, logger *zap.Logger) {
	entry, err := sess.Reflect()
	if err != nil {
		logger.Warn("dream not saved", zap.Error(err))
	}
	if entry == nil {
		return
	}
	fmt.Printf("\n[%s IS ENTERING A DREAM STATE...]\n", name)
	time.Sleep(time.Second)
}

// #endregion loop

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(level string) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zc.Level = lvl
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Paths.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := store.NewRedisStore(envOr("NIETZ_REDIS_URL", cfg.Storage.RedisURL), cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return store.NewFileStore(store.FilePaths{
		Nerves: cfg.Paths.Nerves,
		Ledger: cfg.Paths.Ledger,
		Dreams: cfg.Paths.Dreams,
	}), nil
}

// #endregion helpers
