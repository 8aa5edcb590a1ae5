package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stockbrief/internal/app"
	"stockbrief/internal/config"
	"stockbrief/internal/logger"
	"stockbrief/internal/report"

	"github.com/subosito/gotenv"
)

func main() {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env failed: %v", err)
	}
	cfgPath := os.Getenv("STOCKBRIEF_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	closeLogs, err := app.SetupLogging(cfg.App)
	if err != nil {
		log.Fatalf("init logging failed: %v", err)
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	fmt.Println("Welcome to Stock Analysis System")
	fmt.Println("Please enter the stock ticker symbol you want to analyze:")
	symbol, err := readSymbol(os.Stdin)
	if err != nil {
		log.Fatalf("read symbol failed: %v", err)
	}

	run, err := a.Analyze(ctx, symbol)
	if err != nil {
		log.Fatalf("analysis of %q failed: %v", symbol, err)
	}
	logger.Debugf("run %s finished in %s", run.ID, run.FinishedAt.Sub(run.StartedAt))
	if err := report.Render(os.Stdout, run.Report); err != nil {
		log.Fatalf("write report failed: %v", err)
	}
}

func readSymbol(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(sc.Text()), nil
}
