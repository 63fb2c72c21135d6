package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clusterflow/internal/application/usecases"
	"clusterflow/internal/infrastructure/container"
)

var (
	symbol   string
	exchange string
	startTs  int64
	endTs    int64
)

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill historical trades for a symbol/exchange pair",
	Long: `Fetches executed trades from the given exchange over a time range and
stores them deduplicated in the local database. Without an explicit range the
last 24 hours are ingested. Backfills are idempotent and safe to re-run over
overlapping ranges.`,
	RunE: runBackfill,
}

func init() {
	rootCmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Trading pair symbol (e.g., BTCUSDT)")
	rootCmd.Flags().StringVarP(&exchange, "exchange", "e", "binance", "Exchange to fetch from (binance, okx, bybit)")
	rootCmd.Flags().Int64Var(&startTs, "start", 0, "Range start, epoch milliseconds")
	rootCmd.Flags().Int64Var(&endTs, "end", 0, "Range end, epoch milliseconds")

	rootCmd.MarkFlagRequired("symbol")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	c, err := container.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer c.Shutdown()

	req := usecases.BackfillRequest{
		Symbol:   strings.ToUpper(symbol),
		Exchange: exchange,
	}
	if startTs > 0 {
		req.Start = time.UnixMilli(startTs)
	}
	if endTs > 0 {
		req.End = time.UnixMilli(endTs)
	}

	report, err := c.BackfillUseCase.Execute(ctx, req)
	if err != nil {
		c.Logger.Error("Backfill failed", "error", err)
		return err
	}

	c.Logger.Info("Backfill finished",
		"symbol", report.Symbol,
		"exchange", report.Exchange.String(),
		"written", report.Written,
		"failed_windows", len(report.Failed))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
