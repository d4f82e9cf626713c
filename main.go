package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"github.com/yiblet/proboost/internal/cli"
	"github.com/yiblet/proboost/internal/zlog"
)

func main() {
	// A .env beside the binary may carry PROBOOST_* and GOOGLE_API_KEY.
	_ = godotenv.Load()

	var args cli.Args
	parser := arg.MustParse(&args)

	logger, err := zlog.New(args.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	zlog.Set(logger)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if args.History != nil || args.Export != nil || args.Generate != nil || args.Settings != nil || args.Config != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args *cli.Args) error {
	handler, err := cli.NewWithArgs(args)
	if err != nil {
		return err
	}
	defer handler.Close()

	return handler.Execute(ctx, args)
}
