// Command sugarplan reads one plan request from stdin and writes the JSON
// result to stdout.
//
//	echo '{"amountInWei":"1000000","account":"0x..."}' | sugarplan
//
// With -calldata, a successful plan is followed by a second line holding the
// ABI-encoded execute(bytes,bytes[]) call.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/app"
	"github.com/fleshka4/sugar-plan/internal/config"
	"github.com/fleshka4/sugar-plan/internal/logger"
	"github.com/fleshka4/sugar-plan/internal/service"
	"github.com/fleshka4/sugar-plan/internal/transport/stdio"
)

type options struct {
	configPath string
	calldata   bool
}

// parseOptions loads .env before reading flags so that CONFIG_PATH set there
// becomes the -config default.
func parseOptions(args []string, envFiles ...string) (options, error) {
	_ = godotenv.Load(envFiles...)

	var opts options
	fs := flag.NewFlagSet("sugarplan", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	fs.BoolVar(&opts.calldata, "calldata", false, "also print the encoded router call")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctrl, err := app.NewController(cfg, l)
	if err != nil {
		l.Fatal("app.NewController", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := stdio.Run(ctx, os.Stdin, os.Stdout, ctrl)
	if err != nil {
		l.Fatal("stdio.Run", zap.Error(err))
	}

	if opts.calldata && resp.OK && resp.Plan != nil {
		data, err := service.EncodeExecute(*resp.Plan)
		if err != nil {
			l.Fatal("service.EncodeExecute", zap.Error(err))
		}
		fmt.Println(data)
	}
}
