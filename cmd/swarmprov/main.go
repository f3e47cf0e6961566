// swarmprov wraps a file in a provenance envelope and stores it on Swarm.
//
// Usage:
//
//	swarmprov upload --file data.json [--std PROV-O] [--enc aes-256-gcm]
//	swarmprov download --ref <reference-hash> [--out DIR]
//
// Configuration defaults come from the environment (optionally via a .env
// file) or a YAML file passed with --config; flags override both. The exit
// code is non-zero for every terminal failure, including a hash verification
// mismatch on download.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/swarmprov/swarmprov-go/pkg/config"
	"github.com/swarmprov/swarmprov-go/pkg/provenance"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return errors.New("missing command")
	}

	switch args[0] {
	case "upload":
		return runUpload(args[1:])
	case "download":
		return runDownload(args[1:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `swarmprov - wraps and uploads provenance data to Swarm

Commands:
  upload    hash, wrap, pay for, and upload a provenance file
  download  fetch an envelope by reference and verify its content hash

Run "swarmprov <command> --help" for command flags.`)
}

// initLogging installs the global console logger. Debug mode lowers the
// level and is the replacement for the verbose flag of older revisions.
func initLogging(debug bool) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// loadConfig resolves base configuration: YAML file when requested,
// environment (.env included) otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadEnv(), nil
}

func runUpload(args []string) error {
	flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
	file := flags.StringP("file", "f", "", "path to the provenance data file to wrap and upload (required)")
	std := flags.String("std", "", "identifier for the provenance standard used (optional)")
	enc := flags.String("enc", "", "details about encryption applied to the original data (optional)")
	configPath := flags.String("config", "", "path to a YAML config file")
	gatewayURL := flags.String("gateway", "", "Bee gateway URL (default "+config.DefaultGatewayURL+")")
	depth := flags.Int("depth", 0, fmt.Sprintf("postage stamp depth (default %d)", config.DefaultDepth))
	amount := flags.Int64("amount", 0, fmt.Sprintf("postage stamp amount (default %d)", config.DefaultAmount))
	retries := flags.Int("retries", 0, fmt.Sprintf("max stamp usability checks (default %d)", config.DefaultPollRetries))
	interval := flags.Int("interval", 0, "seconds between stamp usability checks (default 20)")
	debug := flags.Bool("debug", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *file == "" {
		return errors.New("upload: --file is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *gatewayURL != "" {
		cfg.GatewayURL = *gatewayURL
	}
	if *depth != 0 {
		cfg.Depth = *depth
	}
	if *amount != 0 {
		cfg.Amount = *amount
	}
	if *retries != 0 {
		cfg.PollRetries = *retries
	}
	if *interval != 0 {
		cfg.PollInterval = time.Duration(*interval) * time.Second
	}
	if *debug {
		cfg.Debug = true
	}
	initLogging(cfg.Debug)

	svc := provenance.New(cfg)
	reference, err := svc.Upload(context.Background(), *file, provenance.UploadOptions{
		ProvenanceStandard: *std,
		Encryption:         *enc,
	})
	if err != nil {
		return err
	}

	fmt.Println("\nSwarm Reference Hash:")
	fmt.Println(reference)
	return nil
}

func runDownload(args []string) error {
	flags := pflag.NewFlagSet("download", pflag.ContinueOnError)
	ref := flags.StringP("ref", "r", "", "Swarm reference hash of the envelope to fetch (required)")
	out := flags.StringP("out", "o", ".", "directory to write the downloaded artifacts into")
	configPath := flags.String("config", "", "path to a YAML config file")
	gatewayURL := flags.String("gateway", "", "Bee gateway URL (default "+config.DefaultGatewayURL+")")
	debug := flags.Bool("debug", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *ref == "" {
		return errors.New("download: --ref is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *gatewayURL != "" {
		cfg.GatewayURL = *gatewayURL
	}
	if *debug {
		cfg.Debug = true
	}
	initLogging(cfg.Debug)

	svc := provenance.New(cfg)
	result, err := svc.Download(context.Background(), *ref, *out)
	if err != nil {
		return err
	}

	fmt.Println("\nVerified download written to:")
	fmt.Println(result.DataPath)
	return nil
}
