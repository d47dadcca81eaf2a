package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/logging"
	intOtel "github.com/kickoff/matchcore/internal/otel"
	"github.com/kickoff/matchcore/internal/season"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "matchcore"
)

// file paths
var (
	// ConfigDir holds matchcore.cfg.json. Set with -config.
	ConfigDir string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is handed to the database and telemetry managers
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// SeasonContext tracks the season, matchday and match being played and
	// feeds every log record
	SeasonContext = season.NewContext()

	SessionStartTime time.Time = time.Now()
)

var errUsage = errors.New("usage")

const usage = `matchcore %s (%s)

Usage: matchcore [-config dir] <command> [flags]

Commands:
  season          generate and simulate a league season, print the table
  match           play a headless scripted match, print its events
  shot            forecast the flight of a kick
  setupdb         connect to the database and migrate the schema
  migratebackups  copy SQLite dumps in a directory into the database
`

func printUsage() {
	fmt.Fprintf(os.Stderr, usage, CurrentVersion, BuildDate)
	flag.PrintDefaults()
}

// setup loads config and wires logging and OpenTelemetry.
func setup() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(os.Stderr, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		_ = os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	var logWriter io.Writer = os.Stderr
	if LogFile != nil {
		logWriter = LogFile
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			OTelConfig: otelCfg,
			LogWriter:  logWriter,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else if otelCfg.Endpoint != "" {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	level := config.GetString("logLevel")
	SlogManager.SetContextProvider(SeasonContext.Attrs)
	SlogManager.Setup(logWriter, level, otelLogProvider)
	ZLogger = logging.NewZerolog(logWriter, level, LogFile == nil)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion)
}

func teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel provider: %v\n", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "season":
		return runSeason(ctx, rest)
	case "match":
		return runMatch(ctx, rest)
	case "shot":
		return runShot(ctx, rest)
	case "setupdb":
		return setupDB(rest)
	case "migratebackups":
		return migrateBackups(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func main() {
	flag.StringVar(&ConfigDir, "config", ".", "directory containing "+config.FileName)
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}

	setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	Logger.Info("Starting up...", "command", flag.Arg(0))
	err := run(ctx, flag.Args())
	stop()

	if err != nil {
		Logger.Error("Command failed", "command", flag.Arg(0), "error", err)
		teardown()
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	Logger.Info("Done.", "command", flag.Arg(0))
	teardown()
}
