package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/logging"
	intOtel "github.com/interborough/transit/internal/otel"
	"github.com/interborough/transit/internal/session"
)

// build info - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "interborough"
)

// file paths
var (
	// ConfigDir holds interborough.cfg.json. Defaults to the executable's directory.
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

	// Zerolog is handed to the dispatcher and the influx layer
	Zerolog zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// SessionContext tags log records with the recording session
	SessionContext *session.Context = session.NewContext()

	gelfCloser io.Closer
)

// init is run before main; GL contexts and window events are bound to the
// thread that created them, so main stays on this one.
func init() {
	runtime.LockOSThread()
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := setup(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := run(opts)
	shutdown()
	os.Exit(code)
}

// setup loads the config and brings up logging and telemetry.
func setup(opts options) error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	ConfigDir = opts.ConfigDir
	if ConfigDir == "" {
		if exe, err := os.Executable(); err == nil {
			ConfigDir = filepath.Dir(exe)
		} else {
			ConfigDir = "."
		}
	}

	err := config.Load(ConfigDir)
	if err != nil && opts.ConfigDir == "" && ConfigDir != "." {
		// fall back to the working directory
		if config.Load(".") == nil {
			ConfigDir, err = ".", nil
		}
	}
	if err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err, "dir", ConfigDir)
	} else {
		Logger.Info("Loaded config", "dir", ConfigDir)
	}
	if err := opts.bind(); err != nil {
		return err
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("creating log file %s: %w", LogFilePath, err)
	}
	Logger.Info("Begin logging in logs directory", "path", LogFilePath)

	level := viper.GetString("logLevel")
	Zerolog = logging.NewZerolog(LogFile, level)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		} else if otelCfg.Endpoint != "" {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath)
		}
	}

	if viper.GetBool("graylog.enabled") {
		addr := viper.GetString("graylog.address")
		h, closer, err := logging.NewGelfHandler(addr, level)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", addr)
		} else {
			SlogManager.AddHandler(h)
			gelfCloser = closer
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.SetContextProvider(SessionContext.Attrs)
	SlogManager.Setup(LogFile, level, otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Starting up...", "version", CurrentVersion, "buildDate", BuildDate)
	return nil
}

// run drives the host until the window closes, the headless frame count
// is spent or the process is interrupted.
func run(opts options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(opts, Logger)
	if err != nil {
		Logger.Error("Failed to set up scene", "error", err)
		return 1
	}
	if err := a.host.Run(ctx, a); err != nil {
		Logger.Error("Host stopped with error", "error", err)
		return 1
	}
	if err := a.Err(); err != nil {
		Logger.Error("Shutdown incomplete", "error", err)
		return 1
	}
	Logger.Info("Exited cleanly", "frames", a.frames.Load(), "ticks", a.ticks.Load())
	return 0
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Flush OTel data if provider is available
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel provider", "error", err)
		}
	}
	if gelfCloser != nil {
		gelfCloser.Close()
	}
	if LogFile != nil {
		LogFile.Close()
	}
}
