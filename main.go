// Package main provides the entry point for Leaf VPN, a desktop shell for
// the leaf proxy engine.
//
// The shell runs the leaf-ipc sidecar, shows a tray icon whose color
// summarizes engine, proxy and connectivity state, and manages a single
// status window.
//
// Usage:
//
//	leaf-vpn [options]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/leaf-vpn/cli"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/config"
	"github.com/yllada/leaf-vpn/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	headless    = flag.Bool("headless", false, "Run the terminal monitor instead of the tray")
	configPath  = flag.String("config", "", "Path to an alternative configuration file")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	logLevel := common.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024,
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)

	if *headless {
		os.Exit(runHeadless(cfg))
	}

	setupSignalHandler()

	app := ui.NewApplication(cfg, appVersion)
	exitCode := app.Run(os.Args[:1])
	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	common.CloseLogger()
	os.Exit(exitCode)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runHeadless(cfg *config.Config) int {
	common.GetLogger().DetachStdout()
	code, err := cli.Run(cfg)
	if err != nil {
		common.LogError("Monitor: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	common.CloseLogger()
	return code
}

// setupSignalHandler logs termination signals. The tray's Quit item is the
// only path that stops the engine cleanly.
func setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogWarn("Received signal %v, exiting", sig)
		common.CloseLogger()
		os.Exit(1)
	}()
}
