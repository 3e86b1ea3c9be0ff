package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"switchscan/internal/config"
	"switchscan/internal/telemetry"
	"switchscan/internal/tui"
)

var (
	version    = "0.1.0"
	configFlag string
	httpFlag   string
	modeFlag   string

	rootCmd = &cobra.Command{
		Use:   "switchscan",
		Short: "switchscan - switch-scanning board driven by a BLE touch, tilt or muscle sensor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if httpFlag != "" {
				cfg.HTTP.Addr = httpFlag
			}
			if modeFlag != "" {
				cfg.Input.SwitchMode = modeFlag
			}

			if err := telemetry.Init(version, cfg.Telemetry.DSN, cfg.Telemetry.Enabled); err != nil {
				// Non-fatal: the board works without crash reporting.
				fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
			}
			defer telemetry.Flush()
			defer telemetry.RecoverPanic()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(ctx, a.deps(saveConfig))
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of switchscan",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("switchscan version %s\n", version)
		},
	}
)

func loadConfig() (config.Config, error) {
	if configFlag != "" {
		return config.LoadFrom(configFlag)
	}
	return config.Load()
}

func saveConfig(cfg config.Config) error {
	if configFlag != "" {
		return config.SaveTo(configFlag, cfg)
	}
	return config.Save(cfg)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"Config file (default $SWITCHSCAN_CONFIG or ~/.config/switchscan/config.toml)")
	rootCmd.Flags().StringVar(&httpFlag, "http", "", "Serve the local control API on this address (e.g. 127.0.0.1:8765)")
	rootCmd.Flags().StringVar(&modeFlag, "mode", "", "Switch mode for tilt and muscle sensors: tap or direct")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newJournalCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
