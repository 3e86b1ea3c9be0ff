package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"switchscan/internal/config"
	"switchscan/internal/journal"
	"switchscan/internal/logging"
	"switchscan/internal/protocol/sensorframe"
	"switchscan/sdk"
)

func newDevicesCmd() *cobra.Command {
	var window time.Duration
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Scan for BLE sensors and list them, name-prefix matches first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if window > 0 {
				cfg.Device.ScanWindowMS = int(window / time.Millisecond)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.notice != "" {
				return fmt.Errorf("%s", a.notice)
			}

			start := time.Now()
			devices, err := a.client.Discover(ctx)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scan duration: %s\n", time.Since(start).Round(time.Millisecond))
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
	cmd.Flags().DurationVarP(&window, "window", "w", 0, "Scan window (default device.scan_window_ms)")
	return cmd
}

func printDevices(w io.Writer, devices []sdk.Device) {
	fmt.Fprintf(w, "devices: %d\n", len(devices))
	for i, d := range devices {
		name := d.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%2d) %-24s %-20s rssi=%d match=%v\n", i+1, name, d.ID, d.RSSI, d.Preferred)
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode FRAME...",
		Short: "Decode sensor frames such as TOUCH::0,1,0,0 into intents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decodeFrames(cmd.OutOrStdout(), args)
			return nil
		},
	}
}

func decodeFrames(w io.Writer, frames []string) {
	decoder := sensorframe.NewDecoder(logging.Discard())
	for _, raw := range frames {
		in, frame, err := decoder.DecodeFrame([]byte(raw))
		if err != nil {
			fmt.Fprintf(w, "%-20s -> dropped: %v\n", raw, err)
			continue
		}
		fmt.Fprintf(w, "%-20s -> %s (%s)\n", raw, in, frame.Kind)
	}
	st := decoder.Stats()
	fmt.Fprintf(w, "decoded=%d dropped=%d\n", st.Decoded, st.Dropped)
}

func newJournalCmd() *cobra.Command {
	var (
		limit   int
		session string
		kinds   []string
		since   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent journal events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Journal.Path == "" {
				return fmt.Errorf("journal disabled: journal.path is empty")
			}
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			filter := journal.Filter{Session: session, Limit: limit}
			for _, k := range kinds {
				filter.Kinds = append(filter.Kinds, journal.EventKind(k))
			}
			if since > 0 {
				filter.After = time.Now().Add(-since)
			}
			events, err := j.Query(filter)
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events")
	cmd.Flags().StringVar(&session, "session", "", "Only events of this session id")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Only these kinds (intent, commit, transport_error, ...)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only events newer than this (e.g. 1h)")
	return cmd
}

func printEvents(w io.Writer, events []journal.Event) {
	for _, e := range events {
		parts := []string{e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Kind.String()}
		for _, field := range []struct{ key, val string }{
			{"screen", e.Screen},
			{"zone", e.Zone},
			{"intent", e.Intent},
			{"source", e.Source},
			{"device", e.Device},
		} {
			if field.val != "" {
				parts = append(parts, field.key+"="+field.val)
			}
		}
		if e.Message != "" {
			parts = append(parts, fmt.Sprintf("%q", e.Message))
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the config path and the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := configFlag
			if path == "" {
				path = config.Path()
			}
			return printConfig(cmd.OutOrStdout(), path, cfg)
		},
	}
}

func printConfig(w io.Writer, path string, cfg config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Config: %s\n%s\n", path, data)
	return err
}
