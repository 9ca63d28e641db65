package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/daemon/collector"
	"github.com/tactical-os/tos/internal/daemon/dispatch"
	"github.com/tactical-os/tos/internal/daemon/engine"
	"github.com/tactical-os/tos/internal/daemon/journal"
	"github.com/tactical-os/tos/internal/daemon/pidfile"
	"github.com/tactical-os/tos/internal/daemon/server"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/internal/face"
	"github.com/tactical-os/tos/internal/remote"
	"github.com/tactical-os/tos/logging"
	"github.com/tactical-os/tos/pkg/daemon"
	"github.com/tactical-os/tos/pkg/models"
	"github.com/tactical-os/tos/pkg/paths"
	"github.com/tactical-os/tos/state"
)

// NewBrainCmd returns the brain command with its subcommands.
func NewBrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brain",
		Short: "Run and inspect the brain",
		Long:  "The brain owns the sectors, viewports and surfaces of the environment and serves every face, console and remote link.",
	}

	cmd.AddCommand(newBrainStartCmd())
	cmd.AddCommand(newBrainStopCmd())
	cmd.AddCommand(newBrainStatusCmd())
	cmd.AddCommand(newBrainJournalCmd())

	return cmd
}

func newBrainStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the brain in the foreground",
		Long: `Start the brain in the foreground.

Examples:
  # Start with the nearest tos.yml
  tos brain start

  # Start with an explicit config and debug logging
  tos brain start -c ~/.config/tos/tos.yml -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.GetLogger(cmd, "brain")
			cfg, configFile, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return runBrain(cfg, configFile, logger)
		},
	}
}

func runBrain(cfg *config.Config, configFile string, logger *logrus.Entry) error {
	pidPath := paths.PidFilePath()
	sockPath := paths.SocketPath()

	// 1. Acquire lock
	if err := pidfile.Acquire(pidPath); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.Errorf("Failed to release pidfile: %v", err)
		}
	}()

	// 2. Brain state, restoring the operator toggles of the last run
	bs := brain.NewState(cfg)
	if saved, err := state.Load(); err != nil {
		logger.WithError(err).Warn("Failed to load persisted toggles")
	} else {
		bs.RestoreToggles(saved)
	}
	st := store.New(bs, store.WithFatal(logger.Fatal))
	defer func() {
		var toggles map[string]interface{}
		st.View(func(s *brain.State) { toggles = s.Toggles() })
		if err := state.Merge(toggles); err != nil {
			logger.WithError(err).Warn("Failed to persist toggles")
		}
	}()

	// 3. Journal
	var recorder dispatch.Recorder
	var lister server.JournalLister
	if cfg.JournalEnabled() {
		path := cfg.Journal.Path
		if path == "" {
			path = paths.JournalPath()
		}
		j, err := journal.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()
		recorder, lister = j, j
	}
	d := dispatch.New(st, recorder, logger.WithField("component", "dispatch"))

	// 4. Engine, collectors and the render loop
	tickInterval := config.Duration(cfg.Brain.TickInterval, 100*time.Millisecond)
	statsInterval := config.Duration(cfg.Brain.StatsInterval, 2*time.Second)

	samples := collector.NewSampleSink(64)
	loop := face.NewLoop(st.Snapshot, config.Duration(cfg.Face.RenderInterval, 500*time.Millisecond),
		samples.Report, logger.WithField("component", "face"))

	eng := engine.New(st, logger.WithField("component", "engine"))
	eng.Register(collector.NewTickCollector(tickInterval, samples, logger.WithField("collector", "tick")))
	eng.Register(collector.NewStatsCollector(statsInterval, logger.WithField("collector", "stats")))

	// 5. Remote sessions and servers
	mgr := remote.NewManager(remote.OptionsFromConfig(cfg.Remote), nil, logger.WithField("component", "remote"))
	defer mgr.Close()

	srv := server.New(st, d, logger.WithField("component", "server"))
	if lister != nil {
		srv.SetJournal(lister)
	}
	srv.SetRemote(mgr)
	srv.SetFace(loop)
	srv.SetRunningConfig(&server.RunningConfig{
		Listen:        cfg.Brain.Listen,
		LinkListen:    cfg.Brain.LinkListen,
		TickInterval:  tickInterval,
		StatsInterval: statsInterval,
		ConfigFile:    configFile,
		StartedAt:     time.Now(),
	})

	lines := server.NewLineServer(d, logger.WithField("listener", "tcp"))
	if _, err := lines.Listen(cfg.Brain.Listen); err != nil {
		return err
	}

	// 6. Signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			logger.Info("Received stop signal")
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
		}
	}()

	// 7. Hot reload
	if configFile != "" && cfg.ConfigWatchEnabled() {
		watcher, err := daemon.NewConfigWatcher(configFile, cfg.Brain.ConfigDebounceMs, func(next *config.Config, file string) {
			st.Mutate(func(s *brain.State) { s.ApplyConfig(next) })
			st.BroadcastConfigReload(file)
			logger.WithField("file", file).Info("Configuration reloaded")
		})
		if err != nil {
			logger.WithError(err).Warn("Config hot reload disabled")
		} else {
			defer watcher.Close()
			go watcher.Start(ctx)
		}
	}

	go eng.Start(ctx)
	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("Render loop stopped")
		}
	}()
	go func() {
		if err := lines.Serve(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("Line listener stopped")
		}
	}()
	if cfg.Brain.LinkListen != "" && cfg.Brain.LinkListen != config.LinkListenOff {
		go func() {
			if err := srv.ListenLink(cfg.Brain.LinkListen); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("Link listener stopped")
			}
		}()
	}

	// 8. API server (blocking)
	logger.WithField("pid", os.Getpid()).Info("Starting brain")
	if err := srv.ListenAndServe(sockPath); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newBrainStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running brain",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Brain is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()).
				Success(fmt.Sprintf("Sent SIGTERM to process %d", pid))
			return nil
		},
	}
}

func newBrainStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the brain is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
				os.Exit(1)
			}

			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			pretty.Success(fmt.Sprintf("Running (PID: %d)", pid))
			pretty.Field("Socket", paths.SocketPath())
			if client := daemon.Connect(); client != nil {
				defer client.Close()
				if snap, err := client.Snapshot(cmd.Context()); err == nil {
					if vp := snap.Viewport(); vp != nil {
						pretty.Field("Level", fmt.Sprintf("%d (%s)", vp.Level, vp.LevelName))
					}
					pretty.Field("FPS", fmt.Sprintf("%.1f", snap.Performance.FPS))
					if snap.Performance.Alert {
						pretty.WarnPretty("Performance critical")
					}
				}
			}
			return nil
		},
	}
}

func newBrainJournalCmd() *cobra.Command {
	var (
		limit   int
		offset  int
		sources []string
		failed  bool
		since   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List journaled dispatches",
		Long: `List the requests the brain has dispatched, newest first.

Examples:
  # Last 20 requests
  tos brain journal

  # Failed requests from remote links in the last hour
  tos brain journal --source link --failed --since 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := daemon.Connect()
			if client == nil {
				return fmt.Errorf("brain is not running; start it with 'tos brain start'")
			}
			defer client.Close()

			filter := models.Filter{Limit: limit, Offset: offset, Sources: sources, FailedOnly: failed}
			if since > 0 {
				t := time.Now().Add(-since)
				filter.StartTime = &t
			}

			entries, err := client.Journal(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSOURCE\tREQUEST\tRESPONSE")
			for _, e := range entries {
				response := e.Response
				if e.Failed {
					response = "! " + response
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("15:04:05"),
					e.Source, e.Request, strings.ReplaceAll(response, "\n", " "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Only these sources: console, tcp, api, link")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only failed requests")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this")
	return cmd
}
