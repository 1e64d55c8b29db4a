// Command synothumb generates Synology Photos video thumbnails. It walks a
// library, probes each video with ffprobe, optionally repairs broken
// containers, and writes @eaDir/<name>/SYNOPHOTO_THUMB_M.jpg with ffmpeg.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/backmassage/synothumb/internal/check"
	"github.com/backmassage/synothumb/internal/config"
	"github.com/backmassage/synothumb/internal/display"
	"github.com/backmassage/synothumb/internal/ffmpeg"
	"github.com/backmassage/synothumb/internal/logging"
	"github.com/backmassage/synothumb/internal/metrics"
	"github.com/backmassage/synothumb/internal/pipeline"
	"github.com/backmassage/synothumb/internal/probe"
	"github.com/backmassage/synothumb/internal/proc"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// errRunFailed makes the process exit non-zero after the reason was logged.
var errRunFailed = errors.New("run failed")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.DefaultConfig()
	cmd := newRootCmd(&cfg)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "synothumb: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var flags *config.Flags
	cmd := &cobra.Command{
		Use:   "synothumb [flags] [path]",
		Short: "Generate Synology Photos thumbnails for video files",
		Long: `synothumb walks a video library and writes the 480px-high
@eaDir/<name.ext>/SYNOPHOTO_THUMB_M.jpg preview Synology Photos expects for
every video that lacks one. Broken files can be repaired with a stream copy
(--repair) or forced through anyway (--skip-errors).

Examples:
  synothumb /volume1/video
  synothumb -p /volume1/photo -r -t 5
  synothumb -j 4 --metrics-file /var/lib/node_exporter/synothumb.prom /volume1/video
  synothumb --check`,
		Version:       version + " (" + commit + ")",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Apply(args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return execute(cmd.Context(), cfg)
		},
	}
	flags = config.BindFlags(cmd.Flags(), cfg)
	return cmd
}

// execute runs the check mode or one full pass over the library.
func execute(ctx context.Context, cfg *config.Config) error {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)

	tools := check.ResolveTools(cfg)
	runner := &proc.ExecRunner{Timeout: cfg.ToolTimeout}
	if log.Verbose() {
		runner.Tee = os.Stderr
	}

	// 1. --check: diagnostics only.
	if cfg.CheckOnly {
		if !check.RunCheck(ctx, tools, runner, log) {
			return errRunFailed
		}
		return nil
	}

	// 2. Preflight: tools and library root.
	if err := check.CheckDeps(tools); err != nil {
		log.Error("%v", err)
		return errRunFailed
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		log.Error("Cannot resolve %s: %v", cfg.Root, err)
		return errRunFailed
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		log.Error("Directory not found: %s", cfg.Root)
		return errRunFailed
	}

	start := time.Now()
	log.Info("Starting SynoPhotoThumb Generator v%s (run %s)", version, uuid.NewString())
	log.Info("Processing path: %s", root)
	log.Info("%s", display.FormatOptions(cfg))
	log.Debug("%s", display.FormatExecution(cfg, tools.FFmpeg, tools.FFprobe))

	// 3. Wire tools and observers, then run.
	prober := probe.New(runner, tools.FFprobe, log)
	var repairer pipeline.Repairer
	if cfg.Repair {
		repairer = ffmpeg.NewRepairer(runner, tools.FFmpeg, prober, log)
	}
	extractor := ffmpeg.NewExtractor(runner, tools.FFmpeg, cfg.Verify, log)

	observers := []pipeline.Observer{pipeline.LogObserver{Log: log}}
	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.NewRecorder()
		observers = append(observers, rec)
	}

	stats, runErr := pipeline.New(cfg, log, prober, repairer, extractor, observers...).Run(ctx, root)

	// 4. Summary.
	pipeline.Report{Stats: stats, RepairEnabled: cfg.Repair}.Log(log)
	if rec != nil {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Cannot write metrics to %s: %v", cfg.MetricsFile, err)
		} else {
			log.Debug("Metrics written to %s", cfg.MetricsFile)
		}
	}
	log.Success("SynoPhotoThumb Generator Finished! Total time: %s", display.FormatElapsed(time.Since(start)))
	if cfg.LogFile != "" {
		log.Info("Log file: %s", cfg.LogFile)
	}

	if runErr != nil || stats.Errors > 0 {
		return errRunFailed
	}
	return nil
}
