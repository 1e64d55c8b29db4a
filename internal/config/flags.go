package config

// This file binds CLI flags onto a Config. Flags are grouped into behavior,
// execution, display, and utility. Negated flags (e.g. --no-log) are applied
// after parsing so Config defaults hold unless set.

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags ties a pflag.FlagSet to the Config it populates. Create with
// [BindFlags]; call [Flags.Apply] once the set has been parsed.
type Flags struct {
	fs         *pflag.FlagSet
	cfg        *Config
	negated    negatedFlags
	configFile string
}

// negatedFlags holds boolean flags that are applied after Parse.
// They invert a default (e.g. noVerify -> Verify=false).
type negatedFlags struct {
	noVerify   bool
	noLog      bool
	forceColor bool
	noColor    bool
}

// BindFlags registers every flag on fs, pointing it at cfg's fields. The
// current cfg values become the flag defaults shown in help.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{fs: fs, cfg: cfg}
	defineBehaviorFlags(fs, cfg, &f.negated)
	defineExecutionFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &f.negated)
	fs.StringVar(&f.configFile, "config", "", "YAML config file (explicit flags override it)")
	return f
}

// defineBehaviorFlags registers overwrite, path, repair, skip-errors, time, no-verify.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&cfg.Overwrite, "overwrite", "o", cfg.Overwrite, "Overwrite SYNOPHOTO_THUMB_M.jpg even if it exists")
	fs.StringVarP(&cfg.Root, "path", "p", cfg.Root, "Directory to process")
	fs.BoolVarP(&cfg.Repair, "repair", "r", cfg.Repair, "Try to repair corrupted video files")
	fs.BoolVarP(&cfg.SkipErrors, "skip-errors", "s", cfg.SkipErrors, "Attempt a thumbnail even when a file fails validation")
	fs.Float64VarP(&cfg.SeekSeconds, "time", "t", cfg.SeekSeconds, "Screenshot time in seconds (clips no longer than this are grabbed at half their duration)")
	fs.BoolVar(&n.noVerify, "no-verify", false, "Do not decode generated thumbnails to verify them")
}

// defineExecutionFlags registers workers, timeout and tool paths.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Files processed concurrently")
	fs.DurationVar(&cfg.ToolTimeout, "timeout", cfg.ToolTimeout, "Per ffmpeg/ffprobe invocation limit (0 = none)")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary (default: Synology package, then PATH)")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary (default: Synology package, then PATH)")
}

// defineDisplayFlags registers verbose, color, log, metrics-file and check.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
	fs.BoolVar(&n.noLog, "no-log", false, "Do not write a log file")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus textfile metrics after the run")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", cfg.CheckOnly, "Run ffmpeg/ffprobe diagnostics and exit")
}

// Apply finishes configuration after parsing: overlays the --config file
// (re-applying explicitly set flags on top), folds in negated flags and
// takes the library root from args when given.
func (f *Flags) Apply(args []string) error {
	if f.configFile != "" {
		if err := f.overlayFile(f.configFile); err != nil {
			return err
		}
	}

	applyNegatedFlags(f.cfg, &f.negated)
	return parsePositionalArgs(f.fs, f.cfg, args)
}

// overlayFile loads path into cfg and then replays every flag the user set
// so the command line keeps precedence over the file.
func (f *Flags) overlayFile(path string) error {
	type setFlag struct{ name, value string }
	var changed []setFlag
	f.fs.Visit(func(fl *pflag.Flag) {
		changed = append(changed, setFlag{fl.Name, fl.Value.String()})
	})

	if err := LoadFile(f.cfg, path); err != nil {
		return err
	}
	for _, c := range changed {
		if err := f.fs.Set(c.name, c.value); err != nil {
			return fmt.Errorf("reapply --%s: %w", c.name, err)
		}
	}
	return nil
}

// applyNegatedFlags copies negated flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noVerify {
		cfg.Verify = false
	}
	if n.noLog {
		cfg.LogFile = ""
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs accepts at most one positional directory. It may not
// contradict an explicit --path.
func parsePositionalArgs(fs *pflag.FlagSet, cfg *Config, args []string) error {
	switch len(args) {
	case 0:
	case 1:
		if fs.Changed("path") && NormalizeDirArg(args[0]) != NormalizeDirArg(cfg.Root) {
			return fmt.Errorf("directory given twice (--path %q and %q)", cfg.Root, args[0])
		}
		cfg.Root = args[0]
	default:
		return fmt.Errorf("expected at most one directory, got %d", len(args))
	}
	cfg.Root = NormalizeDirArg(cfg.Root)
	return nil
}
