package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pgscatalog/pgsc-match/internal/duckdb"
	"github.com/pgscatalog/pgsc-match/internal/match"
	"github.com/pgscatalog/pgsc-match/internal/output"
	"github.com/pgscatalog/pgsc-match/internal/scorefile"
)

// matchOptions holds the resolved settings of a match run.
type matchOptions struct {
	Dataset    string
	Scorefile  string
	Targets    []string
	Fast       bool
	Threads    int
	Split      bool
	Outdir     string
	MinOverlap float64
	Policy     match.Policy
	LogDB      string
	Verbose    bool
}

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [flags] [target...]",
		Short: "Match scoring file variants against target genomes",
		Long: `Match the variants of a combined scoring file against one or more target
genomes and write plink2 scoring files for every accession that reaches the
minimum overlap. Target paths may be given with -t or as arguments and may
contain glob patterns.`,
		Example: `  pgsc-match match -d test -s combined.txt -t 'chr*.bim' --outdir out -m 0.75
  pgsc-match match -d test -s combined.txt.gz -t all.pvar.zst --outdir out -m 0.75 -f
  pgsc-match match -d test -s combined.txt -t chr1.bim --outdir out -m 0.5 --keep_ambiguous --log-db out/log.duckdb`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindMatchFlags(cmd); err != nil {
				return err
			}
			opts, err := loadMatchOptions(args)
			if err != nil {
				return usageError{err}
			}
			return runMatch(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringP("dataset", "d", "", "Label of the target genomes, used in output file names")
	f.StringP("scorefiles", "s", "", "Combined scoring file (use '-' for stdin)")
	f.StringSliceP("target", "t", nil, "Target genome .bim or .pvar files (glob patterns allowed)")
	f.BoolP("fast", "f", false, "Read every target file into memory before matching")
	f.IntP("threads", "n", 1, "Number of worker threads")
	f.Bool("split", false, "Write one scoring file per chromosome")
	f.String("outdir", "", "Output directory")
	f.Float64P("min_overlap", "m", 0, "Minimum fraction of an accession's variants that must match")
	f.Bool("keep_ambiguous", false, "Keep strand-ambiguous matches (A/T and C/G)")
	f.Bool("keep_multiallelic", false, "Keep matches to multiallelic target sites")
	f.Bool("ignore_strand_flips", false, "Do not consider strand-flipped matches")
	f.Bool("keep_first_match", false, "Keep the first of equally ranked matches instead of dropping the variant")
	f.String("log-db", "", "Also store the match log in this DuckDB database")
	f.BoolP("verbose", "v", false, "Enable debug logging")

	return cmd
}

var matchFlagKeys = map[string]string{
	"dataset":             "dataset",
	"scorefiles":          "scorefiles",
	"target":              "target",
	"fast":                "fast",
	"threads":             "threads",
	"split":               "split",
	"outdir":              "outdir",
	"min_overlap":         "min_overlap",
	"keep_ambiguous":      "keep_ambiguous",
	"keep_multiallelic":   "keep_multiallelic",
	"ignore_strand_flips": "ignore_strand_flips",
	"keep_first_match":    "keep_first_match",
	"log-db":              "log_db",
	"verbose":             "verbose",
}

func bindMatchFlags(cmd *cobra.Command) error {
	for flag, key := range matchFlagKeys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// loadMatchOptions resolves flags, config file and environment into
// matchOptions. Positional arguments are extra target paths.
func loadMatchOptions(args []string) (matchOptions, error) {
	opts := matchOptions{
		Dataset:    viper.GetString("dataset"),
		Scorefile:  viper.GetString("scorefiles"),
		Targets:    append(viper.GetStringSlice("target"), args...),
		Fast:       viper.GetBool("fast"),
		Threads:    viper.GetInt("threads"),
		Split:      viper.GetBool("split"),
		Outdir:     viper.GetString("outdir"),
		MinOverlap: viper.GetFloat64("min_overlap"),
		Policy: match.Policy{
			RemoveAmbiguous:    !viper.GetBool("keep_ambiguous"),
			RemoveMultiallelic: !viper.GetBool("keep_multiallelic"),
			SkipFlip:           viper.GetBool("ignore_strand_flips"),
			KeepFirstMatch:     viper.GetBool("keep_first_match"),
		},
		LogDB:   viper.GetString("log_db"),
		Verbose: viper.GetBool("verbose"),
	}

	switch {
	case opts.Dataset == "":
		return opts, errors.New("--dataset is required")
	case opts.Scorefile == "":
		return opts, errors.New("--scorefiles is required")
	case opts.Outdir == "":
		return opts, errors.New("--outdir is required")
	case !viper.IsSet("min_overlap"):
		return opts, errors.New("--min_overlap is required")
	case opts.MinOverlap < 0 || opts.MinOverlap > 1:
		return opts, fmt.Errorf("--min_overlap must be between 0 and 1, got %g", opts.MinOverlap)
	case opts.Threads < 1:
		return opts, fmt.Errorf("--threads must be at least 1, got %d", opts.Threads)
	}
	return opts, nil
}

// expandTargets resolves glob patterns. Patterns matching nothing are
// dropped, so a wrong path ends up as "no target genomes found".
func expandTargets(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad target pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func runMatch(ctx context.Context, opts matchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	fail := func(msg string, err error) error {
		logger.Error(msg, zap.Error(err))
		return loggedError{err}
	}

	targets, err := expandTargets(opts.Targets)
	if err != nil {
		return usageError{err}
	}

	scores, err := scorefile.ReadAll(opts.Scorefile)
	if err != nil {
		return fail("reading scoring file", err)
	}
	logger.Info("read scoring file",
		zap.String("path", opts.Scorefile),
		zap.String("rows", humanize.Comma(int64(len(scores)))))

	if err := os.MkdirAll(opts.Outdir, 0755); err != nil {
		return fail("creating output directory", err)
	}

	pipeline := match.NewPipeline(opts.Dataset, opts.MinOverlap, opts.Policy, match.Engine{Threads: opts.Threads})
	pipeline.SetLogger(logger)

	res, runErr := pipeline.Run(ctx, scores, targets, opts.Fast)
	if res != nil {
		paths, err := output.WriteLogs(opts.Outdir, res)
		if err != nil {
			return fail("writing match logs", err)
		}
		logger.Info("wrote match logs", zap.Strings("files", paths))

		if opts.LogDB != "" {
			if err := writeLogDB(opts, targets, res, logger); err != nil {
				return fail("writing log database", err)
			}
		}
	}
	if runErr != nil {
		return fail("matching failed", runErr)
	}

	paths, err := output.WriteScorefiles(opts.Outdir, opts.Dataset, res.Valid, opts.Split)
	if err != nil {
		return fail("writing scoring files", err)
	}
	logger.Info("wrote scoring files",
		zap.Strings("files", paths),
		zap.String("variants", humanize.Comma(int64(len(res.Valid)))))
	return nil
}

// writeLogDB stores the match log, the accession summary and the input file
// fingerprints of a run in DuckDB.
func writeLogDB(opts matchOptions, targets []string, res *match.Result, logger *zap.Logger) error {
	store, err := duckdb.Open(opts.LogDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetThreads(opts.Threads); err != nil {
		return err
	}
	if err := store.WriteMatchLog(res.Dataset, res.LogRecords()); err != nil {
		return err
	}
	if err := store.WriteSummary(res.Accessions); err != nil {
		return err
	}
	if opts.Scorefile != "-" {
		if err := store.RecordInputs(res.Dataset, "scorefile", []string{opts.Scorefile}); err != nil {
			return err
		}
	}
	if err := store.RecordInputs(res.Dataset, "target", targets); err != nil {
		return err
	}

	counts, err := store.CountByStatus(res.Dataset)
	if err != nil {
		return err
	}
	for _, c := range counts {
		logger.Debug("match status",
			zap.String("accession", c.Accession),
			zap.String("status", c.Status),
			zap.Int("rows", c.Count))
	}
	logger.Info("wrote log database", zap.String("path", opts.LogDB))
	return nil
}
