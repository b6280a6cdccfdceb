package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/csvx/internal/config"
	"github.com/oakwood-commons/csvx/internal/csvparse"
	"github.com/oakwood-commons/csvx/internal/limiter"
	"github.com/oakwood-commons/csvx/internal/ui"
	"github.com/oakwood-commons/csvx/pkg/loader"
	"github.com/oakwood-commons/csvx/pkg/logger"
	"github.com/oakwood-commons/csvx/pkg/settings"
)

const longHelp = `csvx opens a CSV (or TSV) file in a scrollable, searchable table.

The file is read once, parsed in the background and shown with a header row,
a row number gutter and a status line. Malformed records never stop the
viewer: they are repaired, counted and listed in the debug log.

Settings come from the built-in defaults, then the config file
($XDG_CONFIG_HOME/csvx/config.yaml or ~/.config/csvx/config.yaml, or
--config-file), then flags.

Keys: arrows or h/j/k/l move, PgUp/PgDn page, g/G first/last row,
0/$ first/last column, / search, n/N next/previous match, : go to row,
y copy cell, R reload, ? help, q quit.`

const examples = `  csvx data.csv
  csvx --delimiter tab export.tsv
  cat data.csv | csvx
  csvx --tail 100 --on-limit truncate huge.csv
  csvx --snapshot --width 100 --height 20 --press ':120<CR>' data.csv`

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	delimiter    string
	noHeader     bool
	noRowNumbers bool
	onLimit      string
	maxRows      int
	limit        int
	offset       int
	tail         int
	configFile   string
	theme        string
	noColor      bool
	debug        bool
	logFile      string
	snapshot     bool
	width        int
	height       int
	press        []string

	deferred *logger.DeferredWriter
	closers  []io.Closer
}

// Execute runs the csvx command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           settings.CliBinaryName + " [file]",
		Short:         "csvx - terminal CSV viewer",
		Long:          longHelp,
		Example:       examples,
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("accepts at most one file, got %d", len(args))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setupLogging(cmd, args)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			o.releaseLogs()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer o.releaseLogs()
			return o.run(cmd)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	f := cmd.Flags()
	f.StringVarP(&o.delimiter, "delimiter", "d", "", "field delimiter: auto, comma, tab, semicolon, pipe, space or one ASCII character (default from config: auto)")
	f.BoolVar(&o.noHeader, "no-header", false, "treat the first record as data; columns are named A, B, C...")
	f.BoolVar(&o.noRowNumbers, "no-row-numbers", false, "hide the row number gutter")
	f.StringVar(&o.onLimit, "on-limit", "", "when a size limit is hit: abort (default) or truncate to the rows read so far")
	f.IntVar(&o.maxRows, "max-rows", 0, "largest number of data rows to parse (default from config)")
	f.IntVar(&o.limit, "limit", 0, "show at most N rows")
	f.IntVar(&o.offset, "offset", 0, "skip the first N rows")
	f.IntVar(&o.tail, "tail", 0, "show the last N rows (mutually exclusive with --limit; ignores --offset)")
	f.StringVar(&o.theme, "theme", "", "theme name (default from config; see 'csvx config themes')")
	f.BoolVar(&o.noColor, "no-color", false, "disable color output (also honors NO_COLOR)")
	f.BoolVar(&o.debug, "debug", false, "log at debug level and show a diagnostics line under the table")
	f.StringVar(&o.logFile, "log-file", "", "append JSON logs to this file instead of stderr")
	f.BoolVar(&o.snapshot, "snapshot", false, "render one frame to stdout and exit; honors --width, --height and --press")
	f.IntVar(&o.width, "width", 0, "screen width in columns (snapshot, or to force the interactive size)")
	f.IntVar(&o.height, "height", 0, "screen height in rows (snapshot, or to force the interactive size)")
	f.StringArrayVar(&o.press, "press", nil, "simulate keys after loading. Use <Key> for special keys (<CR>, <Esc>, <PageDown>, <C-f>); other text is typed. Example: --press '/london<CR>'")
	cmd.PersistentFlags().StringVar(&o.configFile, "config-file", "", "path to a YAML or TOML config file")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(o))
	return cmd
}

// setupLogging builds the global logger and stores it, with the run
// settings, in the command context. Interactive runs hold log output until
// the terminal is released.
func (o *rootOptions) setupLogging(cmd *cobra.Command, args []string) error {
	run := settings.NewCliParams()
	if o.debug {
		run.MinLogLevel = logger.LevelDebug
	}
	run.LogFile = o.logFile
	run.NoColor = o.noColor || os.Getenv("NO_COLOR") != ""
	run.Snapshot = o.snapshot || stdoutIsPiped()
	run.SetInput(args)

	var out io.Writer = os.Stderr
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return usageErrorf("--log-file: %w", err)
		}
		o.closers = append(o.closers, f)
		out = f
	case !cmd.HasParent() && run.Interactive():
		o.deferred = logger.NewDeferredWriter(logger.DefaultDeferredLimit)
		out = o.deferred
	}

	lgr := logger.Init(logger.Config{Level: run.MinLogLevel, Output: out})
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

// releaseLogs flushes held log lines to stderr. It is safe to call twice.
func (o *rootOptions) releaseLogs() {
	if o.deferred != nil {
		if err := o.deferred.Release(os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "csvx: flush logs: %v\n", err)
		}
	}
	logger.Sync()
	for _, c := range o.closers {
		_ = c.Close()
	}
	o.closers = nil
}

func (o *rootOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)
	run := settings.RunFrom(ctx)

	lim := limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail}
	if err := lim.Validate(); err != nil {
		return usageError(err)
	}

	cfg, cfgPath, err := loadMergedConfig(o.configFile)
	if err != nil {
		return usageError(err)
	}
	if cfgPath != "" {
		lgr.V(1).Info("config loaded", "path", cfgPath)
	}
	if err := o.applyFlags(cmd.Flags(), &cfg); err != nil {
		return usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return usageError(withConfigPath(err, cfgPath))
	}
	loadOpts, err := cfg.LoaderOptions()
	if err != nil {
		return usageError(err)
	}
	onLimit, err := cfg.OnLimitPolicy()
	if err != nil {
		return usageError(err)
	}
	layoutCfg, err := cfg.LayoutConfig()
	if err != nil {
		return usageError(err)
	}
	theme, err := ui.ThemeFromConfig(cfg, "", run.NoColor)
	if err != nil {
		return usageError(err)
	}

	src, err := o.source(cmd, run.Input)
	if err != nil {
		return err
	}

	opts := ui.ModelOptions{
		Source:  src,
		Load:    loadOpts,
		OnLimit: onLimit,
		App: ui.AppOptions{
			Layout:          layoutCfg,
			Limiter:         lim,
			Logger:          lgr,
			CheckInvariants: o.debug,
		},
		Theme:     theme,
		Debug:     o.debug,
		StartKeys: o.press,
	}

	if !run.Interactive() {
		// Piped output never carries escape codes.
		return o.runSnapshot(ctx, cmd.OutOrStdout(), opts, run.NoColor || !o.snapshot)
	}
	return o.runInteractive(ctx, opts)
}

// applyFlags writes the flags that were set over the merged config.
func (o *rootOptions) applyFlags(f *pflag.FlagSet, cfg *config.File) error {
	if f.Changed("delimiter") {
		d := o.delimiter
		cfg.Parser.Delimiter = &d
	}
	if f.Changed("no-header") {
		h := !o.noHeader
		cfg.Parser.Header = &h
	}
	if f.Changed("on-limit") {
		p := o.onLimit
		cfg.Parser.OnLimit = &p
	}
	if f.Changed("max-rows") {
		if o.maxRows < 1 {
			return fmt.Errorf("--max-rows must be positive, got %d", o.maxRows)
		}
		n := o.maxRows
		cfg.Parser.Limits.MaxRows = &n
	}
	if f.Changed("no-row-numbers") {
		rn := !o.noRowNumbers
		cfg.Layout.RowNumbers = &rn
	}
	if f.Changed("theme") {
		cfg.UI.Theme = strings.TrimSpace(o.theme)
	}
	if o.width < 0 || o.height < 0 {
		return fmt.Errorf("--width and --height cannot be negative")
	}
	return nil
}

func withConfigPath(err error, path string) error {
	if path == "" {
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}

// source resolves the input: a file argument, "-" or piped stdin.
func (o *rootOptions) source(cmd *cobra.Command, in settings.InputSettings) (loader.Source, error) {
	path := in.Path
	if in.FromStdin {
		if path == "" && !stdinIsPiped() {
			return loader.Source{}, usageErrorf("no input: pass a file or pipe data on stdin (see csvx --help)")
		}
		return loader.Source{Path: "-", Reader: cmd.InOrStdin()}, nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return loader.Source{}, runtimeError(fmt.Errorf("open %s: %w", path, err))
	}
	if st.IsDir() {
		return loader.Source{}, runtimeError(fmt.Errorf("open %s: is a directory", path))
	}
	return loader.Source{Path: path}, nil
}

// runSnapshot parses synchronously and prints a single frame.
func (o *rootOptions) runSnapshot(ctx context.Context, w io.Writer, opts ui.ModelOptions, plain bool) error {
	res, err := loadForSnapshot(ctx, opts, *logger.FromContext(ctx))
	if err != nil {
		return runtimeError(err)
	}
	opts.Preloaded = res
	size := resolveSnapshotSize(o.width, o.height)
	out := ui.RenderSnapshot(opts, ui.SnapshotConfig{Width: size.Width, Height: size.Height, Plain: plain})
	if _, err := fmt.Fprintln(w, out); err != nil {
		return runtimeError(fmt.Errorf("write snapshot: %w", err))
	}
	return nil
}

func loadForSnapshot(ctx context.Context, opts ui.ModelOptions, lgr logr.Logger) (*csvparse.Result, error) {
	res, err := loader.Load(ctx, opts.Source, opts.Load)
	if err == nil {
		return res, nil
	}
	var le *csvparse.LimitError
	if errors.As(err, &le) && opts.OnLimit == config.OnLimitTruncate && res != nil {
		lgr.Info("limit reached, showing partial data", "limit", le.Kind.String(), "max", le.Limit)
		return res, nil
	}
	return nil, err
}

// runInteractive runs the full-screen session. Held logs are flushed once
// the terminal is restored, before any error is printed.
func (o *rootOptions) runInteractive(ctx context.Context, opts ui.ModelOptions) error {
	progOpts, cleanup := getProgramOptions()
	defer cleanup()

	sess := ui.NewSession(ui.RunOptions{
		Model:          opts,
		Width:          o.width,
		Height:         o.height,
		ProgramOptions: progOpts,
		OnRelease:      o.releaseLogs,
	})
	if err := sess.Run(ctx); err != nil {
		return runtimeError(err)
	}
	return nil
}

// cliVersionString is the text of --version and the version command.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print csvx version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}
