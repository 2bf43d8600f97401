package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"studio/internal/config"
	"studio/internal/debug"
	apperrors "studio/internal/errors"
	"studio/internal/update"
	"studio/internal/ui"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

var (
	// isTerminal reports whether f is attached to a terminal.
	isTerminal = func(f *os.File) bool {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	copyToClipboard = clipboard.WriteAll
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if err := config.Initialize(); err != nil {
		return reportConfigError(stderr, err)
	}

	fs := flag.NewFlagSet("studio", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	visited := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})
	runtime := computeRuntimeOptions(fs, flags, visited)

	if *flags.version {
		if err := printVersion(stdout, runtime.outputFormat == config.OutputJSON); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := debug.Init(runtime.debug); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: debug logging disabled: %v\n", err)
	}
	defer debug.Close()
	announceDebugLog(stderr)

	if runtime.skipUpdateCheck {
		debug.Log("update check skipped")
		return 0
	}

	settings := config.Update()
	checker := update.NewChecker(settings.Owner, settings.Repo, Version,
		update.WithAPIURL(settings.APIURL),
		update.WithTimeout(settings.Timeout),
		update.WithUserAgent(settings.UserAgent+"/"+Version),
	)
	debug.Logf("checking %s against %s", checker.ReleaseURL(), checker.CurrentVersion())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var factory programFactory
	if runtime.outputFormat != config.OutputJSON && !runtime.plain && isTerminal(stdout) {
		factory = func(m tea.Model) programRunner {
			return tea.NewProgram(m, tea.WithOutput(stdout), tea.WithInput(os.Stdin))
		}
	}
	state := runCheck(ctx, update.NewStore(checker, nil), runtime, factory, stdout, stderr)

	if runtime.outputFormat != config.OutputJSON {
		handleUpdateError(stderr, state.Err)
	}
	if runtime.copyLink {
		copyReleaseLink(stderr, state)
	}
	return 0
}

// reportConfigError prints a configuration failure and returns the exit code.
func reportConfigError(w io.Writer, err error) int {
	e := configError(err)
	_, _ = fmt.Fprintf(w, "Error: %s (%s)\n", e.Message, e.Code)
	return 1
}

func configError(err error) apperrors.Error {
	return apperrors.NormalizeWithCode(fmt.Errorf("initialize config: %w", err), apperrors.CodeConfigurationError)
}

// announceDebugLog tells the user where debug output goes when logging is on.
func announceDebugLog(w io.Writer) {
	if !debug.Enabled() {
		return
	}
	path, err := debug.GetLogPath()
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Debug log: %s\n", path)
}

// runCheck runs one update check. A nil factory, or a view that fails to
// run, falls back to a printed report.
func runCheck(ctx context.Context, s *update.Store, runtime runtimeOptions, factory programFactory, stdout, stderr io.Writer) update.UpdateState {
	if factory != nil {
		state, err := runInteractive(ctx, s, runtime.reportOptions(false), factory)
		if err == nil {
			return state
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		if state.Done() {
			return printReport(stdout, stderr, state, runtime)
		}
	}
	return printReport(stdout, stderr, s.Refresh(ctx), runtime)
}

func printReport(stdout, stderr io.Writer, state update.UpdateState, runtime runtimeOptions) update.UpdateState {
	if err := writeReport(stdout, state, runtime); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return state
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model) programRunner

// runInteractive shows the status view while a check runs and returns the
// terminal state. Quitting the view early cancels the check; a view that
// fails to run does not.
func runInteractive(ctx context.Context, s *update.Store, opts ui.ReportOptions, factory programFactory) (update.UpdateState, error) {
	if factory == nil {
		return update.UpdateState{}, fmt.Errorf("program factory is nil")
	}
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	checkCtx, cancelCheck := context.WithCancel(ctx)
	defer cancelCheck()

	model := ui.NewStatusModel(s.Cell().Watch(watchCtx), opts)
	prog := factory(model)
	if prog == nil {
		return update.UpdateState{}, fmt.Errorf("program is nil")
	}

	result := make(chan update.UpdateState, 1)
	go func() {
		result <- s.Refresh(checkCtx)
	}()

	_, runErr := prog.Run()
	// Nobody reads the watch once the view is gone.
	stopWatch()
	if runErr != nil {
		// The check keeps running so its state can still be printed.
		return <-result, fmt.Errorf("run UI: %w", runErr)
	}
	// Release the check if the view quit before the terminal state.
	cancelCheck()
	return <-result, nil
}

func writeReport(w io.Writer, state update.UpdateState, runtime runtimeOptions) error {
	if runtime.outputFormat == config.OutputJSON {
		out, err := ui.RenderJSON(state, Version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	_, err := fmt.Fprintln(w, ui.RenderReport(state, runtime.reportOptions(true)))
	return err
}

func copyReleaseLink(w io.Writer, state update.UpdateState) {
	if state.Result == nil || !state.Result.HasUpdate || state.Result.Link == "" {
		return
	}
	if err := copyToClipboard(state.Result.Link); err != nil {
		_, _ = fmt.Fprintf(w, "Warning: could not copy release link: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(w, "Copied release link to clipboard.")
}

type runtimeFlags struct {
	version         *bool
	debug           *bool
	plain           *bool
	notes           *bool
	copyLink        *bool
	skipUpdateCheck *bool
	outputFormat    *string
}

type runtimeOptions struct {
	debug           bool
	plain           bool
	notes           bool
	copyLink        bool
	skipUpdateCheck bool
	outputFormat    string
	width           int
}

func registerFlags(fs *flag.FlagSet) runtimeFlags {
	return runtimeFlags{
		version:         fs.Bool("version", false, "Print version information and exit"),
		debug:           fs.Bool("debug", config.GetBool(config.KeyDebug), "Write debug logs to ~/.studio/debug.log"),
		plain:           fs.Bool("plain", false, "Print a plain text report instead of the interactive view"),
		notes:           fs.Bool("notes", config.GetBool(config.KeyOutputNotes), "Show release notes when an update is available"),
		copyLink:        fs.Bool("copy", false, "Copy the release link to the clipboard when an update is available"),
		skipUpdateCheck: fs.Bool("skip-update-check", config.GetBool(config.KeySkipUpdateCheck), "Skip the update check (or set STUDIO_SKIP_UPDATE_CHECK=true)"),
		outputFormat:    fs.String("output-format", config.OutputFormat(), "Report style (rich, light, plain, json)"),
	}
}

func computeRuntimeOptions(fs *flag.FlagSet, flags runtimeFlags, visited map[string]struct{}) runtimeOptions {
	outputFormat := config.OutputFormat()
	if flagWasExplicitlySet(fs, "output-format", visited) {
		outputFormat = normalizeOutputFormat(*flags.outputFormat)
	}

	debugEnabled := config.GetBool(config.KeyDebug)
	if flagWasExplicitlySet(fs, "debug", visited) {
		debugEnabled = *flags.debug
	}

	notes := config.GetBool(config.KeyOutputNotes)
	if flagWasExplicitlySet(fs, "notes", visited) {
		notes = *flags.notes
	}

	skip := config.Update().Skip
	if flagWasExplicitlySet(fs, "skip-update-check", visited) {
		skip = *flags.skipUpdateCheck
	}

	return runtimeOptions{
		debug:           debugEnabled,
		plain:           *flags.plain || outputFormat == config.OutputPlain,
		notes:           notes,
		copyLink:        *flags.copyLink,
		skipUpdateCheck: skip,
		outputFormat:    outputFormat,
		width:           config.GetInt(config.KeyOutputWidth),
	}
}

// reportOptions builds the renderer options. stripStyles drops terminal
// styling for output that is not a terminal.
func (r runtimeOptions) reportOptions(stripStyles bool) ui.ReportOptions {
	return ui.ReportOptions{
		CurrentVersion: Version,
		NotesStyle:     r.outputFormat,
		ShowNotes:      r.notes,
		Width:          r.width,
		Plain:          r.plain || stripStyles,
	}
}

func normalizeOutputFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case config.OutputRich, config.OutputLight, config.OutputPlain, config.OutputJSON:
		return f
	default:
		return config.OutputRich
	}
}

func flagWasExplicitlySet(fs *flag.FlagSet, name string, visited map[string]struct{}) bool {
	if _, ok := visited[name]; ok {
		return true
	}
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	return f.Value.String() != f.DefValue
}
