// Package cli wires the flowcheck commands together.
//
// The [App] container holds the shared dependencies (config, printer,
// runner, executor, stores); commands receive it at construction time.
// Tests pre-populate App fields with mocks; [App.initialize] only fills
// what is still nil, so injected dependencies survive command execution.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"flowcheck/internal/checklist"
	"flowcheck/internal/config"
	"flowcheck/internal/lifecycle"
	"flowcheck/internal/manifest"
	"flowcheck/internal/report"
	"flowcheck/internal/router"
	"flowcheck/internal/stage"
	"flowcheck/internal/state"
	"flowcheck/internal/toolexec"
)

// App holds the dependencies shared by all commands.
type App struct {
	Config      *config.Config
	Printer     *report.Printer
	Runner      lifecycle.StepRunner
	Executor    *lifecycle.Executor
	StageReader lifecycle.StageReader
	StageWriter lifecycle.StageWriter
	Store       *state.Store
	Router      *router.Router

	// BaseDir is the project root all relative paths anchor to.
	BaseDir string

	// TasksReader is the concrete stage reader, kept alongside the
	// interface field for commands that list all tasks.
	TasksReader *stage.Reader
}

// NewApp creates an empty App. Dependencies are filled by [App.initialize]
// during command execution, or injected beforehand by tests.
func NewApp() *App {
	return &App{}
}

// rootOptions carries persistent flag values into initialization.
type rootOptions struct {
	configPath   string
	manifestPath string
	baseDir      string
	noColor      bool
}

// initialize builds the missing dependencies from configuration and flags.
// Fields already set (by tests or a caller) are left untouched.
func (a *App) initialize(opts rootOptions, out io.Writer) error {
	if a.BaseDir == "" {
		a.BaseDir = opts.baseDir
	}
	if a.BaseDir == "" {
		a.BaseDir = "."
	}

	if a.Config == nil {
		cfg, err := config.NewLoader(a.BaseDir).Load(opts.configPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	if a.Router == nil {
		m, err := a.loadManifest(opts.manifestPath)
		if err != nil {
			return err
		}
		if m != nil {
			a.Config.ApplyManifest(m)
			a.Router = router.NewRouterFromManifest(m)
		} else {
			a.Router = router.NewRouter()
		}
	}

	if a.Printer == nil {
		a.Printer = report.NewPrinterWithWriter(out)
		a.Printer.TruncateLines = a.Config.Output.TruncateLines
		a.Printer.TruncateLength = a.Config.Output.TruncateLength
		a.Printer.SetNoColor(opts.noColor || a.Config.Output.NoColor)
	} else {
		// A reused App must print to the current invocation's writer and
		// flags, not the ones it was first initialized with.
		a.Printer.SetWriter(out)
		a.Printer.SetNoColor(opts.noColor || a.Config.Output.NoColor)
	}

	if a.Runner == nil {
		r := checklist.NewRunner(toolexec.NewCommandRunner())
		r.Dir = a.BaseDir
		a.Runner = r
	}

	if a.TasksReader == nil {
		a.TasksReader = stage.NewReaderWithPath(a.BaseDir, a.Config.Run.TasksPath)
	}
	if a.StageReader == nil {
		a.StageReader = a.TasksReader
	}
	if a.StageWriter == nil {
		a.StageWriter = stage.NewWriterWithPath(a.BaseDir, a.Config.Run.TasksPath)
	}

	if a.Store == nil {
		stateDir := a.Config.Run.StateDir
		if !filepath.IsAbs(stateDir) {
			stateDir = filepath.Join(a.BaseDir, stateDir)
		}
		a.Store = state.NewStore(stateDir)
	}

	if a.Executor == nil {
		a.Executor = lifecycle.NewExecutor(a.Runner, a.Config, a.StageReader, a.StageWriter)
		a.Executor.SetRouter(a.Router)
		a.Executor.SetRecorder(a.Store)
		a.Executor.SetProgressCallback(a.Printer.Progress)
		a.Executor.SetResultCallback(a.Printer.Step)
	}

	return nil
}

// loadManifest reads the checklist manifest. An explicit --manifest path
// must exist; the default location is optional.
func (a *App) loadManifest(explicitPath string) (*manifest.Manifest, error) {
	if explicitPath != "" {
		return manifest.ReadFromFile(explicitPath)
	}

	defaultPath := filepath.Join(a.BaseDir, manifest.DefaultManifestPath)
	if _, err := os.Stat(defaultPath); err != nil {
		return nil, nil
	}
	return manifest.ReadFromFile(defaultPath)
}
