// Package config provides configuration loading and management for flowcheck.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The package provides sensible defaults that
// validate the standard uv/pytest/mypy/ruff/git/gh workflow out of the box,
// with the ability to customize step commands, git conventions, and output
// formatting.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [StepConfig] defines a single checklist step's command
//
// Configuration priority (highest to lowest):
//  1. Environment variables (FLOWCHECK_ prefix)
//  2. Config file specified by --config or FLOWCHECK_CONFIG_PATH
//  3. ./flowcheck.yaml
//  4. ./.flowcheck/config.yaml
//  5. User config directory (platform-standard), flowcheck/flowcheck.yaml
//  6. [DefaultConfig] defaults
package config

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"flowcheck/internal/checklist"
	"flowcheck/internal/manifest"
)

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader] and used
// throughout the application. Use [DefaultConfig] to get sensible defaults.
type Config struct {
	// Steps maps step names to their configurations.
	// Keys are checklist step names (e.g. "lint", "test", "pr").
	Steps map[string]StepConfig `mapstructure:"steps"`

	// Git contains repository convention settings.
	Git GitConfig `mapstructure:"git"`

	// Run contains run-state and execution settings.
	Run RunConfig `mapstructure:"run"`

	// Output contains terminal output formatting configuration.
	Output OutputConfig `mapstructure:"output"`
}

// StepConfig represents a single checklist step configuration.
//
// The zero value of Optional is false, so a step defined in a config file
// without an explicit optional flag is required. This matches the manifest
// convention: steps opt OUT of blocking, never accidentally in.
type StepConfig struct {
	// Command is the command line to execute, as a Go template expanded with
	// [TemplateData] and then split on whitespace. Shell quoting is not
	// supported; steps wrap single tool invocations, not shell pipelines.
	// Example: "gh pr view --json url --jq .url"
	Command string `mapstructure:"command"`

	// Optional marks a step whose failure is recorded but does not block
	// completion of the run.
	Optional bool `mapstructure:"optional"`

	// Pattern is an optional regular expression (also template-expanded)
	// applied to the command's trimmed stdout. When set, the step only
	// passes if the command exits 0 AND the pattern matches.
	Pattern string `mapstructure:"pattern"`
}

// GitConfig contains repository convention settings.
type GitConfig struct {
	// DefaultBranch is the integration branch work must not land on directly.
	// Available in step templates as {{.DefaultBranch}}.
	DefaultBranch string `mapstructure:"default_branch"`

	// BranchPattern is the regular expression task branches must match.
	// Available in step templates as {{.BranchPattern}}.
	BranchPattern string `mapstructure:"branch_pattern"`
}

// RunConfig contains run-state and execution settings.
type RunConfig struct {
	// StateDir is the directory for JSON run state, relative to the
	// project root unless absolute. Default: ".flowcheck/run"
	StateDir string `mapstructure:"state_dir"`

	// TasksPath is an explicit task stage file path. Empty enables
	// auto-discovery. Can be overridden with FLOWCHECK_TASKS_PATH.
	TasksPath string `mapstructure:"tasks_path"`

	// StepTimeoutSeconds bounds each step's command execution.
	// Default 0: no timeout. The prescribed process is human-paced and the
	// wrapped tools manage their own deadlines.
	StepTimeoutSeconds int `mapstructure:"step_timeout_seconds"`
}

// OutputConfig contains terminal output formatting configuration.
type OutputConfig struct {
	// TruncateLines is the maximum number of captured output lines shown
	// for a failing step. Default: 20
	TruncateLines int `mapstructure:"truncate_lines"`

	// TruncateLength is the maximum length of each displayed output line.
	// Longer lines are truncated with a "..." suffix. Default: 120
	TruncateLength int `mapstructure:"truncate_length"`

	// NoColor disables lipgloss styling, for plain logs and CI output.
	NoColor bool `mapstructure:"no_color"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults encode the standard workflow checklist: branch naming, uv
// dependency sync, pytest, ruff, mypy, commit hygiene, and gh-backed PR and
// review checks. These defaults work out of the box without any
// configuration file.
func DefaultConfig() *Config {
	return &Config{
		Steps: map[string]StepConfig{
			"branch": {
				Command: "git rev-parse --abbrev-ref HEAD",
				Pattern: "{{.BranchPattern}}",
			},
			"sync": {
				Command: "uv sync",
			},
			"test": {
				Command: "uv run pytest",
			},
			"lint": {
				Command: "ruff check .",
			},
			"typecheck": {
				Command: "mypy .",
			},
			"commit": {
				// Exits non-zero when the tree has uncommitted changes, and
				// passes as a no-op on an already-clean tree.
				Command: "git diff-index --quiet HEAD --",
			},
			"pr": {
				Command: "gh pr view --json url --jq .url",
				Pattern: `^https://\S+$`,
			},
			"review": {
				Command:  "gh pr view --json reviewDecision --jq .reviewDecision",
				Pattern:  "^APPROVED$",
				Optional: true,
			},
		},
		Git: GitConfig{
			DefaultBranch: "main",
			BranchPattern: `^(feature|fix|chore|docs)/[a-z0-9][a-z0-9._/-]*$`,
		},
		Run: RunConfig{
			StateDir: ".flowcheck/run",
		},
		Output: OutputConfig{
			TruncateLines:  20,
			TruncateLength: 120,
		},
	}
}

// TemplateData contains data for step template expansion.
//
// This struct is passed to Go's text/template when expanding step commands
// and patterns. Fields are accessible in templates using {{.FieldName}}
// syntax.
type TemplateData struct {
	// TaskKey is the identifier of the task being checked.
	TaskKey string

	// DefaultBranch is the configured integration branch.
	DefaultBranch string

	// BranchPattern is the configured branch naming regular expression.
	BranchPattern string
}

// GetStepConfig returns the configuration for a named step.
func (c *Config) GetStepConfig(name string) (StepConfig, error) {
	sc, ok := c.Steps[name]
	if !ok {
		return StepConfig{}, fmt.Errorf("step not configured: %s", name)
	}
	return sc, nil
}

// ResolveStep builds an executable [checklist.Step] for a named step,
// expanding command and pattern templates with the task key and git
// conventions, and splitting the command into argv form.
func (c *Config) ResolveStep(name, taskKey string) (checklist.Step, error) {
	sc, err := c.GetStepConfig(name)
	if err != nil {
		return checklist.Step{}, err
	}

	data := TemplateData{
		TaskKey:       taskKey,
		DefaultBranch: c.Git.DefaultBranch,
		BranchPattern: c.Git.BranchPattern,
	}

	command, err := expandTemplate(name+"-command", sc.Command, data)
	if err != nil {
		return checklist.Step{}, err
	}

	argv := strings.Fields(command)
	if len(argv) == 0 {
		return checklist.Step{}, fmt.Errorf("step %s has no command", name)
	}

	pattern, err := expandTemplate(name+"-pattern", sc.Pattern, data)
	if err != nil {
		return checklist.Step{}, err
	}
	if pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			return checklist.Step{}, fmt.Errorf("step %s has invalid pattern: %w", name, err)
		}
	}

	return checklist.Step{
		Name:     name,
		Command:  argv,
		Required: !sc.Optional,
		Pattern:  pattern,
		Timeout:  time.Duration(c.Run.StepTimeoutSeconds) * time.Second,
	}, nil
}

func expandTemplate(name, text string, data TemplateData) (string, error) {
	if text == "" {
		return "", nil
	}

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template for %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to expand template for %s: %w", name, err)
	}

	return buf.String(), nil
}

// ApplyManifest overlays manifest entries onto the step configuration.
//
// Manifest commands, patterns, and required flags take precedence over both
// defaults and config-file values for the steps the manifest names. Steps
// the manifest introduces that have no configuration entry are created.
func (c *Config) ApplyManifest(m *manifest.Manifest) {
	if c.Steps == nil {
		c.Steps = make(map[string]StepConfig)
	}

	for _, name := range m.Steps() {
		entry := m.GetEntry(name)
		sc := c.Steps[name]

		if entry.Command != "" {
			sc.Command = entry.Command
		}
		if entry.Pattern != "" {
			sc.Pattern = entry.Pattern
		}
		sc.Optional = !entry.Required

		c.Steps[name] = sc
	}
}

// applyDefaults fills unset fields from [DefaultConfig] after a file load.
//
// Steps defined in the file override defaults per step; a file step with an
// empty command inherits the default command (and pattern) so a user can
// flip a step to optional without restating its command line.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Steps == nil {
		c.Steps = make(map[string]StepConfig)
	}
	for name, defStep := range def.Steps {
		sc, ok := c.Steps[name]
		if !ok {
			c.Steps[name] = defStep
			continue
		}
		if sc.Command == "" {
			sc.Command = defStep.Command
			if sc.Pattern == "" {
				sc.Pattern = defStep.Pattern
			}
		}
		c.Steps[name] = sc
	}

	if c.Git.DefaultBranch == "" {
		c.Git.DefaultBranch = def.Git.DefaultBranch
	}
	if c.Git.BranchPattern == "" {
		c.Git.BranchPattern = def.Git.BranchPattern
	}
	if c.Run.StateDir == "" {
		c.Run.StateDir = def.Run.StateDir
	}
	if c.Output.TruncateLines == 0 {
		c.Output.TruncateLines = def.Output.TruncateLines
	}
	if c.Output.TruncateLength == 0 {
		c.Output.TruncateLength = def.Output.TruncateLength
	}
}
