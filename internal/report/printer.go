// Package report formats checklist results for the terminal.
//
// The [Printer] renders per-step lines as they complete, a summary box for
// the run, and the captured output of the first failure so the operator sees
// what the tool reported without re-running it. Styling uses lipgloss and
// degrades to plain text when color is disabled.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"flowcheck/internal/checklist"
	"flowcheck/internal/router"
	"flowcheck/internal/stage"
	"flowcheck/internal/state"
)

// Markers for step outcomes.
const (
	markPass = "✓"
	markFail = "✗"
	markSkip = "○"
)

// TaskOutcome summarizes one task's run for multi-task summaries.
type TaskOutcome struct {
	Key      string
	Green    bool
	Duration time.Duration
	FailedAt string
}

// Printer renders checklist progress and results.
//
// Use [NewPrinter] for stdout or [NewPrinterWithWriter] to capture output in
// tests.
type Printer struct {
	w io.Writer

	// TruncateLines caps the number of captured output lines shown for a
	// failing step. Zero means no cap.
	TruncateLines int

	// TruncateLength caps the length of each displayed output line.
	// Zero means no cap.
	TruncateLength int

	pass    lipgloss.Style
	fail    lipgloss.Style
	skip    lipgloss.Style
	header  lipgloss.Style
	dim     lipgloss.Style
	summary lipgloss.Style
}

// NewPrinter creates a [Printer] writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a [Printer] writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	p := &Printer{w: w}
	p.applyStyles(false)
	return p
}

// SetWriter redirects subsequent output to w.
func (p *Printer) SetWriter(w io.Writer) {
	p.w = w
}

// SetNoColor disables (or re-enables) lipgloss styling.
func (p *Printer) SetNoColor(noColor bool) {
	p.applyStyles(noColor)
}

func (p *Printer) applyStyles(noColor bool) {
	if noColor {
		plain := lipgloss.NewStyle()
		p.pass, p.fail, p.skip, p.header, p.dim, p.summary = plain, plain, plain, plain, plain, plain
		return
	}
	p.pass = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	p.fail = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	p.skip = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	p.header = lipgloss.NewStyle().Bold(true)
	p.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	p.summary = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
}

// RunHeader announces the start of a checklist run.
func (p *Printer) RunHeader(taskKey string, steps []router.ChecklistStep) {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("Checklist: %s", taskKey)))
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("Steps: %s", strings.Join(names, " → "))))
	fmt.Fprintln(p.w)
}

// Progress announces a step that is about to run.
func (p *Printer) Progress(stepIndex, totalSteps int, step checklist.Step) {
	fmt.Fprintf(p.w, "[%d/%d] %s  %s\n",
		stepIndex, totalSteps, step.Name,
		p.dim.Render("$ "+strings.Join(step.Command, " ")))
}

// Step renders a completed step's outcome line, plus captured output for
// failures and the artifact for pattern-matching steps.
func (p *Printer) Step(res checklist.Result) {
	switch res.Status {
	case checklist.StatusPassed:
		fmt.Fprintf(p.w, "  %s %s (%s)\n", p.pass.Render(markPass), res.Step, res.Duration.Round(time.Millisecond))
	case checklist.StatusSkipped:
		fmt.Fprintf(p.w, "  %s %s skipped", p.skip.Render(markSkip), res.Step)
		if res.Note != "" {
			fmt.Fprintf(p.w, " — %s", res.Note)
		}
		fmt.Fprintln(p.w)
	case checklist.StatusFailed:
		fmt.Fprintf(p.w, "  %s %s failed (exit %d)\n", p.fail.Render(markFail), res.Step, res.ExitCode)
		if res.Note != "" {
			fmt.Fprintf(p.w, "    %s\n", res.Note)
		}
		p.printOutput(res.Output)
	default:
		fmt.Fprintf(p.w, "  %s %s\n", res.Step, res.Status)
	}

	if res.Artifact != "" && res.Status == checklist.StatusPassed {
		fmt.Fprintf(p.w, "    %s\n", p.dim.Render(res.Artifact))
	}
}

// printOutput renders captured tool output indented and truncated per the
// printer's output settings.
func (p *Printer) printOutput(output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}

	lines := strings.Split(output, "\n")
	if p.TruncateLines > 0 && len(lines) > p.TruncateLines {
		omitted := len(lines) - p.TruncateLines
		lines = append(lines[:p.TruncateLines], fmt.Sprintf("... (%d more lines)", omitted))
	}

	for _, line := range lines {
		if p.TruncateLength > 0 && len(line) > p.TruncateLength {
			// Lengths too short to fit the ellipsis get a hard cut.
			if p.TruncateLength > 3 {
				line = line[:p.TruncateLength-3] + "..."
			} else {
				line = line[:p.TruncateLength]
			}
		}
		fmt.Fprintf(p.w, "    %s\n", line)
	}
}

// Summary renders the run verdict box.
func (p *Printer) Summary(run *checklist.Run, total time.Duration) {
	var b strings.Builder

	if run.Green() {
		b.WriteString(p.pass.Render(markPass + " CHECKLIST GREEN"))
	} else {
		b.WriteString(p.fail.Render(markFail + " CHECKLIST FAILED"))
		if run.HaltedAt != "" {
			b.WriteString(fmt.Sprintf("\nHalted at: %s", run.HaltedAt))
		}
		if failed := run.Failed(); len(failed) > 0 {
			b.WriteString(fmt.Sprintf("\nFailed: %s", strings.Join(failed, ", ")))
		}
	}
	b.WriteString(fmt.Sprintf("\nTask: %s", run.Task))
	b.WriteString(fmt.Sprintf("\nTotal: %s", total.Round(time.Millisecond)))

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.summary.Render(b.String()))
}

// QueueSummary renders the outcome table for a multi-task run. Tasks that
// never ran because an earlier task failed are listed as skipped.
func (p *Printer) QueueSummary(outcomes []TaskOutcome, allKeys []string, total time.Duration) {
	var b strings.Builder

	completed, failed := 0, 0
	for _, o := range outcomes {
		if o.Green {
			completed++
		} else {
			failed++
		}
	}
	remaining := len(allKeys) - len(outcomes)

	if failed == 0 && remaining == 0 {
		b.WriteString(p.pass.Render(markPass + " ALL TASKS GREEN"))
	} else {
		b.WriteString(p.fail.Render(markFail + " QUEUE STOPPED"))
	}
	b.WriteString(fmt.Sprintf("\nCompleted: %d | Failed: %d | Remaining: %d", completed, failed, remaining))

	for _, o := range outcomes {
		mark := p.pass.Render(markPass)
		detail := ""
		if !o.Green {
			mark = p.fail.Render(markFail)
			if o.FailedAt != "" {
				detail = "  failed at " + o.FailedAt
			}
		}
		b.WriteString(fmt.Sprintf("\n%s %-24s %s%s", mark, o.Key, o.Duration.Round(time.Second), detail))
	}
	for i := len(outcomes); i < len(allKeys); i++ {
		b.WriteString(fmt.Sprintf("\n%s %-24s (skipped)", p.skip.Render(markSkip), allKeys[i]))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %s", total.Round(time.Second)))

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.summary.Render(b.String()))
}

// Plan renders a dry-run preview of the remaining steps for a task.
func (p *Printer) Plan(taskKey string, steps []router.ChecklistStep) {
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("Plan: %s", taskKey)))
	for i, s := range steps {
		fmt.Fprintf(p.w, "  %d. %s %s\n", i+1, s.Name, p.dim.Render("→ "+string(s.NextStage)))
	}
}

// Stages renders tracked task stages, sorted by task key.
func (p *Printer) Stages(tasks map[string]stage.Stage) {
	if len(tasks) == 0 {
		fmt.Fprintln(p.w, "No tracked tasks.")
		return
	}

	keys := make([]string, 0, len(tasks))
	for k := range tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s := tasks[k]
		mark := p.dim.Render("·")
		if s == stage.StageDone {
			mark = p.pass.Render(markPass)
		}
		fmt.Fprintf(p.w, "%s %-24s %s\n", mark, k, s)
	}
}

// LastRunReport renders the stored summary of the most recent run.
func (p *Printer) LastRunReport(last *state.LastRun) {
	if last == nil {
		fmt.Fprintln(p.w, "No run state found.")
		return
	}

	if last.Green() {
		fmt.Fprintln(p.w, p.pass.Render(markPass+" last run: pass"))
	} else {
		fmt.Fprintln(p.w, p.fail.Render(markFail+" last run: fail"))
	}
	fmt.Fprintf(p.w, "Task: %s\n", last.Task)
	fmt.Fprintf(p.w, "Steps: %s\n", strings.Join(last.Steps, " → "))
	if last.HaltedAt != "" {
		fmt.Fprintf(p.w, "Halted at: %s\n", last.HaltedAt)
	}
	if len(last.Failed) > 0 {
		fmt.Fprintln(p.w, "Failed:")
		for _, f := range last.Failed {
			fmt.Fprintf(p.w, "  - %s\n", f)
		}
	}
}

// StepList renders the checklist steps in order with required markers.
func (p *Printer) StepList(steps []string, required map[string]bool) {
	for i, name := range steps {
		marker := "required"
		if !required[name] {
			marker = "optional"
		}
		fmt.Fprintf(p.w, "%d. %-12s %s\n", i+1, name, p.dim.Render(marker))
	}
}
