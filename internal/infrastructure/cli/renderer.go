package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/infrastructure/cli/commands"
)

const nameWidth = 20

var (
	banner = color.New(color.Bold, color.FgMagenta).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// RenderText prints the report as a checklist. In quiet mode only failing
// checks are printed, without banner or summary.
func RenderText(out io.Writer, report domain.HealthReport, quiet bool) {
	if !quiet {
		fmt.Fprintf(out, "\n%s\n\n", banner("🏥 Skylily Health Check"))
	}

	for _, r := range report.Results {
		if quiet && r.OK {
			continue
		}
		icon := green("✓")
		if !r.OK {
			icon = red("✗")
		}
		fmt.Fprintf(out, "  %s %-*s %s\n", icon, nameWidth, r.Name, dim(r.Detail))
	}

	if quiet {
		return
	}
	fmt.Fprintln(out)
	if report.OverallOK {
		fmt.Fprintf(out, "%s\n\n", green(commands.MsgAllOperational))
	} else {
		fmt.Fprintf(out, "%s\n\n", red(commands.MsgNeedsAttention))
	}
}

// RenderJSON prints {"ok": ..., "services": [...]} indented by two spaces.
func RenderJSON(out io.Writer, report domain.HealthReport) error {
	if report.Results == nil {
		report.Results = []domain.NamedCheckResult{}
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
