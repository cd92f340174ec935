// Package report renders the end-of-run summary printed to stdout.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PhaseResult aggregates item outcomes for one phase, in execution order.
type PhaseResult struct {
	Phase   string
	Synced  int64
	Skipped int64
	Failed  int64
}

// Summary is the final accounting of a sync run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Result     string
	Err        string
	NotesAdded int64
	Phases     []PhaseResult
}

// Render formats the summary as a table plus a short epilogue.
func Render(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s finished in %s: %s\n", s.RunID, s.Duration.Round(time.Second), s.Result)
	if s.Err != "" {
		fmt.Fprintf(&b, "error: %s\n", s.Err)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"phase", "synced", "skipped", "failed"})

	var totalSynced, totalSkipped, totalFailed int64
	for _, phase := range s.Phases {
		tw.AppendRow(table.Row{phase.Phase, phase.Synced, phase.Skipped, phase.Failed})
		totalSynced += phase.Synced
		totalSkipped += phase.Skipped
		totalFailed += phase.Failed
	}
	tw.AppendFooter(table.Row{"total", totalSynced, totalSkipped, totalFailed})

	columnConfigs := make([]table.ColumnConfig, 0, 4)
	for i := 1; i <= 4; i++ {
		align := text.AlignLeft
		if i > 1 {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	b.WriteString(tw.Render())
	fmt.Fprintf(&b, "\nnotes added: %d\n", s.NotesAdded)
	return b.String()
}
