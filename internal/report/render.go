package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// RenderSummary renders the per-status counts as a terminal table.
func RenderSummary(r Report) (string, error) {
	data := pterm.TableData{{"Status", "Count"}}
	for _, s := range domain.Statuses {
		data = append(data, []string{colorStatus(s), strconv.Itoa(r.Summary.Count(s))})
	}
	data = append(data, []string{"Total", strconv.Itoa(r.Summary.Total)})

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return fmt.Sprintf("Run %s at %s\n%s", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), table), nil
}

// RenderFlagged renders the non-OK rows as a terminal table, or an empty
// string when every destination passed.
func RenderFlagged(r Report) (string, error) {
	flagged := r.Flagged()
	if len(flagged) == 0 {
		return "", nil
	}
	data := pterm.TableData{{"Name", "Status", "Issues"}}
	for _, row := range flagged {
		data = append(data, []string{row.Name, colorStatus(row.Status), strings.Join(row.Issues, "; ")})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render flagged rows: %w", err)
	}
	return table, nil
}

func colorStatus(s domain.Status) string {
	switch s {
	case domain.StatusOK:
		return pterm.Green(string(s))
	case domain.StatusWarning:
		return pterm.Yellow(string(s))
	default:
		return pterm.Red(string(s))
	}
}
