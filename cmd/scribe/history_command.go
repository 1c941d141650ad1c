package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var passLimit int
	var itemLimit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pass and item outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/history?passes=%d&items=%d", passLimit, itemLimit)
			var history api.HistoryResponse
			if err := ctx.callAPI(http.MethodGet, path, &history); err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Recent passes")
			if len(history.Passes) == 0 {
				fmt.Fprintln(out, "  none recorded")
			} else {
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Origin", "Outcome", "Scanned", "Published", "Failed", "Detail"},
					passRows(history.Passes),
					4, 5, 6,
				))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent items")
			if len(history.Items) == 0 {
				fmt.Fprintln(out, "  none recorded")
			} else {
				fmt.Fprintln(out, renderTable(
					[]string{"Recorded", "Name", "Outcome", "Failure", "Duration", "Detail"},
					itemRows(history.Items),
					5,
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&passLimit, "passes", 10, "Number of recent passes to show")
	cmd.Flags().IntVar(&itemLimit, "items", 20, "Number of recent items to show")
	return cmd
}

func passRows(passes []api.PassSummary) [][]string {
	rows := make([][]string, 0, len(passes))
	for _, p := range passes {
		rows = append(rows, []string{
			formatHistoryTime(p.StartedAt),
			p.Origin,
			p.Outcome,
			strconv.Itoa(p.Scanned),
			strconv.Itoa(p.Published),
			strconv.Itoa(p.Failed),
			truncateDetail(p.Detail),
		})
	}
	return rows
}

func itemRows(items []api.ItemSummary) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		duration := ""
		if item.DurationSeconds > 0 {
			duration = (time.Duration(item.DurationSeconds) * time.Second).String()
		}
		rows = append(rows, []string{
			formatHistoryTime(item.RecordedAt),
			item.Name,
			item.Outcome,
			item.FailureKind,
			duration,
			truncateDetail(item.Detail),
		})
	}
	return rows
}

func formatHistoryTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

const maxDetailWidth = 60

func truncateDetail(detail string) string {
	if len(detail) <= maxDetailWidth {
		return detail
	}
	return detail[:maxDetailWidth-3] + "..."
}
