package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := fetchDaemonStatus(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, "Scribe daemon")

			runningKind := statusError
			if status.Running {
				runningKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Running", runningKind, fmt.Sprintf("%s (pid %d)", yesNo(status.Running), status.PID), colorize))

			authKind := statusWarn
			if status.Authenticated {
				authKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Authorized", authKind, yesNo(status.Authenticated), colorize))

			passMessage := "idle"
			if status.PassActive {
				passMessage = "pass in progress"
			}
			fmt.Fprintln(out, renderStatusLine("Pipeline", statusInfo, passMessage, colorize))
			fmt.Fprintln(out, renderStatusLine("Polling", statusInfo, yesNo(status.PollingOn), colorize))

			watermark := "none (first pass pending)"
			if !status.Watermark.IsZero() {
				watermark = status.Watermark.Format("2006-01-02 15:04:05 MST")
			}
			fmt.Fprintln(out, renderStatusLine("Watermark", statusInfo, watermark, colorize))

			if status.LedgerPath != "" {
				fmt.Fprintln(out, renderStatusLine("Ledger", statusInfo, status.LedgerPath, colorize))
			}
			return nil
		},
	}
}
