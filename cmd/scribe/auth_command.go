package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Check Google Drive authorization and print the sign-in URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := fetchDaemonStatus(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status.Authenticated {
				fmt.Fprintln(out, "Google Drive is authorized.")
				return nil
			}

			url, err := authStartURL(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Google Drive is not authorized.")
			fmt.Fprintf(out, "Open this URL in a browser to sign in:\n\n  %s\n", url)
			return nil
		},
	}
}

// authStartURL prefers the externally reachable base so the OAuth redirect
// lands back on the daemon.
func authStartURL(ctx *commandContext) (string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if base := cfg.Drive.RedirectBaseURL; base != "" {
		return base + "/auth", nil
	}
	base, err := ctx.apiBaseURL()
	if err != nil {
		return "", err
	}
	return base + "/auth", nil
}

func fetchDaemonStatus(ctx *commandContext) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	if err := ctx.callAPI(http.MethodGet, "/api/status", &status); err != nil {
		return api.DaemonStatus{}, err
	}
	return status, nil
}
