package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Trigger a scan pass and wait for its outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Triggering scan pass...")

			resp, err := triggerScan(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Pass %s finished: %s\n", resp.PassID, resp.Outcome)
			fmt.Fprintf(out, "  scanned %d, published %d, failed %d\n", resp.Scanned, resp.Published, resp.Failed)
			if resp.Error != "" {
				return errors.New(resp.Error)
			}
			return nil
		},
	}
}

// triggerScan posts to the daemon and decodes the pass outcome. Failed
// passes still return a ScanResponse body alongside a non-2xx status, so
// the payload is decoded before the status is judged.
func triggerScan(ctx *commandContext) (api.ScanResponse, error) {
	httpResp, err := ctx.doAPI(http.MethodPost, "/api/scan?wait=1")
	if err != nil {
		return api.ScanResponse{}, err
	}
	defer httpResp.Body.Close()

	switch httpResp.StatusCode {
	case http.StatusConflict:
		return api.ScanResponse{}, errors.New("a scan pass is already running")
	case http.StatusUnauthorized:
		// Either the API token is wrong or Drive credentials are revoked;
		// the body distinguishes the two.
	}

	var resp api.ScanResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return api.ScanResponse{}, fmt.Errorf("decode scan response: %w", err)
	}
	if resp.PassID == "" && resp.Error == "" && httpResp.StatusCode != http.StatusOK {
		return api.ScanResponse{}, fmt.Errorf("daemon returned %s", httpResp.Status)
	}
	return resp, nil
}
