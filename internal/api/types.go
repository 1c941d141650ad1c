package api

import "time"

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running       bool      `json:"running"`
	PID           int       `json:"pid"`
	Authenticated bool      `json:"authenticated"`
	PassActive    bool      `json:"pass_active"`
	Watermark     time.Time `json:"watermark,omitempty"`
	PollingOn     bool      `json:"polling_enabled"`
	LedgerPath    string    `json:"ledger_path,omitempty"`
	LockFilePath  string    `json:"lock_file_path,omitempty"`
}

// PassSummary is one pass in the history listing.
type PassSummary struct {
	PassID     string    `json:"pass_id"`
	Origin     string    `json:"origin"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Scanned    int       `json:"scanned"`
	Published  int       `json:"published"`
	Failed     int       `json:"failed"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
}

// ItemSummary is one item outcome in the history listing.
type ItemSummary struct {
	PassID          string    `json:"pass_id"`
	FileID          string    `json:"file_id"`
	Name            string    `json:"name"`
	Outcome         string    `json:"outcome"`
	FailureKind     string    `json:"failure_kind,omitempty"`
	Detail          string    `json:"detail,omitempty"`
	DurationSeconds int64     `json:"duration_seconds,omitempty"`
	PageID          string    `json:"page_id,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// HistoryResponse carries recent pass and item outcomes.
type HistoryResponse struct {
	Passes []PassSummary `json:"passes"`
	Items  []ItemSummary `json:"items"`
}

// ScanResponse is returned from a manual scan trigger.
type ScanResponse struct {
	PassID    string `json:"pass_id"`
	Outcome   string `json:"outcome"`
	Scanned   int    `json:"scanned"`
	Published int    `json:"published"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
