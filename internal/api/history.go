package api

import (
	"context"
	"fmt"

	"scribe/internal/ledger"
)

// HistoryService exposes read-only views over the outcome ledger.
type HistoryService struct {
	ledger *ledger.Ledger
}

// NewHistoryService wraps a ledger for the HTTP and CLI surfaces.
func NewHistoryService(l *ledger.Ledger) *HistoryService {
	return &HistoryService{ledger: l}
}

// Recent returns the latest passes and item outcomes, newest first.
func (s *HistoryService) Recent(ctx context.Context, passLimit, itemLimit int) (HistoryResponse, error) {
	if s == nil || s.ledger == nil {
		return HistoryResponse{}, nil
	}
	passes, err := s.ledger.RecentPasses(ctx, passLimit)
	if err != nil {
		return HistoryResponse{}, fmt.Errorf("recent passes: %w", err)
	}
	items, err := s.ledger.RecentItems(ctx, itemLimit)
	if err != nil {
		return HistoryResponse{}, fmt.Errorf("recent items: %w", err)
	}

	resp := HistoryResponse{
		Passes: make([]PassSummary, 0, len(passes)),
		Items:  make([]ItemSummary, 0, len(items)),
	}
	for _, p := range passes {
		resp.Passes = append(resp.Passes, PassSummary{
			PassID:     p.PassID,
			Origin:     p.Origin,
			StartedAt:  p.StartedAt,
			FinishedAt: p.FinishedAt,
			Scanned:    p.Scanned,
			Published:  p.Published,
			Failed:     p.Failed,
			Outcome:    p.Outcome,
			Detail:     p.Detail,
		})
	}
	for _, it := range items {
		resp.Items = append(resp.Items, ItemSummary{
			PassID:          it.PassID,
			FileID:          it.FileID,
			Name:            it.Name,
			Outcome:         it.Outcome,
			FailureKind:     it.FailureKind,
			Detail:          it.Detail,
			DurationSeconds: it.DurationSeconds,
			PageID:          it.PageID,
			RecordedAt:      it.RecordedAt,
		})
	}
	return resp, nil
}
