package driven

import (
	"context"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

// ScanStore defines the driven port for the scan ledger.
type ScanStore interface {
	// Record persists a run. A later run for the same repo and SHA replaces it.
	Record(ctx context.Context, run model.ScanRun) error
	// GetBySHA returns the run recorded for the SHA, or (nil, nil) if none.
	GetBySHA(ctx context.Context, repoFullName, headSHA string) (*model.ScanRun, error)
	// ListRecent returns up to limit runs ordered by scanned_at DESC.
	ListRecent(ctx context.Context, repoFullName string, limit int) ([]model.ScanRun, error)
}
