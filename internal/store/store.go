// Package store persists generated reports as one JSON document per stage
// per day under a date-partitioned directory tree. Nothing in the pipeline
// reads these back; they exist for audits and postmortems.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"routecast/internal/types"

	"github.com/google/uuid"
)

// Document is the persisted shape of one generated report.
type Document struct {
	ID          string             `json:"id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Record      types.ReportRecord `json:"record"`
	ShortText   string             `json:"short_text"`
	DebugText   string             `json:"debug_text"`
}

// FileStore writes documents under baseDir/YYYY-MM-DD/<stage>.json.
type FileStore struct {
	baseDir string
	logger  *slog.Logger
	nowFn   func() time.Time
}

// New creates a FileStore rooted at baseDir.
func New(baseDir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{baseDir: baseDir, logger: logger, nowFn: time.Now}
}

// Save writes the report document for its stage and target date,
// overwriting any earlier document for the same pair. The write goes through
// a temp file and rename so a crash never leaves a half-written document.
func (s *FileStore) Save(ctx context.Context, rec types.ReportRecord, shortText, debugText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := Document{
		ID:          uuid.NewString(),
		GeneratedAt: s.nowFn().UTC(),
		Record:      rec,
		ShortText:   shortText,
		DebugText:   debugText,
	}

	dir := filepath.Join(s.baseDir, rec.TargetDate.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("creating report directory %s", dir), err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite, "encoding report document", err)
	}

	path := filepath.Join(dir, sanitizeName(rec.StageToday)+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("writing report document %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("renaming report document to %s", path), err)
	}

	s.logger.Debug("report persisted", "path", path, "id", doc.ID)
	return nil
}

// sanitizeName makes a stage name safe as a file name.
func sanitizeName(name string) string {
	if name == "" {
		return "unknown"
	}
	repl := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return repl.Replace(name)
}
