// Package sync reconciles the server's starred items against the local
// history log and download directory.
package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"starsync/internal/history"
	"starsync/internal/model"
)

// Remote is the server-side collaborator: list starred items and fetch the
// content of one item.
type Remote interface {
	Starred(ctx context.Context) ([]model.StarredItem, error)
	Download(ctx context.Context, id string) (io.ReadCloser, error)
}

// Result holds counters for one sync run.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Engine performs one sync run. Items are processed sequentially in the
// order the server returned them; the engine owns the history store for the
// duration of the run.
type Engine struct {
	remote Remote
	store  *history.Store
	dir    string
	since  time.Time
	logger *slog.Logger
}

// New creates an engine that downloads into dir. A non-zero since restricts
// the run to items starred at or after that time.
func New(remote Remote, store *history.Store, dir string, since time.Time, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		remote: remote,
		store:  store,
		dir:    dir,
		since:  since,
		logger: logger,
	}
}

// Run fetches the starred list, computes the plan, and processes it.
// A fetch failure is fatal and returns before any history mutation.
// Per-item download and filesystem failures are counted and logged but do
// not abort the run; a history append failure does, since completed
// downloads could no longer be recorded durably.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var result Result

	items, err := e.remote.Starred(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching starred items: %w", err)
	}
	e.logger.Debug("fetched starred items", "count", len(items))

	plan := e.plan(items)
	if len(plan) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return result, fmt.Errorf("creating download directory: %w", err)
	}

	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dest, err := e.destination(item)
		if err != nil {
			fmt.Printf("  ! Failed:     %s: %v\n", item.Path, err)
			result.Failed++
			continue
		}

		if _, err := os.Stat(dest); err == nil {
			// A file already at the expected name is treated as synced and
			// folded into history so it is not retried forever.
			if err := e.store.Record(item.ID); err != nil {
				return result, err
			}
			fmt.Printf("  – Skipped:    %s (already exists)\n", item.Path)
			result.Skipped++
			continue
		}

		if err := e.download(ctx, item, dest); err != nil {
			e.logger.Error("download failed", "id", item.ID, "path", item.Path, "error", err)
			fmt.Printf("  ! Failed:     %s: %v\n", item.Path, err)
			result.Failed++
			continue
		}

		if err := e.store.Record(item.ID); err != nil {
			return result, err
		}
		fmt.Printf("  ✓ Downloaded: %s – %s\n", item.Artist, item.Title)
		result.Downloaded++
	}

	return result, nil
}

// plan selects the items to process: starred within the since window and not
// yet in history. Server order is preserved.
func (e *Engine) plan(items []model.StarredItem) []model.StarredItem {
	var plan []model.StarredItem
	for _, item := range items {
		if !item.StarredSince(e.since) {
			continue
		}
		if e.store.Contains(item.ID) {
			continue
		}
		plan = append(plan, item)
	}
	return plan
}

// destination resolves the local path for an item and rejects server paths
// that would escape the download directory.
func (e *Engine) destination(item model.StarredItem) (string, error) {
	rel := filepath.FromSlash(item.Path)
	if rel == "" {
		return "", fmt.Errorf("item %s has an empty path", item.ID)
	}
	dest := filepath.Join(e.dir, rel)
	if !strings.HasPrefix(dest, filepath.Clean(e.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("item path %q escapes the download directory", item.Path)
	}
	return dest, nil
}

// download streams the item's content to dest via a temp file in the same
// directory, renamed into place only after a complete, synced write. A crash
// mid-download leaves no partial file at the destination.
func (e *Engine) download(ctx context.Context, item model.StarredItem, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	body, err := e.remote.Download(ctx, item.ID)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".starsync-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing download: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving download into place: %w", err)
	}
	return nil
}
