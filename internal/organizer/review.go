package organizer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sortmedown/internal/logging"
)

// ReviewItem is a primary file waiting in the mismatched directory.
type ReviewItem struct {
	Path     string
	Name     string
	Folder   string
	Size     int64
	Modified time.Time
	Sidecars int
}

// ListMismatched returns every primary media file under the mismatched
// directory, sorted by file name. A missing directory yields no items.
func (s *Sorter) ListMismatched() ([]ReviewItem, error) {
	root := s.cfg.MismatchedPath()
	if root == "" {
		return nil, wrap(ErrConfiguration, "review", "mismatched directory is not configured", nil)
	}
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var items []ReviewItem
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !s.cfg.IsSupported(filepath.Ext(d.Name())) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		sidecars, _ := s.files.FindSidecars(path)
		items = append(items, ReviewItem{
			Path:     path,
			Name:     d.Name(),
			Folder:   rel,
			Size:     info.Size(),
			Modified: info.ModTime(),
			Sidecars: len(sidecars),
		})
		return nil
	})
	if err != nil {
		return nil, wrap(ErrFilesystem, "review", "scan mismatched directory", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Path < items[j].Path
	})
	return items, nil
}

// DeleteItem removes a file with its sidecars. The enclosing folder is removed
// too when it is left empty inside the mismatched directory.
func (s *Sorter) DeleteItem(ctx context.Context, path string) error {
	ctx = logging.WithItem(ctx, filepath.Base(path))
	logger := logging.WithContext(ctx, s.logger)
	if _, err := os.Stat(path); err != nil {
		return wrap(ErrValidation, "delete", path, err)
	}

	group := s.files.Group(ctx, path)
	if err := s.files.DeleteGroup(ctx, group); err != nil {
		return wrap(ErrFilesystem, "delete", path, err)
	}
	if s.dryRun {
		return nil
	}

	parent := filepath.Dir(path)
	mismatched := s.cfg.MismatchedPath()
	if mismatched == "" || samePath(parent, mismatched) || !isUnder(parent, mismatched) {
		return nil
	}
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		if err := os.Remove(parent); err == nil {
			logger.Info("removed empty review folder", logging.String("path", parent))
		}
	}
	return nil
}
