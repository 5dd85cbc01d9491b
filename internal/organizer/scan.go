package organizer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sortmedown/internal/logging"
)

// discover lists primary media files under plan.root, or under the subset
// entries when given, skipping excluded trees. Output is sorted by path.
func (s *Sorter) discover(ctx context.Context, plan passPlan) ([]string, error) {
	root := filepath.Clean(plan.root)
	excluded := make([]string, 0, len(plan.exclude))
	for _, dir := range plan.exclude {
		if strings.TrimSpace(dir) != "" && !samePath(dir, root) {
			excluded = append(excluded, filepath.Clean(dir))
		}
	}

	starts := []string{root}
	if len(plan.subset) > 0 {
		starts = s.resolveSubset(ctx, root, plan.subset)
	}

	seen := make(map[string]struct{})
	var files []string
	for _, start := range starts {
		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == start {
					return walkErr
				}
				logging.WarnWithContext(logging.WithContext(ctx, s.logger), "cannot read path during scan",
					"scan_unreadable",
					logging.String("path", path),
					logging.Error(walkErr),
					logging.String(logging.FieldImpact, "files below this path are not sorted"),
				)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !s.cfg.IsSupported(filepath.Ext(d.Name())) {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// resolveSubset maps subset entries to paths inside root. Entries outside
// root or missing on disk are logged and dropped.
func (s *Sorter) resolveSubset(ctx context.Context, root string, subset []string) []string {
	logger := logging.WithContext(ctx, s.logger)
	out := make([]string, 0, len(subset))
	for _, entry := range subset {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path := entry
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		path = filepath.Clean(path)
		if !isUnder(path, root) {
			logger.Warn("ignoring path outside target directory",
				logging.String("path", entry),
				logging.String(logging.FieldEventType, "subset_outside_root"),
			)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warn("ignoring missing path",
				logging.String("path", entry),
				logging.Error(err),
				logging.String(logging.FieldEventType, "subset_missing"),
			)
			continue
		}
		out = append(out, path)
	}
	return out
}

func isExcluded(path string, excluded []string) bool {
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

// collectDirs returns every directory under root in walk order, parents
// before children.
func collectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) && path != root {
				return filepath.SkipDir
			}
			return walkErr
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
