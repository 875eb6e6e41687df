package dispatch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/landokit/landokit/pkg/core"
)

// ManifestName marks a project root during discovery.
const ManifestName = ".lando.yml"

// maxScanDepth bounds the walk on large trees. Depth counts directories
// relative to the scan root; the root itself is depth zero.
const maxScanDepth = 3

// Scan walks root to a bounded depth looking for project manifests and emits
// one ProjectsFound with every parent directory found, deduplicated and
// sorted. Unreadable entries are skipped: partial results beat none.
func (d *Dispatcher) Scan(root string) {
	op := uuid.NewString()
	go func() {
		d.logger.Info("scan projects", "op", op, "root", root)
		if _, err := os.Stat(root); err != nil {
			d.fail(op, core.FailScan, "scan", fmt.Sprintf("cannot scan %s: %v", root, err))
			return
		}
		d.queue.Push(core.ProjectsFound{Paths: scanTree(root)})
	}()
}

func scanTree(root string) []string {
	var found []string
	sep := string(filepath.Separator)

	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied, broken symlink: skip and keep walking.
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if entry.IsDir() {
			if strings.Count(rel, sep)+1 > maxScanDepth {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Name() == ManifestName {
			found = append(found, filepath.Dir(path))
		}
		return nil
	})

	return MergeProjects(nil, found)
}

// MergeProjects merges newly discovered paths into an existing set,
// deduplicating by cleaned path and sorting. Scanning overlapping roots
// therefore yields each project exactly once.
func MergeProjects(existing, found []string) []string {
	merged := make([]string, 0, len(existing)+len(found))
	seen := make(map[string]bool, len(existing)+len(found))
	for _, paths := range [][]string{existing, found} {
		for _, p := range paths {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				merged = append(merged, p)
			}
		}
	}
	sort.Strings(merged)
	return merged
}
