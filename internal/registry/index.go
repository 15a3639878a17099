package registry

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/rscript"
)

// Summary is the cached view of an algorithm.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Group      string `json:"group"`
	SourcePath string `json:"source_path"`
}

// CachedIndex holds algorithm summaries along with folder modification
// times used for invalidation.
type CachedIndex struct {
	Algorithms []Summary        `json:"algorithms"`
	FolderMods map[string]int64 `json:"folder_mods"` // folder -> latest mtime (unix nanos)
	CachedAt   time.Time        `json:"cached_at"`
}

// DefaultCachePath returns the default index path: ~/.rproc/algorithms-cache.json.
func DefaultCachePath() string {
	return filepath.Join(config.Dir(), "algorithms-cache.json")
}

// Summarize converts algorithms to their cached form.
func Summarize(algs []*rscript.Algorithm) []Summary {
	out := make([]Summary, 0, len(algs))
	for _, a := range algs {
		out = append(out, Summary{ID: a.ID(), Name: a.Name, Group: a.Group, SourcePath: a.SourcePath})
	}
	return out
}

// LoadCached returns the cached summaries when the index at path exists and
// none of folders changed since it was written.
func LoadCached(path string, folders []string) ([]Summary, bool) {
	cached, err := loadCache(path)
	if err != nil || !isCacheValid(cached, folders) {
		return nil, false
	}
	return cached.Algorithms, true
}

// WriteCache records algs and the current folder mtimes at path.
func WriteCache(path string, algs []*rscript.Algorithm, folders []string) error {
	mods := make(map[string]int64, len(folders))
	for _, f := range folders {
		mods[f] = latestMtime(f)
	}

	idx := CachedIndex{
		Algorithms: Summarize(algs),
		FolderMods: mods,
		CachedAt:   time.Now(),
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadCache reads and parses the cache file.
func loadCache(path string) (*CachedIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx CachedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// isCacheValid checks that the folder list matches and every folder's
// latest mtime is unchanged. Folders listed twice count once.
func isCacheValid(cached *CachedIndex, folders []string) bool {
	unique := slices.Compact(slices.Sorted(slices.Values(folders)))
	if cached == nil || len(cached.FolderMods) != len(unique) {
		return false
	}
	for _, f := range unique {
		mtime, ok := cached.FolderMods[f]
		if !ok || mtime != latestMtime(f) {
			return false
		}
	}
	return true
}

// latestMtime returns the latest modification time across folder and every
// entry below it. Missing folders yield 0. A symlinked folder is walked at
// its target.
func latestMtime(folder string) int64 {
	root, err := filepath.EvalSymlinks(folder)
	if err != nil {
		return 0
	}
	var latest int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if t := info.ModTime().UnixNano(); t > latest {
			latest = t
		}
		return nil
	})
	return latest
}
