package actions

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rutils"
)

const (
	// freshnessFile is the name of the timestamp marker file.
	freshnessFile = ".collection-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"

	// RepoSetting is the config key holding the collection repository URL.
	RepoSetting = "scripts_repo"
)

// RepoURL returns the scripts collection URL, checking (in order):
// 1. <PREFIX>_SCRIPTS_REPO_URL env var
// 2. config key "scripts_repo"
// 3. branding.ScriptsRepoURL() (from branding.yaml)
func RepoURL(s config.Store) string {
	if v := os.Getenv(branding.EnvVar("SCRIPTS_REPO_URL")); v != "" {
		return v
	}
	if v := config.String(s, RepoSetting); v != "" {
		return v
	}
	return branding.ScriptsRepoURL()
}

// CollectionDir returns the folder the collection is fetched into:
// <first user scripts folder>/collection.
func CollectionDir(s config.Store) string {
	return filepath.Join(rutils.ScriptsFolders(s)[0], rutils.CollectDir)
}

// FetchOptions configures Fetch.
type FetchOptions struct {
	// Force updates the collection even when it is fresh.
	Force bool
	// MaxAge overrides DefaultMaxAge.
	MaxAge time.Duration
}

// FetchResult reports what Fetch did.
type FetchResult struct {
	Dir     string
	Cloned  bool
	Updated bool
	Skipped bool
}

// Fetch clones or updates the on-line scripts collection into the first
// user scripts folder, then reloads. A fresh collection is left alone unless
// opts.Force is set.
func (s *Service) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	dir := CollectionDir(s.store)
	result := &FetchResult{Dir: dir}

	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}

	_, statErr := os.Stat(filepath.Join(dir, ".git"))
	exists := statErr == nil
	switch {
	case exists && !opts.Force && !IsStale(dir, maxAge):
		result.Skipped = true
		return result, nil
	case exists:
		if err := Update(ctx, dir); err != nil {
			return nil, err
		}
		result.Updated = true
	default:
		if err := Clone(ctx, RepoURL(s.store), dir); err != nil {
			return nil, err
		}
		result.Cloned = true
	}

	s.log.Add(processinglog.SeverityInfo, "Fetched R scripts collection into "+dir)
	return result, s.refresh()
}

// Clone performs a shallow clone of repoURL into targetDir.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up.
func Clone(ctx context.Context, repoURL, targetDir string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	tmpDir := targetDir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), rutils.DirPermUser); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", repoURL, tmpDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning scripts collection: %w\n%s", err, strings.TrimSpace(string(output)))
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing collection dir: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing collection clone: %w", err)
	}

	WriteFreshnessMarker(targetDir)
	return nil
}

// Update pulls the latest changes in the collection directory.
func Update(ctx context.Context, dir string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "git", "pull", "--depth=1", "--rebase")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pulling collection updates: %w\n%s", err, strings.TrimSpace(string(output)))
	}

	WriteFreshnessMarker(dir)
	return nil
}

// WriteFreshnessMarker writes the current Unix timestamp to the freshness file.
func WriteFreshnessMarker(dir string) {
	markerPath := filepath.Join(dir, freshnessFile)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath, []byte(ts), 0644)
}

// ReadFreshnessMarker reads the timestamp from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(dir string) time.Time {
	data, err := os.ReadFile(filepath.Join(dir, freshnessFile))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the collection was last updated more than maxAge
// ago or has never been fetched.
func IsStale(dir string, maxAge time.Duration) bool {
	lastUpdated := ReadFreshnessMarker(dir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
