package actions

import (
	"errors"
	"fmt"
	"os"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
)

// Sentinel errors returned by actions.
var (
	ErrNotUserScript = errors.New("not a user script")
	ErrExists        = errors.New("script already exists")
)

// Service runs actions against the scripts folders configured in a store.
type Service struct {
	store  config.Store
	reload func() error
	log    processinglog.Logger
}

// New returns a Service. reload is called after the scripts folders change;
// it may be nil.
func New(store config.Store, reload func() error, logger processinglog.Logger) *Service {
	if logger == nil {
		logger = processinglog.Discard
	}
	return &Service{store: store, reload: reload, log: logger}
}

func (s *Service) refresh() error {
	if s.reload == nil {
		return nil
	}
	if err := s.reload(); err != nil {
		return fmt.Errorf("reloading scripts: %w", err)
	}
	return nil
}

// checkUserScript rejects paths outside the user scripts folders.
func (s *Service) checkUserScript(path string) error {
	if !rutils.IsUserScript(s.store, path) {
		return fmt.Errorf("%s: %w; only scripts in %v can be changed", path, ErrNotUserScript, rutils.ScriptsFolders(s.store))
	}
	return nil
}

// Delete removes the script at path and its help sidecar, then reloads.
func (s *Service) Delete(path string) error {
	if err := s.checkUserScript(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting script: %w", err)
	}
	if err := os.Remove(rscript.HelpPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting help file: %w", err)
	}
	s.log.Add(processinglog.SeverityInfo, "Deleted R script "+path)
	return s.refresh()
}
