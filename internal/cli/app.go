package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rproc-labs/rproc/internal/actions"
	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/icons"
	"github.com/rproc-labs/rproc/internal/platform"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/provider"
	"github.com/rproc-labs/rproc/internal/registry"
)

// app wires the host side: settings, processing log, icons, the R provider
// and the registry it is registered with.
type app struct {
	store    *config.ViperStore
	log      processinglog.Logger
	fileLog  *processinglog.File
	icons    icons.Resolver
	provider *provider.RProvider
	registry *registry.Registry
	actions  *actions.Service
}

var (
	appOnce     sync.Once
	current     *app
	errAppSetup error
)

// loadApp builds the app on first use and registers the R provider.
func loadApp(stderr io.Writer) (*app, error) {
	appOnce.Do(func() {
		current, errAppSetup = newApp(stderr)
	})
	return current, errAppSetup
}

func newApp(stderr io.Writer) (*app, error) {
	if err := config.EnsureDir(); err != nil {
		return nil, err
	}
	a := &app{store: config.NewStore(configFile)}

	charm := processinglog.NewCharm(stderr, branding.CLIName())
	if quiet {
		charm.SetLevel(log.ErrorLevel)
	}
	loggers := processinglog.Multi{charm}
	fileLog, err := processinglog.NewFile(config.LogPath())
	if err != nil {
		fmt.Fprintf(stderr, "Warning: processing log disabled: %v\n", err)
	} else {
		a.fileLog = fileLog
		loggers = append(loggers, fileLog)
	}
	a.log = loggers

	a.icons = icons.NewThemeResolver(iconsDir, iconTheme)
	a.provider = provider.New(a.store, a.log, a.icons, provider.Options{
		InterpreterSettings: platform.NeedsInterpreterSettings(),
	})
	a.registry = registry.New()
	a.registry.OnReload(func(p registry.Provider) {
		if rp, ok := p.(*provider.RProvider); ok {
			// Best effort: completion falls back to a full load.
			_ = registry.WriteCache(registry.DefaultCachePath(), rp.Algorithms(), rp.Folders().Folders())
		}
	})
	if err := a.registry.Register(a.provider); err != nil {
		return nil, err
	}
	a.actions = actions.New(a.store, func() error { return a.registry.Reload(provider.ID) }, a.log)
	return a, nil
}

func closeApp() {
	if current != nil && current.fileLog != nil {
		current.fileLog.Close()
		current.fileLog = nil
	}
}
