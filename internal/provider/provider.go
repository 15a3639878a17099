package provider

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/discovery"
	"github.com/rproc-labs/rproc/internal/icons"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
)

const (
	// ID is the R provider identifier; algorithm ids are prefixed with it.
	ID = "r"
	// Name is the provider's display name.
	Name = "R scripts"
	// IconName is the provider icon in the icon theme.
	IconName = "providerR.svg"
	// SettingsGroup groups the provider's settings.
	SettingsGroup = "R scripts"
)

// Options tune the provider.
type Options struct {
	// InterpreterSettings registers R_FOLDER, R_LIBS_USER and R_USE64.
	// Callers normally pass platform.NeedsInterpreterSettings().
	InterpreterSettings bool
	// Parser parses script files. Nil uses rscript.Parser.
	Parser discovery.Parser
	// BuiltinFolder overrides the folder of scripts shipped with rproc.
	BuiltinFolder string
}

// RProvider exposes R scripts as processing algorithms.
type RProvider struct {
	Base

	opts   Options
	icons  icons.Resolver
	loader *discovery.Loader

	mu                    sync.Mutex
	interpreterRegistered bool

	algs atomic.Pointer[[]*rscript.Algorithm]
}

// New returns an R provider. Nothing is registered or loaded until
// InitializeSettings and LoadAlgorithms are called.
func New(store config.Store, logger processinglog.Logger, resolver icons.Resolver, opts Options) *RProvider {
	parser := opts.Parser
	if parser == nil {
		parser = rscript.Parser{}
	}
	p := &RProvider{
		Base:   NewBase(ID, store),
		opts:   opts,
		icons:  resolver,
		loader: discovery.NewLoader(parser, logger),
	}
	empty := []*rscript.Algorithm{}
	p.algs.Store(&empty)
	return p
}

// ID returns "r".
func (p *RProvider) ID() string { return ID }

// Name returns "R scripts".
func (p *RProvider) Name() string { return Name }

// Icon resolves the provider icon.
func (p *RProvider) Icon() (icons.Icon, error) {
	if p.icons == nil {
		return icons.Icon{}, fmt.Errorf("resolving %s: %w", IconName, icons.ErrNotFound)
	}
	return p.icons.Resolve(IconName)
}

// SVGIconPath returns the path of the provider icon, or "" when it cannot
// be resolved.
func (p *RProvider) SVGIconPath() string {
	icon, err := p.Icon()
	if err != nil {
		return ""
	}
	return icon.Path
}

// InitializeSettings registers the provider's settings with the store.
func (p *RProvider) InitializeSettings() {
	p.Base.InitializeSettings(SettingsGroup)
	store := p.Store()
	store.AddSetting(config.Setting{
		Group:       SettingsGroup,
		Name:        rutils.ScriptsFolderSetting,
		Description: "R Scripts folder",
		Default:     rutils.DefaultScriptsFolder(),
		ValueType:   config.TypeMultipleFolders,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opts.InterpreterSettings {
		return
	}
	store.AddSetting(config.Setting{
		Group:       SettingsGroup,
		Name:        rutils.FolderSetting,
		Description: "R folder",
		Default:     "",
		ValueType:   config.TypeFolder,
	})
	store.AddSetting(config.Setting{
		Group:       SettingsGroup,
		Name:        rutils.LibsUserSetting,
		Description: "R user library folder",
		Default:     rutils.DefaultLibsFolder(),
		ValueType:   config.TypeFolder,
	})
	store.AddSetting(config.Setting{
		Group:       SettingsGroup,
		Name:        rutils.Use64Setting,
		Description: "Use 64 bit version",
		Default:     false,
		ValueType:   config.TypeBool,
	})
	p.interpreterRegistered = true
}

// Unload removes the settings registered by InitializeSettings.
func (p *RProvider) Unload() {
	p.Base.Unload()
	store := p.Store()
	store.RemoveSetting(rutils.ScriptsFolderSetting)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.interpreterRegistered {
		return
	}
	store.RemoveSetting(rutils.FolderSetting)
	store.RemoveSetting(rutils.LibsUserSetting)
	store.RemoveSetting(rutils.Use64Setting)
	p.interpreterRegistered = false
}

// Folders returns the folders searched for scripts: the user folders
// followed by the built-in folder.
func (p *RProvider) Folders() discovery.FolderSet {
	builtin := p.opts.BuiltinFolder
	if builtin == "" {
		builtin = rutils.BuiltinScriptsFolder()
	}
	return discovery.FolderSet{
		User:    rutils.ScriptsFolders(p.Store()),
		Builtin: builtin,
	}
}

// LoadAlgorithms rediscovers the scripts and replaces the algorithm list.
func (p *RProvider) LoadAlgorithms() {
	algs := p.loader.Discover(p.Folders().Folders())
	p.algs.Store(&algs)
}

// Algorithms returns the list produced by the latest LoadAlgorithms call.
// The returned slice must not be modified.
func (p *RProvider) Algorithms() []*rscript.Algorithm {
	return *p.algs.Load()
}

// InterpreterSettings reports whether the R interpreter is located through
// the R_FOLDER settings rather than PATH.
func (p *RProvider) InterpreterSettings() bool { return p.opts.InterpreterSettings }

// Suffix returns the script file suffix the provider loads.
func (p *RProvider) Suffix() string { return p.loader.Suffix() }
