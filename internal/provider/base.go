package provider

import (
	"strings"

	"github.com/rproc-labs/rproc/internal/config"
)

// ActivatePrefix prefixes the activation setting every provider registers.
const ActivatePrefix = "ACTIVATE_"

// Base carries the behaviour shared by all providers: the activation setting.
type Base struct {
	id    string
	store config.Store
}

// NewBase returns a Base for the provider id backed by store.
func NewBase(id string, store config.Store) Base {
	return Base{id: id, store: store}
}

// ActivateSetting returns the name of the provider's activation setting.
func (b *Base) ActivateSetting() string {
	return ActivatePrefix + strings.ToUpper(b.id)
}

// InitializeSettings registers the activation setting. Providers start
// deactivated.
func (b *Base) InitializeSettings(group string) {
	b.store.AddSetting(config.Setting{
		Group:       group,
		Name:        b.ActivateSetting(),
		Description: "Activate",
		Default:     false,
		ValueType:   config.TypeBool,
	})
}

// Unload removes the activation setting.
func (b *Base) Unload() {
	b.store.RemoveSetting(b.ActivateSetting())
}

// Active reports whether the provider has been activated.
func (b *Base) Active() bool {
	return config.Bool(b.store, b.ActivateSetting())
}

// Store returns the settings store the provider was created with.
func (b *Base) Store() config.Store { return b.store }
