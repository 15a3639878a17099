package icons

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed themes
var embedded embed.FS

// DefaultTheme is the fallback theme name.
const DefaultTheme = "default"

// ErrNotFound is returned when no theme provides the requested icon.
var ErrNotFound = errors.New("icon not found")

// Icon is a resolved icon resource.
type Icon struct {
	Name  string
	Theme string
	// Path is the filesystem path of the icon, or an "embedded:" URI when the
	// icon comes from the binary.
	Path string
	Data []byte
}

// Embedded reports whether the icon was served from the binary.
func (i Icon) Embedded() bool {
	return strings.HasPrefix(i.Path, embeddedScheme)
}

const embeddedScheme = "embedded:"

// Resolver resolves a symbolic icon name to a themed resource.
type Resolver interface {
	Resolve(name string) (Icon, error)
}

// ThemeResolver looks icons up under <Dir>/<Theme>/<name>.
type ThemeResolver struct {
	Dir   string
	Theme string
}

// NewThemeResolver returns a resolver for theme under dir. An empty theme
// selects DefaultTheme; an empty dir only serves embedded icons.
func NewThemeResolver(dir, theme string) *ThemeResolver {
	if theme == "" {
		theme = DefaultTheme
	}
	return &ThemeResolver{Dir: dir, Theme: theme}
}

// Resolve implements Resolver. A leading "/" in name is ignored so host
// style names such as "/providerR.svg" work.
func (r *ThemeResolver) Resolve(name string) (Icon, error) {
	name = path.Clean("/" + name)[1:]
	if name == "" || name == "." {
		return Icon{}, fmt.Errorf("resolving icon: empty name: %w", ErrNotFound)
	}

	themes := []string{r.Theme}
	if r.Theme != DefaultTheme {
		themes = append(themes, DefaultTheme)
	}

	if r.Dir != "" {
		for _, theme := range themes {
			p := filepath.Join(r.Dir, theme, filepath.FromSlash(name))
			data, err := os.ReadFile(p)
			if err == nil {
				return Icon{Name: name, Theme: theme, Path: p, Data: data}, nil
			}
		}
	}

	for _, theme := range themes {
		p := path.Join("themes", theme, name)
		data, err := fs.ReadFile(embedded, p)
		if err == nil {
			return Icon{Name: name, Theme: theme, Path: embeddedScheme + p, Data: data}, nil
		}
	}

	return Icon{}, fmt.Errorf("resolving icon %q: %w", name, ErrNotFound)
}
