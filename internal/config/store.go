package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/spf13/viper"
)

// ValueType describes how a setting value is edited and interpreted.
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
	TypeFolder
	TypeMultipleFolders
	TypeFile
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeFolder:
		return "folder"
	case TypeMultipleFolders:
		return "multiple folders"
	case TypeFile:
		return "file"
	default:
		return "string"
	}
}

// FolderSeparator joins the entries of a multiple-folders setting.
const FolderSeparator = ";"

// Setting is a named, typed setting owned by a provider.
type Setting struct {
	Group       string
	Name        string
	Description string
	Default     any
	ValueType   ValueType
}

// Store registers settings and resolves their current values.
type Store interface {
	AddSetting(s Setting)
	RemoveSetting(name string)
	Setting(name string) (Setting, bool)
	Settings() []Setting
	Value(name string) any
	SetValue(name string, value any) error
}

// ViperStore is a Store persisted in a YAML file through viper. Values can
// be overridden with <PREFIX>_<NAME> environment variables.
type ViperStore struct {
	mu       sync.RWMutex
	v        *viper.Viper
	path     string
	settings map[string]Setting
	order    []string
}

// NewStore reads the config file at path if it exists. An empty path uses
// FilePath().
func NewStore(path string) *ViperStore {
	if path == "" {
		path = FilePath()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()

	return &ViperStore{
		v:        v,
		path:     path,
		settings: make(map[string]Setting),
	}
}

func key(name string) string { return strings.ToLower(name) }

// AddSetting registers s, replacing any previous setting with the same name.
func (s *ViperStore) AddSetting(st Setting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(st.Name)
	if _, ok := s.settings[k]; !ok {
		s.order = append(s.order, k)
	}
	s.settings[k] = st
}

// RemoveSetting deregisters a setting. Its persisted value is kept.
func (s *ViperStore) RemoveSetting(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(name)
	if _, ok := s.settings[k]; !ok {
		return
	}
	delete(s.settings, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Setting returns the registered setting called name.
func (s *ViperStore) Setting(name string) (Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[key(name)]
	return st, ok
}

// Settings returns the registered settings in registration order.
func (s *ViperStore) Settings() []Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Setting, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.settings[k])
	}
	return out
}

// Value returns the persisted or environment value of name, falling back to
// the registered default. Unregistered, unset names yield nil.
func (s *ViperStore) Value(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key(name)
	st, registered := s.settings[k]
	if !s.v.IsSet(k) {
		if registered {
			return st.Default
		}
		return nil
	}
	if registered && st.ValueType == TypeBool {
		return s.v.GetBool(k)
	}
	if registered {
		return s.v.GetString(k)
	}
	return s.v.Get(k)
}

// SetValue persists value for name in the config file.
func (s *ViperStore) SetValue(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	s.v.Set(key(name), value)

	// Create the file if it doesn't exist.
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", s.path, err)
		}
		f.Close()
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// String returns the value of name formatted as a string.
func String(s Store, name string) string {
	v := s.Value(name)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Bool returns the value of name as a bool. Strings such as "true" and "1"
// are accepted.
func Bool(s Store, name string) bool {
	switch v := s.Value(name).(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		}
	}
	return false
}

// SplitFolders splits a multiple-folders value into its non-empty entries.
func SplitFolders(value string) []string {
	var out []string
	for _, part := range strings.Split(value, FolderSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
