package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle               = "Liveblog"
	DefaultSponsorshipSlug     = "sponsorship"
	DefaultSponsorshipContents = "This is the sponsorship post."
	DefaultAuthorName          = "Staff"
	DefaultHeadlines           = 3
	DefaultTimeout             = 30
)

func DefaultSettings() Settings {
	return Settings{
		Title: DefaultTitle,
		Sponsorship: SponsorshipSettings{
			Position: SponsorshipDisabled,
			Slug:     DefaultSponsorshipSlug,
			Contents: DefaultSponsorshipContents,
		},
		Authors: AuthorSettings{
			DefaultName: DefaultAuthorName,
		},
		Headlines: DefaultHeadlines,
		Timeout:   DefaultTimeout,
	}
}

// SettingsCache holds the editorial settings read from a YAML file. A missing
// file means defaults; a present but invalid file is an error and keeps the
// previously loaded settings in effect.
type SettingsCache struct {
	path     string
	settings Settings
	mu       sync.RWMutex
}

func NewSettingsCache(path string) *SettingsCache {
	return &SettingsCache{
		path:     path,
		settings: DefaultSettings(),
	}
}

func (sc *SettingsCache) Run() error {
	settings, err := sc.LoadSettings()
	if err != nil {
		return err
	}

	slog.Debug("Settings loaded",
		"name", settings.Name,
		"sponsorship_position", settings.Sponsorship.Position,
		"headline_posts", settings.Headlines,
		"timeout", settings.Timeout)
	return nil
}

func (sc *SettingsCache) LoadSettings() (*Settings, error) {
	settings, err := sc.parseSettings()
	if err != nil {
		return nil, err
	}

	if err := sc.validateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", sc.path, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.settings = *settings

	return settings, nil
}

// GetSettings returns a copy of the settings in effect.
func (sc *SettingsCache) GetSettings() Settings {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.settings
}

func (sc *SettingsCache) parseSettings() (*Settings, error) {
	settings := DefaultSettings()
	if sc.path == "" {
		return &settings, nil
	}

	data, err := os.ReadFile(sc.path)
	if os.IsNotExist(err) {
		slog.Warn("Settings file not found, using defaults", "path", sc.path)
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Unset keys keep the defaults filled in above
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Base(sc.path)
	settings.Name = strings.TrimSuffix(base, filepath.Ext(base))

	if settings.Sponsorship.Slug == "" {
		settings.Sponsorship.Slug = DefaultSponsorshipSlug
	}
	if settings.Title == "" {
		settings.Title = DefaultTitle
	}
	if settings.Authors.DefaultName == "" {
		settings.Authors.DefaultName = DefaultAuthorName
	}
	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	return &settings, nil
}

func (sc *SettingsCache) validateSettings(settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("settings is nil")
	}

	if settings.Sponsorship.Position < SponsorshipDisabled {
		return fmt.Errorf("sponsorship position must be %d or greater", SponsorshipDisabled)
	}

	nonNegativeFields := map[string]int{
		"headline posts": settings.Headlines,
		"timeout":        settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
