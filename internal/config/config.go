// Package config handles configuration loading for the AtlasView engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Collections CollectionsConfig `yaml:"collections"`
	Cache       CacheConfig       `yaml:"cache"`
	Viz         VizConfig         `yaml:"viz"`
	Render      RenderConfig      `yaml:"render"`
	History     HistoryConfig     `yaml:"history"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	Title       string   `yaml:"title"`
}

// CollectionConfig describes one montage collection: a directory of numbered
// montage spritesheets plus the position dataset files derived from them.
type CollectionConfig struct {
	MontageDir      string `yaml:"montage_dir"`
	MontageTemplate string `yaml:"montage_template"`
	TilesPerRow     int    `yaml:"tiles_per_row"`
	TileRows        int    `yaml:"tile_rows"`
	TileResolution  int    `yaml:"tile_resolution"`
	// Mode name -> dataset filename, relative to MontageDir.
	Datasets map[string]string `yaml:"datasets"`
}

// CollectionsConfig holds all configured collections, preserving YAML order so
// the first collection is the default.
type CollectionsConfig struct {
	Collections map[string]CollectionConfig
	Order       []string
	Default     string
}

// UnmarshalYAML preserves the declaration order of collections.
func (c *CollectionsConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("collections must be a mapping")
	}

	c.Collections = make(map[string]CollectionConfig)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var cc CollectionConfig
		if err := valNode.Decode(&cc); err != nil {
			return fmt.Errorf("collection %q: %w", keyNode.Value, err)
		}
		c.Collections[keyNode.Value] = cc
		c.Order = append(c.Order, keyNode.Value)
	}

	if len(c.Order) > 0 {
		c.Default = c.Order[0]
	}
	return nil
}

// IDs returns all collection IDs in config order.
func (c *CollectionsConfig) IDs() []string {
	return c.Order
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	TextureSizeMB     int `yaml:"texture_size_mb"`
	TextureTTLMinutes int `yaml:"texture_ttl_minutes"`
	PreviewEntries    int `yaml:"preview_entries"`
}

// VizConfig contains visualization defaults.
type VizConfig struct {
	DefaultMode     string  `yaml:"default_mode"`
	DefaultSpacing  float64 `yaml:"default_spacing"`
	SettleDelayMS   int     `yaml:"settle_delay_ms"`
	MaxMontageFiles int     `yaml:"max_montage_files"`
}

// RenderConfig contains preview rendering settings.
type RenderConfig struct {
	PreviewSize     int    `yaml:"preview_size"`
	DefaultColormap string `yaml:"default_colormap"`
}

// HistoryConfig contains load-cycle history settings.
type HistoryConfig struct {
	SQLitePath    string `yaml:"sqlite_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			Title:       "AtlasView",
		},
		Collections: CollectionsConfig{
			Collections: map[string]CollectionConfig{
				"default": DefaultCollection(),
			},
			Order:   []string{"default"},
			Default: "default",
		},
		Cache: CacheConfig{
			TextureSizeMB:     256,
			TextureTTLMinutes: 10,
			PreviewEntries:    64,
		},
		Viz: VizConfig{
			DefaultMode:     "3d",
			DefaultSpacing:  4.0,
			SettleDelayMS:   400,
			MaxMontageFiles: 20,
		},
		Render: RenderConfig{
			PreviewSize:     1024,
			DefaultColormap: "viridis",
		},
		History: HistoryConfig{
			SQLitePath:    "./data/load_cycles.sqlite",
			RetentionDays: 7,
		},
	}
}

// DefaultCollection returns the default collection layout, matching the
// offline pipeline's output contract.
func DefaultCollection() CollectionConfig {
	return CollectionConfig{
		MontageDir:      "./data/output",
		MontageTemplate: "montage_%d.png",
		TilesPerRow:     15,
		TileRows:        15,
		TileResolution:  128,
		Datasets: map[string]string{
			"3d":      "images_color_rgb.json",
			"2d":      "images_color_rgb_2D.json",
			"2d_grid": "images_color_rgb_2D.json",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = defaults.Server.Title
	}
	if len(cfg.Collections.Collections) == 0 {
		cfg.Collections = defaults.Collections
	}
	for id, cc := range cfg.Collections.Collections {
		dc := DefaultCollection()
		if cc.MontageTemplate == "" {
			cc.MontageTemplate = dc.MontageTemplate
		}
		if cc.TilesPerRow == 0 {
			cc.TilesPerRow = dc.TilesPerRow
		}
		if cc.TileRows == 0 {
			cc.TileRows = dc.TileRows
		}
		if cc.TileResolution == 0 {
			cc.TileResolution = dc.TileResolution
		}
		if len(cc.Datasets) == 0 {
			cc.Datasets = dc.Datasets
		}
		cfg.Collections.Collections[id] = cc
	}
	if cfg.Cache.TextureSizeMB == 0 {
		cfg.Cache.TextureSizeMB = defaults.Cache.TextureSizeMB
	}
	if cfg.Cache.TextureTTLMinutes == 0 {
		cfg.Cache.TextureTTLMinutes = defaults.Cache.TextureTTLMinutes
	}
	if cfg.Cache.PreviewEntries == 0 {
		cfg.Cache.PreviewEntries = defaults.Cache.PreviewEntries
	}
	if cfg.Viz.DefaultMode == "" {
		cfg.Viz.DefaultMode = defaults.Viz.DefaultMode
	}
	if cfg.Viz.DefaultSpacing == 0 {
		cfg.Viz.DefaultSpacing = defaults.Viz.DefaultSpacing
	}
	if cfg.Viz.SettleDelayMS == 0 {
		cfg.Viz.SettleDelayMS = defaults.Viz.SettleDelayMS
	}
	if cfg.Viz.MaxMontageFiles == 0 {
		cfg.Viz.MaxMontageFiles = defaults.Viz.MaxMontageFiles
	}
	if cfg.Render.PreviewSize == 0 {
		cfg.Render.PreviewSize = defaults.Render.PreviewSize
	}
	if cfg.Render.DefaultColormap == "" {
		cfg.Render.DefaultColormap = defaults.Render.DefaultColormap
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = defaults.History.SQLitePath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = defaults.History.RetentionDays
	}
}
