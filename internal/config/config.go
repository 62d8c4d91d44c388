package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/imgajeed76/datagrid/internal/util"
)

// Config represents the global datagrid config.toml
type Config struct {
	Display DisplayConfig `toml:"display"`
	Source  SourceConfig  `toml:"source"`
	Log     LogConfig     `toml:"log"`
}

// DisplayConfig contains table presentation settings
type DisplayConfig struct {
	PageSize int    `toml:"page_size" config:"display.page_size" default:"50" min:"0" max:"100000" desc:"Rows per page (0 = no paging)"`
	Mode     string `toml:"mode" config:"display.mode" default:"sticky" enum:"standard,sticky,compact" desc:"Table presentation mode"`
	ColWidth int    `toml:"col_width" config:"display.col_width" default:"20" min:"3" max:"500" desc:"Default column width in the interactive view"`
	FoldCase bool   `toml:"fold_case" config:"display.fold_case" default:"false" desc:"Sort text case-insensitively"`
	NoColor  bool   `toml:"no_color" config:"display.no_color" default:"false" desc:"Disable colored output"`
}

// SourceConfig contains settings for loading rows
type SourceConfig struct {
	IDColumn     string `toml:"id_column" config:"source.id_column" desc:"Column used as row identifier (empty = generated)"`
	CSVDelimiter string `toml:"csv_delimiter" config:"source.csv_delimiter" default:"," desc:"Field delimiter for .csv files"`
	QueryTimeout int    `toml:"query_timeout" config:"source.query_timeout" default:"60" min:"1" max:"3600" desc:"SQL query timeout in seconds"`
}

// LogConfig controls the diagnostic log. The interactive view owns the
// terminal, so logs only ever go to a file.
type LogConfig struct {
	Level      string `toml:"level" config:"log.level" default:"info" enum:"debug,info,warn,error" desc:"Log level"`
	Format     string `toml:"format" config:"log.format" default:"json" enum:"json,console" desc:"Log encoding"`
	Filename   string `toml:"filename" config:"log.filename" desc:"Log file (empty = logging off)"`
	MaxSize    int    `toml:"max_size" config:"log.max_size" default:"10" min:"1" max:"1024" desc:"Megabytes before the log rotates"`
	MaxDays    int    `toml:"max_days" config:"log.max_days" default:"7" min:"0" max:"365" desc:"Days to keep rotated logs"`
	MaxBackups int    `toml:"max_backups" config:"log.max_backups" default:"3" min:"0" max:"100" desc:"Rotated logs to keep"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			PageSize: 50,
			Mode:     "sticky",
			ColWidth: 20,
		},
		Source: SourceConfig{
			CSVDelimiter: ",",
			QueryTimeout: 60,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSize:    10,
			MaxDays:    7,
			MaxBackups: 3,
		},
	}
}

// Path returns the path to the global config file
func Path() string {
	if p := os.Getenv("DATAGRID_CONFIG"); p != "" {
		return util.ExpandHome(p)
	}
	return filepath.Join(util.ConfigDir(), util.ConfigFile)
}

// Load reads the global config file, using defaults if it doesn't exist,
// and applies environment overrides. Use LoadFrom when the result is going
// to be saved back.
func Load() (*Config, error) {
	cfg, err := LoadFrom(Path())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFrom reads the config file at path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills values that were left empty in the file
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	// NOTE: PageSize is NOT defaulted here because 0 is a valid value
	// (paging disabled). MaxDays and MaxBackups likewise.
	if c.Display.Mode == "" {
		c.Display.Mode = defaults.Display.Mode
	}
	if c.Display.ColWidth == 0 {
		c.Display.ColWidth = defaults.Display.ColWidth
	}
	if c.Source.CSVDelimiter == "" {
		c.Source.CSVDelimiter = defaults.Source.CSVDelimiter
	}
	if c.Source.QueryTimeout == 0 {
		c.Source.QueryTimeout = defaults.Source.QueryTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = defaults.Log.MaxSize
	}
}

// applyEnv lets the environment override the file
func (c *Config) applyEnv() {
	if v := os.Getenv("DATAGRID_LOG_FILE"); v != "" {
		c.Log.Filename = v
	}
	if v := os.Getenv("DATAGRID_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("DATAGRID_NO_COLOR") != "" {
		c.Display.NoColor = true
	}
	c.Log.Filename = util.ExpandHome(c.Log.Filename)
}

// Save writes the config file to the default path
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config file to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
