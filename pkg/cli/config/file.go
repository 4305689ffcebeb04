package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/usecase"
)

// File is the optional TOML configuration file. Flag-backed settings map to
// environment variables so the flag layer keeps its precedence: flag over
// environment over file over built-in default. Scoring weights have no flag
// and apply directly.
type File struct {
	OutputDir   string          `toml:"output_dir"`
	Marketplace FileMarketplace `toml:"marketplace"`
	Retry       FileRetry       `toml:"retry"`
	Scoring     FileScoring     `toml:"scoring"`
	Log         FileLog         `toml:"log"`
}

// FileMarketplace is the [marketplace] table.
type FileMarketplace struct {
	Endpoint        string `toml:"endpoint"`
	SearchTimeout   string `toml:"search_timeout"`
	TransferTimeout string `toml:"transfer_timeout"`
	PageSize        int    `toml:"page_size"`
}

// FileRetry is the [retry] table.
type FileRetry struct {
	Attempts  int    `toml:"attempts"`
	BaseDelay string `toml:"base_delay"`
}

// FileScoring is the [scoring] table. Unset components keep their default
// weight.
type FileScoring struct {
	NameWeight       float64 `toml:"name_weight"`
	PopularityWeight float64 `toml:"popularity_weight"`
	RatingWeight     float64 `toml:"rating_weight"`
	RecencyWeight    float64 `toml:"recency_weight"`
}

// FileLog is the [log] table.
type FileLog struct {
	Level   string `toml:"level"`
	File    string `toml:"file"`
	MaxSize int    `toml:"max_size"`
	Backups int    `toml:"backups"`
}

// DefaultPath returns the well-known config file location, or an empty
// string when the user config directory cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, types.AppName, "config.toml")
}

// Load reads a TOML config file. With an empty path the default location is
// tried and a missing file is not an error; an explicitly given path must
// exist.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return &File{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &File{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read config file",
			goerr.T(types.TagValidation), goerr.V("path", path))
	}

	var f File
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.T(types.TagValidation), goerr.V("path", path))
	}
	return &f, nil
}

// Environ returns the flag-backed settings as environment variable values,
// omitting unset fields.
func (f *File) Environ() map[string]string {
	env := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			env[key] = value
		}
	}
	setInt := func(key string, value int) {
		if value > 0 {
			env[key] = strconv.Itoa(value)
		}
	}

	set("VSGET_OUTPUT_DIR", f.OutputDir)
	set("VSGET_ENDPOINT", f.Marketplace.Endpoint)
	set("VSGET_SEARCH_TIMEOUT", f.Marketplace.SearchTimeout)
	set("VSGET_TRANSFER_TIMEOUT", f.Marketplace.TransferTimeout)
	setInt("VSGET_PAGE_SIZE", f.Marketplace.PageSize)
	setInt("VSGET_RETRY_ATTEMPTS", f.Retry.Attempts)
	set("VSGET_RETRY_DELAY", f.Retry.BaseDelay)
	set("VSGET_LOG_LEVEL", f.Log.Level)
	set("VSGET_LOG_FILE", f.Log.File)
	setInt("VSGET_LOG_FILE_SIZE", f.Log.MaxSize)
	setInt("VSGET_LOG_FILE_BACKUPS", f.Log.Backups)
	return env
}

// ScoringWeights merges the [scoring] table over the default weights. The
// second return is false when the table is absent.
func (f *File) ScoringWeights() (usecase.Weights, bool) {
	s := f.Scoring
	if s.NameWeight <= 0 && s.PopularityWeight <= 0 && s.RatingWeight <= 0 && s.RecencyWeight <= 0 {
		return usecase.DefaultWeights, false
	}

	w := usecase.DefaultWeights
	if s.NameWeight > 0 {
		w.Name = s.NameWeight
	}
	if s.PopularityWeight > 0 {
		w.Popularity = s.PopularityWeight
	}
	if s.RatingWeight > 0 {
		w.Rating = s.RatingWeight
	}
	if s.RecencyWeight > 0 {
		w.Recency = s.RecencyWeight
	}
	return w, true
}
