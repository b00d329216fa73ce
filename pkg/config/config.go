// Package config resolves logical database ids to connection options.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/rejonpardenilla/minderal/pkg/store"
)

const (
	// DefaultDatabase is used when no database id is given.
	DefaultDatabase = "default"
	defaultPath     = "~/.minderal.db"
	envPrefix       = "MINDERAL"
	// EnvConfigPath names a directory searched first for .minderal.yaml.
	EnvConfigPath   = "MINDERAL_CONFIG_PATH"
)

// ErrUnknownDatabase is returned when an id cannot be resolved.
var ErrUnknownDatabase = errors.New("config: unknown database")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ConnectionInfo is the result of resolving a database id.
type ConnectionInfo struct {
	ID      string        `json:"id"`
	Options store.Options `json:"connectionOptions"`
}

// Provider resolves database ids to connection info.
type Provider interface {
	ConnectionInfo(ctx context.Context, databaseID string) (ConnectionInfo, error)
}

// Static is a map backed Provider, handy for tests and embedding.
type Static map[string]store.Options

func (s Static) ConnectionInfo(_ context.Context, databaseID string) (ConnectionInfo, error) {
	opts, ok := s[databaseID]
	if !ok {
		return ConnectionInfo{}, fmt.Errorf("%w: %q", ErrUnknownDatabase, databaseID)
	}
	return ConnectionInfo{ID: databaseID, Options: opts}, nil
}

// File resolves ids from the `databases` section of the config file. Ids
// missing from the file map to a diskv directory below BasePath.
type File struct {
	BasePath  string
	Databases map[string]store.Options
	// Source is the config file that was read, if any.
	Source string
}

// Load reads .minderal.yaml from $MINDERAL_CONFIG_PATH, the working
// directory or $HOME, with MINDERAL_* environment overrides.
func Load() (*File, error) {
	v := viper.New()
	v.SetDefault("path", defaultPath)
	v.SetConfigName(".minderal") // .yaml is implicit
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if override := os.Getenv(EnvConfigPath); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*File, error) {
	base, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	f := &File{
		BasePath:  base,
		Databases: map[string]store.Options{},
		Source:    v.ConfigFileUsed(),
	}
	if err := v.UnmarshalKey("databases", &f.Databases); err != nil {
		return nil, fmt.Errorf("config: decode databases: %w", err)
	}
	return f, nil
}

func (f *File) ConnectionInfo(_ context.Context, databaseID string) (ConnectionInfo, error) {
	if opts, ok := f.Databases[databaseID]; ok {
		if opts.URL == "" {
			return ConnectionInfo{}, fmt.Errorf("%w: %q has no url", ErrUnknownDatabase, databaseID)
		}
		return ConnectionInfo{ID: databaseID, Options: opts}, nil
	}
	if !validID.MatchString(databaseID) {
		return ConnectionInfo{}, fmt.Errorf("%w: %q", ErrUnknownDatabase, databaseID)
	}
	if f.BasePath == "" {
		return ConnectionInfo{}, fmt.Errorf("%w: %q and no base path configured", ErrUnknownDatabase, databaseID)
	}
	return ConnectionInfo{
		ID:      databaseID,
		Options: store.Options{URL: "diskv://" + filepath.Join(f.BasePath, databaseID)},
	}, nil
}

// IDs lists the databases named in the config file.
func (f *File) IDs() []string {
	ids := make([]string, 0, len(f.Databases))
	for id := range f.Databases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
