package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejonpardenilla/minderal/pkg/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, "")
	t.Setenv("MINDERAL_PATH", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)
	os.Unsetenv("MINDERAL_PATH")

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".minderal.db"), f.BasePath)
	assert.Empty(t, f.IDs())

	info, err := f.ConnectionInfo(context.Background(), "notes")
	require.NoError(t, err)
	assert.Equal(t, "notes", info.ID)
	assert.Equal(t, "diskv://"+filepath.Join(home, ".minderal.db", "notes"), info.Options.URL)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	os.Unsetenv("MINDERAL_PATH")
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, dir)

	yaml := `
path: /srv/minderal
databases:
  work:
    url: sqlite:///srv/minderal/work.db
  shared:
    url: memory://
    username: alice
    password: secret
  broken:
    username: bob
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".minderal.yaml"), []byte(yaml), 0o644))

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/minderal", f.BasePath)
	assert.Equal(t, []string{"broken", "shared", "work"}, f.IDs())
	assert.Equal(t, filepath.Join(dir, ".minderal.yaml"), f.Source)

	ctx := context.Background()
	info, err := f.ConnectionInfo(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///srv/minderal/work.db", info.Options.URL)

	info, err = f.ConnectionInfo(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, store.Options{URL: "memory://", Username: "alice", Password: "secret"}, info.Options)

	_, err = f.ConnectionInfo(ctx, "broken")
	assert.ErrorIs(t, err, ErrUnknownDatabase)

	info, err = f.ConnectionInfo(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "diskv:///srv/minderal/other", info.Options.URL)
}

func TestEnvOverridesPath(t *testing.T) {
	isolate(t)
	t.Setenv("MINDERAL_PATH", "/tmp/elsewhere")

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", f.BasePath)
}

func TestConnectionInfoRejectsBadIDs(t *testing.T) {
	f := &File{BasePath: "/data", Databases: map[string]store.Options{}}
	for _, id := range []string{"", "../etc", "a/b", "with space"} {
		_, err := f.ConnectionInfo(context.Background(), id)
		assert.ErrorIs(t, err, ErrUnknownDatabase, id)
	}
}

func TestStatic(t *testing.T) {
	p := Static{"mem": {URL: "memory://"}}
	info, err := p.ConnectionInfo(context.Background(), "mem")
	require.NoError(t, err)
	assert.Equal(t, "memory://", info.Options.URL)

	_, err = p.ConnectionInfo(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownDatabase)
}
