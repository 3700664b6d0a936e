package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"atlas/internal/viewer"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"ATLAS_CONFIG", "ATLAS_API_BASE", "ATLAS_LOCALE", "ATLAS_BREAKPOINT", "ATLAS_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("atlas-viewer", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load(flags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.APIBase)
	assert.Equal(t, viewer.DefaultIconBaseURL, c.IconBase)
	assert.Equal(t, viewer.DefaultBreakpoint, c.Breakpoint)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, language.English, c.LocaleTag())
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("api-base = \"http://file/api\"\nlocale = \"de\"\nbreakpoint = 900\n"), 0o644))
	t.Setenv("ATLAS_CONFIG", path)
	t.Setenv("ATLAS_LOCALE", "fr")

	c, err := Load(flags(t, "--breakpoint=1200", "--timeout=3s"))
	require.NoError(t, err)
	assert.Equal(t, "http://file/api", c.APIBase)
	assert.Equal(t, "fr", c.Locale, "env overrides file")
	assert.Equal(t, 1200, c.Breakpoint, "flag overrides file")
	assert.Equal(t, 3*time.Second, c.Timeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	_, err := Load(flags(t, "--locale=???"))
	assert.Error(t, err)

	_, err = Load(flags(t, "--api-base= "))
	assert.Error(t, err)

	_, err = Load(flags(t, "--config="+filepath.Join(t.TempDir(), "missing.toml")))
	assert.Error(t, err)
}

func TestLoadWithoutFlags(t *testing.T) {
	isolate(t)
	t.Setenv("ATLAS_API_BASE", "http://env/api")
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env/api", c.APIBase)
}
