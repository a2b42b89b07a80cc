package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/props"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAddr, "")
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module github.com/acme/markets-live/v2\n\ngo 1.24\n")

	resolved, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "github.com/acme/markets-live/v2", resolved.ModulePath)
	assert.Equal(t, "markets-live", resolved.Page.ID)
	assert.Equal(t, grid.DefaultColspan, resolved.Page.BodyColspan)
	assert.Equal(t, grid.DefaultColspan, resolved.Page.HeaderColspan)
	assert.Equal(t, DefaultAddr, resolved.Addr)
	assert.Nil(t, resolved.Page.Ads)
}

func TestResolveWithoutModule(t *testing.T) {
	t.Setenv(EnvConfig, "")
	dir := filepath.Join(t.TempDir(), "brexit-tracker")
	require.NoError(t, os.Mkdir(dir, 0o755))

	resolved, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "", resolved.ModulePath)
	assert.Equal(t, "brexit-tracker", resolved.Page.ID)
}

func TestResolveFile(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
page:
  id: a1
  flags:
    ads: true
    header: true
  ads:
    gptSite: x.com
    gptZone: world
    dfpTargeting: t1
  defaultContainer: false
  bodyColspan: 12 L10
  props:
    headline: Rates rise
  content:
    - type: paragraph
      text: Hello
    - type: slot
      name: mpu
server:
  addr: ":7000"
`)

	resolved, err := Resolve(dir, "")
	require.NoError(t, err)
	page := resolved.Page
	assert.Equal(t, "a1", page.ID)
	assert.True(t, page.Flags.Enabled(props.FlagAds))
	require.NotNil(t, page.Ads)
	assert.Equal(t, "x.com", page.Ads.GPTSite)
	assert.Equal(t, ads.String("world"), page.Ads.GPTZone)
	assert.Equal(t, ads.String("t1"), page.Ads.DFPTargeting)
	require.NotNil(t, page.DefaultContainer)
	assert.False(t, *page.DefaultContainer)
	assert.Equal(t, "12 L10", page.BodyColspan)
	assert.Equal(t, "Rates rise", page.Props["headline"])
	assert.Len(t, page.Content, 2)
	assert.Equal(t, "127.0.0.1:9000", resolved.Addr, "environment overrides the file")
}

func TestResolveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "other.yaml", "page:\n  id: other\n")
	t.Setenv(EnvConfig, path)

	resolved, err := Resolve(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "other", resolved.Page.ID)

	_, err = Resolve(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown flag", "page:\n  flags:\n    adz: true\n"},
		{"bad colspan", "page:\n  bodyColspan: S99\n"},
		{"unnamed slot", "page:\n  content:\n    - type: slot\n"},
		{"unknown block", "page:\n  content:\n    - type: video\n"},
		{"nested block", "page:\n  content:\n    - type: container\n      content:\n        - type: video\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.yaml)
			_, err := LoadOptional(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnv(dir), "a missing .env is fine")

	t.Setenv("PAGELAYOUT_TEST_VALUE", "")
	os.Unsetenv("PAGELAYOUT_TEST_VALUE")
	writeFile(t, dir, ".env", "PAGELAYOUT_TEST_VALUE=from-file\n")
	require.NoError(t, LoadEnv(dir))
	assert.Equal(t, "from-file", os.Getenv("PAGELAYOUT_TEST_VALUE"))
}

func TestDefaultID(t *testing.T) {
	assert.Equal(t, "site", DefaultID("example.com/site", "/tmp/x"))
	assert.Equal(t, "x", DefaultID("", "/tmp/x"))
	assert.Equal(t, "page", DefaultID("", "/"))
}
