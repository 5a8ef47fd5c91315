package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floorplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, store.DemoEventID, cfg.App.EventID)
	assert.Equal(t, exhibition.ModeOrganizer, cfg.Mode())
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, hittest.DefaultGeometry(), cfg.Geometry())
	assert.Equal(t, 5.0, cfg.Canvas.MinBoxSize)
	assert.Equal(t, 1.2, cfg.Canvas.ZoomFactor)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadWithPath(t *testing.T) {
	path := writeConfig(t, `
app:
  mode: visitor
store:
  driver: sqlite
  path: /tmp/floorplan.db
canvas:
  marker_style: pin
  pin_size: 16
ai:
  provider: openai
  api_key: sk-test
  timeout: 5s
`)
	cfg, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, exhibition.ModeVisitor, cfg.Mode())
	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, hittest.Geometry{Style: hittest.StylePin, Radius: 16, Multiplier: 2.5}, cfg.Geometry())
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "app:\n  mode: visitor\n")
	t.Setenv("FLOORPLAN_APP_MODE", "customer")
	t.Setenv("FLOORPLAN_CANVAS_MARKER_STYLE", "box")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, exhibition.ModeCustomer, cfg.Mode())
	assert.Equal(t, hittest.StyleBox, cfg.Geometry().Style)
}

func TestValidate(t *testing.T) {
	for name, body := range map[string]string{
		"mode":       "app:\n  mode: admin\n",
		"driver":     "store:\n  driver: redis\n",
		"path":       "store:\n  driver: file\n",
		"style":      "canvas:\n  marker_style: star\n",
		"pin size":   "canvas:\n  pin_size: 0\n",
		"multiplier": "canvas:\n  hit_multiplier: 0.5\n",
		"zoom":       "canvas:\n  zoom_factor: 1\n",
		"provider":   "ai:\n  provider: llama\n",
		"api key":    "ai:\n  provider: openai\n",
		"field key":  "stalls:\n  fields:\n    - label: Company\n",
		"field type": "stalls:\n  fields:\n    - key: c\n      type: date\n",
		"duplicate":  "stalls:\n  fields:\n    - key: c\n    - key: c\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithPath(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithMissingPath(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStallSchemaAndTooltip(t *testing.T) {
	path := writeConfig(t, `
stalls:
  require_number: true
  fields:
    - key: company
      label: Company
      required: true
    - key: price
      label: Price
      type: number
    - key: notes
  tooltip:
    - key: company
      label: Company
    - key: price
      label: Price
`)
	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	schema := cfg.Schema()
	assert.True(t, schema.RequireNumber)
	require.Len(t, schema.Fields, 3)
	assert.True(t, schema.Fields[0].Required)
	assert.Equal(t, exhibition.FieldNumber, schema.Fields[1].Type)
	assert.Equal(t, "notes", schema.Fields[2].Label)
	assert.Equal(t, exhibition.FieldText, schema.Fields[2].Type)
	assert.False(t, schema.ShowBaseFields())

	require.Len(t, cfg.Stalls.Tooltip, 2)
	assert.Equal(t, "price", cfg.Stalls.Tooltip[1].Key)
}

func TestDefaultSchema(t *testing.T) {
	cfg, err := LoadWithPath(writeConfig(t, "app:\n  mode: visitor\n"))
	require.NoError(t, err)
	assert.Equal(t, exhibition.DefaultSchema(), cfg.Schema())
	assert.Empty(t, cfg.Stalls.Tooltip)
}
