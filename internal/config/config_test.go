package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 64*datasize.MB, cfg.MaxInputSize)
	assert.True(t, cfg.ConnectInnerClasses)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "jdeser.yaml", `
max_input_size: 1MB
connect_inner_classes: false
output: yaml
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, datasize.MB, cfg.MaxInputSize)
	assert.False(t, cfg.ConnectInnerClasses)
	assert.Equal(t, OutputYAML, cfg.Output)
	assert.Equal(t, 2, cfg.Indent)
	assert.Equal(t, ColorAuto, cfg.Color)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "jdeser.json", `{"indent": 4, "color": "never"}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, OutputJSON, cfg.Output)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	for name, content := range map[string]string{
		"output.json": `{"output": "xml"}`,
		"color.json":  `{"color": "sometimes"}`,
		"indent.json": `{"indent": -1}`,
		"level.json":  `{"log_level": "loud"}`,
		"broken.json": `{"indent": `,
		"broken.yaml": "output: [",
	} {
		_, err := Load(writeFile(t, name, content))
		assert.Error(t, err, name)
	}
}
