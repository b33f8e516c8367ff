package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/sky-health/internal/version"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommandText(t *testing.T) {
	prev := version.Commit
	version.Commit = "abc123"
	t.Cleanup(func() { version.Commit = prev })
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SKY_HEALTH_CONFIG", cfgPath)

	out := runVersion(t)

	assert.Contains(t, out, "sky-health v"+version.Version+"\n")
	assert.Contains(t, out, "  commit    abc123\n")
	assert.Contains(t, out, "  go        "+runtime.Version()+"\n")
	assert.Contains(t, out, "  config    "+cfgPath+"\n")
	assert.NotContains(t, out, "built")
}

func TestVersionCommandJSON(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SKY_HEALTH_CONFIG", cfgPath)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(runVersion(t, "--json")), &info))

	assert.Equal(t, version.Version, info["version"])
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info["platform"])
	assert.Equal(t, cfgPath, info["config"])
	_, hasDate := info["build_date"]
	assert.False(t, hasDate)
}
