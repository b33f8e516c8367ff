package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, "/etc/sky-health.yaml", ExpandHome("/etc/sky-health.yaml"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".sky-health", "config.yaml"), ExpandHome("~/.sky-health/config.yaml"))
	assert.Equal(t, filepath.Join("conf", "x.yaml"), ExpandHome("./conf//x.yaml"))
}
