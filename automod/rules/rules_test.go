package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerReloadOrdering(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20-spam.txt"), []byte("no spam"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-basics.txt"), []byte("be kind"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts"), 0o755))

	m := NewManager(nil, dir)
	assert.Empty(m.GetRules())

	assert.NoError(m.Reload())
	assert.Equal([]string{"be kind", "no spam"}, m.GetRules())
}

func TestManagerMissingDirKeepsSnapshot(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.txt"), []byte("one rule"), 0o644))

	m := NewManager(nil, dir)
	assert.NoError(m.Reload())
	assert.Equal([]string{"one rule"}, m.GetRules())

	m.Dir = filepath.Join(dir, "does-not-exist")
	assert.NoError(m.Reload())
	assert.Equal([]string{"one rule"}, m.GetRules())
}
