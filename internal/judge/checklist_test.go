package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChecklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"relevance_checklist": {"evaluation_prompt": "rate RWA relevance"}}`), 0644))

	assert.Equal(t, "rate RWA relevance", LoadChecklist(path))
}

func TestLoadChecklistMissingFileIsEmpty(t *testing.T) {
	assert.Equal(t, "", LoadChecklist(filepath.Join(t.TempDir(), "nope.json")))
}

func TestLoadChecklistMalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

	assert.Equal(t, "", LoadChecklist(path))
}
