package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadURLList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# opportunities to refresh
https://org.lightning.force.com/lightning/r/Opportunity/006AAA000011aBc/view

https://org.lightning.force.com/lightning/r/Lead/00QAAA000011aBc/view
  # trailing comment
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	urls, err := readURLList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://org.lightning.force.com/lightning/r/Opportunity/006AAA000011aBc/view",
		"https://org.lightning.force.com/lightning/r/Lead/00QAAA000011aBc/view",
	}, urls)
}

func TestReadURLList_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := readURLList(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
