package organize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlattenDepth(t *testing.T) {
	tests := []struct {
		input    string
		expected FlattenDepth
		wantErr  bool
	}{
		{"", FlattenNone, false},
		{"none", FlattenNone, false},
		{"1", FlattenOne, false},
		{"one", FlattenOne, false},
		{"ALL", FlattenAll, false},
		{" all ", FlattenAll, false},
		{"2", FlattenNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFlattenDepth(tt.input)
			if tt.wantErr {
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFlattenDepthString(t *testing.T) {
	assert.Equal(t, "none", FlattenNone.String())
	assert.Equal(t, "one", FlattenOne.String())
	assert.Equal(t, "all", FlattenAll.String())
}

func buildTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}
}

func TestFlatten_One(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, map[string]string{
		"top.txt":          "top",
		"hw/hw/main.c":     "nested same name",
		"hw/README":        "readme",
		"other/deep/x/y.c": "y",
	})

	require.NoError(t, Flatten(root, FlattenOne))

	assert.ElementsMatch(t, []string{"top.txt", "hw/main.c", "README", "deep/x/y.c"}, listFiles(t, root))
}

func TestFlatten_All(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, map[string]string{
		"top.txt":          "top",
		"a/b/c/deep.c":     "deep",
		"a/shallow.c":      "shallow",
		"other/deep/x/y.c": "y",
	})

	require.NoError(t, Flatten(root, FlattenAll))

	assert.ElementsMatch(t, []string{"top.txt", "deep.c", "shallow.c", "y.c"}, listFiles(t, root))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "%s should have been removed", e.Name())
	}
}

func TestFlatten_CollisionsOverwrite(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, map[string]string{
		"main.c":   "root",
		"a/main.c": "from a",
	})

	require.NoError(t, Flatten(root, FlattenAll))

	assert.Equal(t, []string{"main.c"}, listFiles(t, root))
	assert.Equal(t, "from a", readFile(t, filepath.Join(root, "main.c")))
}

func TestFlatten_None(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, map[string]string{"a/b.c": "b"})

	require.NoError(t, Flatten(root, FlattenNone))

	assert.Equal(t, []string{"a/b.c"}, listFiles(t, root))
}
