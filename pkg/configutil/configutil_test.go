package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string   `json:"name"`
	Limit    int      `json:"limit"`
	Keywords []string `json:"keywords"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.json5"), []byte(`{
		// comments are allowed
		name: "default",
		limit: 10,
		keywords: ["csv"],
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.local.json5"), []byte(`{limit: 25}`), 0600))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "bot.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default", Limit: 25, Keywords: []string{"csv"}}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "bot.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitExt(t *testing.T) {
	table := []struct {
		input  string
		prefix string
		ext    string
	}{
		{input: "redditbot.json5", prefix: "redditbot", ext: "json5"},
		{input: "a.b.json", prefix: "a.b", ext: "json"},
		{input: "noext", prefix: "noext", ext: ""},
	}
	for _, row := range table {
		prefix, ext := splitExt(row.input)
		require.Equal(t, row.prefix, prefix)
		require.Equal(t, row.ext, ext)
	}
}

func testDefaults() testConfig {
	return testConfig{Name: "bot", Limit: 10, Keywords: []string{"csv"}}
}

func TestReadRecursivelyWithDefaults(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	testChdir(t, nested)

	cfg, err := ReadRecursivelyWithDefaults("bot.json5", testDefaults)
	require.NoError(t, err)
	require.Equal(t, testDefaults(), cfg, "no file gives the defaults")

	require.NoError(t, os.WriteFile(filepath.Join(root, "bot.json5"), []byte(`{limit: 3}`), 0600))
	cfg, err = ReadRecursivelyWithDefaults("bot.json5", testDefaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "bot", Limit: 3, Keywords: []string{"csv"}}, cfg)
}

func TestReadRecursivelyWithDefaultsParseError(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.json5"), []byte(`{limit: `), 0600))

	_, err := ReadRecursivelyWithDefaults("bot.json5", testDefaults)
	require.ErrorContains(t, err, "parse ")
}
