package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classfmt/config"
	"classfmt/formatter"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(config.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level=error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "arguments",
			args: []string{"classify", "p-4", "flex"},
			want: "flex p-4\n",
		},
		{
			name:  "stdin",
			stdin: "m-2 flex\n",
			args:  []string{"classify"},
			want:  "flex m-2\n",
		},
		{
			name: "categorized",
			args: []string{"classify", "p-4 flex m-2 block w-full"},
			want: "  block\n  flex\n  w-full\n  p-4\n  m-2\n",
		},
		{
			name: "categories disabled",
			args: []string{"classify", "--categories=false", "p-4 flex m-2 block w-full"},
			want: "block flex w-full p-4 m-2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyCommandCategoriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Spacing: m- p-\nLayout: flex\n"), 0o644))

	got, err := execute(t, "", "classify", "--categories-file", path, "p-4 flex m-2 m-4 p-2")
	require.NoError(t, err)
	assert.Equal(t, "  m-2 m-4 p-4 p-2\n  flex\n", got)
}

func TestClassifyCommandBrokenCategoriesFile(t *testing.T) {
	dir := t.TempDir()
	options := filepath.Join(dir, "classfmt.yaml")
	require.NoError(t, os.WriteFile(options, []byte("categories:\n  Spacing: m- p-\n  Layout: flex\n"), 0o644))

	got, err := execute(t, "", "classify",
		"--config", options,
		"--categories-file", filepath.Join(dir, "missing.yaml"),
		"p-4 flex m-2 block w-full")
	require.NoError(t, err)
	assert.Equal(t, "  m-2 p-4\n  flex\n  block w-full\n", got)
}

func TestFormatCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.tsx")
	require.NoError(t, os.WriteFile(path, []byte(`const a = <div className="p-4 flex" />;`+"\n"), 0o644))

	_, err := execute(t, "", "--check", dir)
	require.ErrorIs(t, err, formatter.ErrUnformatted)

	_, err = execute(t, "", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `const a = <div className="flex p-4" />;`+"\n", string(data))
}

func TestInvalidFlagValue(t *testing.T) {
	_, err := execute(t, "", "classify", "--viewport-grouping=stacked", "flex")
	require.Error(t, err)
}
