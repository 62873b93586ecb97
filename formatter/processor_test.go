package formatter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"classfmt/config"
)

const (
	unformattedCard = "export const Card = () => <div className=\"p-4 flex m-2\" />;\n"
	formattedCard   = "export const Card = () => <div className=\"flex p-4 m-2\" />;\n"
	generatedCard   = "// @generated\nexport const Card = () => <div className=\"p-4 flex\" />;\n"
)

// writeTree creates files under a fresh directory and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Dir = dir
	require.NoError(t, cfg.Finalize())
	return cfg
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"card.tsx":                 unformattedCard,
		"gen.tsx":                  generatedCard,
		"README.md":                "p-4 flex",
		"nested/inner.jsx":         unformattedCard,
		"node_modules/lib/lib.tsx": unformattedCard,
	})
}

func TestProcessorRun(t *testing.T) {
	dir := sampleTree(t)
	cfg := testConfig(t, dir)
	cfg.Recursive = true

	processor := NewProcessor(cfg, zap.NewNop())

	summary, err := processor.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 3, Changed: 2}, summary)

	assert.Equal(t, formattedCard, readFile(t, filepath.Join(dir, "card.tsx")))
	assert.Equal(t, formattedCard, readFile(t, filepath.Join(dir, "nested", "inner.jsx")))
	assert.Equal(t, generatedCard, readFile(t, filepath.Join(dir, "gen.tsx")))
	assert.Equal(t, unformattedCard, readFile(t, filepath.Join(dir, "node_modules", "lib", "lib.tsx")))

	summary, err = processor.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 3}, summary)
}

func TestProcessorFiles(t *testing.T) {
	dir := sampleTree(t)

	cfg := testConfig(t, dir)
	files, err := NewProcessor(cfg, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "card.tsx"), filepath.Join(dir, "gen.tsx")}, files)

	cfg.Recursive = true
	cfg.Exclude = []string{"node_modules", "nested"}
	files, err = NewProcessor(cfg, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "card.tsx"), filepath.Join(dir, "gen.tsx")}, files)

	cfg.Paths = []string{
		filepath.Join(dir, "nested", "inner.jsx"),
		filepath.Join(dir, "README.md"),
		filepath.Join(dir, "nested", "inner.jsx"),
	}
	files, err = NewProcessor(cfg, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "nested", "inner.jsx")}, files)

	cfg.Paths = []string{filepath.Join(dir, "missing.tsx")}
	_, err = NewProcessor(cfg, nil).Files()
	require.Error(t, err)
}

func TestProcessorExcludeGlobs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"card.tsx":              unformattedCard,
		"card.stories.tsx":      unformattedCard,
		"legacy/old/button.jsx": unformattedCard,
		"legacy/keep.jsx":       unformattedCard,
	})

	cfg := testConfig(t, dir)
	cfg.Recursive = true
	cfg.Exclude = []string{"*.stories.tsx", "**/legacy/old/**", "[broken"}

	files, err := NewProcessor(cfg, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "card.tsx"),
		filepath.Join(dir, "legacy", "keep.jsx"),
	}, files)
}

func TestProcessorDryRun(t *testing.T) {
	dir := sampleTree(t)
	cfg := testConfig(t, dir)
	cfg.DryRun = true

	summary, err := NewProcessor(cfg, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 2, Changed: 1}, summary)
	assert.Equal(t, unformattedCard, readFile(t, filepath.Join(dir, "card.tsx")))
}

func TestProcessorCheck(t *testing.T) {
	dir := sampleTree(t)
	cfg := testConfig(t, dir)
	cfg.Check = true

	_, err := NewProcessor(cfg, zap.NewNop()).Run(context.Background())
	require.ErrorIs(t, err, ErrUnformatted)
	assert.Equal(t, unformattedCard, readFile(t, filepath.Join(dir, "card.tsx")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "card.tsx"), []byte(formattedCard), 0o644))
	summary, err := NewProcessor(cfg, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Changed)
}

func TestProcessorProcessFile(t *testing.T) {
	dir := sampleTree(t)
	processor := NewProcessor(testConfig(t, dir), zap.NewNop())

	changed, err := processor.ProcessFile(context.Background(), filepath.Join(dir, "gen.tsx"))
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = processor.ProcessFile(context.Background(), filepath.Join(dir, "README.md"))
	require.Error(t, err)

	_, err = processor.ProcessFile(context.Background(), filepath.Join(dir, "gone.tsx"))
	require.Error(t, err)
}

func TestProcessorKeepsFileMode(t *testing.T) {
	dir := sampleTree(t)
	path := filepath.Join(dir, "card.tsx")
	require.NoError(t, os.Chmod(path, 0o600))

	changed, err := NewProcessor(testConfig(t, dir), zap.NewNop()).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	require.True(t, changed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestProcessorWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{"card.tsx": unformattedCard})
	path := filepath.Join(dir, "card.tsx")
	processor := NewProcessor(testConfig(t, dir), zap.NewNop(), WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- processor.Watch(ctx)
	}()

	// Keep saving unformatted content until the watcher has picked it up.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == formattedCard {
			return true
		}
		_ = os.WriteFile(path, []byte(unformattedCard), 0o644)
		return false
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestProcessorWatchFileRoot(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"card.tsx":    unformattedCard,
		"sibling.tsx": unformattedCard,
	})
	path := filepath.Join(dir, "card.tsx")
	sibling := filepath.Join(dir, "sibling.tsx")

	cfg := testConfig(t, dir)
	cfg.Paths = []string{path}
	processor := NewProcessor(cfg, zap.NewNop(), WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- processor.Watch(ctx)
	}()

	// Save both files until the named one is formatted.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == formattedCard {
			return true
		}
		_ = os.WriteFile(sibling, []byte(unformattedCard), 0o644)
		_ = os.WriteFile(path, []byte(unformattedCard), 0o644)
		return false
	}, 5*time.Second, 100*time.Millisecond)

	// Give a queued sibling time to be processed if it had been queued.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, unformattedCard, readFile(t, sibling))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchScopeCovers(t *testing.T) {
	scope := &watchScope{
		dirs:  map[string]struct{}{filepath.Join("src", "app"): {}},
		files: map[string]struct{}{filepath.Join("lib", "card.tsx"): {}},
	}

	assert.True(t, scope.covers(filepath.Join("src", "app", "page.tsx")))
	assert.True(t, scope.covers(filepath.Join("lib", "card.tsx")))
	assert.False(t, scope.covers(filepath.Join("lib", "other.tsx")))
	assert.False(t, scope.covers(filepath.Join("src", "app", "nested", "page.tsx")))
	assert.Equal(t, []string{"lib", filepath.Join("src", "app")}, scope.watched())
}
