package story

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fencedStory = storyHeader + "\n```json\n" + storyPayload + "\n```\n"

func newTestConverter() *Converter {
	logger, _ := logtest.NewNullLogger()
	return NewConverter(nil, logger)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConvertFile_InPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, fencedStory)

	before := testutil.ToFloat64(conversionsTotal.WithLabelValues(string(SourceRendered)))

	conv, err := newTestConverter().ConvertFile(path, ConvertOptions{})
	require.NoError(t, err)

	assert.True(t, conv.Written)
	assert.Equal(t, path, conv.Output)
	assert.Equal(t, SourceRendered, conv.Source)
	assert.Empty(t, conv.Diff)

	written := readFile(t, path)
	assert.Equal(t, conv.Content, written)
	assert.Contains(t, written, "## User Story\n\n_As a user_ I want to log in.\n- SSO\n")
	assert.NotContains(t, written, "```")

	assert.Equal(t, before+1, testutil.ToFloat64(conversionsTotal.WithLabelValues(string(SourceRendered))))
}

func TestConvertFile_ToOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "story.md")
	output := filepath.Join(dir, "out", "converted.md")
	writeFile(t, input, fencedStory)

	conv, err := newTestConverter().ConvertFile(input, ConvertOptions{Output: output})
	require.NoError(t, err)

	assert.Equal(t, output, conv.Output)
	assert.Equal(t, fencedStory, readFile(t, input))
	assert.Equal(t, conv.Content, readFile(t, output))
}

func TestConvertFile_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, fencedStory)

	conv, err := newTestConverter().ConvertFile(path, ConvertOptions{DryRun: true})
	require.NoError(t, err)

	assert.False(t, conv.Written)
	assert.Equal(t, fencedStory, readFile(t, path))
	assert.Contains(t, conv.Diff, "+## User Story\n")
	assert.Contains(t, conv.Diff, "-```json\n")
	assert.Contains(t, conv.Diff, " # SCRUM-1 - First story\n")
}

func TestConvertFile_FallbackKeepsWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, storyHeader+"\n```json\n{\"type\": \"doc\", \"content\": [\n```\n")

	conv, err := newTestConverter().ConvertFile(path, ConvertOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, conv.Source)
	require.Len(t, conv.Warnings, 1)
	assert.Contains(t, readFile(t, path), "## User Story\n\n```json\n")
}

func TestConvertFile_MissingInput(t *testing.T) {
	_, err := newTestConverter().ConvertFile(filepath.Join(t.TempDir(), "nope.md"), ConvertOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLineDiff(t *testing.T) {
	assert.Empty(t, LineDiff("same\n", "same\n"))

	diff := LineDiff("a\nb\n", "a\nc\n")
	assert.Contains(t, diff, " a\n")
	assert.Contains(t, diff, "-b\n")
	assert.Contains(t, diff, "+c\n")
}

func TestBatchConverter_ConvertDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), fencedStory)
	writeFile(t, filepath.Join(dir, "b.md"), "# B\n\nplain body\n")
	writeFile(t, filepath.Join(dir, "nested", "c.md"), storyPayload)
	writeFile(t, filepath.Join(dir, "notes.txt"), storyPayload)

	logger, _ := logtest.NewNullLogger()
	batch := NewBatchConverter(newTestConverter(), logger)
	batch.SetBatchSize(2)

	results, err := batch.ConvertDir(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, filepath.Join(dir, "a.md"), results[0].Input)
	assert.Equal(t, filepath.Join(dir, "b.md"), results[1].Input)
	assert.Equal(t, filepath.Join(dir, "nested", "c.md"), results[2].Input)

	assert.Equal(t, SourceRendered, results[0].Source)
	assert.Equal(t, SourcePassthrough, results[1].Source)
	assert.Equal(t, SourceRendered, results[2].Source)

	assert.True(t, results[0].Written)
	assert.False(t, results[1].Written)
	assert.True(t, results[2].Written)

	assert.Equal(t, "# B\n\nplain body\n", readFile(t, filepath.Join(dir, "b.md")))
	assert.Equal(t, "## User Story\n\n_As a user_ I want to log in.\n- SSO\n", readFile(t, filepath.Join(dir, "nested", "c.md")))
	assert.Equal(t, storyPayload, readFile(t, filepath.Join(dir, "notes.txt")))
}

func TestBatchConverter_PlanningDocsUntouched(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"readiness.md": "# Readiness\n\n- [x] criteria agreed\n",
		"notes.md":     "Plain notes\r\nwith CRLF\r\n",
		"sample.md":    "# API\n\n```json\n{\"id\": 7}\n```\n",
	}
	for name, content := range docs {
		writeFile(t, filepath.Join(dir, name), content)
	}

	logger, _ := logtest.NewNullLogger()
	batch := NewBatchConverter(newTestConverter(), logger)

	t.Run("dry run", func(t *testing.T) {
		results, err := batch.ConvertDir(context.Background(), dir, true)
		require.NoError(t, err)
		require.Len(t, results, len(docs))
		for _, conv := range results {
			assert.Equal(t, SourcePassthrough, conv.Source)
			assert.Empty(t, conv.Diff, conv.Input)
		}
	})

	t.Run("write", func(t *testing.T) {
		results, err := batch.ConvertDir(context.Background(), dir, false)
		require.NoError(t, err)
		require.Len(t, results, len(docs))
		for _, conv := range results {
			assert.False(t, conv.Written, conv.Input)
		}
		for name, content := range docs {
			assert.Equal(t, content, readFile(t, filepath.Join(dir, name)), name)
		}
	})
}

func TestConvertFile_UnchangedNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, fencedStory)

	c := newTestConverter()
	first, err := c.ConvertFile(path, ConvertOptions{})
	require.NoError(t, err)
	require.True(t, first.Written)

	second, err := c.ConvertFile(path, ConvertOptions{})
	require.NoError(t, err)
	assert.False(t, second.Written)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Content, readFile(t, path))
}

func TestBatchConverter_Errors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	batch := NewBatchConverter(newTestConverter(), logger)

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := batch.ConvertFiles(ctx, []string{"unused.md"}, true)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := batch.ConvertFiles(context.Background(), []string{filepath.Join(t.TempDir(), "gone.md")}, true)
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := batch.ConvertDir(context.Background(), filepath.Join(t.TempDir(), "gone"), true)
		assert.Error(t, err)
	})
}
