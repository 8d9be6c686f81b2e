package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupfinder/internal/models"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// sizes is a Sizer backed by a map
type sizes map[models.FileID]int64

func (s sizes) Size(file models.FileID) (int64, error) {
	size, ok := s[file]
	if !ok {
		return 0, &models.FileError{File: file, Op: "size", Err: os.ErrNotExist}
	}
	return size, nil
}

func group(files ...models.FileID) *models.DuplicateGroup {
	return &models.DuplicateGroup{Files: files}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, sizes{})

	assert.True(t, s.Empty)
	assert.Nil(t, s.MostDuplicated)
	assert.Nil(t, s.MostRecoverable)
	assert.Zero(t, s.RecoverableBytes)
}

func TestSummarize_CountVersusSpace(t *testing.T) {
	sz := sizes{}
	small := group("s5", "s3", "s1", "s4", "s2")
	for _, f := range small.Files {
		sz[f] = 10
	}
	big := group("b2", "b1")
	sz["b1"], sz["b2"] = 1000, 1000

	s := Summarize([]*models.DuplicateGroup{small, big}, sz)

	require.NotNil(t, s.MostDuplicated)
	assert.Equal(t, 5, s.MostDuplicated.Len())
	assert.Equal(t, models.FileID("s1"), s.MostDuplicated.Original())
	assert.Equal(t, []models.FileID{"s2", "s3", "s4", "s5"}, s.MostDuplicated.Copies())

	require.NotNil(t, s.MostRecoverable)
	assert.Equal(t, []models.FileID{"b1", "b2"}, s.MostRecoverable.Files)
	assert.Equal(t, int64(1000), s.RecoverableBytes)
	assert.Equal(t, int64(1000), s.FileSize)
	assert.Equal(t, int64(1045), s.TotalRecoverable)
}

func TestSummarize_DoesNotSortInput(t *testing.T) {
	g := group("c", "a", "b")
	Summarize([]*models.DuplicateGroup{g}, sizes{"a": 1})
	assert.Equal(t, []models.FileID{"c", "a", "b"}, g.Files)
}

func TestSummarize_TieBreakFirstEncountered(t *testing.T) {
	first := group("x1", "x2", "x3")
	second := group("y1", "y2", "y3")
	sz := sizes{"x1": 50, "y1": 50}

	for i := 0; i < 20; i++ {
		s := Summarize([]*models.DuplicateGroup{first, second}, sz)
		assert.Equal(t, models.FileID("x1"), s.MostDuplicated.Original())
		assert.Equal(t, models.FileID("x1"), s.MostRecoverable.Original())
	}

	s := Summarize([]*models.DuplicateGroup{second, first}, sz)
	assert.Equal(t, models.FileID("y1"), s.MostDuplicated.Original())
	assert.Equal(t, models.FileID("y1"), s.MostRecoverable.Original())
}

func TestSummarize_RepresentativeIsFirstSortedMember(t *testing.T) {
	// Only the lexicographically first member is sized
	g := group("z", "m", "a")
	s := Summarize([]*models.DuplicateGroup{g}, sizes{"a": 7})

	require.NotNil(t, s.MostRecoverable)
	assert.Equal(t, int64(14), s.RecoverableBytes)
	assert.Empty(t, s.Errors)
}

func TestSummarize_SizeFailure(t *testing.T) {
	broken := group("gone1", "gone2", "gone3")
	ok := group("ok1", "ok2")

	s := Summarize([]*models.DuplicateGroup{broken, ok}, sizes{"ok1": 3})

	assert.Equal(t, models.FileID("gone1"), s.MostDuplicated.Original())
	require.NotNil(t, s.MostRecoverable)
	assert.Equal(t, models.FileID("ok1"), s.MostRecoverable.Original())
	assert.Equal(t, int64(3), s.RecoverableBytes)
	require.Len(t, s.Errors, 1)
	assert.Equal(t, models.FileID("gone1"), s.Errors[0].File)
}

func TestSummarize_AllSizesFail(t *testing.T) {
	s := Summarize([]*models.DuplicateGroup{group("a", "b")}, sizes{})

	assert.False(t, s.Empty)
	assert.NotNil(t, s.MostDuplicated)
	assert.Nil(t, s.MostRecoverable)
}

func TestRender_NoDuplicates(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summarize(nil, sizes{}))

	assert.Equal(t, header+"\nNo duplicates found\n", buf.String())
}

func TestRender_Report(t *testing.T) {
	sz := sizes{"a/1": 10, "b/1": 1000}
	groups := []*models.DuplicateGroup{
		group("a/3", "a/1", "a/2"),
		group("b/2", "b/1"),
	}

	var buf bytes.Buffer
	Render(&buf, Summarize(groups, sz))
	out := buf.String()

	assert.Contains(t, out, "The file with the most duplicates is:\n a/1\nHere are its 2 copies:\na/2\na/3\n")
	assert.Contains(t, out, "The most disk space (1000 bytes, 1.0 kB) could be recovered by deleting copies of this file:\n b/1\nHere are its 1 copies:\nb/2\n")
	assert.Contains(t, out, "2 duplicate groups")
	assert.True(t, strings.HasPrefix(out, header))
}

func TestRender_UnknownSpace(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summarize([]*models.DuplicateGroup{group("a", "b")}, sizes{}))

	assert.Contains(t, buf.String(), "Recoverable disk space is unknown")
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	RenderErrors(&buf, nil)
	assert.Empty(t, buf.String())

	RenderErrors(&buf, []*models.FileError{{File: "x", Op: "read", Err: os.ErrPermission}})
	assert.Contains(t, buf.String(), "Could not read 1 file(s):")
	assert.Contains(t, buf.String(), "read x: permission denied")
}

func TestSummary_JSON(t *testing.T) {
	s := Summarize([]*models.DuplicateGroup{group("b", "a")}, sizes{"a": 4})
	s.Errors = append(s.Errors, &models.FileError{File: "c", Op: "open", Err: os.ErrNotExist})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(4), decoded["recoverable_bytes"])
	assert.Equal(t, []any{"a", "b"}, decoded["most_recoverable"].(map[string]any)["files"])
	assert.Equal(t, "file does not exist", decoded["errors"].([]any)[0].(map[string]any)["error"])
}
