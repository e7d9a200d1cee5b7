package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/blob"
)

func newStore(t *testing.T, max int64) (*blob.DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := blob.NewDiskStore(dir, "/uploads/", max, []string{"txt", ".PNG"})
	require.NoError(t, err)
	return s, dir
}

func TestSaveAndOpen(t *testing.T) {
	s, dir := newStore(t, 1024)

	obj, err := s.Save(context.Background(), strings.NewReader("hello"), "Notes.TXT")
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)
	assert.True(t, strings.HasSuffix(obj.Name, ".txt"))
	assert.Equal(t, "/uploads/"+obj.Name, obj.URL)

	f, err := s.Open(obj.Name)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete(obj.Name))
	_, err = os.Stat(filepath.Join(dir, obj.Name))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(obj.Name), "deleting twice is fine")
}

func TestSaveRejectsExtension(t *testing.T) {
	s, _ := newStore(t, 1024)
	_, err := s.Save(context.Background(), strings.NewReader("x"), "run.exe")
	assert.ErrorIs(t, err, blob.ErrBadExtension)
	_, err = s.Save(context.Background(), strings.NewReader("x"), "noext")
	assert.ErrorIs(t, err, blob.ErrBadExtension)

	assert.True(t, s.Allowed("image.png"))
}

func TestSaveRejectsOversized(t *testing.T) {
	s, dir := newStore(t, 4)
	_, err := s.Save(context.Background(), strings.NewReader("12345"), "a.txt")
	assert.ErrorIs(t, err, blob.ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file removed")

	_, err = s.Save(context.Background(), strings.NewReader("1234"), "a.txt")
	assert.NoError(t, err)
}

func TestOpenRejectsTraversal(t *testing.T) {
	s, _ := newStore(t, 4)
	for _, name := range []string{"../etc/passwd", "", ".hidden", "a/b.txt"} {
		_, err := s.Open(name)
		assert.ErrorIs(t, err, blob.ErrInvalidName, name)
	}
}
