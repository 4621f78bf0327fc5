package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerDir(t *testing.T) {
	assert.Equal(t, "books/7", OwnerDir(7))
	assert.NotEqual(t, OwnerDir(1), OwnerDir(11))
}

func TestHashName(t *testing.T) {
	a := HashName("Photo.JPG")
	b := HashName("Photo.JPG")
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)

	// без расширения — только uuid
	assert.Len(t, HashName("README"), 36)
}

func TestCleanPath(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "books/1/a.jpg", want: "books/1/a.jpg"},
		{in: "books//1/./a.jpg", want: "books/1/a.jpg"},
		{in: `books\1\a.jpg`, want: "books/1/a.jpg"},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: "books/../../etc/passwd", wantErr: true},
	}
	for _, tc := range cases {
		got, err := CleanPath(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPath, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

// общий сценарий для всех локальных драйверов
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	p, err := s.Put(ctx, OwnerDir(1), "a.jpg", strings.NewReader("JPEGDATA"), 8, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "books/1/a.jpg", p)

	ok, err := s.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "JPEGDATA", string(data))

	// имя с разделителем каталога недопустимо
	_, err = s.Put(ctx, OwnerDir(1), "../x", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrInvalidPath)

	deleted, err := s.Delete(ctx, p)
	require.NoError(t, err)
	assert.True(t, deleted)

	// повторное удаление — файла уже нет
	deleted, err = s.Delete(ctx, p)
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err = s.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, p)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	exerciseStorage(t, s)
	assert.Equal(t, 0, s.Len())
}

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)
	exerciseStorage(t, s)

	// временные файлы не остаются в каталоге владельца
	entries, err := os.ReadDir(filepath.Join(root, "books", "1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_FileOnDisk(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	p, err := s.Put(context.Background(), OwnerDir(42), "b.png", strings.NewReader("PNG"), 3, "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "books", "42", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(data))
	assert.Equal(t, "books/42/b.png", p)
}

func TestNewLocalStorage_EmptyRoot(t *testing.T) {
	_, err := NewLocalStorage("")
	assert.Error(t, err)
}

func TestMemoryStorage_PutCanceledContext(t *testing.T) {
	s := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Put(ctx, OwnerDir(1), "a.jpg", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}
