// Package storage хранит файлы книг. Пути — непрозрачные строки вида books/<owner>/<name>.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound — файла по указанному пути нет.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidPath — путь пустой, абсолютный или выходит за пределы хранилища.
var ErrInvalidPath = errors.New("invalid blob path")

// Storage — минимальный контракт файлового хранилища.
type Storage interface {
	// Put сохраняет содержимое r в каталог dir под именем name и возвращает итоговый путь.
	Put(ctx context.Context, dir, name string, r io.Reader, size int64, contentType string) (string, error)

	// Get открывает файл на чтение. Если файла нет — ErrNotFound.
	Get(ctx context.Context, p string) (io.ReadCloser, error)

	// Delete удаляет файл. deleted=false без ошибки означает, что файла уже не было.
	Delete(ctx context.Context, p string) (deleted bool, err error)

	// Exists сообщает, есть ли файл по пути.
	Exists(ctx context.Context, p string) (bool, error)
}

const booksPrefix = "books"

// OwnerDir — каталог файлов пользователя. Разные владельцы никогда не пересекаются по путям.
func OwnerDir(userID int64) string {
	return path.Join(booksPrefix, strconv.FormatInt(userID, 10))
}

// HashName генерирует случайное имя файла, сохраняя расширение исходного.
func HashName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// CleanPath нормализует путь к файлу внутри хранилища.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", ErrInvalidPath
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q escapes storage root", ErrInvalidPath, p)
		}
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", ErrInvalidPath
	}
	return clean, nil
}

// join собирает путь dir/name и проверяет его.
func join(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: bad file name %q", ErrInvalidPath, name)
	}
	return CleanPath(path.Join(dir, name))
}
