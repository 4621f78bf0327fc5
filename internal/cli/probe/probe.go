// Package probe собирает метаданные локального файла перед загрузкой книги.
package probe

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileMeta — то, что клиент отправляет вместе с файлом.
type FileMeta struct {
	Name         string
	Size         int64
	LastModified time.Time
	Width        int
	Height       int
}

// Inspect читает размер, время изменения и, для изображений, ширину и высоту.
// Для не-изображений размеры равны нулю.
func Inspect(path string) (FileMeta, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileMeta{}, err
	}
	if st.IsDir() {
		return FileMeta{}, fmt.Errorf("%s is a directory", path)
	}
	meta := FileMeta{
		Name:         filepath.Base(path),
		Size:         st.Size(),
		LastModified: st.ModTime().UTC(),
	}

	f, err := os.Open(path)
	if err != nil {
		return FileMeta{}, err
	}
	defer f.Close()
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		meta.Width, meta.Height = cfg.Width, cfg.Height
	}
	return meta, nil
}
