package commands

import (
	"Bookshelf/internal/cli/api"
	"Bookshelf/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

type downloadCmd struct{}

func (downloadCmd) Name() string        { return "download" }
func (downloadCmd) Description() string { return "Save a book's file locally" }
func (downloadCmd) Usage() string       { return "download <id> <dest>" }

func (downloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	token, err := requireToken(cfg)
	if err != nil {
		return err
	}
	dest := args[1]

	// пишем во временный файл рядом с dest, чтобы не оставить обрывок при ошибке
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".bookshelf-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := api.Download(ctx, endpoint(cfg, fmt.Sprintf("/books/%d/file", id)), token, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return responseError(&http.Response{StatusCode: se.Code}, []byte(se.Body))
		}
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %d bytes to %s\n", n, dest)
	return nil
}

func init() { RegisterCmd(downloadCmd{}) }
