package commands

import (
	"Bookshelf/internal/cli/api"
	"Bookshelf/internal/cli/probe"
	"Bookshelf/internal/config"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a file as a new book" }
func (uploadCmd) Usage() string       { return "upload [--name=<display name>] <file>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "имя книги, по умолчанию имя файла")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}
	path := fs.Arg(0)

	meta, err := probe.Inspect(path)
	if err != nil {
		return err
	}
	if meta.Size == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	token, err := requireToken(cfg)
	if err != nil {
		return err
	}

	fields := map[string]string{
		"filename":     meta.Name,
		"size":         strconv.FormatInt(meta.Size, 10),
		"width":        strconv.Itoa(meta.Width),
		"height":       strconv.Itoa(meta.Height),
		"lastModified": strconv.FormatInt(meta.LastModified.UnixMilli(), 10),
	}
	if *name != "" {
		fields["filename"] = *name
	}

	resp, body, err := api.PostMultipartFile(ctx, endpoint(cfg, "/books"), fields, path, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return responseError(resp, body)
	}
	var b bookView
	if err := json.Unmarshal(body, &b); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, "Uploaded:")
	printBook(b)
	return nil
}

func init() { RegisterCmd(uploadCmd{}) }
