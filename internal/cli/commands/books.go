package commands

import (
	"Bookshelf/internal/cli/api"
	"Bookshelf/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type booksCmd struct{}

func (booksCmd) Name() string        { return "books" }
func (booksCmd) Description() string { return "List your books, newest first" }
func (booksCmd) Usage() string       { return "books" }

func (booksCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	token, err := requireToken(cfg)
	if err != nil {
		return err
	}
	resp, body, err := api.Get(ctx, endpoint(cfg, "/books"), token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, body)
	}
	var list struct {
		Books []bookView `json:"books"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(list.Books) == 0 {
		fmt.Fprintln(Out, "No books yet")
		return nil
	}
	for _, b := range list.Books {
		printBook(b)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(list.Books))
	return nil
}

func init() { RegisterCmd(booksCmd{}) }
