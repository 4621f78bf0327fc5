package commands

import (
	"Bookshelf/internal/cli/api"
	"Bookshelf/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Delete a book together with its file" }
func (deleteCmd) Usage() string       { return "delete <id>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
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

	resp, body, err := api.Delete(ctx, endpoint(cfg, fmt.Sprintf("/books/%d", id)), token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, body)
	}
	var res struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if res.Deleted {
		fmt.Fprintf(Out, "Book #%d deleted\n", id)
	} else {
		fmt.Fprintf(Out, "Book #%d kept: its file was already missing in storage\n", id)
	}
	return nil
}

func init() { RegisterCmd(deleteCmd{}) }
