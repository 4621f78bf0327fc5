package commands

import (
	"Bookshelf/internal/cli/api"
	"Bookshelf/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type editCmd struct{}

func (editCmd) Name() string { return "edit" }
func (editCmd) Description() string {
	return "Change book metadata: filename|size|width|height|lastModified"
}
func (editCmd) Usage() string { return "edit <id> <key>=<value> [<key>=<value>...]" }

func (editCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	payload, err := editPayload(args[1:])
	if err != nil {
		return err
	}
	token, err := requireToken(cfg)
	if err != nil {
		return err
	}

	resp, body, err := api.PatchJSON(ctx, endpoint(cfg, fmt.Sprintf("/books/%d", id)), payload, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, body)
	}
	var b bookView
	if err := json.Unmarshal(body, &b); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, "Updated:")
	printBook(b)
	return nil
}

// editPayload разбирает пары key=value; числовые поля уходят числами.
func editPayload(pairs []string) (map[string]any, error) {
	payload := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, ErrUsage
		}
		switch key {
		case "filename", "lastModified":
			payload[key] = value
		case "size", "width", "height":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer", key)
			}
			payload[key] = n
		default:
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}
	return payload, nil
}

func init() { RegisterCmd(editCmd{}) }
