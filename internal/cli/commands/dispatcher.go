package commands

import (
	"Bookshelf/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
)

// Коды завершения CLI
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNoSession = 3
)

// Dispatch выполняет команду из args (без глобальных флагов) и возвращает код завершения.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	name := strings.ToLower(args[0])
	switch name {
	case "help", "-h", "--help":
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}
	for _, a := range args[1:] {
		if a == "-h" || a == "--help" {
			fmt.Fprint(Out, formatCommandUsage(c))
			return ExitOK
		}
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprint(Out, formatCommandUsage(c))
		return ExitUsage
	case errors.Is(err, ErrNotLoggedIn):
		fmt.Fprintf(Out, "%s: %v\n", name, err)
		return ExitNoSession
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(Out, "%s: interrupted\n", name)
		return ExitFailure
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return ExitFailure
	}
}

// help печатает общую справку или справку по команде: bookshelf help [command].
func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitOK
	}
	if c, ok := Get(strings.ToLower(args[0])); ok {
		fmt.Fprint(Out, formatCommandUsage(c))
		return ExitOK
	}
	fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
	fmt.Fprint(Out, FormatGlobalUsage())
	return ExitUsage
}
