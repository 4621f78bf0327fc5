package commands

import (
	"Bookshelf/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage — неверные аргументы, диспетчер печатает usage команды.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI. Usage печатается в справке как есть.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Команды учётной записи; всё остальное относится к книжной полке.
var accountCommands = map[string]bool{"register": true, "login": true, "status": true}

var registry = map[string]Command{}

// Out — вывод CLI, в тестах подменяется.
var Out io.Writer = os.Stdout

// RegisterCmd вызывается из init() каждой команды.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List возвращает команды, отсортированные по имени.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage — общая справка: команды учётной записи, команды полки и типичный сценарий.
func FormatGlobalUsage() string {
	var account, shelf []string
	for _, c := range List() {
		line := fmt.Sprintf("  %-32s %s", c.Usage(), c.Description())
		if accountCommands[c.Name()] {
			account = append(account, line)
		} else {
			shelf = append(shelf, line)
		}
	}

	lines := []string{
		"Bookshelf CLI: keep your books on a Bookshelf server",
		"",
		"Usage:",
		"  bookshelf [--base-url <host:port>] [--https] [--token-file <path>] <command> [args]",
		"",
		"Account:",
	}
	lines = append(lines, account...)
	lines = append(lines, "", "Books:")
	lines = append(lines, shelf...)
	lines = append(lines,
		"",
		"Typical session:",
		"  bookshelf register alice s3cret",
		"  bookshelf upload --name=dune.pdf ./Dune-1965.pdf",
		"  bookshelf books",
		"  bookshelf edit 1 filename=dune-1965.pdf",
		"  bookshelf download 1 ./dune.pdf",
		"  bookshelf delete 1",
		"",
		"Run 'bookshelf help <command>' for details on a command.",
	)
	return strings.Join(lines, "\n") + "\n"
}

// formatCommandUsage — справка по одной команде.
func formatCommandUsage(c Command) string {
	return fmt.Sprintf("Usage: bookshelf %s\n\n%s\n", c.Usage(), c.Description())
}
