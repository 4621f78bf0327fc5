package commands

import (
	"Bookshelf/internal/cli/api"
	fsrepo "Bookshelf/internal/cli/repo/fs"
	"Bookshelf/internal/config"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrNotLoggedIn — нет сохранённого токена.
var ErrNotLoggedIn = errors.New("not logged in: run `login <login> <password>` first")

func authStore(cfg *config.Config) fsrepo.AuthFSStore {
	return fsrepo.AuthFSStore{TokenFile: cfg.TokenFile}
}

func endpoint(cfg *config.Config, path string) string {
	return strings.TrimRight(cfg.ServerURL, "/") + path
}

// requireToken возвращает сохранённый токен или ErrNotLoggedIn.
func requireToken(cfg *config.Config) (string, error) {
	tok, err := authStore(cfg).Load()
	if err != nil || tok == "" {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrUsage
	}
	return id, nil
}

// responseError превращает неуспешный ответ сервера в понятную ошибку.
func responseError(resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrNotLoggedIn
	case http.StatusForbidden:
		return errors.New("access denied")
	case http.StatusNotFound:
		return errors.New("book not found")
	case http.StatusTooManyRequests:
		return errors.New("delete already in progress, try again later")
	}
	return &api.StatusError{Code: resp.StatusCode, Body: msg}
}

func printBook(b bookView) {
	dims := ""
	if b.Width > 0 && b.Height > 0 {
		dims = fmt.Sprintf("  %dx%d", b.Width, b.Height)
	}
	fmt.Fprintf(Out, "- #%d  %s  %d bytes%s  modified=%s\n", b.ID, b.FileName, b.Size, dims, b.LastModified.Format("2006-01-02 15:04"))
}
