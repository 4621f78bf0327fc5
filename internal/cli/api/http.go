package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"Bookshelf/internal/cli/repo"
)

const authCookie = "auth_token"

// Do выполняет запрос к серверу. Ответ всегда запрашивается в JSON; если token не пуст, он уходит как auth cookie.
// Тело ответа читается целиком и обрезается по краям.
func Do(ctx context.Context, method, url string, body io.Reader, contentType, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Cookie", authCookie+"="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, bytes.TrimSpace(data), nil
}

// PostJSON sends a JSON POST request.
func PostJSON(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	return sendJSON(ctx, http.MethodPost, url, payload, token)
}

// PatchJSON sends a JSON PATCH request.
func PatchJSON(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	return sendJSON(ctx, http.MethodPatch, url, payload, token)
}

func Get(ctx context.Context, url, token string) (*http.Response, []byte, error) {
	return Do(ctx, http.MethodGet, url, nil, "", token)
}

func Delete(ctx context.Context, url, token string) (*http.Response, []byte, error) {
	return Do(ctx, http.MethodDelete, url, nil, "", token)
}

func sendJSON(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return Do(ctx, method, url, bytes.NewReader(b), "application/json", token)
}

// PostMultipartFile отправляет файл полем "file" вместе с полями формы. Файл читается потоком.
func PostMultipartFile(ctx context.Context, url string, fields map[string]string, path, token string) (*http.Response, []byte, error) {
	if path == "" {
		return nil, nil, errors.New("empty file path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	resp, body, err := Do(ctx, http.MethodPost, url, pr, mw.FormDataContentType(), token)
	// если сервер ответил раньше, чем дочитал тело, горутина не должна висеть
	_ = pr.Close()
	return resp, body, err
}

// Download копирует тело успешного ответа в w. При ошибочном статусе тело возвращается как текст ошибки.
func Download(ctx context.Context, url, token string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Cookie", authCookie+"="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return io.Copy(w, resp.Body)
}

// StatusError — неуспешный HTTP-статус ответа сервера.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server status %d", e.Code)
	}
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == authCookie && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}
