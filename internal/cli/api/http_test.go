package api

import (
	fsrepo "Bookshelf/internal/cli/repo/fs"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPostJSON_SendsToken_And_ParsesBody(t *testing.T) {
	// test server проверяет cookie, Accept и JSON
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); !strings.Contains(c, "auth_token=tok123") {
			t.Fatalf("Cookie header missing token, got: %q", c)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Fatalf("Accept must ask for json")
		}
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if m["x"] != float64(1) { // JSON number → float64
			t.Fatalf("unexpected payload: %#v", m)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(" {\"ok\":true}\n"))
	}))
	defer ts.Close()

	resp, body, err := PostJSON(context.Background(), ts.URL+"/api", map[string]any{"x": 1}, "tok123")
	if err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body must be trimmed: %q", string(body))
	}
}

// PostJSON без токена — Cookie заголовок не должен устанавливаться
func TestPostJSON_NoToken_NoCookieHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); c != "" {
			t.Fatalf("Cookie must be empty when token not provided, got: %q", c)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	if _, _, err := PostJSON(context.Background(), ts.URL, map[string]any{"x": 1}, ""); err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
}

func TestPostJSON_Errors(t *testing.T) {
	ctx := context.Background()
	// chan в payload вызовет ошибку json.Marshal
	if _, _, err := PostJSON(ctx, "http://example.invalid", map[string]any{"c": make(chan int)}, ""); err == nil {
		t.Fatalf("expected marshal error")
	}
	if _, _, err := PostJSON(ctx, "http://127.0.0.1:1", map[string]any{"a": 1}, ""); err == nil {
		t.Fatalf("expected network error for unreachable URL")
	}
	if _, _, err := PostJSON(ctx, "http://[::1", map[string]any{"a": 1}, ""); err == nil {
		t.Fatalf("expected new request error for invalid URL")
	}
}

func TestPatchGetDelete_Methods(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	ctx := context.Background()

	_, _, _ = PatchJSON(ctx, ts.URL+"/books/1", map[string]any{"filename": "a"}, "t")
	_, _, _ = Get(ctx, ts.URL+"/books", "t")
	_, _, _ = Delete(ctx, ts.URL+"/books/1", "t")

	want := []string{"PATCH /books/1", "GET /books", "DELETE /books/1"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("methods: %v", seen)
	}
}

func TestPostMultipartFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.pdf")
	if err := os.WriteFile(path, []byte("PDFDATA"), 0o600); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data;") {
			t.Fatalf("not multipart: %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.FormValue("filename") != "book.pdf" {
			t.Fatalf("filename field mismatch: %q", r.FormValue("filename"))
		}
		f, h, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if h.Filename != "book.pdf" || string(data) != "PDFDATA" {
			t.Fatalf("file mismatch: %s %q", h.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	resp, _, err := PostMultipartFile(context.Background(), ts.URL, map[string]string{"filename": "book.pdf"}, path, "tok")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status want 201, got %d", resp.StatusCode)
	}

	if _, _, err := PostMultipartFile(context.Background(), ts.URL, nil, filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatalf("missing file should fail")
	}
	if _, _, err := PostMultipartFile(context.Background(), ts.URL, nil, "", ""); err == nil {
		t.Fatalf("empty path should fail")
	}
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte("CONTENT"))
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	n, err := Download(context.Background(), ts.URL+"/ok", "t", &buf)
	if err != nil || n != 7 || buf.String() != "CONTENT" {
		t.Fatalf("download: n=%d err=%v body=%q", n, err, buf.String())
	}

	_, err = Download(context.Background(), ts.URL+"/nope", "t", &buf)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
}

func TestPersistAuthFromResponse(t *testing.T) {
	st := fsrepo.AuthFSStore{TokenFile: filepath.Join(t.TempDir(), "token")}

	// auth_token вторым cookie — должен сохраниться
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "other", Value: "abc"}).String())
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: "tok-abc"}).String())
	if err := PersistAuthFromResponse(resp, st); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if tok, err := st.Load(); err != nil || tok != "tok-abc" {
		t.Fatalf("token not saved, got %q err=%v", tok, err)
	}

	// нет cookie
	if err := PersistAuthFromResponse(&http.Response{Header: http.Header{}}, st); err == nil {
		t.Fatalf("expected error when no auth cookie")
	}

	// auth_token пустой — ошибка
	resp = &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: ""}).String())
	if err := PersistAuthFromResponse(resp, st); err == nil {
		t.Fatalf("expected error for empty auth_token cookie value")
	}
}
