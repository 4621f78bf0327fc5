package handlers

import (
	"Bookshelf/internal/config"
	"Bookshelf/internal/middleware"
	"Bookshelf/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BookHandler — HTTP-обвязка жизненного цикла книги.
type BookHandler struct {
	BookService *service.BookService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewBookHandler(bookService *service.BookService, logger *zap.SugaredLogger, cfg *config.Config) *BookHandler {
	return &BookHandler{BookService: bookService, Logger: logger, Config: cfg}
}

// storeForm — метаданные из multipart-формы загрузки.
type storeForm struct {
	FileName     string `validate:"required,max=255"`
	Size         int64  `validate:"gte=0"`
	Height       int    `validate:"gte=0"`
	Width        int    `validate:"gte=0"`
	LastModified time.Time
}

// updateForm — изменяемые метаданные; отсутствующие поля не трогаются.
type updateForm struct {
	FileName     *string `validate:"omitempty,min=1,max=255"`
	Size         *int64  `validate:"omitempty,gte=0"`
	Height       *int    `validate:"omitempty,gte=0"`
	Width        *int    `validate:"omitempty,gte=0"`
	LastModified *time.Time
}

// Ключи, которые нельзя менять после создания.
var immutableKeys = map[string]struct{}{
	"id":        {},
	"filepath":  {},
	"file_path": {},
	"user_id":   {},
	"owner_id":  {},
}

// Index список книг текущего пользователя
func (h *BookHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	books, err := h.BookService.List(r.Context(), userID)
	if err != nil {
		serviceError(w, r, h.Logger, "Index", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

// AdminIndex все книги, только для администраторов
func (h *BookHandler) AdminIndex(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	books, err := h.BookService.ListAll(r.Context(), userID)
	if err != nil {
		serviceError(w, r, h.Logger, "AdminIndex", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

// Store загрузка файла книги с метаданными
func (h *BookHandler) Store(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	// Лимит общего тела запроса: файл плюс поля формы
	maxFile := h.Config.BlobMaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+1<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		h.Logger.Warnw("Store: invalid multipart form", "error", err)
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	if header.Size > maxFile {
		h.Logger.Warnw("Store: payload too large", "size", header.Size, "limit", maxFile)
		writeError(w, r, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	form, err := parseStoreForm(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if form.FileName == "" {
		form.FileName = header.Filename
	}
	if err := validate.Struct(form); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	book, err := h.BookService.Create(r.Context(), userID, service.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}, service.BookMeta{
		FileName:     form.FileName,
		Size:         form.Size,
		Height:       form.Height,
		Width:        form.Width,
		LastModified: form.LastModified,
	})
	if err != nil {
		serviceError(w, r, h.Logger, "Store", err)
		return
	}
	respondDone(w, r, http.StatusCreated, book)
}

// Edit книга для редактирования
func (h *BookHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	book, err := h.BookService.Get(r.Context(), userID, id)
	if err != nil {
		serviceError(w, r, h.Logger, "Edit", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Update изменение метаданных книги
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	fields, err := readFields(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return
	}
	form, err := parseUpdateForm(fields)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validate.Struct(form); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	book, err := h.BookService.Update(r.Context(), userID, id, service.BookUpdate{
		FileName:     form.FileName,
		Size:         form.Size,
		Height:       form.Height,
		Width:        form.Width,
		LastModified: form.LastModified,
	})
	if err != nil {
		serviceError(w, r, h.Logger, "Update", err)
		return
	}
	respondDone(w, r, http.StatusOK, book)
}

// Destroy удаление книги вместе с файлом
func (h *BookHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	removed, err := h.BookService.Destroy(r.Context(), userID, id)
	if err != nil {
		serviceError(w, r, h.Logger, "Destroy", err)
		return
	}
	respondDone(w, r, http.StatusOK, map[string]bool{"deleted": removed})
}

// File отдаёт сохранённый файл книги
func (h *BookHandler) File(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	book, rc, err := h.BookService.Open(r.Context(), userID, id)
	if err != nil {
		serviceError(w, r, h.Logger, "File", err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(book.FilePath)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": book.FileName}))
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("File: copy interrupted", "id", id, "error", err)
	}
}

func bookID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, r, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func parseStoreForm(r *http.Request) (storeForm, error) {
	var (
		f   storeForm
		err error
	)
	f.FileName = strings.TrimSpace(r.FormValue("filename"))
	if f.Size, err = optInt64(r.FormValue("size"), "size"); err != nil {
		return f, err
	}
	if f.Height, err = optInt(r.FormValue("height"), "height"); err != nil {
		return f, err
	}
	if f.Width, err = optInt(r.FormValue("width"), "width"); err != nil {
		return f, err
	}
	f.LastModified = time.Now().UTC()
	if v := r.FormValue("lastModified"); v != "" {
		if f.LastModified, err = parseTimestamp(v); err != nil {
			return f, err
		}
	}
	return f, nil
}

// readFields читает тело PATCH как JSON-объект или форму.
func readFields(r *http.Request) (map[string]string, error) {
	fields := map[string]string{}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			var s string
			if json.Unmarshal(v, &s) == nil {
				fields[k] = s
				continue
			}
			fields[k] = string(v)
		}
		return fields, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k := range r.PostForm {
		if k == "_method" {
			continue
		}
		fields[k] = r.PostForm.Get(k)
	}
	return fields, nil
}

func parseUpdateForm(fields map[string]string) (updateForm, error) {
	var f updateForm
	for k, v := range fields {
		if _, ok := immutableKeys[strings.ToLower(k)]; ok {
			return f, fmt.Errorf("%s cannot be changed", k)
		}
		switch k {
		case "filename":
			name := strings.TrimSpace(v)
			f.FileName = &name
		case "size":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return f, fmt.Errorf("size must be an integer")
			}
			f.Size = &n
		case "height", "width":
			n, err := strconv.Atoi(v)
			if err != nil {
				return f, fmt.Errorf("%s must be an integer", k)
			}
			if k == "height" {
				f.Height = &n
			} else {
				f.Width = &n
			}
		case "lastModified":
			t, err := parseTimestamp(v)
			if err != nil {
				return f, err
			}
			f.LastModified = &t
		default:
			return f, fmt.Errorf("unknown field %s", k)
		}
	}
	return f, nil
}

// parseTimestamp принимает миллисекунды Unix (как File.lastModified в браузере) или RFC3339.
func parseTimestamp(v string) (time.Time, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms < 0 {
			return time.Time{}, fmt.Errorf("lastModified must not be negative")
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("lastModified must be unix milliseconds or RFC3339")
	}
	return t.UTC(), nil
}

func optInt64(v, name string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func optInt(v, name string) (int, error) {
	n, err := optInt64(v, name)
	return int(n), err
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
