package service

import (
	"Bookshelf/internal/model"
	"Bookshelf/internal/policy"
	"Bookshelf/internal/repo"
	"Bookshelf/internal/storage"
	"Bookshelf/internal/throttle"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileUpload — загружаемый файл.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// BookMeta — метаданные книги при создании. Предполагается, что они уже провалидированы.
type BookMeta struct {
	FileName     string
	Size         int64
	Height       int
	Width        int
	LastModified time.Time
}

// BookUpdate — изменяемые метаданные; nil означает «не менять».
// Путь к файлу и владелец здесь отсутствуют: после создания они не меняются.
type BookUpdate struct {
	FileName     *string
	Size         *int64
	Height       *int
	Width        *int
	LastModified *time.Time
}

func (u BookUpdate) columns() map[string]any {
	m := map[string]any{}
	if u.FileName != nil {
		m[model.ColumnFileName] = *u.FileName
	}
	if u.Size != nil {
		m[model.ColumnSize] = *u.Size
	}
	if u.Height != nil {
		m[model.ColumnHeight] = *u.Height
	}
	if u.Width != nil {
		m[model.ColumnWidth] = *u.Width
	}
	if u.LastModified != nil {
		m[model.ColumnLastModified] = u.LastModified.UTC()
	}
	return m
}

// BookService — жизненный цикл книги: файл всегда сохраняется раньше записи
// и удаляется раньше неё.
type BookService struct {
	books    repo.BookRepository
	blobs    storage.Storage
	policy   *policy.Policy
	throttle throttle.Throttle
	logger   *zap.SugaredLogger
}

func NewBookService(
	books repo.BookRepository,
	blobs storage.Storage,
	p *policy.Policy,
	t throttle.Throttle,
	logger *zap.SugaredLogger,
) *BookService {
	if t == nil {
		t = throttle.Pause(0)
	}
	if p == nil {
		p = policy.New(nil)
	}
	return &BookService{books: books, blobs: blobs, policy: p, throttle: t, logger: logger}
}

// List возвращает книги владельца, сначала новые.
func (s *BookService) List(ctx context.Context, ownerID int64) ([]model.Book, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	books, err := s.books.FindByUserID(ctx, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return books, nil
}

// ListAll возвращает все книги; доступно только администраторам.
func (s *BookService) ListAll(ctx context.Context, actorID int64) ([]model.Book, error) {
	if !s.policy.IsAdmin(actorID) {
		return nil, ErrForbidden
	}
	books, err := s.books.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return books, nil
}

// Get возвращает книгу, если actorID может её просматривать.
func (s *BookService) Get(ctx context.Context, actorID int64, id uint64) (*model.Book, error) {
	return s.authorized(ctx, actorID, policy.View, id)
}

// Create сохраняет файл в каталог владельца и только после этого создаёт запись.
func (s *BookService) Create(ctx context.Context, ownerID int64, file FileUpload, meta BookMeta) (*model.Book, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if file.Content == nil || file.Size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	path, err := s.blobs.Put(ctx, storage.OwnerDir(ownerID), storage.HashName(file.Name), file.Content, file.Size, file.ContentType)
	if err != nil {
		s.logger.Errorw("Create: blob store failed", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	book := &model.Book{
		FilePath:     path,
		FileName:     meta.FileName,
		Size:         meta.Size,
		Height:       meta.Height,
		Width:        meta.Width,
		LastModified: meta.LastModified.UTC(),
	}
	if err := s.books.Create(ctx, ownerID, book); err != nil {
		// запись не создана — файл больше никому не нужен
		if _, delErr := s.blobs.Delete(ctx, path); delErr != nil {
			s.logger.Warnw("Create: orphan blob left after persistence failure", "path", path, "error", delErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Infow("Book created", "id", book.ID, "user_id", ownerID, "path", path)
	return book, nil
}

// Update меняет метаданные книги. Повторный вызов с теми же данными даёт то же состояние.
func (s *BookService) Update(ctx context.Context, actorID int64, id uint64, upd BookUpdate) (*model.Book, error) {
	book, err := s.authorized(ctx, actorID, policy.Update, id)
	if err != nil {
		return nil, err
	}

	cols := upd.columns()
	if len(cols) == 0 {
		return book, nil
	}
	if _, err := s.books.Update(ctx, id, cols); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	updated, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return updated, nil
}

// Destroy удаляет файл книги и, только если файл действительно удалён, саму запись.
// removed=false без ошибки: файла уже не было, запись оставлена как есть.
// Права проверяются до захвата троттлинга: отказ чужому пользователю не блокирует владельца.
func (s *BookService) Destroy(ctx context.Context, actorID int64, id uint64) (removed bool, err error) {
	book, err := s.authorized(ctx, actorID, policy.Delete, id)
	if err != nil {
		return false, err
	}

	key := strconv.FormatUint(id, 10)
	if err := s.throttle.Wait(ctx, key); err != nil {
		if errors.Is(err, throttle.ErrThrottled) {
			return false, ErrThrottled
		}
		s.throttle.Release(context.WithoutCancel(ctx), key)
		return false, err
	}
	// неудачная попытка не должна мешать повторной
	defer func() {
		if !removed {
			s.throttle.Release(context.WithoutCancel(ctx), key)
		}
	}()

	deleted, err := s.blobs.Delete(ctx, book.FilePath)
	if err != nil {
		s.logger.Errorw("Destroy: blob delete failed, record kept", "id", id, "path", book.FilePath, "error", err)
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !deleted {
		s.logger.Warnw("Destroy: blob already absent, record kept", "id", id, "path", book.FilePath)
		return false, nil
	}

	if _, err := s.books.Destroy(ctx, id); err != nil {
		s.logger.Errorw("Destroy: record delete failed after blob removal", "id", id, "error", err)
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Infow("Book destroyed", "id", id, "user_id", book.UserID, "actor_id", actorID)
	return true, nil
}

// Open открывает файл книги на чтение. Вызывающий закрывает reader.
func (s *BookService) Open(ctx context.Context, actorID int64, id uint64) (*model.Book, io.ReadCloser, error) {
	book, err := s.authorized(ctx, actorID, policy.View, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Get(ctx, book.FilePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: file of book %d is missing", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return book, rc, nil
}

func (s *BookService) authorized(ctx context.Context, actorID int64, action policy.Action, id uint64) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	if !s.policy.Can(actorID, action, book) {
		s.logger.Warnw("Access denied", "action", action, "id", id, "actor_id", actorID)
		return nil, ErrForbidden
	}
	return book, nil
}

func (s *BookService) lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
