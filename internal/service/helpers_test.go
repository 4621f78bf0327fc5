package service

import (
	"Bookshelf/internal/model"
	"Bookshelf/internal/policy"
	"Bookshelf/internal/repo"
	"Bookshelf/internal/storage"
	"Bookshelf/internal/throttle"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv — сервис книг поверх SQLite в памяти и MemoryStorage.
type testEnv struct {
	db    *gorm.DB
	books repo.BookRepository
	blobs *storage.MemoryStorage
	svc   *BookService
	alice *model.User
	bob   *model.User
	admin *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.InitDB(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	env := &testEnv{db: db, books: repo.NewBookRepository(db), blobs: storage.NewMemoryStorage()}
	env.alice = mkUser(t, db, "alice")
	env.bob = mkUser(t, db, "bob")
	env.admin = mkUser(t, db, "root")
	env.svc = NewBookService(env.books, env.blobs, policy.New([]int64{env.admin.ID}), throttle.Pause(0), zap.NewNop().Sugar())
	return env
}

func mkUser(t *testing.T, db *gorm.DB, login string) *model.User {
	t.Helper()
	u := &model.User{Login: login, Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func upload(name, content string) FileUpload {
	return FileUpload{Name: name, ContentType: "image/jpeg", Size: int64(len(content)), Content: strings.NewReader(content)}
}

func meta(name string, size int64) BookMeta {
	return BookMeta{FileName: name, Size: size, Height: 100, Width: 80, LastModified: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// mustCreate создаёт книгу владельца и падает при ошибке.
func (e *testEnv) mustCreate(t *testing.T, owner *model.User, name, content string) *model.Book {
	t.Helper()
	b, err := e.svc.Create(context.Background(), owner.ID, upload(name, content), meta(name, int64(len(content))))
	require.NoError(t, err)
	return b
}

func (e *testEnv) exists(t *testing.T, id uint64) bool {
	t.Helper()
	_, err := e.books.FindByID(context.Background(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

// faultyStorage — MemoryStorage с управляемыми ошибками.
type faultyStorage struct {
	*storage.MemoryStorage
	putErr error
	delErr error
}

func (f *faultyStorage) Put(ctx context.Context, dir, name string, r io.Reader, size int64, ct string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	return f.MemoryStorage.Put(ctx, dir, name, r, size, ct)
}

func (f *faultyStorage) Delete(ctx context.Context, p string) (bool, error) {
	if f.delErr != nil {
		return false, f.delErr
	}
	return f.MemoryStorage.Delete(ctx, p)
}

// mockBookRepo — мок для repo.BookRepository.
type mockBookRepo struct{ mock.Mock }

func (m *mockBookRepo) All(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) FindByUserID(ctx context.Context, userID int64, latest bool) ([]model.Book, error) {
	args := m.Called(ctx, userID, latest)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) FindByID(ctx context.Context, id uint64) (*model.Book, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*model.Book); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookRepo) Create(ctx context.Context, userID int64, b *model.Book) error {
	return m.Called(ctx, userID, b).Error(0)
}

func (m *mockBookRepo) Update(ctx context.Context, id uint64, updates map[string]any) (bool, error) {
	args := m.Called(ctx, id, updates)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookRepo) Destroy(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ repo.BookRepository = (*mockBookRepo)(nil)

// mockThrottle — мок для throttle.Throttle.
type mockThrottle struct{ mock.Mock }

func (m *mockThrottle) Wait(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockThrottle) Release(ctx context.Context, key string) {
	m.Called(ctx, key)
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, rc)
	require.NoError(t, err)
	return buf.String()
}
