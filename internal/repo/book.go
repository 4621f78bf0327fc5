package repo

import (
	"Bookshelf/internal/model"
	"context"

	"gorm.io/gorm"
)

// BookRepository — доступ к книгам без бизнес-логики: только фильтрация по владельцу,
// сортировка и find-or-fail. Проверка прав и порядок удаления файла — уровнем выше.
type BookRepository interface {
	// All возвращает все книги (для администраторов).
	All(ctx context.Context) ([]model.Book, error)

	// FindByUserID возвращает книги пользователя; latest=true — сначала новые.
	FindByUserID(ctx context.Context, userID int64, latest bool) ([]model.Book, error)

	// FindByID возвращает gorm.ErrRecordNotFound, если книги нет.
	FindByID(ctx context.Context, id uint64) (*model.Book, error)

	// Create сохраняет книгу, проставляя владельца из userID (значение в b игнорируется).
	Create(ctx context.Context, userID int64, b *model.Book) error

	// Update меняет только разрешённые колонки и сообщает, затронута ли строка.
	Update(ctx context.Context, id uint64, updates map[string]any) (bool, error)

	// Destroy удаляет книгу безусловно.
	Destroy(ctx context.Context, id uint64) (bool, error)
}

type bookRepo struct {
	db *gorm.DB
}

// NewBookRepository создаёт реализацию репозитория для Book.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepo{db: db}
}

func (r *bookRepo) All(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepo) FindByUserID(ctx context.Context, userID int64, latest bool) ([]model.Book, error) {
	q := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "login") }).
		Where("user_id = ?", userID)
	if latest {
		// при равном created_at раньше идёт вставленная позже
		q = q.Order("created_at DESC").Order("id DESC")
	} else {
		q = q.Order("id ASC")
	}

	books := []model.Book{}
	if err := q.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepo) FindByID(ctx context.Context, id uint64) (*model.Book, error) {
	var b model.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepo) Create(ctx context.Context, userID int64, b *model.Book) error {
	b.UserID = userID
	b.User = nil
	return r.db.WithContext(ctx).Omit("User").Create(b).Error
}

func (r *bookRepo) Update(ctx context.Context, id uint64, updates map[string]any) (bool, error) {
	allowed := make(map[string]any, len(updates))
	for _, col := range model.MutableColumns {
		if v, ok := updates[col]; ok {
			allowed[col] = v
		}
	}
	if len(allowed) == 0 {
		return false, nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", id).Updates(allowed)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *bookRepo) Destroy(ctx context.Context, id uint64) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
