package model

import "time"

// Book — серверная модель книги: метаданные загруженного файла и путь к нему в хранилище.
// UserID и FilePath задаются один раз при создании и больше не меняются.
type Book struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`

	FilePath string `gorm:"not null" json:"filepath"`

	FileName     string    `gorm:"not null" json:"filename"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	Height       int       `gorm:"not null;default:0" json:"height"`
	Width        int       `gorm:"not null;default:0" json:"width"`
	LastModified time.Time `json:"lastModified"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Колонки, которые разрешено менять после создания.
const (
	ColumnFileName     = "file_name"
	ColumnSize         = "size"
	ColumnHeight       = "height"
	ColumnWidth        = "width"
	ColumnLastModified = "last_modified"
)

// MutableColumns — метаданные книги; file_path и user_id сюда намеренно не входят.
var MutableColumns = []string{
	ColumnFileName,
	ColumnSize,
	ColumnHeight,
	ColumnWidth,
	ColumnLastModified,
}
