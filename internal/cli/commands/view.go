package commands

import "time"

// bookView — книга в ответе сервера.
type bookView struct {
	ID           uint64    `json:"id"`
	FileName     string    `json:"filename"`
	FilePath     string    `json:"filepath"`
	Size         int64     `json:"size"`
	Height       int       `json:"height"`
	Width        int       `json:"width"`
	LastModified time.Time `json:"lastModified"`
}
