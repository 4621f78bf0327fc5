// Package policy решает, может ли пользователь выполнить действие над книгой.
package policy

import "Bookshelf/internal/model"

// Action — действие над книгой.
type Action string

const (
	View   Action = "view"
	Update Action = "update"
	Delete Action = "delete"
)

// Policy — владелец может всё со своей книгой; администраторы имеют явный допуск ко всем действиям.
type Policy struct {
	admins map[int64]struct{}
}

func New(adminIDs []int64) *Policy {
	p := &Policy{admins: make(map[int64]struct{}, len(adminIDs))}
	for _, id := range adminIDs {
		p.admins[id] = struct{}{}
	}
	return p
}

// IsAdmin сообщает, есть ли у пользователя административный допуск.
func (p *Policy) IsAdmin(actorID int64) bool {
	if p == nil || actorID == 0 {
		return false
	}
	_, ok := p.admins[actorID]
	return ok
}

// Can проверяет право actorID на действие над книгой.
func (p *Policy) Can(actorID int64, action Action, book *model.Book) bool {
	if book == nil || actorID == 0 {
		return false
	}
	switch action {
	case View, Update, Delete:
	default:
		return false
	}
	if book.UserID == actorID {
		return true
	}
	return p.IsAdmin(actorID)
}
