package service

import (
	"Bookshelf/internal/throttle"
	"errors"
)

// Ошибки сервисного слоя; конкретная причина оборачивается через %w.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrStorage      = errors.New("storage error")
	ErrPersistence  = errors.New("persistence error")
	ErrThrottled    = throttle.ErrThrottled

	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
)
