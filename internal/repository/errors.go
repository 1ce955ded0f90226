package repository

import "errors"

var (
	ErrNotFound      = errors.New("запись не найдена")
	ErrDuplicateCode = errors.New("код задачи уже занят")
	ErrDuplicate     = errors.New("нарушение уникальности")
)
