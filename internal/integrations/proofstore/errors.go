package proofstore

import "errors"

var (
	// ErrInvalidRef возвращается для пустой или некорректной ссылки
	ErrInvalidRef = errors.New("proofstore: invalid reference")

	// ErrRemove возвращается, когда хранилище не смогло удалить файл
	ErrRemove = errors.New("proofstore: remove failed")
)
