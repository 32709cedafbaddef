package proofstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore подтверждения оплаты в каталоге на диске
type LocalStore struct {
	dir string
}

// NewLocalStore создает хранилище в каталоге dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Remove удаляет файл по ссылке; отсутствующий файл не считается ошибкой
// Из ссылки берется только имя файла, выйти за пределы каталога нельзя
func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	name := filepath.Base(filepath.Clean("/" + strings.TrimSpace(ref)))
	if name == "/" || name == "." {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrRemove, err)
	}
	return nil
}
