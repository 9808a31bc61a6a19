package storage

import (
	"context"
	"errors"

	"github.com/annel0/greenhouse-sim/internal/record"
)

// ErrNotReady хранилище закрыто или ещё не открыто
var ErrNotReady = errors.New("storage: хранилище не готово")

// RecordStore хранилище записей по строковому ключу.
// Ключи имеют вид "<вид>:<идентификатор>", например "greenhouse:<uuid>" или "hatch:1,2,3".
type RecordStore interface {
	// Save сохраняет запись, заменяя предыдущую
	Save(ctx context.Context, key string, rec record.Record) error

	// Load загружает запись; false означает отсутствие ключа, а не ошибку
	Load(ctx context.Context, key string) (record.Record, bool, error)

	// Delete удаляет запись; отсутствующий ключ не ошибка
	Delete(ctx context.Context, key string) error

	// Keys возвращает отсортированные ключи с префиксом
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Persistent объект, который умеет сохраняться в запись (регион, контроллер теплицы, люк)
type Persistent interface {
	WriteTo(rec record.Record) record.Record
	ReadFrom(rec record.Record) error
}

// SaveObject сохраняет объект под ключом
func SaveObject(ctx context.Context, s RecordStore, key string, obj Persistent) error {
	return s.Save(ctx, key, obj.WriteTo(record.New()))
}

// LoadObject восстанавливает объект; false, если записи нет
func LoadObject(ctx context.Context, s RecordStore, key string, obj Persistent) (bool, error) {
	rec, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := obj.ReadFrom(rec); err != nil {
		return false, err
	}
	return true, nil
}
