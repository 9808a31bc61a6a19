package sync

import (
	"time"

	"github.com/annel0/greenhouse-sim/internal/logging"
)

// Conflict удалённое изменение по ключу, для которого уже применено другое
type Conflict struct {
	LocalChange  *Change // Последнее применённое изменение
	RemoteChange *Change // Пришедшее изменение
	DetectedAt   time.Time
}

// ConflictResolver выбирает, какое изменение остаётся в силе
type ConflictResolver interface {
	Resolve(conflict *Conflict) (*Change, error)
}

// LWWResolver Last-Write-Wins: побеждает изменение с более поздней меткой времени.
// При равных метках остаётся применённое.
type LWWResolver struct{}

// NewLWWResolver создаёт Last-Write-Wins resolver
func NewLWWResolver() ConflictResolver {
	return &LWWResolver{}
}

// Resolve реализует ConflictResolver
func (r *LWWResolver) Resolve(conflict *Conflict) (*Change, error) {
	if conflict.RemoteChange.Timestamp.After(conflict.LocalChange.Timestamp) {
		return conflict.RemoteChange, nil
	}
	logging.GetSyncLogger().Debug("LWW: изменение %s от %s устарело", conflict.RemoteChange.Key, conflict.RemoteChange.SourceRegion)
	return conflict.LocalChange, nil
}
