package badger

import (
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/interfaces"
)

// Manager implements interfaces.StorageManager for Badger.
type Manager struct {
	db       *BadgerDB
	kv       interfaces.KeyValueStorage
	identity interfaces.IdentityStore
	logger   *common.Logger
}

// NewManager opens the database and wires its stores.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		db:       db,
		kv:       NewKVStorage(db, logger),
		identity: NewIdentityStore(db, logger),
		logger:   logger,
	}
	logger.Debug().Msg("badger storage manager initialized")
	return m, nil
}

// KeyValueStorage returns the key-value store.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// IdentityStore returns the local identity backend.
func (m *Manager) IdentityStore() interfaces.IdentityStore {
	return m.identity
}

// DB returns the underlying badgerhold store.
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
