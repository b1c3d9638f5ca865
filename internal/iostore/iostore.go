// Package iostore is for persisting settings and import history.
package iostore

import (
	"sync"

	"github.com/huangsam/sprintboard/internal/contract"
)

// StoreManagerImpl manages the settings and history stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	settings     contract.SettingsStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetSettingsStore returns the SettingsStore.
func (mgr *StoreManagerImpl) GetSettingsStore() contract.SettingsStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.settings
}

// GetHistoryStore returns the HistoryStore.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
