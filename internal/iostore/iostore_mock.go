package iostore

import (
	"time"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSettingsStore implements the StoreManager interface.
func (m *MockStoreManager) GetSettingsStore() contract.SettingsStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SettingsStore)
	return store
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockSettingsStore is a mock implementation of SettingsStore for testing.
type MockSettingsStore struct {
	mock.Mock
}

var _ contract.SettingsStore = &MockSettingsStore{} // Compile-time check

// Get implements the SettingsStore interface.
func (m *MockSettingsStore) Get(project string) ([]byte, int64, error) {
	args := m.Called(project)
	data, _ := args.Get(0).([]byte)
	return data, args.Get(1).(int64), args.Error(2)
}

// Set implements the SettingsStore interface.
func (m *MockSettingsStore) Set(project string, value []byte, timestamp int64) error {
	args := m.Called(project, value, timestamp)
	return args.Error(0)
}

// GetStatus implements the SettingsStore interface.
func (m *MockSettingsStore) GetStatus() (schema.SettingsStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SettingsStoreStatus), args.Error(1)
}

// Close implements the SettingsStore interface.
func (m *MockSettingsStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginImport implements the HistoryStore interface.
func (m *MockHistoryStore) BeginImport(run schema.ImportRunRecord) (int64, error) {
	args := m.Called(run)
	return args.Get(0).(int64), args.Error(1)
}

// EndImport implements the HistoryStore interface.
func (m *MockHistoryStore) EndImport(runID int64, endTime time.Time, accepted, rejected, warnings int) error {
	args := m.Called(runID, endTime, accepted, rejected, warnings)
	return args.Error(0)
}

// RecordFeatures implements the HistoryStore interface.
func (m *MockHistoryStore) RecordFeatures(runID int64, features []schema.Feature) error {
	args := m.Called(runID, features)
	return args.Error(0)
}

// RecordAggregates implements the HistoryStore interface.
func (m *MockHistoryStore) RecordAggregates(runID int64, aggs []schema.IterationAggregate) error {
	args := m.Called(runID, aggs)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllImportRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllImportRuns() ([]schema.ImportRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ImportRunRecord)
	return runs, args.Error(1)
}

// GetAllFeatures implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllFeatures() ([]schema.FeatureRecord, error) {
	args := m.Called()
	features, _ := args.Get(0).([]schema.FeatureRecord)
	return features, args.Error(1)
}

// GetAllAggregateSnapshots implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllAggregateSnapshots() ([]schema.AggregateSnapshotRecord, error) {
	args := m.Called()
	snapshots, _ := args.Get(0).([]schema.AggregateSnapshotRecord)
	return snapshots, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
