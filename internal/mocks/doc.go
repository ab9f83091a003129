// Package mocks provides centralized test doubles.
//
// Two styles live here: function-field and in-memory fakes (MockJWTService,
// MockPasswordHasher, MemoryUserStore, MemoryTaskStore, RecordingEmitter)
// for behavior-level tests, and testify/mock types (TestifyMockUserStore,
// TestifyMockTaskStore) for tests that need to script failures or assert calls.
//
//	users := mocks.NewMemoryUserStore()
//	tasks := mocks.NewMemoryTaskStore(users)
//	emitter := &mocks.RecordingEmitter{}
package mocks
