// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by stores for unknown scan ids.
var ErrNotFound = errors.New("scan: record not found")

// Store persists ScanRecords. Implementations must be safe for concurrent
// use and must return deep-enough copies that callers cannot mutate stored
// state.
type Store interface {
	Put(record ScanRecord) error
	Get(id string) (ScanRecord, error)
	List() ([]ScanRecord, error)
	Close() error
}

// =============================================================================
// In-memory store (default)
// =============================================================================

// MemoryStore keeps records in a mutex-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ScanRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]ScanRecord)}
}

func (m *MemoryStore) Put(record ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MemoryStore) Get(id string) (ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return ScanRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) List() ([]ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ScanRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

// =============================================================================
// Badger-backed store
// =============================================================================

// recordKeyPrefix namespaces scan records inside the shared database.
const recordKeyPrefix = "scan/record/"

// BadgerStore persists records as JSON values in BadgerDB, so completed
// scans survive a service restart with identical semantics.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the database at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("scan: open badger store at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Put(record ScanRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("scan: marshal record %s: %w", record.ID, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recordKeyPrefix+record.ID), payload)
	})
}

func (b *BadgerStore) Get(id string) (ScanRecord, error) {
	var rec ScanRecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return ScanRecord{}, err
	}
	return rec, nil
}

func (b *BadgerStore) List() ([]ScanRecord, error) {
	var out []ScanRecord
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(recordKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec ScanRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortRecords(out)
	return out, nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

// sortRecords orders newest-first for listings.
func sortRecords(records []ScanRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
}
