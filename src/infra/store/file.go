// Package store persists the account table as a single JSON document.
//
// Every operation is a whole-table read-modify-write cycle behind one mutex:
// load immediately before mutation, save immediately after. Writes go to a
// temporary file in the same directory and atomically replace the live file,
// so a crash mid-write can never destroy the table.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/contre95/songvault/src/music"
)

// FileStore is the JSON file implementation of music.Store.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens the store at path, creating an empty table on first run.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(map[string]*music.Account{}); err != nil {
			return nil, fmt.Errorf("failed to initialize store: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) load() (map[string]*music.Account, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	table := map[string]*music.Account{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode store: %w", err)
	}
	for username, acc := range table {
		acc.Username = username
	}
	return table, nil
}

// save serializes the entire account table and atomically replaces the
// durable file. The table is never truncated in place.
func (s *FileStore) save(table map[string]*music.Account) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// GetAccount returns the stored account for the username.
func (s *FileStore) GetAccount(ctx context.Context, username string) (*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return nil, err
	}
	acc, ok := table[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", music.ErrAccountNotFound, username)
	}
	return acc, nil
}

// PutAccount inserts or replaces the whole account record.
func (s *FileStore) PutAccount(ctx context.Context, account *music.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return err
	}
	table[account.Username] = account
	return s.save(table)
}

// UpdateAccount runs mutate against a freshly loaded copy of the account and
// saves the whole table. A mutate error aborts the cycle with nothing written.
func (s *FileStore) UpdateAccount(ctx context.Context, username string, mutate func(*music.Account) error) (*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return nil, err
	}
	acc, ok := table[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", music.ErrAccountNotFound, username)
	}
	if err := mutate(acc); err != nil {
		return nil, err
	}
	if err := s.save(table); err != nil {
		return nil, err
	}
	return acc, nil
}

// Accounts returns every stored account, ordered by username.
func (s *FileStore) Accounts(ctx context.Context) ([]*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return nil, err
	}
	usernames := make([]string, 0, len(table))
	for username := range table {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	accounts := make([]*music.Account, 0, len(table))
	for _, username := range usernames {
		accounts = append(accounts, table[username])
	}
	return accounts, nil
}
