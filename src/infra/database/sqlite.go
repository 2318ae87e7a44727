// Package database is the SQLite implementation of music.Store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/contre95/songvault/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore stores the account table in an embedded SQLite database.
// Each account is written as a whole record inside one transaction, matching
// the read-modify-write discipline of the file store.
type SqliteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSqliteStore opens (and if needed creates) the database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			role TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS songs (
			account TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			file_ref TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (account, id),
			FOREIGN KEY (account) REFERENCES accounts(username)
		);

		CREATE TABLE IF NOT EXISTS credits (
			account TEXT NOT NULL,
			song_id TEXT NOT NULL,
			artist TEXT NOT NULL,
			credits TEXT NOT NULL,
			PRIMARY KEY (account, song_id),
			FOREIGN KEY (account, song_id) REFERENCES songs(account, id)
		);

		CREATE TABLE IF NOT EXISTS collections (
			account TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (account, kind, name),
			FOREIGN KEY (account) REFERENCES accounts(username)
		);

		CREATE TABLE IF NOT EXISTS collection_members (
			account TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			song_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (account, kind, name, song_id),
			FOREIGN KEY (account, kind, name) REFERENCES collections(account, kind, name)
		);
	`)
	return err
}

// Close closes the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) loadAccount(ctx context.Context, username string) (*music.Account, error) {
	acc := &music.Account{Username: username}
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT password, role FROM accounts WHERE username = ?`, username).
		Scan(&acc.Password, &role)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", music.ErrAccountNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	acc.Role = music.Role(role)

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, file_ref FROM songs WHERE account = ? ORDER BY position`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	defer rows.Close()
	acc.Songs = []*music.Song{}
	for rows.Next() {
		song := &music.Song{}
		if err := rows.Scan(&song.ID, &song.Title, &song.FileRef); err != nil {
			return nil, err
		}
		acc.Songs = append(acc.Songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	creditRows, err := s.db.QueryContext(ctx, `SELECT song_id, artist, credits FROM credits WHERE account = ?`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}
	defer creditRows.Close()
	acc.Credits = map[string]*music.Credit{}
	for creditRows.Next() {
		var songID string
		credit := &music.Credit{}
		if err := creditRows.Scan(&songID, &credit.Artist, &credit.Credits); err != nil {
			return nil, err
		}
		acc.Credits[songID] = credit
	}
	if err := creditRows.Err(); err != nil {
		return nil, err
	}

	acc.Albums = []*music.Collection{}
	acc.EPs = []*music.Collection{}
	acc.Playlists = []*music.Collection{}
	for _, kind := range []music.Kind{music.KindAlbum, music.KindEP, music.KindPlaylist} {
		collections, err := s.loadCollections(ctx, username, kind)
		if err != nil {
			return nil, err
		}
		*acc.Collections(kind) = collections
	}
	return acc, nil
}

func (s *SqliteStore) loadCollections(ctx context.Context, username string, kind music.Kind) ([]*music.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM collections WHERE account = ? AND kind = ? ORDER BY position`, username, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	defer rows.Close()

	collections := []*music.Collection{}
	for rows.Next() {
		c := &music.Collection{Members: []string{}}
		if err := rows.Scan(&c.Name); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range collections {
		memberRows, err := s.db.QueryContext(ctx,
			`SELECT song_id FROM collection_members WHERE account = ? AND kind = ? AND name = ? ORDER BY position`,
			username, string(kind), c.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection members: %w", err)
		}
		for memberRows.Next() {
			var songID string
			if err := memberRows.Scan(&songID); err != nil {
				memberRows.Close()
				return nil, err
			}
			c.Members = append(c.Members, songID)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return nil, err
		}
		memberRows.Close()
	}
	return collections, nil
}

// saveAccount rewrites the account's rows inside one transaction.
func (s *SqliteStore) saveAccount(ctx context.Context, acc *music.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM collection_members WHERE account = ?`,
		`DELETE FROM collections WHERE account = ?`,
		`DELETE FROM credits WHERE account = ?`,
		`DELETE FROM songs WHERE account = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, acc.Username); err != nil {
			return fmt.Errorf("failed to clear account rows: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (username, password, role) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET password = excluded.password, role = excluded.role`,
		acc.Username, acc.Password, string(acc.Role)); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	for i, song := range acc.Songs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO songs (account, id, title, file_ref, position) VALUES (?, ?, ?, ?, ?)`,
			acc.Username, song.ID, song.Title, song.FileRef, i); err != nil {
			return fmt.Errorf("failed to save song %s: %w", song.ID, err)
		}
	}
	for songID, credit := range acc.Credits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credits (account, song_id, artist, credits) VALUES (?, ?, ?, ?)`,
			acc.Username, songID, credit.Artist, credit.Credits); err != nil {
			return fmt.Errorf("failed to save credit for %s: %w", songID, err)
		}
	}
	for _, kind := range []music.Kind{music.KindAlbum, music.KindEP, music.KindPlaylist} {
		for i, c := range *acc.Collections(kind) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO collections (account, kind, name, position) VALUES (?, ?, ?, ?)`,
				acc.Username, string(kind), c.Name, i); err != nil {
				return fmt.Errorf("failed to save collection %q: %w", c.Name, err)
			}
			for j, songID := range c.Members {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO collection_members (account, kind, name, song_id, position) VALUES (?, ?, ?, ?, ?)`,
					acc.Username, string(kind), c.Name, songID, j); err != nil {
					return fmt.Errorf("failed to save member %s of %q: %w", songID, c.Name, err)
				}
			}
		}
	}
	return tx.Commit()
}

// GetAccount returns the stored account for the username.
func (s *SqliteStore) GetAccount(ctx context.Context, username string) (*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAccount(ctx, username)
}

// PutAccount inserts or replaces the whole account record.
func (s *SqliteStore) PutAccount(ctx context.Context, account *music.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAccount(ctx, account)
}

// UpdateAccount loads the account, applies mutate and rewrites the record.
func (s *SqliteStore) UpdateAccount(ctx context.Context, username string, mutate func(*music.Account) error) (*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.loadAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := mutate(acc); err != nil {
		return nil, err
	}
	if err := s.saveAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Accounts returns every stored account, ordered by username.
func (s *SqliteStore) Accounts(ctx context.Context) ([]*music.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT username FROM accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	usernames := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			rows.Close()
			return nil, err
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	accounts := make([]*music.Account, 0, len(usernames))
	for _, username := range usernames {
		acc, err := s.loadAccount(ctx, username)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
