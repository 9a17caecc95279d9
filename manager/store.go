// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package manager lets a browser-style user fund an upload with a single
// signed transaction without ever exchanging the upload's own encryption
// material with the server: a bootstrap sender account is generated
// server-side, funded by the user, and consumed to run a blocknote save
// once the funding transaction confirms.
package manager

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bitmark-inc/noteledger/constants"
)

// Store is the local keyed blob store queuing bootstrap uploads pending
// their funding transaction, backed by a single sqlite table.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite database at path and
// purges any upload older than constants.UploadTTL.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if nil != err {
		return nil, err
	}

	const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	txid       TEXT PRIMARY KEY,
	content    TEXT,
	file       BLOB,
	params     TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.purgeExpired(); nil != err {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) purgeExpired() error {
	cutoff := time.Now().Add(-constants.UploadTTL)
	_, err := s.db.Exec(`DELETE FROM uploads WHERE created_at < ?`, cutoff)
	return err
}

// Put persists one queued upload. content and file are mutually exclusive:
// a string payload is stored in content, a binary payload in file.
func (s *Store) Put(txID string, content string, file []byte, isString bool, paramsJSON string) error {
	var contentValue sql.NullString
	var fileValue []byte
	if isString {
		contentValue = sql.NullString{String: content, Valid: true}
	} else {
		fileValue = file
	}

	_, err := s.db.Exec(
		`INSERT INTO uploads (txid, content, file, params) VALUES (?, ?, ?, ?)`,
		txID, contentValue, fileValue, paramsJSON,
	)
	return err
}

// QueuedUpload is one row loaded back out of the store.
type QueuedUpload struct {
	Content    string
	File       []byte
	IsString   bool
	ParamsJSON string
}

// Get loads a queued upload by its funding transaction id.
func (s *Store) Get(txID string) (QueuedUpload, bool, error) {
	var content sql.NullString
	var file []byte
	var paramsJSON string

	row := s.db.QueryRow(`SELECT content, file, params FROM uploads WHERE txid = ?`, txID)
	if err := row.Scan(&content, &file, &paramsJSON); nil != err {
		if sql.ErrNoRows == err {
			return QueuedUpload{}, false, nil
		}
		return QueuedUpload{}, false, err
	}

	return QueuedUpload{
		Content:    content.String,
		File:       file,
		IsString:   content.Valid,
		ParamsJSON: paramsJSON,
	}, true, nil
}

// Delete removes a queued upload once it has been run.
func (s *Store) Delete(txID string) error {
	_, err := s.db.Exec(`DELETE FROM uploads WHERE txid = ?`, txID)
	return err
}
