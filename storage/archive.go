// Package storage archives executed exchanges in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"httpwrap/application/http/semantic"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("exchange not found")

// Exchange is a recorded transfer.
type Exchange struct {
	ID         string
	Method     string
	URI        string
	StatusLine string
	StatusCode string
	Headers    semantic.Headers
	Body       string
	Duration   time.Duration
	CreatedAt  time.Time
}

type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		uri TEXT NOT NULL,
		status_line TEXT NOT NULL,
		status_code TEXT NOT NULL,
		headers TEXT NOT NULL,
		body BLOB NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "creating exchanges table")
	}
	return nil
}

func (a *Archive) Close() error { return a.db.Close() }

// Record stores ex. Missing ID and CreatedAt are filled in.
func (a *Archive) Record(ctx context.Context, ex *Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	ex.CreatedAt = ex.CreatedAt.UTC()

	headers, err := encodeHeaders(&ex.Headers)
	if err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO exchanges
		(id, method, uri, status_line, status_code, headers, body, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Method, ex.URI, ex.StatusLine, ex.StatusCode,
		string(headers), []byte(ex.Body), ex.Duration.Milliseconds(), ex.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting exchange")
	}
	return nil
}

const selectColumns = `SELECT id, method, uri, status_line, status_code, headers, body, duration_ms, created_at FROM exchanges`

func (a *Archive) Get(ctx context.Context, id string) (*Exchange, error) {
	row := a.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	ex, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return ex, err
}

// List returns the latest exchanges, newest first. limit <= 0 means all.
func (a *Archive) List(ctx context.Context, limit int) ([]*Exchange, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := a.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying exchanges")
	}
	defer rows.Close()

	var exchanges []*Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating exchanges")
	}
	return exchanges, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(s scanner) (*Exchange, error) {
	var (
		ex         Exchange
		headers    string
		body       []byte
		durationMS int64
	)
	err := s.Scan(&ex.ID, &ex.Method, &ex.URI, &ex.StatusLine, &ex.StatusCode,
		&headers, &body, &durationMS, &ex.CreatedAt)
	if err != nil {
		return nil, err
	}

	if ex.Headers, err = decodeHeaders([]byte(headers)); err != nil {
		return nil, err
	}
	ex.Body = string(body)
	ex.Duration = time.Duration(durationMS) * time.Millisecond
	return &ex, nil
}

// headerField is the stored form of one header name. Fields are stored
// as a list to keep the order names were received in.
type headerField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func encodeHeaders(h *semantic.Headers) ([]byte, error) {
	fields := make([]headerField, 0, h.Len())
	for _, name := range h.Names() {
		values, _ := h.Values(name)
		fields = append(fields, headerField{Name: name, Values: values})
	}
	return json.Marshal(fields)
}

func decodeHeaders(data []byte) (semantic.Headers, error) {
	var (
		fields  []headerField
		headers semantic.Headers
	)
	if err := json.Unmarshal(data, &fields); err != nil {
		return headers, errors.Wrap(err, "decoding headers")
	}
	for _, f := range fields {
		headers.Set(f.Name, f.Values...)
	}
	return headers, nil
}
