// This file implements document operations for one collection: JSON bodies
// in a two-column table, with predicates compiled to json_extract
// comparisons.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/larder/internal/engine"
)

var _ engine.Collection = (*Collection)(nil)

// Collection is one document set inside an Engine's file.
type Collection struct {
	db    *sql.DB
	table string
}

// predicateSQL compiles pred into a WHERE clause over json_extract. An empty
// predicate yields no clause and matches every row.
func predicateSQL(pred engine.Predicate) (string, []any) {
	if len(pred) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(pred))
	args := make([]any, 0, 2*len(pred))
	for field, want := range pred {
		conds = append(conds, "json_extract(body, ?) = ?")
		args = append(args, "$."+field, want)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Upsert replaces the single document matching pred, or inserts doc if
// nothing matches. The select-then-write pair runs in one SQL transaction.
func (c *Collection) Upsert(doc engine.Document, pred engine.Predicate) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	where, args := predicateSQL(pred)
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM "+c.table+where+" LIMIT 1", args...).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec("INSERT INTO "+c.table+" (body) VALUES (?)", string(body)); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
	case err != nil:
		return fmt.Errorf("matching document: %w", err)
	default:
		if _, err := tx.Exec("UPDATE "+c.table+" SET body = ? WHERE id = ?", string(body), id); err != nil {
			return fmt.Errorf("replacing document: %w", err)
		}
	}

	return tx.Commit()
}

// Get returns the first document matching pred.
func (c *Collection) Get(pred engine.Predicate) (engine.Document, bool, error) {
	where, args := predicateSQL(pred)
	var body string
	err := c.db.QueryRow("SELECT body FROM "+c.table+where+" LIMIT 1", args...).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying document: %w", err)
	}
	doc, err := decodeBody(body)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Remove deletes every document matching pred and reports the count.
func (c *Collection) Remove(pred engine.Predicate) (int, error) {
	where, args := predicateSQL(pred)
	res, err := c.db.Exec("DELETE FROM "+c.table+where, args...)
	if err != nil {
		return 0, fmt.Errorf("removing documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed documents: %w", err)
	}
	return int(n), nil
}

// All returns every document in the collection.
func (c *Collection) All() ([]engine.Document, error) {
	return c.Search(nil)
}

// Search returns every document matching pred.
func (c *Collection) Search(pred engine.Predicate) ([]engine.Document, error) {
	where, args := predicateSQL(pred)
	rows, err := c.db.Query("SELECT body FROM "+c.table+where, args...)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var docs []engine.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func decodeBody(body string) (engine.Document, error) {
	var doc engine.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}
