package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"github.com/templateapi/go-todo/models"
	"github.com/templateapi/go-todo/repository"
)

// PostgresStore persists todo items in a PostgreSQL table. It implements
// repository.Store; one Commit call is one transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, verifies it, and creates the table if
// it does not exist yet.
func NewPostgresStore(uri string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS todo_items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE
	)
	`
	_, err := db.Exec(query)
	return err
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Get(id int) (models.TodoEntity, bool, error) {
	var item models.TodoEntity
	err := s.db.QueryRow(
		"SELECT id, name, is_complete FROM todo_items WHERE id = $1", id,
	).Scan(&item.ID, &item.Name, &item.IsComplete)
	if err == sql.ErrNoRows {
		return models.TodoEntity{}, false, nil
	}
	if err != nil {
		return models.TodoEntity{}, false, err
	}
	return item, true, nil
}

// All returns every row ordered by id, which is the table's stable order
// since ids are assigned in insertion order.
func (s *PostgresStore) All() ([]models.TodoEntity, error) {
	rows, err := s.db.Query("SELECT id, name, is_complete FROM todo_items ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.TodoEntity{}
	for rows.Next() {
		var item models.TodoEntity
		if err := rows.Scan(&item.ID, &item.Name, &item.IsComplete); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM todo_items").Scan(&count)
	return count, err
}

// Commit applies the staged changes inside one transaction and reports the
// total rows affected. Any statement error rolls the whole batch back.
func (s *PostgresStore) Commit(changes []repository.Change) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return -1, err
	}

	total := 0
	for _, change := range changes {
		var res sql.Result
		switch change.Kind {
		case repository.ChangeInsert:
			res, err = tx.Exec(
				"INSERT INTO todo_items (id, name, is_complete) VALUES ($1, $2, $3)",
				change.Item.ID, change.Item.Name, change.Item.IsComplete,
			)
		case repository.ChangeUpdate:
			res, err = tx.Exec(
				"UPDATE todo_items SET name = $1, is_complete = $2 WHERE id = $3",
				change.Item.Name, change.Item.IsComplete, change.ID,
			)
		case repository.ChangeDelete:
			res, err = tx.Exec("DELETE FROM todo_items WHERE id = $1", change.ID)
		}
		if err != nil {
			tx.Rollback()
			return -1, err
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return -1, err
	}
	return total, nil
}
