package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"email-classifier/internal/model"
	"email-classifier/internal/repository"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresEmailRepository stores classified emails in the stored_emails table. Locations have the
// form stored_emails/<id>.
type PostgresEmailRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresEmailRepository(db *sql.DB) *PostgresEmailRepository {
	return &PostgresEmailRepository{db: db, now: time.Now}
}

func (r *PostgresEmailRepository) Save(ctx context.Context, text string, category model.Category, metadata map[string]interface{}) (string, error) {
	email := model.NewStoredEmail(text, category, metadata, r.now())

	meta, err := json.Marshal(email.Metadata)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode metadata: %v", repository.ErrStorage, err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO stored_emails (id, texto, categoria, criado_em, metadata)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, id, email.Text, email.Category, email.CreatedAt.Time, meta); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return location(id), nil
}

func (r *PostgresEmailRepository) List(ctx context.Context, category string) ([]*model.StoredEmail, error) {
	query := `SELECT id, texto, categoria, criado_em, metadata FROM stored_emails`
	var args []interface{}
	if category != "" {
		c, err := model.ParseCategory(category)
		if err != nil {
			return []*model.StoredEmail{}, nil
		}
		query += ` WHERE categoria = $1`
		args = append(args, c.String())
	}
	query += ` ORDER BY categoria, criado_em DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	defer rows.Close()

	emails := []*model.StoredEmail{}
	for rows.Next() {
		var (
			id        string
			createdAt time.Time
			meta      []byte
		)
		email := &model.StoredEmail{}
		if err := rows.Scan(&id, &email.Text, &email.Category, &createdAt, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
		}
		email.CreatedAt = model.NewTimestamp(createdAt)
		email.Path = location(id)
		if err := json.Unmarshal(meta, &email.Metadata); err != nil || email.Metadata == nil {
			email.Metadata = map[string]interface{}{}
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return emails, nil
}

func location(id string) string {
	return "stored_emails/" + id
}

// InitializeDatabase creates the tables used by the repository if they are missing.
func InitializeDatabase(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS stored_emails (
			id VARCHAR(255) PRIMARY KEY,
			texto TEXT NOT NULL,
			categoria VARCHAR(32) NOT NULL,
			criado_em TIMESTAMP WITH TIME ZONE NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE INDEX IF NOT EXISTS stored_emails_categoria_criado_em_idx
			ON stored_emails (categoria, criado_em DESC)`,
	}

	for _, table := range tables {
		_, err := db.Exec(table)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
