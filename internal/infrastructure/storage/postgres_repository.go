package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

const recordsTable = "article_records"

// PostgresRepository persists article records for dedup/throttling.
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Init creates the records table when it does not exist yet.
func (r *PostgresRepository) Init(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS article_records (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		pub_date TEXT NOT NULL DEFAULT '',
		times_posted INTEGER NOT NULL DEFAULT 0,
		relevance_score INTEGER NOT NULL DEFAULT 0,
		explanation TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}

	return nil
}

// Get loads one record by id; domain.ErrRecordNotFound when absent.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.ArticleRecord, error) {
	query, args, err := r.sb.
		Select("id", "title", "link", "pub_date", "times_posted", "relevance_score", "explanation").
		From(recordsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("build get query: %w", err)
	}

	var record domain.ArticleRecord
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&record.ID,
		&record.Title,
		&record.Link,
		&record.PubDate,
		&record.TimesPosted,
		&record.RelevanceScore,
		&record.Explanation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArticleRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("query record: %w", err)
	}

	return record, nil
}

// Put upserts the record snapshot.
func (r *PostgresRepository) Put(ctx context.Context, record domain.ArticleRecord) error {
	query, args, err := r.sb.
		Insert(recordsTable).
		Columns("id", "title", "link", "pub_date", "times_posted", "relevance_score", "explanation").
		Values(record.ID, record.Title, record.Link, record.PubDate, record.TimesPosted, record.RelevanceScore, record.Explanation).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET times_posted = EXCLUDED.times_posted,
			    relevance_score = EXCLUDED.relevance_score,
			    explanation = EXCLUDED.explanation,
			    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build put query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	return nil
}

// Query lists records at or above the given relevance score.
func (r *PostgresRepository) Query(ctx context.Context, minScore int) ([]domain.ArticleRecord, error) {
	query, args, err := r.sb.
		Select("id", "title", "link", "pub_date", "times_posted", "relevance_score", "explanation").
		From(recordsTable).
		Where(sq.GtOrEq{"relevance_score": minScore}).
		OrderBy("relevance_score DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.ArticleRecord
	for rows.Next() {
		var record domain.ArticleRecord
		if err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.Link,
			&record.PubDate,
			&record.TimesPosted,
			&record.RelevanceScore,
			&record.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

// Delete removes one record; used by the explicit reset operation.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.
		Delete(recordsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	return nil
}
