package faqrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-kb/internal/domain/faq"
)

const recordColumns = `id, question_variations, answers, department, intent, entities, context`

// PostgresRepository implements faq.Repository using pgx. Array fields live
// in JSONB columns so a record keeps its document shape.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the backing table and department index if missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS faq_records (
			id                  TEXT PRIMARY KEY,
			question_variations JSONB NOT NULL DEFAULT '[]'::jsonb,
			answers             JSONB NOT NULL DEFAULT '[]'::jsonb,
			department          TEXT NOT NULL,
			intent              TEXT NOT NULL,
			entities            JSONB NOT NULL DEFAULT '[]'::jsonb,
			context             TEXT NOT NULL DEFAULT '',
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create faq_records: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS faq_records_department_idx ON faq_records (department)
	`); err != nil {
		return fmt.Errorf("create department index: %w", err)
	}
	return nil
}

// FindAll returns every record ordered by creation.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]faq.Record, error) {
	return r.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM faq_records
		ORDER BY created_at, id
	`)
}

// FindByDepartment filters on the canonical department.
func (r *PostgresRepository) FindByDepartment(ctx context.Context, department string) ([]faq.Record, error) {
	return r.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM faq_records
		WHERE department = $1
		ORDER BY created_at, id
	`, department)
}

// Search pushes the all-terms predicate into SQL: every pattern must match
// within one field value, and any field may satisfy it.
func (r *PostgresRepository) Search(ctx context.Context, query faq.SearchQuery) ([]faq.Record, error) {
	patterns := likePatterns(query.Terms)
	if len(patterns) == 0 {
		return nil, nil
	}
	return r.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM faq_records
		WHERE EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(question_variations) AS v(value)
				WHERE v.value ILIKE ALL ($1::text[])
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(answers) AS a(value)
				WHERE a.value->>'text' ILIKE ALL ($1::text[])
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(entities) AS e(value)
				WHERE e.value ILIKE ALL ($1::text[])
			)
			OR intent ILIKE ALL ($1::text[])
			OR context ILIKE ALL ($1::text[])
		ORDER BY created_at, id
	`, patterns)
}

// Insert stores a new row with a generated UUID.
func (r *PostgresRepository) Insert(ctx context.Context, record faq.Record) (faq.Record, error) {
	record.ID = uuid.NewString()
	variations, answers, entities, err := encodeArrays(record)
	if err != nil {
		return faq.Record{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO faq_records (id, question_variations, answers, department, intent, entities, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+recordColumns,
		record.ID, variations, answers, record.Department, record.Intent, entities, record.Context)
	return scanRecord(row)
}

// UpdateByID writes only the patched columns.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, patch faq.Patch) (faq.Record, bool, error) {
	sets, args, err := buildUpdateSet(patch)
	if err != nil {
		return faq.Record{}, false, err
	}
	if len(sets) == 0 {
		return faq.Record{}, false, errors.New("empty patch")
	}
	args = append(args, id)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE faq_records
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args), recordColumns), args...)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return record, true, nil
}

// DeleteByID removes the row and returns what was deleted.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (faq.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM faq_records
		WHERE id = $1
		RETURNING `+recordColumns, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return record, true, nil
}

func (r *PostgresRepository) queryRecords(ctx context.Context, sql string, args ...any) ([]faq.Record, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []faq.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (faq.Record, error) {
	var (
		record                         faq.Record
		variations, answers, entities []byte
	)
	if err := row.Scan(&record.ID, &variations, &answers, &record.Department, &record.Intent, &entities, &record.Context); err != nil {
		return faq.Record{}, err
	}
	if err := json.Unmarshal(variations, &record.QuestionVariations); err != nil {
		return faq.Record{}, fmt.Errorf("decode question_variations: %w", err)
	}
	if err := json.Unmarshal(answers, &record.Answers); err != nil {
		return faq.Record{}, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(entities, &record.Entities); err != nil {
		return faq.Record{}, fmt.Errorf("decode entities: %w", err)
	}
	return record, nil
}

func encodeArrays(record faq.Record) (variations, answers, entities []byte, err error) {
	if variations, err = encodeJSONB(record.QuestionVariations); err != nil {
		return nil, nil, nil, err
	}
	if answers, err = encodeJSONB(record.Answers); err != nil {
		return nil, nil, nil, err
	}
	if entities, err = encodeJSONB(record.Entities); err != nil {
		return nil, nil, nil, err
	}
	return variations, answers, entities, nil
}

// encodeJSONB always yields a JSON array, never null.
func encodeJSONB[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// buildUpdateSet renders the SET clause for the supplied patch fields.
func buildUpdateSet(patch faq.Patch) ([]string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.QuestionVariations != nil {
		raw, err := encodeJSONB(*patch.QuestionVariations)
		if err != nil {
			return nil, nil, err
		}
		add("question_variations", raw)
	}
	if patch.Answers != nil {
		raw, err := encodeJSONB(*patch.Answers)
		if err != nil {
			return nil, nil, err
		}
		add("answers", raw)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.Intent != nil {
		add("intent", *patch.Intent)
	}
	if patch.Entities != nil {
		raw, err := encodeJSONB(*patch.Entities)
		if err != nil {
			return nil, nil, err
		}
		add("entities", raw)
	}
	if patch.Context != nil {
		add("context", *patch.Context)
	}
	return sets, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePatterns wraps each term as a literal substring pattern.
func likePatterns(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		out = append(out, "%"+likeEscaper.Replace(term)+"%")
	}
	return out
}

var _ faq.Repository = (*PostgresRepository)(nil)
