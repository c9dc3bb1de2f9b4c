package question

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads the curated question bank from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FetchSet returns question records in insertion order, optionally filtered
// by category.
func (s *Store) FetchSet(ctx context.Context, req SetRequest) ([]Record, error) {
	query := `SELECT question_id, question_text, choice_a, choice_b, choice_c, choice_d,
		correct_answer, category, difficulty
		FROM quiz_questions`
	args := []any{}
	if req.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, req.Category)
	}
	query += ` ORDER BY created_at`
	if req.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, req.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.ID, &r.QuestionText, &r.ChoiceA, &r.ChoiceB, &r.ChoiceC, &r.ChoiceD,
			&r.CorrectAnswer, &r.Category, &r.Difficulty)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan questions: %w", err)
	}
	return records, nil
}
