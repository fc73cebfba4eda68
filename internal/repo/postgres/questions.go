package postgres

import (
	"context"

	"github.com/geocoder89/quizvote/internal/domain/question"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewQuestionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *QuestionsRepo {
	return &QuestionsRepo{pool: pool, observer: observer{prom: prom}}
}

func (r *QuestionsRepo) Create(ctx context.Context, q question.Question) (question.Question, error) {
	if err := q.Variant.Check(); err != nil {
		return question.Question{}, err
	}

	var err error
	switch q.Variant {
	case question.VariantFour:
		err = r.observe("questions.create_four", func() error {
			_, e := r.pool.Exec(ctx,
				`INSERT INTO four_option_questions (id, question, a, b, c, d, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				q.ID, q.Question, q.A, q.B, q.C, q.D, q.CreatedAt,
			)
			return e
		})
	case question.VariantTwo:
		err = r.observe("questions.create_two", func() error {
			_, e := r.pool.Exec(ctx,
				`INSERT INTO two_option_questions (id, question, a, b, created_at)
				VALUES ($1,$2,$3,$4,$5)`,
				q.ID, q.Question, q.A, q.B, q.CreatedAt,
			)
			return e
		})
	}

	if err != nil {
		return question.Question{}, err
	}
	return q, nil
}

// Sample draws up to n distinct questions of the variant at random. LIMIT hands back
// fewer rows when the table is short.
func (r *QuestionsRepo) Sample(ctx context.Context, variant question.Variant, n int) (items []question.Question, err error) {
	var rows pgx.Rows

	switch variant {
	case question.VariantFour:
		err = r.observe("questions.sample_four", func() error {
			rows, err = r.pool.Query(ctx,
				`SELECT id, question, a, b, c, d, created_at
				FROM four_option_questions
				ORDER BY random()
				LIMIT $1`, n)
			return err
		})
	case question.VariantTwo:
		err = r.observe("questions.sample_two", func() error {
			rows, err = r.pool.Query(ctx,
				`SELECT id, question, a, b, '', '', created_at
				FROM two_option_questions
				ORDER BY random()
				LIMIT $1`, n)
			return err
		})
	default:
		return nil, variant.Check()
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items = make([]question.Question, 0, n)
	for rows.Next() {
		q := question.Question{Variant: variant}
		if e := rows.Scan(&q.ID, &q.Question, &q.A, &q.B, &q.C, &q.D, &q.CreatedAt); e != nil {
			return nil, e
		}
		items = append(items, q)
	}
	if e := rows.Err(); e != nil {
		return nil, e
	}
	return items, nil
}

func (r *QuestionsRepo) Count(ctx context.Context, variant question.Variant) (int, error) {
	var table string
	switch variant {
	case question.VariantFour:
		table = "four_option_questions"
	case question.VariantTwo:
		table = "two_option_questions"
	default:
		return 0, variant.Check()
	}

	var total int
	err := r.observe("questions.count_"+string(variant), func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&total)
	})
	return total, err
}
