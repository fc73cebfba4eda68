package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/quizvote/internal/domain/vote"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VotesRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewVotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *VotesRepo {
	return &VotesRepo{pool: pool, observer: observer{prom: prom}}
}

// slotColumns whitelists the column each slot aggregates over.
var slotColumns = map[vote.Slot]string{
	vote.SlotOne:   "question_one",
	vote.SlotTwo:   "question_two",
	vote.SlotThree: "question_three",
	vote.SlotFour:  "question_four",
}

// InsertIfAbsent stores v unless the user already voted, in a single statement:
// votes_user_uniq decides, so concurrent submissions for one user record exactly one row.
func (r *VotesRepo) InsertIfAbsent(ctx context.Context, v vote.Vote) (bool, error) {
	var tag pgconn.CommandTag

	err := r.observe("votes.insert_if_absent", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `
		INSERT INTO votes (id, user_id, question_one, question_two, question_three, question_four, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT ON CONSTRAINT votes_user_uniq DO NOTHING
	`, v.ID, v.UserID, v.QuestionOne, v.QuestionTwo, v.QuestionThree, v.QuestionFour, v.CreatedAt)
		return e
	})

	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *VotesRepo) GetByUser(ctx context.Context, userID string) (vote.Vote, error) {
	var v vote.Vote

	err := r.observe("votes.get_by_user", func() error {
		return r.pool.QueryRow(ctx, `
		SELECT id, user_id, question_one, question_two, question_three, question_four, created_at
		FROM votes
		WHERE user_id = $1
	`, userID).Scan(&v.ID, &v.UserID, &v.QuestionOne, &v.QuestionTwo, &v.QuestionThree, &v.QuestionFour, &v.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vote.Vote{}, vote.ErrNotFound
		}
		return vote.Vote{}, err
	}
	return v, nil
}

// CountBySlot groups every vote by the slot's value. NULL forms its own group.
func (r *VotesRepo) CountBySlot(ctx context.Context, slot vote.Slot) (counts []vote.OptionCount, err error) {
	col, ok := slotColumns[slot]
	if !ok {
		return nil, vote.ErrInvalidSlot
	}

	var rows pgx.Rows
	err = r.observe("votes.count_by_slot", func() error {
		rows, err = r.pool.Query(ctx, `
		SELECT `+col+` AS slot_value, COUNT(*) AS total
		FROM votes
		GROUP BY `+col+`
		ORDER BY total DESC, `+col+` COLLATE "C" ASC NULLS FIRST
	`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts = make([]vote.OptionCount, 0)
	for rows.Next() {
		var c vote.OptionCount
		if e := rows.Scan(&c.Option, &c.Count); e != nil {
			return nil, e
		}
		counts = append(counts, c)
	}
	if e := rows.Err(); e != nil {
		return nil, e
	}
	return counts, nil
}
