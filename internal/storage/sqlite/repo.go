package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// Repo is a read-only view over the review dataset. The *sql.DB handle is
// opened and closed by the caller.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) LoadJoinedRows(ctx context.Context) ([]domain.JoinedRow, error) {
	rows, err := r.db.QueryContext(ctx, loadJoinedRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("query joined rows: %w", err)
	}
	defer rows.Close()

	var out []domain.JoinedRow
	for rows.Next() {
		var jr domain.JoinedRow
		var (
			title      sql.NullString
			score      sql.NullFloat64
			bnm        sql.NullInt64
			author     sql.NullString
			authorType sql.NullString
			pubYear    sql.NullInt64
			artist     sql.NullString
			genre      sql.NullString
		)
		if err := rows.Scan(
			&jr.ReviewID,
			&title,
			&score,
			&bnm,
			&author,
			&authorType,
			&pubYear,
			&artist,
			&genre,
		); err != nil {
			return nil, fmt.Errorf("scan joined row: %w", err)
		}

		if title.Valid {
			s := title.String
			jr.Title = &s
		}
		if score.Valid {
			f := score.Float64
			jr.Score = &f
		}
		jr.BestNewMusic = bnm.Valid && bnm.Int64 != 0
		if author.Valid {
			s := author.String
			jr.Author = &s
		}
		if authorType.Valid {
			s := authorType.String
			jr.AuthorType = &s
		}
		if pubYear.Valid {
			y := int(pubYear.Int64)
			jr.PubYear = &y
		}
		if artist.Valid {
			s := artist.String
			jr.Artist = &s
		}
		if genre.Valid {
			s := genre.String
			jr.Genre = &s
		}

		out = append(out, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate joined rows: %w", err)
	}
	return out, nil
}
