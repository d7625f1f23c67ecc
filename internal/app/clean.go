package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/michaelamann/Pitchfork/internal/adapters/observability"
	"github.com/michaelamann/Pitchfork/internal/domain"
)

type CleanOptions struct {
	// MaxPubYear drops reviews published after the dataset's collection
	// cutoff. Editorial constant, not a dataset guarantee.
	MaxPubYear int
}

// CleanService turns joined dataset rows into canonical Review records:
// exactly one genre per review, no missing score/author/year, cutoff applied.
type CleanService struct {
	src  domain.ReviewSource
	opts CleanOptions
}

func NewCleanService(src domain.ReviewSource, opts CleanOptions) *CleanService {
	return &CleanService{src: src, opts: opts}
}

// Load reads, groups and filters the dataset. Every drop is counted in the
// report; filtering never fails the run.
func (s *CleanService) Load(ctx context.Context) ([]domain.Review, domain.CleanReport, error) {
	rows, err := s.src.LoadJoinedRows(ctx)
	if err != nil {
		return nil, domain.CleanReport{}, fmt.Errorf("load dataset: %w", err)
	}
	observability.RowsLoaded.Add(float64(len(rows)))

	byReview := map[int64][]domain.JoinedRow{}
	for _, r := range rows {
		byReview[r.ReviewID] = append(byReview[r.ReviewID], r)
	}
	ids := make([]int64, 0, len(byReview))
	for id := range byReview {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rep := domain.CleanReport{RowsIn: len(rows), ReviewsIn: len(ids)}
	var out []domain.Review
	for _, id := range ids {
		group := byReview[id]

		// Group-and-count pass: a review survives only when its joined rows
		// carry exactly one distinct non-null genre.
		genres := map[string]struct{}{}
		for _, r := range group {
			if r.Genre != nil {
				genres[*r.Genre] = struct{}{}
			}
		}
		switch {
		case len(genres) == 0:
			rep.MissingGenre++
			continue
		case len(genres) > 1:
			rep.MultipleGenres++
			continue
		}

		first := group[0]
		switch {
		case first.Score == nil:
			rep.MissingScore++
			continue
		case first.Author == nil || *first.Author == "":
			rep.MissingAuthor++
			continue
		case first.PubYear == nil:
			rep.MissingYear++
			continue
		case *first.PubYear > s.opts.MaxPubYear:
			rep.PastCutoff++
			continue
		}

		var genre string
		for g := range genres {
			genre = g
		}
		out = append(out, domain.Review{
			ReviewID:     id,
			Title:        deref(first.Title),
			Score:        *first.Score,
			BestNewMusic: first.BestNewMusic,
			Author:       *first.Author,
			AuthorType:   deref(first.AuthorType),
			Artist:       firstArtist(group),
			Genre:        genre,
			PubYear:      *first.PubYear,
		})
	}
	rep.Kept = len(out)

	observability.ObserveDropped("missing_genre", rep.MissingGenre)
	observability.ObserveDropped("multiple_genres", rep.MultipleGenres)
	observability.ObserveDropped("missing_score", rep.MissingScore)
	observability.ObserveDropped("missing_author", rep.MissingAuthor)
	observability.ObserveDropped("missing_year", rep.MissingYear)
	observability.ObserveDropped("past_cutoff", rep.PastCutoff)

	log.Info().
		Int("rows", rep.RowsIn).
		Int("reviews", rep.ReviewsIn).
		Int("kept", rep.Kept).
		Int("missing_genre", rep.MissingGenre).
		Int("multiple_genres", rep.MultipleGenres).
		Int("missing_score", rep.MissingScore).
		Int("missing_author", rep.MissingAuthor).
		Int("missing_year", rep.MissingYear).
		Int("past_cutoff", rep.PastCutoff).
		Msg("dataset cleaned")

	return out, rep, nil
}

func firstArtist(rows []domain.JoinedRow) string {
	for _, r := range rows {
		if r.Artist != nil && *r.Artist != "" {
			return *r.Artist
		}
	}
	return ""
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
