package domain

// JoinedRow is one row of the reviews ⋈ artists ⋈ genres left join, before
// cleaning. Nullable columns surface as pointers.
type JoinedRow struct {
	ReviewID     int64
	Title        *string
	Score        *float64
	BestNewMusic bool
	Author       *string
	AuthorType   *string
	PubYear      *int
	Artist       *string
	Genre        *string
}

// Review is a cleaned record: exactly one genre, non-null score, author and
// publication year. The cleaned dataset is read-only input to everything
// downstream.
type Review struct {
	ReviewID     int64
	Title        string
	Score        float64
	BestNewMusic bool
	Author       string
	AuthorType   string
	Artist       string
	Genre        string
	PubYear      int
}

// CleanReport counts what the cleaning pass dropped and why. Filtering is
// surfaced, never fatal.
type CleanReport struct {
	RowsIn         int
	ReviewsIn      int
	Kept           int
	MissingGenre   int
	MultipleGenres int
	MissingScore   int
	MissingAuthor  int
	MissingYear    int
	PastCutoff     int
}

// GenreExclusion names a genre level removed before model fitting because its
// random-intercept variance cannot be estimated.
type GenreExclusion struct {
	Genre   string
	Authors int
	Obs     int
	Reason  string
}

// GenreYearShare is one cell of the genre-mix-over-time aggregate.
type GenreYearShare struct {
	Year  int
	Genre string
	Count int
	Share float64 // fraction of that year's reviews
}

// YearLowScore is the very-low-score rate for one publication year.
type YearLowScore struct {
	Year       int
	N          int
	NLow       int
	PercentLow float64
}

// GenreLowScore is the very-low-score rate for one genre.
type GenreLowScore struct {
	Genre      string
	N          int
	NLow       int
	PercentLow float64
}
