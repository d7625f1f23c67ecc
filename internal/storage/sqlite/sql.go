package sqlite

// One row per (review, artist, genre) combination; artists and genres are
// LEFT JOINed so reviews without either still appear (with NULLs) and the
// cleaning pass can count them.
const loadJoinedRowsSQL = `
SELECT
  r.review_id,
  r.title,
  r.score,
  r.is_best_new_music,
  r.author,
  r.author_type,
  r.publication_year,
  a.artist,
  g.genre
FROM reviews r
LEFT JOIN artists a ON a.review_id = r.review_id
LEFT JOIN genres  g ON g.review_id = r.review_id
ORDER BY r.review_id
`
