package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const movieColumns = "id, sequence, title, release_date, tagline, overview, url, created_at, updated_at"

// GenreCount is one row of the genre catalog.
type GenreCount struct {
	Name  string
	Count int
}

// MovieRepository persists [models.PersistedMovie] rows and their genres.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create inserts a movie with its genres, assigning a sequence and, when missing, an ID.
func (r *MovieRepository) Create(movie *models.PersistedMovie) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insert(tx, movie); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MovieRepository) insert(tx *sql.Tx, movie *models.PersistedMovie) error {
	if movie.ID() == "" {
		movie.SetID(shared.GenerateID())
	}
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := nextSequence(tx, "movies")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	movie.SetSequence(sequence)

	rec := movie.Record()
	query := `
		INSERT INTO movies (id, sequence, title, release_date, tagline, overview, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		movie.ID(),
		sequence,
		rec.Title,
		rec.ReleaseDate,
		rec.Tagline,
		rec.Overview,
		rec.URL,
		movie.CreatedAt(),
		movie.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	for i, genre := range rec.Genres {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO movie_genres (movie_id, genre, position) VALUES (?, ?, ?)",
			movie.ID(), genre, i,
		); err != nil {
			return fmt.Errorf("failed to insert genre %q: %w", genre, err)
		}
	}
	return nil
}

// Get retrieves a movie by ID. It wraps [shared.ErrMovieNotFound] when no row matches.
func (r *MovieRepository) Get(ctx context.Context, id string) (*models.PersistedMovie, error) {
	query := "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	genres, err := r.genresFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	rec := movie.Record()
	rec.Genres = genres[id]
	movie.SetRecord(rec)
	return movie, nil
}

// Page returns up to limit records starting at offset in sequence order.
// A non-empty genre restricts the page to movies carrying that genre.
func (r *MovieRepository) Page(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", shared.ErrInvalidArgument, offset, limit)
	}

	query := "SELECT " + movieColumns + " FROM movies"
	args := []any{}
	if genre != "" {
		query += " WHERE id IN (SELECT movie_id FROM movie_genres WHERE genre = ?)"
		args = append(args, genre)
	}
	query += " ORDER BY sequence ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.PersistedMovie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.ID()
	}
	genres, err := r.genresFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]models.MovieRecord, len(movies))
	for i, m := range movies {
		rec := m.Record()
		if g, ok := genres[m.ID()]; ok {
			rec.Genres = g
		}
		records[i] = rec
	}
	return records, nil
}

// genresFor loads the genres of each movie in ids, keeping their insertion order.
func (r *MovieRepository) genresFor(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT movie_id, genre FROM movie_genres WHERE movie_id IN ("+placeholders+") ORDER BY movie_id, position",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, genre string
		if err := rows.Scan(&id, &genre); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		out[id] = append(out[id], genre)
	}
	return out, rows.Err()
}

// GenreCounts returns every genre with the number of movies carrying it, ordered by name.
func (r *MovieRepository) GenreCounts(ctx context.Context) ([]GenreCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT genre, COUNT(*)
		FROM movie_genres
		GROUP BY genre
		ORDER BY genre ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre counts: %w", err)
	}
	defer rows.Close()

	counts := []GenreCount{}
	for rows.Next() {
		var c GenreCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan genre count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// Count returns the number of movies, restricted to genre when it is non-empty.
func (r *MovieRepository) Count(ctx context.Context, genre string) (int, error) {
	var (
		count int
		err   error
	)
	if genre == "" {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movie_genres WHERE genre = ?", genre).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}

// Seed inserts records in a single transaction, skipping IDs that already exist.
// It returns the number of movies inserted.
func (r *MovieRepository) Seed(ctx context.Context, records []models.MovieRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, rec := range records {
		if rec.ID != "" {
			var exists bool
			if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM movies WHERE id = ?)", rec.ID).Scan(&exists); err != nil {
				return 0, fmt.Errorf("failed to check movie %s: %w", rec.ID, err)
			}
			if exists {
				continue
			}
		}

		if err := r.insert(tx, models.NewPersistedMovie(0, rec)); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", rec.Title, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanMovie scans one row selected with movieColumns. Genres are loaded separately.
func scanMovie(row scanner) (*models.PersistedMovie, error) {
	var (
		id        string
		sequence  int
		rec       models.MovieRecord
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &rec.Title, &rec.ReleaseDate, &rec.Tagline, &rec.Overview, &rec.URL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}

	return models.RestorePersistedMovie(id, sequence, rec, createdAt, updatedAt), nil
}
