package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"transport-simulator/internal/domain"
)

// SQLite backed cache mapping address strings to geographic coordinates.
// Address keys are expected to be consistent (e.g., normalized)
// by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached coordinates for the given addresses.
func (s *SqliteGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, 0, len(uniq))
	for _, a := range uniq {
		args = append(args, a)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT 
        address,
        lon,
        lat
    FROM geocode_cache
    WHERE address IN (%s);
	`, placeholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(uniq))
}

// Store address -> coordinate mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	return putGeocodes(ctx, s.DB, `
	INSERT OR REPLACE INTO geocode_cache (
        address,
        lon,
        lat
    )
    VALUES (?, ?, ?);
	`, results)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
