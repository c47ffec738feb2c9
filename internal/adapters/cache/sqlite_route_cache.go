package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"transport-simulator/internal/domain"
)

// SQLite backed cache for origin->destination route geometry.
// Paths are stored as JSON arrays. Entries older than TTL are treated as misses;
// a zero TTL keeps entries forever.
type SqliteRouteCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

func NewSqliteRouteCache(db *sql.DB, ttl time.Duration) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, TTL: ttl, now: time.Now}
}

func (s *SqliteRouteCache) Get(ctx context.Context, origin, destination string) (domain.Polyline, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return nil, false, errors.New("get route cache: origin and destination must not be empty")
	}

	q := `
	SELECT 
        path,
        updated_at
    FROM route_cache
    WHERE origin = ? 
        AND destination = ?;
	`

	var raw string
	var updatedAt int64
	err := s.DB.QueryRowContext(ctx, q, origin, destination).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.TTL > 0 && s.now().Sub(time.Unix(updatedAt, 0)) > s.TTL {
		return nil, false, nil
	}

	var path domain.Polyline
	if err := json.Unmarshal([]byte(raw), &path); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode path: %w", err)
	}

	return path, true, nil
}

func (s *SqliteRouteCache) Put(ctx context.Context, origin, destination string, path domain.Polyline) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}

	if len(path) == 0 {
		return fmt.Errorf("insert route cache: %w", domain.ErrEmptyPolyline)
	}

	raw, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("insert route cache: encode path: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO route_cache (
        origin,
        destination,
        path,
        updated_at
    )
    VALUES (?, ?, ?, ?)
	`, origin, destination, string(raw), s.now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache origin=%q destination=%q: %w", origin, destination, err)
	}

	return nil
}
