package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"
	"transport-simulator/internal/adapters/repositories"
	"transport-simulator/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSqlite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repositories.InitSchema(context.Background(), db))
	return db
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openSqlite(t))

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"100 Main St": {Lat: 43.47, Lon: -80.54},
		"200 King St": {Lat: 43.45, Lon: -80.49},
	}))

	got, err := c.GetMany(ctx, []string{"100 Main St", " 100 Main St ", "missing", ""})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Coordinates{Lat: 43.47, Lon: -80.54}, got["100 Main St"])
}

func TestSqliteGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c := NewSqliteGeocodeCache(openSqlite(t))
	err := c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}})
	assert.Error(t, err)
}

func TestSqliteRouteCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteRouteCache(openSqlite(t), time.Hour)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	path := domain.Polyline{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	require.NoError(t, c.Put(ctx, "A", "B", path))

	got, ok, err := c.Get(ctx, "A", "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, got)

	_, ok, err = c.Get(ctx, "B", "A")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "A", "B")
	require.NoError(t, err)
	assert.False(t, ok, "entry older than TTL must miss")
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	c := NewRedisRouteCache(client, 10*time.Minute)

	_, ok, err := c.Get(ctx, "A", "B")
	require.NoError(t, err)
	assert.False(t, ok)

	path := domain.Polyline{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	require.NoError(t, c.Put(ctx, "A", "B", path))

	got, ok, err := c.Get(ctx, "A", "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, got)

	mr.FastForward(11 * time.Minute)
	_, ok, err = c.Get(ctx, "A", "B")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, c.Put(ctx, "A", "B", nil), domain.ErrEmptyPolyline)
}

func TestRedisRouteCacheReportsCorruptValues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(routeKey("A", "B"), "not json"))

	_, _, err := NewRedisRouteCache(client, 0).Get(context.Background(), "A", "B")
	assert.Error(t, err)
}
