package draft

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexipayslip/internal/domain/payslip"
	cryptoutil "flexipayslip/internal/platform/crypto"
	"flexipayslip/internal/platform/db"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func sampleDraft(now time.Time) Draft {
	doc := payslip.Reset()
	doc.Company.CompanyName = "Acme"
	doc.Earnings[0].Amount = "50000"
	return Draft{
		ID:        uuid.NewString(),
		Document:  doc,
		Theme:     "modern",
		Logo:      []byte{0x89, 'P', 'N', 'G'},
		LogoType:  "image/png",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool := testPool(t)
	key, err := cryptoutil.GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{"plain", ""},
		{"sealed", key},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealer, err := cryptoutil.New(tt.key)
			require.NoError(t, err)
			store := NewStore(pool, sealer)
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Microsecond)
			d := sampleDraft(now)

			require.NoError(t, store.Put(ctx, d))
			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, d.Document, got.Document)
			assert.Equal(t, d.Theme, got.Theme)
			assert.Equal(t, d.Logo, got.Logo)
			assert.True(t, d.UpdatedAt.Equal(got.UpdatedAt))

			d.Theme = "classic"
			d.UpdatedAt = now.Add(time.Minute)
			require.NoError(t, store.Put(ctx, d))
			got, err = store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, "classic", got.Theme)

			require.NoError(t, store.Delete(ctx, d.ID))
			_, err = store.Get(ctx, d.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Delete(ctx, d.ID), ErrNotFound)
		})
	}
}

func TestPostgresStoreSealedWithoutKey(t *testing.T) {
	pool := testPool(t)
	key, err := cryptoutil.GenerateKey()
	require.NoError(t, err)
	sealer, err := cryptoutil.New(key)
	require.NoError(t, err)
	ctx := context.Background()

	d := sampleDraft(time.Now().UTC())
	require.NoError(t, NewStore(pool, sealer).Put(ctx, d))
	t.Cleanup(func() { _ = NewStore(pool, sealer).Delete(ctx, d.ID) })

	_, err = NewStore(pool, nil).Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrSealed)
}

func TestPostgresStoreDeleteIdle(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := sampleDraft(now.Add(-48 * time.Hour))
	fresh := sampleDraft(now)
	require.NoError(t, store.Put(ctx, stale))
	require.NoError(t, store.Put(ctx, fresh))
	t.Cleanup(func() { _ = store.Delete(ctx, fresh.ID) })

	purged, err := store.DeleteIdle(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	_, err = store.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
