package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func InitTestStore(t *testing.T) *GormStore {
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStore_SetGetOverwrite(t *testing.T) {
	s := InitTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`[]`)))
	got, err := s.Get(ctx, KeyCart)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`[{"id":1,"quantity":2}]`)))
	got, err = s.Get(ctx, KeyCart)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1,"quantity":2}]`, string(got))

	var count int64
	require.NoError(t, s.DB.Model(&Entry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGormStore_MissingKey(t *testing.T) {
	s := InitTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Delete(t *testing.T) {
	s := InitTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyWishlist, []byte(`[]`)))
	require.NoError(t, s.Delete(ctx, KeyWishlist))
	require.NoError(t, s.Delete(ctx, KeyWishlist))

	_, err := s.Get(ctx, KeyWishlist)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestJSONHelpers(t *testing.T) {
	s := InitTestStore(t)
	ctx := context.Background()

	type blob struct {
		Name string `json:"name"`
	}

	var out blob
	found, err := GetJSON(ctx, s, KeyAdminSettings, &out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, SetJSON(ctx, s, KeyAdminSettings, blob{Name: "Beauty Haven"}))
	found, err = GetJSON(ctx, s, KeyAdminSettings, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Beauty Haven", out.Name)

	require.NoError(t, s.Set(ctx, KeyAdminSettings, []byte("{broken")))
	_, err = GetJSON(ctx, s, KeyAdminSettings, &out)
	require.ErrorContains(t, err, "decode admin_settings")
}

func TestOpenValidation(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	require.Error(t, err)

	_, err = OpenPostgres(context.Background(), "")
	require.Error(t, err)
}
