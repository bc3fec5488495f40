package repository

import (
	"context"
	"testing"

	"dairyflow/internal/model"

	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func TestCollection_ScopedByCompany(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item]()

	c.Insert(ctx, "acme", "1", item{ID: "1", Name: "Bessie"})
	c.Insert(ctx, "acme", "2", item{ID: "2", Name: "Daisy"})
	c.Insert(ctx, "other", "3", item{ID: "3", Name: "Molly"})

	require.Equal(t, []item{{"1", "Bessie"}, {"2", "Daisy"}}, c.List(ctx, "acme"))
	require.Len(t, c.List(ctx, "other"), 1)
	require.Empty(t, c.List(ctx, "nobody"))

	_, err := c.Get(ctx, "other", "1")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCollection_ReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item]()
	c.Insert(ctx, "acme", "1", item{ID: "1", Name: "Bessie"})
	c.Insert(ctx, "acme", "2", item{ID: "2", Name: "Daisy"})

	require.NoError(t, c.Replace(ctx, "acme", "1", item{ID: "1", Name: "Bess"}))
	require.ErrorIs(t, c.Replace(ctx, "acme", "9", item{}), ErrRecordNotFound)

	got, err := c.Get(ctx, "acme", "1")
	require.NoError(t, err)
	require.Equal(t, "Bess", got.Name)

	require.NoError(t, c.Delete(ctx, "acme", "1"))
	require.ErrorIs(t, c.Delete(ctx, "acme", "1"), ErrRecordNotFound)
	require.Equal(t, []item{{"2", "Daisy"}}, c.List(ctx, "acme"))
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Email: "Owner@Acme.com", PasswordHash: []byte("h1")}))
	require.ErrorIs(t, repo.Create(ctx, &model.User{ID: "u2", Email: " owner@acme.com"}), ErrEmailTaken)

	u, err := repo.GetByEmail(ctx, "owner@acme.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	require.NoError(t, repo.UpdatePassword(ctx, "u1", []byte("h2")))
	u, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []byte("h2"), u.PasswordHash)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, repo.UpdatePassword(ctx, "missing", nil), ErrUserNotFound)
}
