package mediastore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/assetkit/pkg/media"
)

func ptr[T any](v T) *T { return &v }

func newMedia(path string, thumb *string, scope, owner string, position int) *media.Media {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &media.Media{
		ID:        uuid.New(),
		Disk:      "local",
		Type:      media.TypeImage,
		Path:      path,
		ThumbPath: thumb,
		MIME:      "image/jpeg",
		Size:      1024,
		Scope:     scope,
		OwnerID:   ptr(owner),
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// testRepository runs the shared contract against a store. prefix keeps rows of
// concurrent runs against a shared database apart.
func testRepository(t *testing.T, repo media.Repository, prefix string) {
	ctx := context.Background()
	owner := prefix + "-owner"

	t.Run("create and get", func(t *testing.T) {
		m := newMedia(prefix+"/a.jpg", ptr(prefix+"/a-thumb-80w.jpg"), "products", owner, 1)
		require.NoError(t, repo.Create(ctx, m))

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, m.Path, got.Path)
		require.NotNil(t, got.ThumbPath)
		assert.Equal(t, *m.ThumbPath, *got.ThumbPath)
		assert.Equal(t, *m.OwnerID, *got.OwnerID)
		assert.Equal(t, m.Size, got.Size)
		assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

		err = repo.Create(ctx, m)
		assert.ErrorIs(t, err, media.ErrMediaExists)
	})

	t.Run("nullable columns", func(t *testing.T) {
		m := newMedia(prefix+"/n.png", nil, "banners", owner, 0)
		m.OwnerID = nil
		require.NoError(t, repo.Create(ctx, m))

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ThumbPath)
		assert.Nil(t, got.OwnerID)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, media.ErrMediaNotFound)
	})

	t.Run("update", func(t *testing.T) {
		m := newMedia(prefix+"/u.jpg", nil, "products", owner, 5)
		require.NoError(t, repo.Create(ctx, m))

		m.Position = 9
		m.ThumbPath = ptr(prefix + "/u-thumb-80w.jpg")
		m.UpdatedAt = m.UpdatedAt.Add(time.Minute)
		require.NoError(t, repo.Update(ctx, m))

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, got.Position)
		require.NotNil(t, got.ThumbPath)
		assert.Equal(t, prefix+"/u-thumb-80w.jpg", *got.ThumbPath)

		missing := newMedia("x", nil, "products", owner, 0)
		assert.ErrorIs(t, repo.Update(ctx, missing), media.ErrMediaNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		m := newMedia(prefix+"/d.jpg", nil, "products", owner, 0)
		require.NoError(t, repo.Create(ctx, m))
		require.NoError(t, repo.Delete(ctx, m.ID))

		_, err := repo.Get(ctx, m.ID)
		assert.ErrorIs(t, err, media.ErrMediaNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, m.ID), media.ErrMediaNotFound)
	})

	t.Run("list by owner", func(t *testing.T) {
		listOwner := prefix + "-gallery"
		second := newMedia(prefix+"/l2.jpg", nil, "products", listOwner, 2)
		first := newMedia(prefix+"/l1.jpg", nil, "products", listOwner, 1)
		other := newMedia(prefix+"/l3.jpg", nil, "categories", listOwner, 0)
		for _, m := range []*media.Media{second, first, other} {
			require.NoError(t, repo.Create(ctx, m))
		}

		list, err := repo.ListByOwner(ctx, "products", listOwner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)

		none, err := repo.ListByOwner(ctx, "products", prefix+"-nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("list without owner", func(t *testing.T) {
		scope := prefix + "-unowned"
		unowned := newMedia(prefix+"/u1.jpg", nil, scope, "", 0)
		unowned.OwnerID = nil
		owned := newMedia(prefix+"/u2.jpg", nil, scope, prefix+"-someone", 0)
		require.NoError(t, repo.Create(ctx, unowned))
		require.NoError(t, repo.Create(ctx, owned))

		list, err := repo.ListByOwner(ctx, scope, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, unowned.ID, list[0].ID)
		assert.Nil(t, list[0].OwnerID)
	})

	t.Run("references path", func(t *testing.T) {
		shared := prefix + "/shared.jpg"
		thumb := prefix + "/shared-thumb-80w.jpg"
		a := newMedia(shared, ptr(thumb), "products", owner, 0)
		b := newMedia(shared, ptr(thumb), "categories", owner, 0)
		c := newMedia(prefix+"/other.jpg", ptr(shared), "banners", owner, 0)
		require.NoError(t, repo.Create(ctx, a))

		// a alone never references itself
		ref, err := repo.ReferencesPath(ctx, shared, a.ID)
		require.NoError(t, err)
		assert.False(t, ref)

		ref, err = repo.ReferencesPath(ctx, shared, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, ref)

		require.NoError(t, repo.Create(ctx, b))
		ref, err = repo.ReferencesPath(ctx, shared, a.ID)
		require.NoError(t, err)
		assert.True(t, ref, "b shares the path")

		ref, err = repo.ReferencesPath(ctx, thumb, a.ID)
		require.NoError(t, err)
		assert.True(t, ref, "b shares the thumbnail")

		require.NoError(t, repo.Delete(ctx, b.ID))
		ref, err = repo.ReferencesPath(ctx, shared, a.ID)
		require.NoError(t, err)
		assert.False(t, ref, "deletion is observed without caching")

		// a path referenced only as someone's thumb_path counts too
		require.NoError(t, repo.Create(ctx, c))
		ref, err = repo.ReferencesPath(ctx, shared, a.ID)
		require.NoError(t, err)
		assert.True(t, ref)

		ref, err = repo.ReferencesPath(ctx, prefix+"/unknown.jpg", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, ref)
	})
}
