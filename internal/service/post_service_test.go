package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
)

func newTestPostService(t *testing.T) (PostService, *stubProfiles) {
	t.Helper()
	repo, profiles := newFeedFixture(t)
	return NewPostService(repo, profiles), profiles
}

func TestCreatePostRequiresImage(t *testing.T) {
	svc, _ := newTestPostService(t)

	_, err := svc.Create(context.Background(), "a", CreatePostInput{Content: "no image"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Create(context.Background(), "", CreatePostInput{ImageURL: "http://img/1.png"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateAndGetPost(t *testing.T) {
	svc, profiles := newTestPostService(t)
	profiles.profiles["a"] = &Profile{ID: "a", Name: "Alice", AvatarURL: "http://img/a.png"}
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{Content: "hi", ImageURL: "http://img/1.png"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.AuthorName)
	assert.Equal(t, 0, created.LikeCount)
	assert.Empty(t, created.Comments)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "hi", got.Content)
}

func TestGetPostNotFound(t *testing.T) {
	svc, _ := newTestPostService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikeIdempotent(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png"})
	require.NoError(t, err)

	v, err := svc.Like(ctx, created.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)

	// 重复点赞不累计
	v, err = svc.Like(ctx, created.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)
	assert.Equal(t, []string{"b"}, v.Likes)

	v, err = svc.Unlike(ctx, created.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, v.LikeCount)

	// 再取消也是安全的
	v, err = svc.Unlike(ctx, created.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, v.LikeCount)
}

func TestLikeMissingPost(t *testing.T) {
	svc, _ := newTestPostService(t)

	_, err := svc.Like(context.Background(), "missing", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentsKeepInsertionOrder(t *testing.T) {
	svc, profiles := newTestPostService(t)
	profiles.profiles["b"] = &Profile{ID: "b", Name: "Bob"}
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png"})
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		_, err = svc.AddComment(ctx, created.ID, "b", text)
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "third", got.Comments[2].Text)
	assert.Equal(t, "Bob", got.Comments[0].AuthorName)
	assert.NotEmpty(t, got.Comments[0].ID)
}

func TestCommentValidation(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, created.ID, "b", "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.AddComment(ctx, created.ID, "", "hi")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdatePostAuthorGate(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{Content: "v1", ImageURL: "http://img/1.png"})
	require.NoError(t, err)

	content := "hacked"
	_, err = svc.Update(ctx, created.ID, "b", UpdatePostInput{Content: &content})
	assert.ErrorIs(t, err, ErrForbidden)

	content = "v2"
	v, err := svc.Update(ctx, created.ID, "a", UpdatePostInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "v2", v.Content)
	assert.Equal(t, "http://img/1.png", v.ImageURL) // 未传字段不动
}

func TestUpdatePostKeepsLikes(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png"})
	require.NoError(t, err)
	_, err = svc.Like(ctx, created.ID, "b")
	require.NoError(t, err)

	content := "edited"
	v, err := svc.Update(ctx, created.ID, "a", UpdatePostInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)
}

func TestDeletePost(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png"})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID, "b")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(ctx, created.ID, "a"))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCudaMetadataPassThrough(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	kernel := 5
	gpuTime := 1.25
	meta := &model.CudaMetadata{FilterType: "gaussian", KernelSize: &kernel, GpuTimeMs: &gpuTime}
	created, err := svc.Create(ctx, "a", CreatePostInput{ImageURL: "http://img/1.png", CudaMetadata: meta})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CudaMetadata)
	assert.Equal(t, "gaussian", got.CudaMetadata.FilterType)
	require.NotNil(t, got.CudaMetadata.KernelSize)
	assert.Equal(t, 5, *got.CudaMetadata.KernelSize)
	assert.InDelta(t, 1.25, *got.CudaMetadata.GpuTimeMs, 1e-9)
}
