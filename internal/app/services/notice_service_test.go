package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

func TestNoticeWritesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := env.services.NoticeService
	user := env.register(t, "user")
	admin := env.admin(t, "admin")

	req := &dto.CreateNoticeRequest{Title: "Maintenance", Content: "Down at 2am", Category: "maintenance"}
	_, err := svc.CreateNotice(env.ctx, user, req)
	assert.ErrorIs(t, err, authz.ErrAdminOnly)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	notice, err := svc.CreateNotice(env.ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, "admin name", notice.Author.Name)
	assert.Equal(t, 0, notice.Views)

	title := "Changed"
	_, err = svc.UpdateNotice(env.ctx, user, notice.ID, &dto.UpdateNoticeRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, svc.DeleteNotice(env.ctx, user, notice.ID), apperrors.ErrPermissionDenied)

	pinned := true
	updated, err := svc.UpdateNotice(env.ctx, admin, notice.ID, &dto.UpdateNoticeRequest{Title: &title, IsPinned: &pinned})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, "Down at 2am", updated.Content)
	assert.True(t, updated.IsPinned)

	bad := "gossip"
	_, err = svc.UpdateNotice(env.ctx, admin, notice.ID, &dto.UpdateNoticeRequest{Category: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.DeleteNotice(env.ctx, admin, notice.ID))
	assert.ErrorIs(t, svc.DeleteNotice(env.ctx, admin, notice.ID), apperrors.ErrNoticeNotFound)
	_, err = svc.UpdateNotice(env.ctx, admin, notice.ID, &dto.UpdateNoticeRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNoticeNotFound)
}

func TestViewNoticeCountsViews(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t, "admin")
	notice, err := env.services.NoticeService.CreateNotice(env.ctx, admin, &dto.CreateNoticeRequest{
		Title: "Welcome", Content: "Hello", Category: "general",
	})
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		viewed, err := env.services.NoticeService.ViewNotice(env.ctx, notice.ID)
		require.NoError(t, err)
		assert.Equal(t, want, viewed.Views)
	}

	_, err = env.services.NoticeService.ViewNotice(env.ctx, "404")
	assert.ErrorIs(t, err, apperrors.ErrNoticeNotFound)
}

func TestListNoticesPinnedFirst(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t, "admin")
	for _, req := range []dto.CreateNoticeRequest{
		{Title: "Old pinned", Content: "rules", Category: "important", IsPinned: true},
		{Title: "Picnic", Content: "Saturday", Category: "event"},
		{Title: "New pinned", Content: "exam week", Category: "important", IsPinned: true},
		{Title: "Patch", Content: "rules updated", Category: "maintenance"},
	} {
		_, err := env.services.NoticeService.CreateNotice(env.ctx, admin, &req)
		require.NoError(t, err)
	}

	titles := func(resp *dto.PaginatedResponse) []string {
		var out []string
		for _, item := range resp.Items.([]*dto.NoticeResponse) {
			out = append(out, item.Title)
		}
		return out
	}

	all, err := env.services.NoticeService.ListNotices(env.ctx, dto.NoticeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"New pinned", "Old pinned", "Patch", "Picnic"}, titles(all))

	page, err := env.services.NoticeService.ListNotices(env.ctx, dto.NoticeFilter{Page: 2, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Picnic"}, titles(page))
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 2, PageSize: 3, TotalItems: 4}, page.Pagination)

	important, err := env.services.NoticeService.ListNotices(env.ctx, dto.NoticeFilter{Category: "important"})
	require.NoError(t, err)
	assert.Equal(t, []string{"New pinned", "Old pinned"}, titles(important))

	search, err := env.services.NoticeService.ListNotices(env.ctx, dto.NoticeFilter{Search: "RULES"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old pinned", "Patch"}, titles(search))
}
