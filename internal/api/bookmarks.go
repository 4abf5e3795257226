package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/auth"
	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
)

// bookmarkHandlers are owner-scoped throughout: every read and delete is
// pinned to the caller's user id, so another user's bookmark is a 404.
type bookmarkHandlers struct {
	deps Dependencies
}

type createBookmarkRequest struct {
	MovieID model.UUID `json:"movie_id" binding:"required"`
}

func (h *bookmarkHandlers) list(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	page, err := pagination(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sort, err := sortParams(c, "created_at")
	if err != nil {
		badRequest(c, err)
		return
	}

	bookmarks, err := h.deps.Bookmarks.List(c.Request.Context(), page.Skip(), page.Size, sort,
		repository.Eq("user_id", principal.UserID),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

func (h *bookmarkHandlers) get(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	bookmarkID, err := uuidParam(c, "bookmark_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	bookmark, err := h.deps.Bookmarks.Get(c.Request.Context(), bookmarkID,
		repository.Eq("user_id", principal.UserID),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmark)
}

func (h *bookmarkHandlers) create(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	var request createBookmarkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.deps.Movies.Exists(c.Request.Context(), request.MovieID); err != nil {
		writeError(c, err)
		return
	}
	bookmark, err := h.deps.Bookmarks.GetOrCreate(c.Request.Context(), model.CreateBookmark{
		MovieID: request.MovieID,
		UserID:  principal.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookmark)
}

func (h *bookmarkHandlers) delete(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	bookmarkID, err := uuidParam(c, "bookmark_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.deps.Bookmarks.Get(c.Request.Context(), bookmarkID,
		repository.Eq("user_id", principal.UserID),
	); err != nil {
		writeError(c, err)
		return
	}
	if err := h.deps.Bookmarks.Delete(c.Request.Context(), bookmarkID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
