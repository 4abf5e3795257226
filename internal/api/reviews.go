package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/auth"
	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
)

type reviewHandlers struct {
	deps Dependencies
}

// createReviewRequest is the caller-facing payload; the author comes from
// the verified principal, never from the body.
type createReviewRequest struct {
	MovieID    model.UUID `json:"movie_id" binding:"required"`
	Title      string     `json:"title" binding:"required"`
	ReviewText string     `json:"review_text" binding:"required"`
}

func (h *reviewHandlers) list(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sort, err := sortParams(c, "title", "rating", "created_at")
	if err != nil {
		badRequest(c, err)
		return
	}
	movieID, err := optionalUUIDQuery(c, "movie_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	userID, err := optionalUUIDQuery(c, "user_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	ratingGte, err := optionalIntQuery(c, "rating__gte")
	if err != nil {
		badRequest(c, err)
		return
	}
	ratingLte, err := optionalIntQuery(c, "rating__lte")
	if err != nil {
		badRequest(c, err)
		return
	}

	reviews, err := h.deps.Reviews.List(c.Request.Context(), page.Skip(), page.Size, sort,
		repository.Eq("movie_id", movieID),
		repository.Eq("user_id", userID),
		repository.Gte("rating", ratingGte),
		repository.Lte("rating", ratingLte),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *reviewHandlers) get(c *gin.Context) {
	reviewID, err := uuidParam(c, "review_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.deps.Reviews.Get(c.Request.Context(), reviewID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *reviewHandlers) create(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	var request createReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.deps.Reviews.Create(c.Request.Context(), model.CreateReview{
		MovieID:    request.MovieID,
		UserID:     principal.UserID,
		Title:      request.Title,
		ReviewText: request.ReviewText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *reviewHandlers) delete(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	reviewID, err := uuidParam(c, "review_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.deps.Reviews.Get(c.Request.Context(), reviewID)
	if err != nil {
		writeError(c, err)
		return
	}
	if review.UserID != principal.UserID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "you can delete only your review"})
		return
	}
	if err := h.deps.Reviews.Delete(c.Request.Context(), reviewID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
