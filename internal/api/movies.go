package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
	"github.com/gryroach/ugc-service/internal/service"
)

type movieHandlers struct {
	deps Dependencies
}

// movieDetail is a movie plus its presentation-only statistics.
type movieDetail struct {
	model.Movie
	AdditionalInfo service.Statistics `json:"additional_info"`
}

func (h *movieHandlers) list(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sort, err := sortParams(c, "rating", "created_at")
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

	movies, err := h.deps.Movies.List(c.Request.Context(), page.Skip(), page.Size, sort,
		repository.Gte("rating", ratingGte),
		repository.Lte("rating", ratingLte),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *movieHandlers) get(c *gin.Context) {
	movieID, err := uuidParam(c, "movie_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	movie, err := h.deps.Movies.Get(c.Request.Context(), movieID)
	if err != nil {
		writeError(c, err)
		return
	}
	stats, err := h.deps.Statistics.ForTarget(c.Request.Context(), movieID, model.ContentTypeMovie)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movieDetail{Movie: *movie, AdditionalInfo: *stats})
}

func (h *movieHandlers) create(c *gin.Context) {
	var payload model.CreateMovie
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	movie, err := h.deps.Movies.Create(c.Request.Context(), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}
