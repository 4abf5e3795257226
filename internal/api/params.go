package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
	"github.com/gryroach/ugc-service/internal/service"
	"github.com/gryroach/ugc-service/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// pageParams bounds every listing; the transport caps the page size so the
// repositories never see unbounded scans.
type pageParams struct {
	Size   int64
	Number int64
}

func (p pageParams) Skip() int64 {
	return (p.Number - 1) * p.Size
}

func pagination(c *gin.Context) (pageParams, error) {
	params := pageParams{Size: defaultPageSize, Number: 1}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size < 1 || size > maxPageSize {
			return params, fmt.Errorf("page_size must be an integer in [1, %d]", maxPageSize)
		}
		params.Size = size
	}
	if raw := c.Query("page_number"); raw != "" {
		number, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || number < 1 {
			return params, fmt.Errorf("page_number must be a positive integer")
		}
		params.Number = number
	}
	return params, nil
}

// sortParams parses order_by/direction against a per-resource whitelist.
// The first allowed field is the default.
func sortParams(c *gin.Context, allowed ...string) (storage.Sort, error) {
	sort := storage.Sort{Field: allowed[0], Order: storage.SortAsc}
	if field := c.Query("order_by"); field != "" {
		found := false
		for _, candidate := range allowed {
			if candidate == field {
				found = true
				break
			}
		}
		if !found {
			return sort, fmt.Errorf("order_by must be one of %v", allowed)
		}
		sort.Field = field
	}
	switch direction := c.Query("direction"); direction {
	case "", string(storage.SortAsc):
	case string(storage.SortDesc):
		sort.Order = storage.SortDesc
	default:
		return sort, fmt.Errorf("direction must be asc or desc")
	}
	return sort, nil
}

func uuidParam(c *gin.Context, name string) (model.UUID, error) {
	return model.ParseUUID(c.Param(name))
}

// optionalUUIDQuery returns nil when the query parameter is absent, so the
// query builder drops the filter.
func optionalUUIDQuery(c *gin.Context, name string) (*model.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := model.ParseUUID(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a uuid", name)
	}
	return &id, nil
}

func optionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &value, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

// writeError maps engine errors onto HTTP statuses, preserving the rule
// that owner-scoped misses are plain 404s.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, repository.ErrDuplicateKey):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "document already exists"})
	case errors.Is(err, repository.ErrInvalidFilter), errors.Is(err, service.ErrUnsupportedContentType):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}
