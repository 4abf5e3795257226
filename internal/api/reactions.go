package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/auth"
	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
)

type reactionHandlers struct {
	deps Dependencies
}

// evaluateRequest carries a reaction verdict. A null value withdraws the
// caller's reaction instead of setting one.
type evaluateRequest struct {
	ContentType model.ContentType `json:"content_type" binding:"required"`
	TargetID    model.UUID        `json:"target_id" binding:"required"`
	Value       *int              `json:"value"`
}

func (h *reactionHandlers) list(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sort, err := sortParams(c, "created_at", "updated_at")
	if err != nil {
		badRequest(c, err)
		return
	}
	targetID, err := optionalUUIDQuery(c, "target_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	userID, err := optionalUUIDQuery(c, "user_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	value, err := optionalIntQuery(c, "value")
	if err != nil {
		badRequest(c, err)
		return
	}
	var contentType any
	if raw := c.Query("content_type"); raw != "" {
		contentType = model.ContentType(raw)
	}

	reactions, err := h.deps.Reactions.List(c.Request.Context(), page.Skip(), page.Size, sort,
		repository.Eq("target_id", targetID),
		repository.Eq("user_id", userID),
		repository.Eq("value", value),
		repository.Eq("content_type", contentType),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

func (h *reactionHandlers) evaluate(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
		return
	}
	var request evaluateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if request.Value == nil {
		if err := h.deps.ReactionService.Withdraw(ctx, request.TargetID, request.ContentType, principal.UserID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	value := model.ReactionValue(*request.Value)
	if value != model.Like && value != model.Dislike {
		badRequest(c, fmt.Errorf("value must be %d or %d", model.Like, model.Dislike))
		return
	}
	if err := h.deps.ReactionService.Evaluate(ctx, request.TargetID, request.ContentType, principal.UserID, value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
