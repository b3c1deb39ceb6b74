package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type recommendHandler struct {
	recommender RecommendService
}

type recommendRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *recommendHandler) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "query required")
		return
	}
	out, err := h.recommender.Recommend(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}
