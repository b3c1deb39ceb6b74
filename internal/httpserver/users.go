package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "pcparts-backend/internal/service/user"
)

// usersHandler is the staff-only account administration surface.
type usersHandler struct {
	users UserService
}

func (h *usersHandler) list(c *gin.Context) {
	page, err := h.users.List(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *usersHandler) get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *usersHandler) update(c *gin.Context) {
	var req usersvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *usersHandler) delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "account disabled", nil)
}
