package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "pcparts-backend/internal/service/cart"
)

type cartsHandler struct {
	carts CartService
}

type syncRequest struct {
	Items []cartsvc.SyncItem `json:"items" binding:"required"`
}

func (h *cartsHandler) mine(c *gin.Context) {
	cart, err := h.carts.GetByUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *cartsHandler) addItem(c *gin.Context) {
	var req cartsvc.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cart, err := h.carts.AddToCart(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *cartsHandler) sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "items required")
		return
	}
	cart, err := h.carts.Sync(c.Request.Context(), currentUser(c).ID, req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *cartsHandler) removeItem(c *gin.Context) {
	productID := c.Query("productId")
	sku := c.Query("variantSku")
	if productID == "" || sku == "" {
		fail(c, http.StatusBadRequest, "productId and variantSku required")
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), currentUser(c).ID, productID, sku)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *cartsHandler) clear(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

// ---- staff surface ----

func (h *cartsHandler) list(c *gin.Context) {
	page, err := h.carts.List(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *cartsHandler) get(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

func (h *cartsHandler) delete(c *gin.Context) {
	if err := h.carts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "cart deleted", nil)
}
