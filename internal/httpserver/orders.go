package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderrepo "pcparts-backend/internal/repository/order"
	ordersvc "pcparts-backend/internal/service/order"
)

type ordersHandler struct {
	orders OrderService
}

// create places an order. Authenticated requests order as the user; anonymous
// requests must carry guest info.
func (h *ordersHandler) create(c *gin.Context) {
	var req ordersvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if u := currentUser(c); u != nil {
		req.UserID = &u.ID
		req.GuestInfo = nil
	} else {
		req.UserID = nil
	}
	o, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "order placed", o)
}

// get returns one order. Staff see everything; users see their own orders;
// guest orders are retrievable by their opaque id.
func (h *ordersHandler) get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	u := currentUser(c)
	switch {
	case u != nil && u.IsStaff():
	case o.IsGuest:
	case u != nil && o.UserID != nil && *o.UserID == u.ID:
	default:
		fail(c, http.StatusNotFound, "resource not found")
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *ordersHandler) mine(c *gin.Context) {
	page, err := h.orders.ListByUser(c.Request.Context(), currentUser(c).ID, listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *ordersHandler) list(c *gin.Context) {
	f := orderrepo.ListFilter{
		ListParams:    listParams(c),
		UserID:        c.Query("userId"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		From:          c.Query("from"),
		To:            c.Query("to"),
	}
	page, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *ordersHandler) updateStatus(c *gin.Context) {
	var req ordersvc.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}
