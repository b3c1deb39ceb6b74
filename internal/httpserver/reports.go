package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	reportsvc "pcparts-backend/internal/service/report"
)

type reportsHandler struct {
	reports ReportService
}

func reportQuery(c *gin.Context) reportsvc.QueryInput {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return reportsvc.QueryInput{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Period: c.Query("period"),
		Limit:  limit,
	}
}

func (h *reportsHandler) summary(c *gin.Context) {
	out, err := h.reports.Summary(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) revenue(c *gin.Context) {
	out, err := h.reports.RevenueSeries(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) topProducts(c *gin.Context) {
	out, err := h.reports.TopProducts(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) statuses(c *gin.Context) {
	out, err := h.reports.StatusBreakdown(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) paymentMethods(c *gin.Context) {
	out, err := h.reports.PaymentMethodBreakdown(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) customers(c *gin.Context) {
	out, err := h.reports.Customers(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) conversion(c *gin.Context) {
	out, err := h.reports.Conversion(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) orderValues(c *gin.Context) {
	out, err := h.reports.OrderValues(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) locations(c *gin.Context) {
	out, err := h.reports.SalesByLocation(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *reportsHandler) dashboard(c *gin.Context) {
	out, err := h.reports.Dashboard(c.Request.Context(), reportQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}
