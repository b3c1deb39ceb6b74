package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	brandsvc "pcparts-backend/internal/service/brand"
	categorysvc "pcparts-backend/internal/service/category"
	productsvc "pcparts-backend/internal/service/product"
)

// catalogHandler serves both the staff CRUD surface and the public
// storefront reads for categories, brands and products.
type catalogHandler struct {
	categories CategoryService
	brands     BrandService
	products   ProductService
}

// ---- categories ----

func (h *catalogHandler) createCategory(c *gin.Context) {
	var req categorysvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "category created", created)
}

func (h *catalogHandler) updateCategory(c *gin.Context) {
	var req categorysvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.categories.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *catalogHandler) getCategory(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cat)
}

func (h *catalogHandler) listCategories(c *gin.Context) {
	page, err := h.categories.List(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *catalogHandler) deleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "category disabled", nil)
}

// publicCategories lists categories with live product counts.
func (h *catalogHandler) publicCategories(c *gin.Context) {
	page, err := h.categories.ListWithProductCounts(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

// ---- brands ----

func (h *catalogHandler) createBrand(c *gin.Context) {
	var req brandsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.brands.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "brand created", created)
}

func (h *catalogHandler) updateBrand(c *gin.Context) {
	var req brandsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.brands.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *catalogHandler) getBrand(c *gin.Context) {
	b, err := h.brands.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *catalogHandler) listBrands(c *gin.Context) {
	page, err := h.brands.List(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *catalogHandler) deleteBrand(c *gin.Context) {
	if err := h.brands.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "brand disabled", nil)
}

// ---- products ----

func (h *catalogHandler) createProduct(c *gin.Context) {
	var req productsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "product created", created)
}

func (h *catalogHandler) updateProduct(c *gin.Context) {
	var req productsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *catalogHandler) getProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *catalogHandler) listProducts(c *gin.Context) {
	page, err := h.products.List(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *catalogHandler) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "product disabled", nil)
}

// publicProducts lists only active products.
func (h *catalogHandler) publicProducts(c *gin.Context) {
	page, err := h.products.ListActive(c.Request.Context(), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *catalogHandler) publicProductBySlug(c *gin.Context) {
	p, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !p.IsActive {
		fail(c, http.StatusNotFound, "resource not found")
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *catalogHandler) publicProductsByCategory(c *gin.Context) {
	page, err := h.products.ListByCategorySlug(c.Request.Context(), c.Param("slug"), listParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}
