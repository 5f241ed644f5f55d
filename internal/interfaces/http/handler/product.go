package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/kasamthapa/krisi/internal/application/catalog"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List puts a new product on the catalog, pending review
// POST /products
func (h *ProductHandler) List(c *gin.Context) {
	var req catalogapp.ListProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	product, err := h.productService.List(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Approve makes a pending product visible to buyers
// POST /products/:id/approve
func (h *ProductHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.Approve(c.Request.Context(), h.actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Reject closes a pending product
// POST /products/:id/reject
func (h *ProductHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req catalogapp.RejectProductRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	product, err := h.productService.Reject(c.Request.Context(), h.actor(c), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Query lists products matching the filters, in creation order. Anonymous
// callers and buyers only see approved products.
// GET /products
func (h *ProductHandler) Query(c *gin.Context) {
	var query catalogapp.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	products, err := h.productService.Query(c.Request.Context(), h.actor(c), query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get returns one product
// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), h.actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Update replaces the listing fields of a pending product
// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), h.actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete withdraws a pending product
// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), h.actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
