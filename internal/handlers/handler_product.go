package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
)

// productHandler handles HTTP requests related to products.
type productHandler struct {
	productService portssvc.ProductSvcFacade
}

func newProductHandler(ps portssvc.ProductSvcFacade) *productHandler {
	return &productHandler{productService: ps}
}

// registerProductRoutes registers routes related to products.
func registerProductRoutes(rg *gin.RouterGroup, productService portssvc.ProductSvcFacade) {
	h := newProductHandler(productService)

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:name", h.getProduct)
		products.PUT("/:name", h.updateProduct)
		products.DELETE("/:name", h.deleteProduct)
		products.POST("/use", h.useProduct)
	}
}

func (h *productHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received request to create product", slog.String("product_name", req.Name))

	product, err := h.productService.CreateProduct(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create product")
		return
	}

	logger.Info("Product created", slog.Int64("product_id", product.ID))
	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

func (h *productHandler) getProduct(c *gin.Context) {
	product, err := h.productService.GetProductByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

func (h *productHandler) listProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, dto.ToListProductResponse(products))
}

func (h *productHandler) updateProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	name := c.Param("name")
	product, err := h.productService.UpdateProduct(c.Request.Context(), name, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update product")
		return
	}

	logger.Info("Product updated", slog.String("product_name", name))
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

func (h *productHandler) deleteProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	name := c.Param("name")

	deleted, err := h.productService.DeleteProduct(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, err, "Failed to delete product")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no product named " + name})
		return
	}

	logger.Info("Product deleted", slog.String("product_name", name))
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (h *productHandler) useProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req dto.UseProductRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received use-product request",
		slog.String("product_name", req.Product),
		slog.Int("quantity", req.Quantity))

	txn, err := h.productService.UseProduct(c.Request.Context(), req.Product, req.Quantity, userID, req.RefID)
	if err != nil {
		respondServiceError(c, err, "Failed to record product use")
		return
	}

	logger.Info("Product use recorded", slog.Int64("transaction_id", txn.ID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}
