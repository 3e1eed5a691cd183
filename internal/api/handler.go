package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalog-service/internal/cart"
	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sessionHeader carries the shopper's session key. A new key is minted and
// echoed back when the client sends none.
const sessionHeader = "X-Session-ID"

// Handler contains HTTP handlers
type Handler struct {
	catalog       *catalog.Store
	admin         *service.AdminService
	checkout      *service.CheckoutService
	carts         cart.Storage
	store         *store.Store
	arrivalsLimit int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cat *catalog.Store,
	admin *service.AdminService,
	checkout *service.CheckoutService,
	carts cart.Storage,
	st *store.Store,
	arrivalsLimit int,
) *Handler {
	return &Handler{
		catalog:       cat,
		admin:         admin,
		checkout:      checkout,
		carts:         carts,
		store:         st,
		arrivalsLimit: arrivalsLimit,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.getCatalog)
		v1.GET("/catalog/categories", h.getCategories)
		v1.GET("/catalog/categories/:name/products", h.getCategoryProducts)
		v1.GET("/catalog/search", h.searchByID)
		v1.GET("/catalog/new-arrivals", h.getNewArrivals)
		v1.POST("/catalog/products/:id/inquiry", h.sendInquiry)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.adjustCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.POST("/checkout", h.checkoutCart)

		admin := v1.Group("/admin")
		{
			admin.POST("/categories", h.addCategory)
			admin.DELETE("/categories/:name", h.deleteCategory)
			admin.POST("/categories/:name/products", h.addProduct)
			admin.PUT("/categories/:name/products/:id", h.updateProduct)
			admin.DELETE("/categories/:name/products/:id", h.deleteProduct)
			admin.GET("/settings/contact", h.getContactSettings)
			admin.PUT("/settings/contact", h.putContactSettings)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getCatalog returns the full category -> products mapping
func (h *Handler) getCatalog(c *gin.Context) {
	snap := h.catalog.Snapshot()
	c.JSON(http.StatusOK, snap)
}

// getCategories returns the category identifiers in snapshot order
func (h *Handler) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}

// getCategoryProducts returns one category's listing, empty if absent
func (h *Handler) getCategoryProducts(c *gin.Context) {
	snap := h.catalog.Snapshot()
	name := service.NormalizeCategory(c.Param("name"))
	c.JSON(http.StatusOK, gin.H{
		"category": name,
		"products": catalog.ActiveListing(snap, name),
	})
}

// searchByID runs the exact-id filter. Non-numeric input is a valid query
// with an empty result, not an error.
func (h *Handler) searchByID(c *gin.Context) {
	snap := h.catalog.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"results": catalog.FilterByID(snap, c.Query("id")),
	})
}

// getNewArrivals returns the most recently updated products
func (h *Handler) getNewArrivals(c *gin.Context) {
	snap := h.catalog.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"arrivals": catalog.NewArrivals(snap, h.arrivalsLimit),
	})
}

// sendInquiry sends the single-product contact message
func (h *Handler) sendInquiry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, _, ok := catalog.FindProduct(h.catalog.Snapshot(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	h.checkout.SendInquiry(c.Request.Context(), product)
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

// session resolves the cart session key, minting one when absent.
func (h *Handler) session(c *gin.Context) string {
	session := c.GetHeader(sessionHeader)
	if session == "" {
		session = uuid.New().String()
	}
	c.Header(sessionHeader, session)
	return session
}

func (h *Handler) engine(c *gin.Context) *cart.Engine {
	return cart.NewEngine(h.carts, h.session(c))
}

// getCart returns the session's cart
func (h *Handler) getCart(c *gin.Context) {
	engine := h.engine(c)
	c.JSON(http.StatusOK, gin.H{
		"items": engine.Items(),
		"total": engine.Total(),
	})
}

// addCartItem resolves the product in the current snapshot and adds a
// denormalized copy to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req struct {
		ProductID int `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, _, ok := catalog.FindProduct(h.catalog.Snapshot(), req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	engine := h.engine(c)
	engine.Add(product)
	c.JSON(http.StatusOK, gin.H{
		"items": engine.Items(),
		"total": engine.Total(),
	})
}

// adjustCartItem changes a line item's quantity by a delta
func (h *Handler) adjustCartItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	engine := h.engine(c)
	engine.Adjust(id, req.Delta)
	c.JSON(http.StatusOK, gin.H{
		"items": engine.Items(),
		"total": engine.Total(),
	})
}

// removeCartItem drops a line item unconditionally
func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	engine := h.engine(c)
	engine.Remove(id)
	c.JSON(http.StatusOK, gin.H{
		"items": engine.Items(),
		"total": engine.Total(),
	})
}

// checkoutCart submits the session's cart as an order
func (h *Handler) checkoutCart(c *gin.Context) {
	order, err := h.checkout.Checkout(c.Request.Context(), h.engine(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
		return
	}
	if order == nil {
		c.JSON(http.StatusOK, gin.H{"status": "empty_cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "submitted",
		"order_id": order.ID,
		"total":    order.Total,
	})
}

// addCategory creates a new empty category
func (h *Handler) addCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	name, err := h.admin.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": name})
}

// deleteCategory deletes a category and all its embedded products
func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.admin.DeleteCategory(c.Request.Context(), c.Param("name")); err != nil {
		h.writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// addProduct creates a product with a freshly assigned global id
func (h *Handler) addProduct(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.admin.AddProduct(c.Request.Context(), c.Param("name"), input)
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// updateProduct replaces a product in place by id
func (h *Handler) updateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.admin.UpdateProduct(c.Request.Context(), c.Param("name"), id, input)
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct removes a product from its category
func (h *Handler) deleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.admin.DeleteProduct(c.Request.Context(), c.Param("name"), id); err != nil {
		h.writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// getContactSettings returns the contact destination document
func (h *Handler) getContactSettings(c *gin.Context) {
	settings, err := h.store.GetContactSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// putContactSettings replaces the contact destination document
func (h *Handler) putContactSettings(c *gin.Context) {
	var settings models.ContactSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.PutContactSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// writeAdminError maps validation errors to 4xx and everything else to a
// generic failure.
func (h *Handler) writeAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCategoryName),
		errors.Is(err, service.ErrDuplicateCategory),
		errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
