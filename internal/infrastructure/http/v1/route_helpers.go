package v1

import "github.com/gin-gonic/gin"

// CatalogRouteHandler is implemented by handlers of the simple stores.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Search(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	BulkDelete(c *gin.Context)
}

// RegisterCatalogRoutes registers the standard CRUD routes of a store.
// Static segments are registered before /:id.
//
// Usage:
//
//	handler := handlers.NewCustomerHandler(base, services.Customers)
//	RegisterCatalogRoutes(api.Group("/customers"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/search", handler.Search)
	group.POST("/bulk-delete", handler.BulkDelete)
	group.GET("/:id", handler.Get)
	group.PATCH("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
