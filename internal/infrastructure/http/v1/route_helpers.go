package v1

import (
	"github.com/gin-gonic/gin"
)

// LabelRouteHandler defines the label endpoints.
type LabelRouteHandler interface {
	Lookup(c *gin.Context)
	List(c *gin.Context)
	Generate(c *gin.Context)
	Validate(c *gin.Context)
	Link(c *gin.Context)
	Clear(c *gin.Context)
	Update(c *gin.Context)
	Print(c *gin.Context)
	History(c *gin.Context)
}

// RegisterLabelRoutes registers the label routes on group.
//
// Usage:
//
//	handler := handlers.NewLabelHandler(base, labelService)
//	RegisterLabelRoutes(api.Group("/fifo"), handler)
func RegisterLabelRoutes(group *gin.RouterGroup, handler LabelRouteHandler) {
	group.GET("/lookup", handler.Lookup)
	group.GET("/labels", handler.List)
	group.POST("/labels/generate", handler.Generate)
	group.GET("/labels/:qrcode/validate", handler.Validate)
	group.POST("/labels/link", handler.Link)
	group.POST("/labels/clear", handler.Clear)
	group.PUT("/labels/:qrcode", handler.Update)
	group.POST("/print", handler.Print)
	group.GET("/history", handler.History)
}
