package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qr-trackr-be/internal/logger"
	"qr-trackr-be/internal/service"
)

type RedirectController struct {
	resolver service.ResolverService
}

func NewRedirectController(resolver service.ResolverService) *RedirectController {
	return &RedirectController{resolver: resolver}
}

// Redirect handles GET /:code - the public scan endpoint.
func (rc *RedirectController) Redirect(c *gin.Context) {
	code := c.Param("code")

	destination, err := rc.resolver.Resolve(c.Request.Context(), code)
	if err != nil {
		// Unknown and deleted codes look the same to the outside.
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
		return
	}

	// Scan hits are logged for an external collector; this core keeps no
	// per-scan state.
	logger.Info().
		Str("code", code).
		Str("destination", destination).
		Str("ip", c.ClientIP()).
		Msg("scan resolved")

	// 302, not 301: destinations are mutable and must not be cached by
	// intermediaries forever.
	c.Redirect(http.StatusFound, destination)
}
