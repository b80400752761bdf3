package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qr-trackr-be/internal/service"
)

type QRCodeController struct {
	linkService service.LinkService
}

func NewQRCodeController(linkService service.LinkService) *QRCodeController {
	return &QRCodeController{linkService: linkService}
}

// GetQRCode handles GET /api/v1/links/:id/qr - redirects to the link's QR
// asset, rendering it first if creation-time rendering was deferred.
func (qc *QRCodeController) GetQRCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	imageURL, err := qc.linkService.EnsureImage(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, imageURL)
}

// RegenerateQRCode handles POST /api/v1/links/:id/qr/regenerate - deletes
// the cached asset and renders a fresh one unconditionally.
func (qc *QRCodeController) RegenerateQRCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	imageURL, err := qc.linkService.RegenerateImage(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_url": imageURL,
	})
}
