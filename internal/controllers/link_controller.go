package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/models"
	"qr-trackr-be/internal/repository"
	"qr-trackr-be/internal/service"
)

type LinkController struct {
	linkService service.LinkService
	baseURL     string
}

func NewLinkController(linkService service.LinkService, baseURL string) *LinkController {
	return &LinkController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// writeServiceError maps registry sentinel errors to HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrDuplicateReferralCode):
		c.JSON(http.StatusConflict, gin.H{"error": "Referral code already in use"})
	case errors.Is(err, apperrors.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Destination must be an absolute http or https URL"})
	case errors.Is(err, apperrors.ErrMissingDestination):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Supply a destination URL or a content reference"})
	case errors.Is(err, apperrors.ErrRenderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "QR renderer unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateLink handles POST /api/v1/links
func (lc *LinkController) CreateLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	link, err := lc.linkService.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewLinkResponse(link, lc.baseURL))
}

// GetOrCreateForContent handles POST /api/v1/links/content/:ref - the
// one-click flow that gives a piece of content its tracking link.
func (lc *LinkController) GetOrCreateForContent(c *gin.Context) {
	ref, err := strconv.ParseInt(c.Param("ref"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content reference"})
		return
	}

	link, err := lc.linkService.GetOrCreateByContentRef(c.Request.Context(), ref)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponse(link, lc.baseURL))
}

// ListForContent handles GET /api/v1/links/content/:ref
func (lc *LinkController) ListForContent(c *gin.Context) {
	ref, err := strconv.ParseInt(c.Param("ref"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content reference"})
		return
	}

	links, err := lc.linkService.ListForContentRef(c.Request.Context(), ref)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	responses := make([]*models.LinkResponse, len(links))
	for i, link := range links {
		responses[i] = models.NewLinkResponse(link, lc.baseURL)
	}

	c.JSON(http.StatusOK, responses)
}

// GetLink handles GET /api/v1/links/:id
func (lc *LinkController) GetLink(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	link, err := lc.linkService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponse(link, lc.baseURL))
}

// UpdateDestination handles PATCH /api/v1/links/:id
func (lc *LinkController) UpdateDestination(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	var req models.UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	link, err := lc.linkService.UpdateDestination(c.Request.Context(), id, req.DestinationURL)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponse(link, lc.baseURL))
}

// DeleteLink handles DELETE /api/v1/links/:id
func (lc *LinkController) DeleteLink(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	if err := lc.linkService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Link deleted successfully",
	})
}

// ListLinks handles GET /api/v1/links with paging, sorting and search.
func (lc *LinkController) ListLinks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage > 100 {
		perPage = 100
	}

	opts := repository.ListOptions{
		Search:  c.Query("search"),
		SortBy:  c.DefaultQuery("sort_by", "created_at"),
		SortDir: c.DefaultQuery("sort_dir", "desc"),
		Page:    page,
		PerPage: perPage,
	}

	links, total, err := lc.linkService.ListLinks(c.Request.Context(), opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	responses := make([]*models.LinkResponse, len(links))
	for i, link := range links {
		responses[i] = models.NewLinkResponse(link, lc.baseURL)
	}

	c.JSON(http.StatusOK, models.LinkListResponse{
		Links:   responses,
		Total:   total,
		Page:    opts.Page,
		PerPage: opts.PerPage,
	})
}
