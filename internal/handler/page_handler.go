package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type pageRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (r pageRequest) toInput() service.PageInput {
	return service.PageInput{
		Title:     r.Title,
		Slug:      r.Slug,
		Summary:   r.Summary,
		Content:   r.Content,
		Published: r.Published,
	}
}

// ListPages returns every page including unpublished ones.
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List(false)
	if err != nil {
		respondInternal(c, err, "failed to load pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetPage returns one page.
func (a *API) GetPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := a.pages.Get(id)
	if err != nil {
		respondPageError(c, err, "failed to load page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// CreatePage 创建独立页面
func (a *API) CreatePage(c *gin.Context) {
	var req pageRequest
	if !bindJSON(c, &req, "invalid page payload") {
		return
	}

	page, err := a.pages.Create(req.toInput())
	if err != nil {
		respondPageError(c, err, "failed to create page")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "page created", "page": page})
}

// UpdatePage 更新独立页面
func (a *API) UpdatePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid page id")
		return
	}

	var req pageRequest
	if !bindJSON(c, &req, "invalid page payload") {
		return
	}

	page, err := a.pages.Update(id, req.toInput())
	if err != nil {
		respondPageError(c, err, "failed to update page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "page updated", "page": page})
}

// DeletePage 删除独立页面
func (a *API) DeletePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid page id")
		return
	}

	if err := a.pages.Delete(id); err != nil {
		respondPageError(c, err, "failed to delete page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "page deleted"})
}

func respondPageError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPageNotFound):
		respondError(c, http.StatusNotFound, "page not found")
	case errors.Is(err, service.ErrPageTitleRequired):
		respondError(c, http.StatusBadRequest, "page title is required")
	case errors.Is(err, service.ErrPageContentMissing):
		respondError(c, http.StatusBadRequest, "page content is required")
	default:
		respondInternal(c, err, message)
	}
}
