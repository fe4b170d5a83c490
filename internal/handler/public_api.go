package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

// SearchFirms 公开搜索接口，过滤条件之间为 AND 关系
func (a *API) SearchFirms(c *gin.Context) {
	result, err := a.search.Search(searchQueryFromRequest(c))
	if err != nil {
		respondInternal(c, err, "search failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPublicFirm returns a published firm by slug.
func (a *API) GetPublicFirm(c *gin.Context) {
	firm, err := a.firms.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrFirmNotFound) {
			respondError(c, http.StatusNotFound, "firm not found")
			return
		}
		respondInternal(c, err, "failed to load firm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"firm": firm})
}
