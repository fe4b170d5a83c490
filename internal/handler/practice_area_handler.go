package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type practiceAreaRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type practiceAreaOrderRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// GetPracticeAreas 获取业务领域列表
func (a *API) GetPracticeAreas(c *gin.Context) {
	areas, err := a.practiceAreas.List()
	if err != nil {
		respondInternal(c, err, "failed to load practice areas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"practiceAreas": areas})
}

// CreatePracticeArea 创建业务领域
func (a *API) CreatePracticeArea(c *gin.Context) {
	var req practiceAreaRequest
	if !bindJSON(c, &req, "practice area name is required") {
		return
	}

	area, err := a.practiceAreas.Create(service.PracticeAreaInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondPracticeAreaError(c, err, "failed to create practice area")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "practice area created", "practiceArea": area})
}

// UpdatePracticeArea 更新业务领域
func (a *API) UpdatePracticeArea(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid practice area id")
		return
	}

	var req practiceAreaRequest
	if !bindJSON(c, &req, "practice area name is required") {
		return
	}

	area, err := a.practiceAreas.Update(id, service.PracticeAreaInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondPracticeAreaError(c, err, "failed to update practice area")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "practice area updated", "practiceArea": area})
}

// DeletePracticeArea 删除业务领域
func (a *API) DeletePracticeArea(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid practice area id")
		return
	}

	if err := a.practiceAreas.Delete(id); err != nil {
		respondPracticeAreaError(c, err, "failed to delete practice area")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "practice area deleted"})
}

// ReorderPracticeAreas 按提交的 id 顺序更新排序
func (a *API) ReorderPracticeAreas(c *gin.Context) {
	var req practiceAreaOrderRequest
	if !bindJSON(c, &req, "ids are required") {
		return
	}

	if err := a.practiceAreas.Reorder(req.IDs); err != nil {
		respondPracticeAreaError(c, err, "failed to reorder practice areas")
		return
	}

	areas, err := a.practiceAreas.List()
	if err != nil {
		respondInternal(c, err, "failed to load practice areas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order saved", "practiceAreas": areas})
}

func respondPracticeAreaError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPracticeAreaNotFound):
		respondError(c, http.StatusNotFound, "practice area not found")
	case errors.Is(err, service.ErrPracticeAreaNameRequired):
		respondError(c, http.StatusBadRequest, "practice area name is required")
	case errors.Is(err, service.ErrPracticeAreaInUse):
		respondError(c, http.StatusConflict, "practice area is still assigned to firms")
	case errors.Is(err, service.ErrPracticeAreaOrder):
		respondError(c, http.StatusBadRequest, "order must list unique practice area ids")
	default:
		respondInternal(c, err, message)
	}
}
