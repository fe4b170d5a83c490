package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type firmRequest struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Summary         string `json:"summary"`
	Description     string `json:"description"`
	Website         string `json:"website"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Tier            string `json:"tier"`
	Status          string `json:"status"`
	Featured        bool   `json:"featured"`
	FoundedYear     int    `json:"foundedYear"`
	PracticeAreaIDs []uint `json:"practiceAreaIds"`
}

func (r firmRequest) toInput() service.FirmInput {
	return service.FirmInput{
		Name:            r.Name,
		Slug:            r.Slug,
		Summary:         r.Summary,
		Description:     r.Description,
		Website:         r.Website,
		Email:           r.Email,
		Phone:           r.Phone,
		Tier:            r.Tier,
		Status:          r.Status,
		Featured:        r.Featured,
		FoundedYear:     r.FoundedYear,
		PracticeAreaIDs: r.PracticeAreaIDs,
	}
}

// ListFirms 后台律所列表，附带浏览统计
func (a *API) ListFirms(c *gin.Context) {
	result, err := a.firms.List(service.FirmFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Tier:    c.Query("tier"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("perPage"), 0),
	})
	if err != nil {
		respondInternal(c, err, "failed to load firms")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"firms":      result.Firms,
		"stats":      a.firmStats(c, result.Firms),
		"total":      result.Total,
		"totalPages": result.TotalPages,
		"page":       result.Page,
		"perPage":    result.PerPage,
	})
}

// GetFirm returns one firm with its relations.
func (a *API) GetFirm(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}

	firm, err := a.firms.Get(id)
	if err != nil {
		a.respondFirmError(c, err, "failed to load firm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"firm": firm})
}

// CreateFirm 创建律所
func (a *API) CreateFirm(c *gin.Context) {
	var req firmRequest
	if !bindJSON(c, &req, "invalid firm payload") {
		return
	}

	firm, err := a.firms.Create(req.toInput())
	if err != nil {
		a.respondFirmError(c, err, "failed to create firm")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "firm created", "firm": firm})
}

// UpdateFirm 更新律所
func (a *API) UpdateFirm(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}

	var req firmRequest
	if !bindJSON(c, &req, "invalid firm payload") {
		return
	}

	firm, err := a.firms.Update(id, req.toInput())
	if err != nil {
		a.respondFirmError(c, err, "failed to update firm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "firm updated", "firm": firm})
}

// DeleteFirm 删除律所及其办公室与律师
func (a *API) DeleteFirm(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}

	firm, err := a.firms.Get(id)
	if err != nil {
		a.respondFirmError(c, err, "failed to delete firm")
		return
	}
	if err := a.firms.Delete(id); err != nil {
		a.respondFirmError(c, err, "failed to delete firm")
		return
	}
	if err := a.media.Remove(firm.LogoURL); err != nil {
		c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "firm deleted"})
}

func (a *API) respondFirmError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrFirmNotFound):
		respondError(c, http.StatusNotFound, "firm not found")
	case errors.Is(err, service.ErrFirmNameRequired):
		respondError(c, http.StatusBadRequest, "firm name is required")
	case errors.Is(err, service.ErrFirmContact):
		respondError(c, http.StatusBadRequest, "website, email or founded year is invalid")
	case errors.Is(err, service.ErrTierUnknown):
		respondError(c, http.StatusBadRequest, "pricing tier does not exist")
	case errors.Is(err, service.ErrPracticeAreaNotFound):
		respondError(c, http.StatusNotFound, "practice area not found")
	default:
		respondInternal(c, err, message)
	}
}

func (a *API) firmStats(c *gin.Context, firms []db.Firm) map[uint]*db.FirmStatistic {
	if a.analytics == nil || len(firms) == 0 {
		return map[uint]*db.FirmStatistic{}
	}
	ids := make([]uint, 0, len(firms))
	for _, firm := range firms {
		ids = append(ids, firm.ID)
	}
	stats, err := a.analytics.FirmStatsMap(ids)
	if err != nil {
		c.Error(err)
		return map[uint]*db.FirmStatistic{}
	}
	return stats
}
