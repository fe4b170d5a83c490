package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/logger"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type leadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SubmitLead 接收访客咨询 (JSON)
func (a *API) SubmitLead(c *gin.Context) {
	var input service.LeadInput
	if !bindJSON(c, &input, "invalid lead payload") {
		return
	}

	lead, err := a.leads.Submit(input)
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		if errors.Is(err, service.ErrFirmNotFound) {
			respondError(c, http.StatusNotFound, "firm not found")
			return
		}
		respondInternal(c, err, "failed to save your request")
		return
	}
	a.leadStored(c, lead)

	c.JSON(http.StatusCreated, gin.H{
		"message": "thank you, we will be in touch",
		"lead":    gin.H{"id": lead.ID, "status": lead.Status},
	})
}

// SubmitFirmContactForm handles the contact form on a firm profile.
func (a *API) SubmitFirmContactForm(c *gin.Context) {
	slugValue := c.Param("slug")

	var input service.LeadInput
	if err := c.ShouldBind(&input); err != nil {
		a.showFirmProfile(c, http.StatusBadRequest, input, map[string]string{"form": "the form could not be read"})
		return
	}
	input.FirmSlug = slugValue
	if input.Source == "" {
		input.Source = "firm-profile"
	}

	lead, err := a.leads.Submit(input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			a.showFirmProfile(c, http.StatusBadRequest, input, fieldErrorMap(verr))
		case errors.Is(err, service.ErrFirmNotFound):
			a.renderNotFound(c)
		default:
			c.Error(err)
			a.showFirmProfile(c, http.StatusInternalServerError, input, map[string]string{"form": "something went wrong, please try again"})
		}
		return
	}
	a.leadStored(c, lead)

	c.Redirect(http.StatusSeeOther, "/firms/"+url.PathEscape(slugValue)+"?contacted=1")
}

func (a *API) leadStored(c *gin.Context, lead *db.Lead) {
	a.metrics.SubmissionStored("lead")
	if a.notify == nil {
		return
	}
	if err := a.notify.LeadReceived(c.Request.Context(), lead); err != nil {
		a.logger.Warn().
			Err(err).
			Uint("lead_id", lead.ID).
			Str("request_id", c.GetString(logger.RequestIDKey)).
			Msg("lead notification failed")
	}
}

// ListLeads 后台线索列表
func (a *API) ListLeads(c *gin.Context) {
	result, err := a.leads.List(service.LeadFilter{
		Status:  c.Query("status"),
		FirmID:  parseUintQuery(c, "firmId"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("perPage"), 0),
	})
	if err != nil {
		respondInternal(c, err, "failed to load leads")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateLeadStatus 更新线索处理状态
func (a *API) UpdateLeadStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req leadStatusRequest
	if !bindJSON(c, &req, "status is required") {
		return
	}

	lead, err := a.leads.UpdateStatus(id, req.Status)
	if err != nil {
		respondLeadError(c, err, "failed to update lead")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lead updated", "lead": lead})
}

// DeleteLead 删除线索
func (a *API) DeleteLead(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lead id")
		return
	}

	if err := a.leads.Delete(id); err != nil {
		respondLeadError(c, err, "failed to delete lead")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lead deleted"})
}

func respondLeadError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		respondError(c, http.StatusNotFound, "lead not found")
	case errors.Is(err, service.ErrLeadStatusInvalid):
		respondError(c, http.StatusBadRequest, "status must be new, contacted or closed")
	default:
		respondInternal(c, err, message)
	}
}
