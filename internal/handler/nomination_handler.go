package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/logger"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type nominationReviewRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// SubmitNomination 接收公开提名 (JSON)
func (a *API) SubmitNomination(c *gin.Context) {
	var input service.NominationInput
	if !bindJSON(c, &input, "invalid nomination payload") {
		return
	}

	nomination, err := a.nominations.Submit(input)
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		respondInternal(c, err, "failed to save nomination")
		return
	}
	a.nominationStored(c, nomination)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "thank you, your nomination has been received",
		"nomination": gin.H{"id": nomination.ID, "status": nomination.Status},
	})
}

// ShowNominationForm 渲染提名表单
func (a *API) ShowNominationForm(c *gin.Context) {
	a.renderNominationForm(c, http.StatusOK, service.NominationInput{}, nil, c.Query("submitted") == "1")
}

// SubmitNominationForm handles the HTML form and redirects on success.
func (a *API) SubmitNominationForm(c *gin.Context) {
	var input service.NominationInput
	if err := c.ShouldBind(&input); err != nil {
		a.renderNominationForm(c, http.StatusBadRequest, input, map[string]string{"form": "the form could not be read"}, false)
		return
	}

	nomination, err := a.nominations.Submit(input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			a.renderNominationForm(c, http.StatusBadRequest, input, fieldErrorMap(verr), false)
			return
		}
		c.Error(err)
		a.renderNominationForm(c, http.StatusInternalServerError, input, map[string]string{"form": "something went wrong, please try again"}, false)
		return
	}
	a.nominationStored(c, nomination)

	c.Redirect(http.StatusSeeOther, "/nominate?submitted=1")
}

func (a *API) renderNominationForm(c *gin.Context, status int, input service.NominationInput, errs map[string]string, submitted bool) {
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, status, "nominate.html", gin.H{
		"title":         "Nominate a firm",
		"form":          input,
		"errors":        errs,
		"submitted":     submitted,
		"practiceAreas": areas,
		"states":        states,
	})
}

// nominationStored counts the submission and sends notifications; failures are only logged.
func (a *API) nominationStored(c *gin.Context, nomination *db.Nomination) {
	a.metrics.SubmissionStored("nomination")
	if a.notify == nil {
		return
	}
	if err := a.notify.NominationReceived(c.Request.Context(), nomination); err != nil {
		a.logger.Warn().
			Err(err).
			Uint("nomination_id", nomination.ID).
			Str("request_id", c.GetString(logger.RequestIDKey)).
			Msg("nomination notification failed")
	}
}

// ListNominations 后台提名列表
func (a *API) ListNominations(c *gin.Context) {
	result, err := a.nominations.List(
		c.Query("status"),
		parsePositiveInt(c.Query("page"), 1),
		parsePositiveInt(c.Query("perPage"), 0),
	)
	if err != nil {
		respondInternal(c, err, "failed to load nominations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetNomination returns one nomination.
func (a *API) GetNomination(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid nomination id")
		return
	}

	nomination, err := a.nominations.Get(id)
	if err != nil {
		a.respondNominationError(c, err, "failed to load nomination")
		return
	}
	c.JSON(http.StatusOK, gin.H{"nomination": nomination})
}

// ReviewNomination 审核提名
func (a *API) ReviewNomination(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid nomination id")
		return
	}

	var req nominationReviewRequest
	if !bindJSON(c, &req, "review status is required") {
		return
	}

	nomination, err := a.nominations.Review(id, req.Status, req.Note)
	if err != nil {
		a.respondNominationError(c, err, "failed to review nomination")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "nomination reviewed", "nomination": nomination})
}

// ConvertNomination 将已通过的提名转为草稿律所
func (a *API) ConvertNomination(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid nomination id")
		return
	}

	firm, err := a.nominations.Convert(id)
	if err != nil {
		a.respondNominationError(c, err, "failed to convert nomination")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "draft firm created", "firm": firm})
}

// DeleteNomination 删除提名
func (a *API) DeleteNomination(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid nomination id")
		return
	}

	if err := a.nominations.Delete(id); err != nil {
		a.respondNominationError(c, err, "failed to delete nomination")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "nomination deleted"})
}

func (a *API) respondNominationError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNominationNotFound):
		respondError(c, http.StatusNotFound, "nomination not found")
	case errors.Is(err, service.ErrNominationStatus):
		respondError(c, http.StatusBadRequest, "review status must be approved or rejected")
	case errors.Is(err, service.ErrNominationNotApproved):
		respondError(c, http.StatusBadRequest, "only approved nominations can be converted")
	case errors.Is(err, service.ErrNominationConverted):
		respondError(c, http.StatusConflict, "nomination already converted")
	default:
		a.respondFirmError(c, err, message)
	}
}

func fieldErrorMap(verr *service.ValidationError) map[string]string {
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Error
	}
	return out
}
