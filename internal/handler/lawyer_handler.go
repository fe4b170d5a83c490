package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type lawyerRequest struct {
	FirmID          uint   `json:"firmId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Bio             string `json:"bio"`
	PhotoURL        string `json:"photoUrl"`
	BarAdmissions   string `json:"barAdmissions"`
	PracticeAreaIDs []uint `json:"practiceAreaIds"`
}

func (r lawyerRequest) toInput() service.LawyerInput {
	return service.LawyerInput{
		FirmID:          r.FirmID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Slug:            r.Slug,
		Title:           r.Title,
		Email:           r.Email,
		Phone:           r.Phone,
		Bio:             r.Bio,
		PhotoURL:        r.PhotoURL,
		BarAdmissions:   r.BarAdmissions,
		PracticeAreaIDs: r.PracticeAreaIDs,
	}
}

// ListLawyers 后台律师列表，可按律所过滤
func (a *API) ListLawyers(c *gin.Context) {
	result, err := a.lawyers.List(service.LawyerFilter{
		FirmID:  parseUintQuery(c, "firmId"),
		Search:  c.Query("search"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("perPage"), 0),
	})
	if err != nil {
		respondInternal(c, err, "failed to load lawyers")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetLawyer returns one lawyer.
func (a *API) GetLawyer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lawyer id")
		return
	}

	lawyer, err := a.lawyers.Get(id)
	if err != nil {
		respondLawyerError(c, err, "failed to load lawyer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lawyer": lawyer})
}

// CreateLawyer 创建律师
func (a *API) CreateLawyer(c *gin.Context) {
	var req lawyerRequest
	if !bindJSON(c, &req, "invalid lawyer payload") {
		return
	}

	lawyer, err := a.lawyers.Create(req.toInput())
	if err != nil {
		respondLawyerError(c, err, "failed to create lawyer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "lawyer created", "lawyer": lawyer})
}

// UpdateLawyer 更新律师
func (a *API) UpdateLawyer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lawyer id")
		return
	}

	var req lawyerRequest
	if !bindJSON(c, &req, "invalid lawyer payload") {
		return
	}

	lawyer, err := a.lawyers.Update(id, req.toInput())
	if err != nil {
		respondLawyerError(c, err, "failed to update lawyer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lawyer updated", "lawyer": lawyer})
}

// DeleteLawyer 删除律师
func (a *API) DeleteLawyer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lawyer id")
		return
	}

	if err := a.lawyers.Delete(id); err != nil {
		respondLawyerError(c, err, "failed to delete lawyer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lawyer deleted"})
}

func respondLawyerError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrLawyerNotFound):
		respondError(c, http.StatusNotFound, "lawyer not found")
	case errors.Is(err, service.ErrFirmNotFound):
		respondError(c, http.StatusNotFound, "firm not found")
	case errors.Is(err, service.ErrPracticeAreaNotFound):
		respondError(c, http.StatusNotFound, "practice area not found")
	case errors.Is(err, service.ErrLawyerNameRequired):
		respondError(c, http.StatusBadRequest, "first and last name are required")
	case errors.Is(err, service.ErrLawyerEmailInvalid):
		respondError(c, http.StatusBadRequest, "email is invalid")
	default:
		respondInternal(c, err, message)
	}
}
