package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type officeRequest struct {
	Label        string `json:"label"`
	Street       string `json:"street"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone"`
	StateID      uint   `json:"stateId"`
	MetroID      *uint  `json:"metroId"`
	Headquarters bool   `json:"headquarters"`
}

func (r officeRequest) toInput() service.OfficeInput {
	return service.OfficeInput{
		Label:        r.Label,
		Street:       r.Street,
		City:         r.City,
		Zip:          r.Zip,
		Phone:        r.Phone,
		StateID:      r.StateID,
		MetroID:      r.MetroID,
		Headquarters: r.Headquarters,
	}
}

// ListFirmOffices 返回律所的全部办公室
func (a *API) ListFirmOffices(c *gin.Context) {
	firmID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}

	offices, err := a.offices.ListByFirm(firmID)
	if err != nil {
		respondOfficeError(c, err, "failed to load offices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"offices": offices})
}

// CreateOffice adds an office to a firm.
func (a *API) CreateOffice(c *gin.Context) {
	firmID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}

	var req officeRequest
	if !bindJSON(c, &req, "invalid office payload") {
		return
	}

	office, err := a.offices.Create(firmID, req.toInput())
	if err != nil {
		respondOfficeError(c, err, "failed to create office")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "office created", "office": office})
}

// UpdateOffice 更新办公室
func (a *API) UpdateOffice(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid office id")
		return
	}

	var req officeRequest
	if !bindJSON(c, &req, "invalid office payload") {
		return
	}

	office, err := a.offices.Update(id, req.toInput())
	if err != nil {
		respondOfficeError(c, err, "failed to update office")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "office updated", "office": office})
}

// DeleteOffice 删除办公室
func (a *API) DeleteOffice(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid office id")
		return
	}

	if err := a.offices.Delete(id); err != nil {
		respondOfficeError(c, err, "failed to delete office")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "office deleted"})
}

func respondOfficeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrFirmNotFound):
		respondError(c, http.StatusNotFound, "firm not found")
	case errors.Is(err, service.ErrOfficeNotFound):
		respondError(c, http.StatusNotFound, "office not found")
	case errors.Is(err, service.ErrStateNotFound):
		respondError(c, http.StatusNotFound, "state not found")
	case errors.Is(err, service.ErrMetroNotFound):
		respondError(c, http.StatusNotFound, "metro not found")
	case errors.Is(err, service.ErrOfficeCityRequired):
		respondError(c, http.StatusBadRequest, "office city is required")
	case errors.Is(err, service.ErrOfficeStateMissing):
		respondError(c, http.StatusBadRequest, "office state is required")
	case errors.Is(err, service.ErrMetroMismatch):
		respondError(c, http.StatusBadRequest, "metro does not belong to the selected state")
	default:
		respondInternal(c, err, message)
	}
}
