package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type stateRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
	Slug string `json:"slug"`
}

type metroRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

// GetLocations 返回全部州及其都市区
func (a *API) GetLocations(c *gin.Context) {
	states, err := a.locations.ListStates()
	if err != nil {
		respondInternal(c, err, "failed to load locations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"states": states})
}

// CreateState adds a state.
func (a *API) CreateState(c *gin.Context) {
	var req stateRequest
	if !bindJSON(c, &req, "state name and code are required") {
		return
	}

	state, err := a.locations.CreateState(req.Name, req.Code, req.Slug)
	if err != nil {
		respondLocationError(c, err, "failed to create state")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "state created", "state": state})
}

// CreateMetro adds a metro to a state.
func (a *API) CreateMetro(c *gin.Context) {
	stateID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid state id")
		return
	}

	var req metroRequest
	if !bindJSON(c, &req, "metro name is required") {
		return
	}

	metro, err := a.locations.CreateMetro(stateID, req.Name, req.Slug)
	if err != nil {
		respondLocationError(c, err, "failed to create metro")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "metro created", "metro": metro})
}

// DeleteMetro removes a metro.
func (a *API) DeleteMetro(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid metro id")
		return
	}

	if err := a.locations.DeleteMetro(id); err != nil {
		respondLocationError(c, err, "failed to delete metro")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "metro deleted"})
}

func respondLocationError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStateNotFound):
		respondError(c, http.StatusNotFound, "state not found")
	case errors.Is(err, service.ErrMetroNotFound):
		respondError(c, http.StatusNotFound, "metro not found")
	case errors.Is(err, service.ErrStateInvalid):
		respondError(c, http.StatusBadRequest, "state name and two-letter code are required")
	case errors.Is(err, service.ErrStateCodeTaken):
		respondError(c, http.StatusConflict, "state code already in use")
	case errors.Is(err, service.ErrMetroNameRequired):
		respondError(c, http.StatusBadRequest, "metro name is required")
	default:
		respondInternal(c, err, message)
	}
}
