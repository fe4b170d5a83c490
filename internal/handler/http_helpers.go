package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondInternal 记录底层错误后返回通用的 500 响应。
func respondInternal(c *gin.Context, err error, message string) {
	c.Error(err)
	respondError(c, http.StatusInternalServerError, message)
}

// respondValidation writes a 400 with per-field errors when err carries them.
func respondValidation(c *gin.Context, err error) bool {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "please correct the highlighted fields", "fields": verr.Fields})
	return true
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, key string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// respondSlugError handles the slug failures shared by every write endpoint.
func respondSlugError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, http.StatusConflict, "slug already in use")
	case errors.Is(err, service.ErrSlugInvalid):
		respondError(c, http.StatusBadRequest, "slug is empty")
	case errors.Is(err, service.ErrStatusInvalid):
		respondError(c, http.StatusBadRequest, "status must be draft or published")
	default:
		return false
	}
	return true
}
