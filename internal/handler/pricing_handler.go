package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/pricing"
	"github.com/gin-gonic/gin"
)

// GetPricing 返回当前定价配置，每次请求都重新读取文件
func (a *API) GetPricing(c *gin.Context) {
	cfg, err := a.pricing.Load()
	if err != nil {
		respondInternal(c, err, "failed to load pricing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricing": cfg})
}

// UpdatePricing 整体替换定价配置
func (a *API) UpdatePricing(c *gin.Context) {
	var payload pricing.Config
	if !bindJSON(c, &payload, "invalid pricing payload") {
		return
	}

	saved, err := a.pricing.Save(payload)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrNoTiers),
			errors.Is(err, pricing.ErrTierIDRequired),
			errors.Is(err, pricing.ErrTierDuplicate),
			errors.Is(err, pricing.ErrNegativePrice):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondInternal(c, err, "failed to save pricing")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pricing saved", "pricing": saved})
}
