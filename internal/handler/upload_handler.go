package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

// UploadFirmLogo 处理律所 Logo 上传，成功后删除旧文件
func (a *API) UploadFirmLogo(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid firm id")
		return
	}
	if _, err := a.firms.Get(id); err != nil {
		a.respondFirmError(c, err, "failed to upload logo")
		return
	}

	stored, ok := a.saveUploadedImage(c, "logo", "firms", fmt.Sprintf("%d", id))
	if !ok {
		return
	}

	previous, err := a.firms.SetLogo(id, stored.URL, stored.Width, stored.Height)
	if err != nil {
		_ = a.media.Remove(stored.URL)
		a.respondFirmError(c, err, "failed to upload logo")
		return
	}
	if previous != "" && previous != stored.URL {
		if err := a.media.Remove(previous); err != nil {
			c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "logo uploaded",
		"logo": gin.H{
			"url":    stored.URL,
			"width":  stored.Width,
			"height": stored.Height,
		},
	})
}

// UploadBlogCover 处理文章封面上传
func (a *API) UploadBlogCover(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := a.blog.Get(id); err != nil {
		respondBlogError(c, err, "failed to upload cover")
		return
	}

	stored, ok := a.saveUploadedImage(c, "cover", "blog", fmt.Sprintf("%d", id))
	if !ok {
		return
	}

	previous, err := a.blog.UpdateCover(id, stored.URL)
	if err != nil {
		_ = a.media.Remove(stored.URL)
		respondBlogError(c, err, "failed to upload cover")
		return
	}
	if previous != "" && previous != stored.URL {
		if err := a.media.Remove(previous); err != nil {
			c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "cover uploaded",
		"cover": gin.H{
			"url":    stored.URL,
			"width":  stored.Width,
			"height": stored.Height,
		},
	})
}

func (a *API) saveUploadedImage(c *gin.Context, field, folder, prefix string) (*service.StoredImage, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("multipart field %q is required", field))
		return nil, false
	}
	if header.Size > service.MaxImageBytes {
		respondError(c, http.StatusBadRequest, "image exceeds 5 MB")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondInternal(c, err, "failed to read upload")
		return nil, false
	}
	defer file.Close()

	stored, err := a.media.SaveImage(folder, prefix, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge):
			respondError(c, http.StatusBadRequest, "image exceeds 5 MB")
		case errors.Is(err, service.ErrImageUnsupported), errors.Is(err, service.ErrImageEmpty):
			respondError(c, http.StatusBadRequest, "only png, jpeg, gif or webp images are allowed")
		default:
			respondInternal(c, err, "failed to store upload")
		}
		return nil, false
	}
	return stored, true
}
