package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

type blogPostRequest struct {
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Excerpt        string `json:"excerpt"`
	Content        string `json:"content"`
	Format         string `json:"format"`
	CoverURL       string `json:"coverUrl"`
	AuthorName     string `json:"authorName"`
	Status         string `json:"status"`
	PracticeAreaID *uint  `json:"practiceAreaId"`
}

type publishRequest struct {
	PublishedAt *time.Time `json:"publishedAt"`
}

func (r blogPostRequest) toInput() service.BlogPostInput {
	return service.BlogPostInput{
		Title:          r.Title,
		Slug:           r.Slug,
		Excerpt:        r.Excerpt,
		Content:        r.Content,
		Format:         r.Format,
		CoverURL:       r.CoverURL,
		AuthorName:     r.AuthorName,
		Status:         r.Status,
		PracticeAreaID: r.PracticeAreaID,
	}
}

// ListBlogPosts 后台文章列表
func (a *API) ListBlogPosts(c *gin.Context) {
	result, err := a.blog.List(service.BlogFilter{
		Status:       c.Query("status"),
		Search:       c.Query("search"),
		PracticeArea: c.Query("practiceArea"),
		Page:         parsePositiveInt(c.Query("page"), 1),
		PerPage:      parsePositiveInt(c.Query("perPage"), 0),
	})
	if err != nil {
		respondInternal(c, err, "failed to load posts")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBlogPost returns one post.
func (a *API) GetBlogPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.blog.Get(id)
	if err != nil {
		respondBlogError(c, err, "failed to load post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreateBlogPost 创建文章，format 为 html 时先转换为 markdown
func (a *API) CreateBlogPost(c *gin.Context) {
	var req blogPostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := a.blog.Create(req.toInput())
	if err != nil {
		respondBlogError(c, err, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "post created", "post": post})
}

// UpdateBlogPost 更新文章
func (a *API) UpdateBlogPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req blogPostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := a.blog.Update(id, req.toInput())
	if err != nil {
		respondBlogError(c, err, "failed to update post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post updated", "post": post})
}

// DeleteBlogPost 删除文章
func (a *API) DeleteBlogPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.blog.Get(id)
	if err != nil {
		respondBlogError(c, err, "failed to delete post")
		return
	}
	if err := a.blog.Delete(id); err != nil {
		respondBlogError(c, err, "failed to delete post")
		return
	}
	if err := a.media.Remove(post.CoverURL); err != nil {
		c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// PublishBlogPost 发布文章，可指定发布时间
func (a *API) PublishBlogPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req publishRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "publishedAt must be an RFC 3339 timestamp") {
		return
	}

	post, err := a.blog.Publish(id, req.PublishedAt)
	if err != nil {
		respondBlogError(c, err, "failed to publish post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post published", "post": post})
}

// UnpublishBlogPost 将文章撤回为草稿
func (a *API) UnpublishBlogPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.blog.Unpublish(id)
	if err != nil {
		respondBlogError(c, err, "failed to unpublish post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post unpublished", "post": post})
}

func respondBlogError(c *gin.Context, err error, message string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrBlogPostNotFound):
		respondError(c, http.StatusNotFound, "post not found")
	case errors.Is(err, service.ErrPracticeAreaNotFound):
		respondError(c, http.StatusNotFound, "practice area not found")
	case errors.Is(err, service.ErrBlogTitleRequired):
		respondError(c, http.StatusBadRequest, "post title is required")
	case errors.Is(err, service.ErrBlogContentRequired):
		respondError(c, http.StatusBadRequest, "post content is required")
	case errors.Is(err, service.ErrBlogFormatUnsupported):
		respondError(c, http.StatusBadRequest, "format must be markdown or html")
	default:
		respondInternal(c, err, message)
	}
}
