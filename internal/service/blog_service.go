package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

const (
	ContentFormatMarkdown = "markdown"
	ContentFormatHTML     = "html"
)

var (
	ErrBlogPostNotFound      = errors.New("blog post not found")
	ErrBlogTitleRequired     = errors.New("blog post title is required")
	ErrBlogContentRequired   = errors.New("blog post content is required")
	ErrBlogFormatUnsupported = errors.New("content format must be markdown or html")
)

// BlogService 管理博客文章。
type BlogService struct {
	db        *gorm.DB
	converter *md.Converter
	now       func() time.Time
}

// BlogFilter describes filters for blog listings.
type BlogFilter struct {
	Status       string
	Search       string
	PracticeArea string
	Page         int
	PerPage      int
}

// BlogListResult aggregates paginated posts.
type BlogListResult struct {
	Posts []db.BlogPost `json:"posts"`
	Pagination
}

// BlogPostInput represents fields accepted when creating or updating a post.
type BlogPostInput struct {
	Title          string
	Slug           string
	Excerpt        string
	Content        string
	Format         string
	CoverURL       string
	AuthorName     string
	Status         string
	PracticeAreaID *uint
}

// NewBlogService creates a BlogService.
func NewBlogService(gdb *gorm.DB) *BlogService {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &BlogService{db: gdb, converter: converter, now: time.Now}
}

// List returns posts newest first.
func (s *BlogService) List(filter BlogFilter) (*BlogListResult, error) {
	result := &BlogListResult{Pagination: newPagination(filter.Page, filter.PerPage, 10, 50)}

	query := s.db.Model(&db.BlogPost{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("blog_posts.status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(search)
		query = query.Where("LOWER(blog_posts.title) LIKE ? OR LOWER(blog_posts.content) LIKE ?", like, like)
	}
	if area := strings.ToLower(strings.TrimSpace(filter.PracticeArea)); area != "" {
		query = query.
			Joins("JOIN practice_areas pa ON pa.id = blog_posts.practice_area_id AND pa.deleted_at IS NULL").
			Where("pa.slug = ?", area)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	result.finish(total)

	if err := query.
		Preload("PracticeArea").
		Order("COALESCE(blog_posts.published_at, blog_posts.created_at) desc").
		Order("blog_posts.id desc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Posts).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Latest returns the newest published posts.
func (s *BlogService) Latest(limit int) ([]db.BlogPost, error) {
	res, err := s.List(BlogFilter{Status: db.StatusPublished, PerPage: limit})
	if err != nil {
		return nil, err
	}
	return res.Posts, nil
}

// Get fetches a post by id.
func (s *BlogService) Get(id uint) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.Preload("PracticeArea").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by slug; publishedOnly hides drafts.
func (s *BlogService) GetBySlug(slugValue string, publishedOnly bool) (*db.BlogPost, error) {
	query := s.db.Preload("PracticeArea").Where("slug = ?", strings.TrimSpace(slugValue))
	if publishedOnly {
		query = query.Where("status = ?", db.StatusPublished)
	}

	var post db.BlogPost
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a post.
func (s *BlogService) Create(input BlogPostInput) (*db.BlogPost, error) {
	post := db.BlogPost{}
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}
	if err := s.db.Omit("PracticeArea").Create(&post).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return s.Get(post.ID)
}

// Update changes an existing post.
func (s *BlogService) Update(id uint, input BlogPostInput) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}
	if err := s.db.Omit("PracticeArea").Save(&post).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return s.Get(post.ID)
}

// Delete removes a post.
func (s *BlogService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogPostNotFound
	}
	return nil
}

// Publish marks a post as published at the given time, or now when at is nil.
func (s *BlogService) Publish(id uint, at *time.Time) (*db.BlogPost, error) {
	when := s.now()
	if at != nil && !at.IsZero() {
		when = *at
	}
	return s.setStatus(id, db.StatusPublished, &when)
}

// Unpublish moves a post back to draft.
func (s *BlogService) Unpublish(id uint) (*db.BlogPost, error) {
	return s.setStatus(id, db.StatusDraft, nil)
}

// UpdateCover stores a new cover image and returns the previous URL.
func (s *BlogService) UpdateCover(id uint, url string) (string, error) {
	post, err := s.Get(id)
	if err != nil {
		return "", err
	}
	previous := post.CoverURL
	if err := s.db.Model(&db.BlogPost{}).Where("id = ?", id).Update("cover_url", url).Error; err != nil {
		return "", err
	}
	return previous, nil
}

// ToMarkdown converts HTML content into markdown.
func (s *BlogService) ToMarkdown(html string) (string, error) {
	out, err := s.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *BlogService) setStatus(id uint, status string, at *time.Time) (*db.BlogPost, error) {
	result := s.db.Model(&db.BlogPost{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"published_at": at,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBlogPostNotFound
	}
	return s.Get(id)
}

func (s *BlogService) apply(post *db.BlogPost, input BlogPostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrBlogTitleRequired
	}

	content := strings.TrimSpace(input.Content)
	switch strings.ToLower(strings.TrimSpace(input.Format)) {
	case "", ContentFormatMarkdown:
	case ContentFormatHTML:
		converted, err := s.ToMarkdown(content)
		if err != nil {
			return err
		}
		content = converted
	default:
		return ErrBlogFormatUnsupported
	}
	if content == "" {
		return ErrBlogContentRequired
	}

	status, err := normalizePublishStatus(input.Status)
	if err != nil {
		return err
	}

	var areaID *uint
	if input.PracticeAreaID != nil && *input.PracticeAreaID > 0 {
		if _, err := findPracticeAreas(s.db, []uint{*input.PracticeAreaID}); err != nil {
			return err
		}
		id := *input.PracticeAreaID
		areaID = &id
	}

	slugValue, err := resolveSlug(s.db, &db.BlogPost{}, input.Slug, title, post.ID)
	if err != nil {
		return err
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = summarizeContent(content, 200)
	}

	post.Title = title
	post.Slug = slugValue
	post.Excerpt = excerpt
	post.Content = content
	post.CoverURL = strings.TrimSpace(input.CoverURL)
	post.AuthorName = strings.TrimSpace(input.AuthorName)
	post.ReadingTime = calculateReadingTime(content)
	post.PracticeAreaID = areaID
	post.PracticeArea = nil

	switch {
	case status == db.StatusPublished && post.PublishedAt == nil:
		now := s.now()
		post.PublishedAt = &now
	case status == db.StatusDraft:
		post.PublishedAt = nil
	}
	post.Status = status
	return nil
}
