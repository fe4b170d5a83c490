package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/slug"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken     = errors.New("slug already in use")
	ErrSlugInvalid   = errors.New("slug is empty")
	ErrStatusInvalid = errors.New("status is invalid")
)

// Pagination 描述分页结果的公共字段。
type Pagination struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

func newPagination(page, perPage, fallback, max int) Pagination {
	p := Pagination{Page: normalizePage(page), PerPage: normalizePerPage(perPage, fallback)}
	if max > 0 && p.PerPage > max {
		p.PerPage = max
	}
	return p
}

func (p *Pagination) finish(total int64) {
	p.Total = total
	p.TotalPages = calculateTotalPages(total, p.PerPage)
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PerPage
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// resolveSlug normalizes the slug and checks it is not used by another row of model.
func resolveSlug(gdb *gorm.DB, model interface{}, explicit, fallback string, excludeID uint) (string, error) {
	value := slug.Pick(explicit, fallback)
	if value == "" {
		return "", ErrSlugInvalid
	}

	var count int64
	query := gdb.Unscoped().Model(model).Where("slug = ?", value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if count > 0 {
		return "", ErrSlugTaken
	}
	return value, nil
}

// translateWriteError maps a unique index violation that raced past resolveSlug.
func translateWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

func normalizePublishStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		return db.StatusDraft, nil
	case db.StatusDraft:
		return db.StatusDraft, nil
	case db.StatusPublished:
		return db.StatusPublished, nil
	default:
		return "", ErrStatusInvalid
	}
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func summarizeContent(markdown string, limit int) string {
	plain := markdown
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
		"(", " ",
		")", " ",
	)
	plain = replacer.Replace(plain)
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func calculateReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Max(1, math.Ceil(float64(words)/200)))
}

// FieldError 描述表单中单个字段的校验错误。
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError 汇总公开表单的字段错误。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct runs validator tags and converts failures into a ValidationError.
func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: describeTag(fe)})
	}
	return &ValidationError{Fields: fields}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alpha":
		return "must contain letters only"
	default:
		return "is invalid"
	}
}
