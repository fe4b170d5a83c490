package router

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/firmdirectory/internal/db"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatDate": formatDate,
		"timeAgo": func(t time.Time) string {
			return formatRelativeTime(time.Now(), t)
		},
		"money":      formatMoney,
		"hasArea":    hasArea,
		"eqID":       eqID,
		"statFor":    statFor,
		"fieldError": fieldError,
		"jsonPretty": jsonPretty,
		"dict":       dict,
	}
}

// formatDate 支持 time.Time 与 *time.Time，零值返回空字符串
func formatDate(value interface{}) string {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return ""
		}
		t = *v
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// formatRelativeTime 将时间格式化为 "5 minutes ago" 形式
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month")
	default:
		return plural(int(diff/(365*24*time.Hour)), "year")
	}
}

func formatMoney(amount float64) string {
	if amount == 0 {
		return "Free"
	}
	if amount == float64(int64(amount)) {
		return printer.Sprintf("$%d", int64(amount))
	}
	return printer.Sprintf("$%.2f", amount)
}

func hasArea(set interface{}, id uint) bool {
	switch v := set.(type) {
	case map[uint]bool:
		return v[id]
	case []db.PracticeArea:
		for _, area := range v {
			if area.ID == id {
				return true
			}
		}
	}
	return false
}

func eqID(ptr *uint, id uint) bool {
	return ptr != nil && *ptr == id
}

func statFor(stats map[uint]*db.FirmStatistic, id uint) *db.FirmStatistic {
	if stats == nil {
		return nil
	}
	return stats[id]
}

func fieldError(errs map[string]string, field string) string {
	if errs == nil {
		return ""
	}
	return errs[field]
}

func jsonPretty(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// dict 用于向子模板传递多个参数
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict expects key/value pairs, got %d values", len(pairs))
	}
	out := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		out[strings.TrimSpace(key)] = pairs[i+1]
	}
	return out, nil
}
