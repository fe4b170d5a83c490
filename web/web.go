// Package web embeds the HTML templates and static assets served by the router.
package web

import "embed"

// FS holds templates under template/ and assets under static/.
//
//go:embed template/partials/*.html template/public/*.html template/admin/*.html static/css static/js
var FS embed.FS

// TemplatePatterns are the globs parsed into the gin template set.
var TemplatePatterns = []string{
	"template/partials/*.html",
	"template/public/*.html",
	"template/admin/*.html",
}
