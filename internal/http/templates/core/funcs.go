package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// markdown renders announcement bodies. Raw HTML in the source is escaped
// because goldmark's unsafe mode stays off.
//
//nolint:gochecknoglobals // goldmark instances are safe for concurrent use
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkhtml.WithHardWraps(),
	),
)

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":   deps.ContentTemplateFor,
		"add":           func(a, b int) int { return a + b },
		"formatNumber":  FormatNumber,
		"formatDate":    FormatDate,
		"preview":       func(s string) string { return uiutil.Preview(s, uiutil.PreviewLength) },
		"hours":         uiutil.FormatHours,
		"rank":          uiutil.Rank,
		"initial":       uiutil.Initial,
		"orDefault":     uiutil.OrDefault,
		"priorityClass": PriorityClass,
		"markdown":      Markdown,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// FormatDate accepts the date shapes found in view models and renders "Jan 2, 2006".
func FormatDate(v any) string {
	switch d := v.(type) {
	case model.Date:
		return uiutil.FormatDate(d.Time)
	case *model.Date:
		if d != nil {
			return uiutil.FormatDate(d.Time)
		}
	case time.Time:
		return uiutil.FormatDate(d)
	case *time.Time:
		if d != nil {
			return uiutil.FormatDate(*d)
		}
	}
	return ""
}

// FormatNumber renders integer counters with thousands separators. Other values
// are rendered with strconv defaults.
func FormatNumber(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != float64(int64(x)) {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		n = int64(x)
	default:
		return ""
	}

	neg := n < 0
	s := strconv.FormatInt(n, 10)
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		s = withCommas(s)
	}
	if neg {
		return "-" + s
	}
	return s
}

func withCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + (len(s)-1)/3)

	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// PriorityClass maps an announcement priority to a badge class.
func PriorityClass(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "urgent", "critical":
		return "badge-danger"
	case "high":
		return "badge-warning"
	case "medium", "normal":
		return "badge-info"
	case "low":
		return "badge-secondary"
	default:
		return "badge-light"
	}
}

// Markdown renders src as HTML. Raw HTML blocks and inline tags are omitted
// from the output; on a render failure the escaped source is returned.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		// #nosec G203 - escaped text
		return template.HTML(template.HTMLEscapeString(src))
	}
	// #nosec G203 - goldmark without WithUnsafe never emits raw HTML from the source
	return template.HTML(buf.String())
}
