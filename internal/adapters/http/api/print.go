package api

import (
	"bytes"
	"html/template"
	"net/http"
)

const printHead = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{block "title" .}}{{end}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:24px;color:#1b3a1b}
h1{font-size:1.4rem;margin:0 0 8px}
table{border-collapse:collapse;width:100%}
td,th{border:1px solid #9bb59b;padding:6px 8px;text-align:left;vertical-align:top}
.grid{display:grid;grid-template-columns:repeat(5,1fr);grid-template-areas:
 "partners activities value relationships segments"
 "partners resources value channels segments"
 "costs costs costs revenue revenue";gap:6px}
.cell{border:1px solid #9bb59b;padding:8px;white-space:pre-wrap;min-height:90px}
.cell h2{font-size:.9rem;margin:0 0 6px}
.meta{margin:0 0 12px;color:#4a6a4a}
</style>
</head>
<body onload="window.print()">
{{block "body" .}}{{end}}
</body>
</html>`

var costsSummaryTmpl = template.Must(template.Must(template.New("costs").Parse(printHead)).Parse(`
{{define "title"}}Break-even summary: {{.Label}}{{end}}
{{define "body"}}
<h1>{{.Label}}</h1>
<table>
<thead><tr><th>Cost item</th><th>Amount</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Name}}</td><td>{{.Amount}}</td></tr>
{{else}}<tr><td colspan="2">No costs selected</td></tr>
{{end}}</tbody>
</table>
<p><strong>Total cost:</strong> {{.TotalText}}</p>
<p><strong>Selling price per unit:</strong> {{.PriceText}}</p>
<p><strong>Break-even units:</strong> {{.UnitsText}}</p>
{{end}}`))

var canvasSheetTmpl = template.Must(template.Must(template.New("canvas").Parse(printHead)).Parse(`
{{define "title"}}Business Model Canvas: {{.BusinessName}}{{end}}
{{define "body"}}
<h1>{{.BusinessName}}</h1>
<p class="meta">Prepared by {{.UserName}} on {{.Date}}</p>
<div class="grid">
{{range .Boxes}}<section class="cell" style="grid-area:{{.Area}}"><h2>{{.Title}}</h2>{{.Body}}</section>
{{end}}</div>
{{end}}`))

// renderHTML executes t into a buffer first so a template failure still
// produces a clean error response.
func renderHTML(w http.ResponseWriter, op string, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		writeError(w, http.StatusInternalServerError, "render", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
