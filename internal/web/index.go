package web

import (
	"html/template"
	"net/http"

	"github.com/nibzard/spec-view-go/internal/scanner"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>spec-view</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; color: #555; }
h3 { font-size: 1rem; margin: 1rem 0 0 1rem; color: #777; }
table { border-collapse: collapse; width: 100%; }
td { padding: .3rem .5rem; border-bottom: 1px solid #eee; }
.bar { background: #eee; width: 10rem; height: .6rem; border-radius: .3rem; }
.bar span { display: block; background: #3a3; height: 100%; border-radius: .3rem; }
.status { font-size: .8rem; color: #666; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>spec-view <span class="muted">{{.Root}}</span></h1>
<p>{{.Summary.Progress.Percent}}% &middot; {{.Summary.Progress.Done}}/{{.Summary.Progress.Total}} tasks &middot; {{.Summary.Groups}} specs{{if .Summary.Archived}} &middot; {{.Summary.Archived}} archived{{end}}</p>
{{if not .Groups}}<p class="muted">No specs found. Run <code>spec-view init</code>.</p>{{end}}
{{define "rows"}}<table>
{{range .}}<tr>
<td><a href="/api/specs/{{.Name}}">{{.Title}}</a></td>
<td class="status">{{.Status}}</td>
<td><div class="bar"><span style="width: {{.Progress.Percent}}%"></span></div></td>
<td class="muted">{{.Progress.Done}}/{{.Progress.Total}}</td>
</tr>
{{end}}</table>{{end}}
{{with .Active}}{{template "rows" .}}{{end}}
{{with .Plan}}<h2>Implementation Plan</h2>{{template "rows" .}}{{end}}
{{if or .Archived .ArchivedPlan}}<h2>Archive</h2>
{{with .Archived}}{{template "rows" .}}{{end}}
{{with .ArchivedPlan}}<h3>Implementation Plan</h3>{{template "rows" .}}{{end}}
{{end}}
{{if .Skipped}}<h2>Skipped files</h2><ul>{{range .Skipped}}<li>{{.Path}}: {{.Error}}</li>{{end}}</ul>{{end}}
<script>
new EventSource("/events").onmessage = function (e) {
  if (e.data === "reload") { location.reload(); }
};
</script>
</body>
</html>
`))

type indexData struct {
	specsJSON
	Active   []groupJSON
	Plan     []groupJSON
	Archived []groupJSON

	// ArchivedPlan holds archived plan sections, listed under Archive.
	ArchivedPlan []groupJSON
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	data := indexData{specsJSON: newSpecsJSON(snap)}
	p := scanner.PartitionGroups(snap.result.Groups)
	root := snap.result.Root
	for _, g := range p.Active {
		data.Active = append(data.Active, newGroupJSON(g, root))
	}
	for _, g := range p.Plan {
		data.Plan = append(data.Plan, newGroupJSON(g, root))
	}
	for _, g := range p.ArchivedOther() {
		data.Archived = append(data.Archived, newGroupJSON(g, root))
	}
	for _, g := range p.ArchivedPlan() {
		data.ArchivedPlan = append(data.ArchivedPlan, newGroupJSON(g, root))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index", "err", err)
	}
}
