package main

import (
	"io"
	"strings"
	"text/template"

	"github.com/yanqian/trailfinder/internal/domain/trailview"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"stars": func(n int) string { return strings.Repeat("*", n) },
}).Parse(`== {{.Title}} ==
{{.Tagline}}
{{with .Weather}}
Current Weather{{if .Location}} in {{.Location}}{{end}}
  {{.TempC}}°C  {{.Condition}}
{{end}}
Your Fitness Level:{{range .Levels}} {{if .Selected}}[{{.Level}}]{{else}} {{.Level}} {{end}}{{end}}
{{with .Banner}}
! {{.}}
{{end}}
{{if .Loading}}Loading trails...
{{else}}{{range .Cards}}
{{.Name}}
  {{.Description}}
  Length: {{.LengthKm}}km  Elevation: {{.ElevationGainM}}m
  Difficulty: {{stars .Stars}}
{{with .Explanation}}  Why: {{.}}
{{end}}{{end}}{{end}}`))

func writePage(w io.Writer, page trailview.Page) error {
	return pageTemplate.Execute(w, page)
}
