// Package report renders posture snapshots as Markdown documents for
// sharing outside the dashboard.
package report

import (
	"bytes"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

const markdownTemplate = `# Security Posture Report

- **Organization**: {{ .Org }}
- **Generated**: {{ .Posture.GeneratedAt.Format "2006-01-02 15:04 MST" }}
- **Overall score**: {{ .Posture.OverallScore }} / 100 ({{ .Posture.Rating }})

## Assessments

| Assessment | Status | Score | Findings |
|---|---|---|---|
{{- range .Posture.Assessments }}
| {{ .Name }} | {{ .Phase }} | {{ if .Score }}{{ deref .Score }}{{ else }}n/a{{ end }} | {{ .FindingCount }} |
{{- end }}

## Top findings
{{ if .Posture.TopFindings }}
{{- range .Posture.TopFindings }}
### [{{ .Severity }}] {{ .Title }}

{{ .Description }}

*Remediation*: {{ .Remediation }}
{{ end }}
{{- else }}
No open findings.
{{ end }}
## Trend ({{ len .Posture.History }} days)

| Date | Overall |
|---|---|
{{- range .Posture.History }}
| {{ .Date }} | {{ .Overall }} |
{{- end }}
`

var tmpl = template.Must(template.New("posture-report").Funcs(template.FuncMap{
	"deref": func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	},
}).Parse(markdownTemplate))

// Markdown renders the full posture report.
func Markdown(org types.OrgID, posture *model.Posture) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Org     types.OrgID
		Posture *model.Posture
	}{Org: org, Posture: posture})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render posture report", goerr.V("org", org))
	}
	return buf.String(), nil
}
