// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"bytes"
	"text/template"
)

// populatePromptTmpl is the prompt sent to the oracle for each
// (section, persona) pair. It instructs the model to fill the
// component's content slots, grounding every claim in the supplied
// knowledge excerpts.
var populatePromptTmpl = template.Must(template.New("populate").Parse(`You are a marketing copy generation system. Write copy for one section of a {{.PageType}} page titled "{{.PageTitle}}".

Section: {{.ComponentID}} (narrative role: {{.Role}})
Directive: {{.Directive}}
{{- if .Tone}}
Brand voice: {{.Tone}}
{{- end}}
{{- if .PersonaID}}
Target persona: {{.PersonaLabel}} ({{.PersonaID}}){{if .PersonaDesc}}: {{.PersonaDesc}}{{end}}
Write the copy specifically for this persona's vocabulary and priorities.
{{- end}}

Fill exactly these content slots:
{{- range .RequiredFields}}
- {{.}}
{{- end}}

Ground every factual claim in the knowledge excerpts below. Do not invent facts, metrics, or customer names that are not in the excerpts. Where the excerpts are silent, keep the copy generic rather than inventing specifics.

Knowledge excerpts:
{{- if .Excerpts}}
{{- range .Excerpts}}
- [{{.EntityType}}] {{.Content}}
{{- end}}
{{- else}}
(none available)
{{- end}}

Respond with a JSON object containing a "fields" object mapping each slot name to its copy. Do not include any text outside the JSON object.

Example response:
{"fields": {"headline": "Ship in minutes, not weeks", "cta_label": "Start free"}}
`))

// renderPrompt executes the population prompt template for one request.
func renderPrompt(req OracleRequest) (string, error) {
	var buf bytes.Buffer
	if err := populatePromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
