package excerpt

import (
	"text/template"

	"github.com/poiesic/lorecraft/core"
)

// templateContext is the data passed to the excerpt template.
type templateContext struct {
	Document *core.Document
	Keywords string // comma-joined keyword list
	Location string // minimap rendering, empty for non-markdown sources
	Content  string // the chunk text
}

const defaultTemplateText = `The following is an excerpt from a document
{{- if .Document}}

# Document metadata
title: {{.Document.Metadata.Title}}
link: {{.Document.Metadata.Link}}
source: {{.Document.Metadata.Source}}
{{- end}}
{{- if .Keywords}}

# Document keywords
{{.Keywords}}
{{- end}}
{{- if .Location}}

# Excerpt's location in document
{{.Location}}
{{- end}}

# Excerpt content: {{.Content}}`

// DefaultTemplate renders an excerpt with document metadata, keywords, the
// minimap location, and the chunk text.
func DefaultTemplate() *template.Template {
	return template.Must(template.New("excerpt").Parse(defaultTemplateText))
}
