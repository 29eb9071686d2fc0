package newsletter

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// Highlight es una entrada destacada (normalmente un post del blog).
type Highlight struct {
	Title string
	URL   string
}

type Content struct {
	Headline   string
	Intro      string
	Highlights []Highlight
	// BrowseURL apunta al listado de cachorros disponibles.
	BrowseURL string
}

type Rendered struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type view struct {
	Theme   Theme
	Content Content
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<!doctype html>
<html><body style="margin:0;font-family:Helvetica,Arial,sans-serif;background:#fafafa">
<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table width="600" cellpadding="24" cellspacing="0" style="background:#fff;border-top:6px solid {{.Theme.PrimaryColor}}">
<tr><td>
<h1 style="color:{{.Theme.PrimaryColor}};margin:0 0 8px">{{.Content.Headline}}</h1>
<p style="color:#555;margin:0 0 16px">{{.Theme.Greeting}}!</p>
{{if .Content.Intro}}<p>{{.Content.Intro}}</p>{{end}}
{{if .Content.Highlights}}<ul>
{{range .Content.Highlights}}<li><a href="{{.URL}}" style="color:{{$.Theme.AccentColor}}">{{.Title}}</a></li>
{{end}}</ul>{{end}}
{{if .Content.BrowseURL}}<p><a href="{{.Content.BrowseURL}}" style="display:inline-block;padding:10px 18px;background:{{.Theme.AccentColor}};color:#fff;text-decoration:none;border-radius:4px">Meet the puppies</a></p>{{end}}
</td></tr></table>
</td></tr></table>
</body></html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("text").Parse(`{{.Content.Headline}}
{{.Theme.Greeting}}!
{{if .Content.Intro}}
{{.Content.Intro}}
{{end}}{{range .Content.Highlights}}
- {{.Title}}: {{.URL}}{{end}}
{{if .Content.BrowseURL}}
Meet the puppies: {{.Content.BrowseURL}}
{{end}}`))

// Render arma asunto y cuerpos HTML/texto para un tema.
func Render(theme Theme, content Content) (Rendered, error) {
	if strings.TrimSpace(content.Headline) == "" {
		content.Headline = theme.SubjectPrefix
	}
	v := view{Theme: theme, Content: content}

	var h bytes.Buffer
	if err := htmlTmpl.Execute(&h, v); err != nil {
		return Rendered{}, err
	}
	var t bytes.Buffer
	if err := textTmpl.Execute(&t, v); err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Subject: theme.SubjectPrefix + ": " + content.Headline,
		HTML:    h.String(),
		Text:    strings.TrimSpace(t.String()) + "\n",
	}, nil
}
