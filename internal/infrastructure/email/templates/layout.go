// Package templates builds the HTML bodies of outgoing notices.
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// EmailLayoutProps fills the shared notice frame.
type EmailLayoutProps struct {
	Preheader     string
	Content       string
	FooterText    string
	PoweredByText string
	PoweredByURL  string
}

type layoutData struct {
	Preheader     string
	Content       template.HTML
	FooterText    string
	PoweredByText string
	PoweredByURL  string
}

const (
	defaultPreheader = "Your page builder has news"
	defaultFooter    = "You receive this because publish notices are enabled for this editor."
	defaultPowered   = "FlexiBuilder"
	defaultPoweredTo = "https://github.com/AtRiskMedia/flexibuilder-go"
)

// Mail clients only lay out tables reliably.
var layoutTemplate = template.Must(template.New("notice").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Preheader}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f5f6;font-family:Helvetica,Arial,sans-serif;font-size:16px;line-height:1.4;color:#1f2933;">
<div style="display:none;max-height:0;overflow:hidden;">{{.Preheader}}</div>
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background:#f4f5f6;">
<tr><td align="center" style="padding:24px 8px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="max-width:600px;width:100%;background:#ffffff;border:1px solid #eaebed;border-radius:12px;">
<tr><td style="padding:24px;">{{.Content}}</td></tr>
</table>
<p style="margin:16px 0 0;color:#9a9ea6;font-size:13px;text-align:center;">{{.FooterText}}</p>
<p style="margin:4px 0 0;color:#9a9ea6;font-size:13px;text-align:center;">Sent by <a href="{{.PoweredByURL}}" style="color:#9a9ea6;">{{.PoweredByText}}</a></p>
</td></tr>
</table>
</body>
</html>`))

// GetEmailLayout wraps already-escaped content in the notice frame.
func GetEmailLayout(props EmailLayoutProps) string {
	data := layoutData{
		Preheader:     orDefault(props.Preheader, defaultPreheader),
		Content:       template.HTML(props.Content),
		FooterText:    orDefault(props.FooterText, defaultFooter),
		PoweredByText: orDefault(props.PoweredByText, defaultPowered),
		PoweredByURL:  orDefault(props.PoweredByURL, defaultPoweredTo),
	}

	var buf bytes.Buffer
	if err := layoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error executing notice layout: %v", err)
		return "<html><body>Template execution error</body></html>"
	}
	return buf.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
