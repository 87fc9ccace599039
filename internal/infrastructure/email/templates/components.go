// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; width: 100%;" width="100%">
      <tbody>
        <tr>
          <td align="left" style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; padding-bottom: 16px;" valign="top">
            <a href="{{.URL}}" target="_blank" style="border: solid 2px {{.BackgroundColor}}; border-radius: 4px; display: inline-block; font-size: 16px; font-weight: bold; padding: 12px 24px; text-decoration: none; background-color: {{.BackgroundColor}}; color: {{.TextColor}};">{{.Text}}</a>
          </td>
        </tr>
      </tbody>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	emailPolicy = bluemonday.UGCPolicy()
	hexPattern  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func GetButton(props ButtonProps) string {
	data := struct {
		Text            string
		URL             string
		BackgroundColor template.CSS
		TextColor       template.CSS
	}{
		Text:            props.Text,
		URL:             sanitizeEmailURL(props.URL),
		BackgroundColor: template.CSS(sanitizeColor(props.BackgroundColor, "#2563eb")),
		TextColor:       template.CSS(sanitizeColor(props.TextColor, "#ffffff")),
	}
	if data.URL == "" {
		log.Printf("Invalid or unsafe URL in email button: %s", props.URL)
		data.URL = "#"
	}

	var buf bytes.Buffer
	if err := buttonTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error executing email button template: %v", err)
		return `<div style="color: red;">Button template error</div>`
	}
	return buf.String()
}

// GetParagraph renders escaped paragraph text.
func GetParagraph(text string) string {
	return renderParagraph(text)
}

// GetParagraphWithHTML keeps basic formatting tags, sanitized with the UGC policy.
func GetParagraphWithHTML(text string) string {
	return renderParagraph(template.HTML(emailPolicy.Sanitize(text)))
}

func renderParagraph(content any) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, content); err != nil {
		log.Printf("Error executing email paragraph template: %v", err)
		return `<div style="color: red;">Paragraph template error</div>`
	}
	return buf.String()
}

// sanitizeEmailURL allows http, https and mailto links only.
func sanitizeEmailURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsedURL.Scheme) {
	case "http", "https", "mailto":
		return parsedURL.String()
	}
	return ""
}

func sanitizeColor(color, fallback string) string {
	color = strings.TrimSpace(color)
	if hexPattern.MatchString(color) {
		return color
	}
	return fallback
}
