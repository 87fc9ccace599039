package templates

import (
	"fmt"
	"time"
)

type PublishNoticeProps struct {
	DocumentTitle string
	DocumentID    string
	PublicationID string
	PreviewURL    string
	Sections      int
	Widgets       int
	PublishedAt   time.Time
}

// GetPublishNoticeContent builds the body of the "page published" email.
func GetPublishNoticeContent(props PublishNoticeProps) string {
	title := props.DocumentTitle
	if title == "" {
		title = "Untitled Page"
	}
	content := GetParagraph("Hi there,")
	content += GetParagraph(fmt.Sprintf("%q was published on %s.", title, props.PublishedAt.UTC().Format("Jan 2, 2006 at 15:04 MST")))
	content += GetParagraph(fmt.Sprintf("The page has %d sections and %d widgets. Publication id: %s.", props.Sections, props.Widgets, props.PublicationID))
	if props.PreviewURL != "" {
		content += GetButton(ButtonProps{Text: "View page", URL: props.PreviewURL})
	}
	return content
}
