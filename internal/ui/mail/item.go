package mail

import "github.com/nhle/cloudconsole/internal/backend/ses"

type templateItem struct {
	summary ses.TemplateSummary
}

func (i templateItem) FilterValue() string { return i.summary.Name }
func (i templateItem) Title() string       { return i.summary.Name }

func (i templateItem) Description() string {
	if i.summary.CreatedTimestamp == "" {
		return "created: unknown"
	}
	return "created: " + i.summary.CreatedTimestamp
}
