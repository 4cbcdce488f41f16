package notifications

import (
	"fmt"

	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/theme"
)

// item wraps a received notification for the list widget.
type item struct {
	n model.Notification
}

func (i item) FilterValue() string { return i.n.Title }

func (i item) Title() string {
	label := theme.NotificationStyle(string(i.n.Type)).Render(string(i.n.Type))
	return fmt.Sprintf("%s %s", label, i.n.Title)
}

func (i item) Description() string {
	return fmt.Sprintf("%s · %s", i.n.Message, i.n.Timestamp.Local().Format("15:04:05"))
}
