package storage

import (
	"fmt"
	"time"

	"github.com/nhle/cloudconsole/internal/theme"
)

// uploadedFile is one object stored during this session.
type uploadedFile struct {
	name       string
	key        string
	url        string
	bucket     string
	uploadedAt time.Time

	// pending names an in-flight operation on this entry, if any.
	pending string
}

func (f uploadedFile) FilterValue() string { return f.name + " " + f.key }

func (f uploadedFile) Title() string {
	if f.pending != "" {
		return fmt.Sprintf("%s %s", f.name, theme.DimmedStyle.Render("("+f.pending+"...)"))
	}
	return f.name
}

func (f uploadedFile) Description() string {
	return fmt.Sprintf("%s · %s · %s", f.key, f.bucket, f.uploadedAt.Local().Format("15:04:05"))
}
