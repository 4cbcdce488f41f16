package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cloudconsole/internal/keys"
)

func TestViewListsEverySection(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 200, 60)
	view := m.View()

	for _, title := range sectionTitles {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "signed url")
	assert.Contains(t, view, "send batch")
}

func TestSectionTitlesMatchKeyGroups(t *testing.T) {
	assert.Len(t, keys.DefaultKeyMap().FullHelp(), len(sectionTitles))
}
