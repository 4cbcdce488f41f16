package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/model"
)

func TestShowThenExpire(t *testing.T) {
	m := New(time.Second)

	m, cmd := m.Update(Showf(Success, "Uploaded %d files", 2)())
	require.NotNil(t, cmd)
	assert.True(t, m.Active())
	assert.Equal(t, "Uploaded 2 files", m.Text())
	assert.Equal(t, Success, m.Level())

	m, _ = m.Update(expiredMsg{seq: m.seq})
	assert.False(t, m.Active())
}

func TestStaleExpiryKeepsNewerToast(t *testing.T) {
	m := New(time.Second)
	m, _ = m.Update(ShowMsg{Level: Info, Text: "first"})
	first := m.seq
	m, _ = m.Update(ShowMsg{Level: Error, Text: "second"})

	m, _ = m.Update(expiredMsg{seq: first})
	assert.True(t, m.Active())
	assert.Equal(t, "second", m.Text())
}

func TestShowKeepsTextVerbatim(t *testing.T) {
	msg := Show(Info, "100% done")().(ShowMsg)
	assert.Equal(t, "100% done", msg.Text)

	msg = Showf(Warning, "%d%% uploaded", 50)().(ShowMsg)
	assert.Equal(t, "50% uploaded", msg.Text)
	assert.Equal(t, Warning, msg.Level)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, Success, LevelFor(model.NotificationSuccess))
	assert.Equal(t, Warning, LevelFor(model.NotificationWarning))
	assert.Equal(t, Error, LevelFor(model.NotificationError))
	assert.Equal(t, Info, LevelFor(model.NotificationFileUploaded))
	assert.Equal(t, "warning", Warning.String())
}
