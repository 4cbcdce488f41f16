package storage

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/backend/s3"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/toast"
	"github.com/nhle/cloudconsole/tests/testutil"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *testutil.Backend) {
	t.Helper()
	fake := testutil.NewBackend(t)
	m := New(s3.New(fake.Client), keys.DefaultKeyMap(), 100, 30)
	m.now = func() time.Time { return fixedNow }
	return m, fake
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSingleUploadPrependsAndClearsInputs(t *testing.T) {
	m, fake := newTestModel(t)
	fake.RespondData(map[string]any{"key": "docs/report.txt", "url": "https://bucket/docs/report.txt"})

	m.fb.path = writeFile(t, "report.txt", "quarterly numbers")
	m.fb.folder = "docs"
	m.fb.userID = "user-7"

	msgs := testutil.Messages(m.submit(modeUpload))
	require.Len(t, msgs, 1)
	assert.Equal(t, "folder=docs&userId=user-7", fake.Last(t).RawQuery)

	m, cmd := m.Update(msgs[0])
	files := m.files()
	require.Len(t, files, 1)
	assert.Equal(t, "report.txt", files[0].name)
	assert.Equal(t, "docs/report.txt", files[0].key)
	assert.Equal(t, "N/A", files[0].bucket)
	assert.Equal(t, fixedNow, files[0].uploadedAt)

	assert.Empty(t, m.fb.path)
	assert.Empty(t, m.fb.folder)
	assert.Empty(t, m.fb.userID)

	out := testutil.Messages(cmd)
	shown, ok := testutil.Find[toast.ShowMsg](out)
	require.True(t, ok)
	assert.Equal(t, "File uploaded successfully", shown.Text)
	count, ok := testutil.Find[dashboard.CountMsg](out)
	require.True(t, ok)
	assert.Equal(t, dashboard.CountMsg{Counter: dashboard.Files, N: 1}, count)
}

func TestUploadFailureKeepsListAndInputs(t *testing.T) {
	m, fake := newTestModel(t)
	fake.Respond(http.StatusRequestEntityTooLarge, map[string]any{"message": "file too large"})

	m.fb.path = writeFile(t, "big.bin", "xx")
	m, cmd := m.Update(testutil.Messages(m.submit(modeUpload))[0])

	assert.Empty(t, m.files())
	assert.NotEmpty(t, m.fb.path)

	shown := testutil.Messages(cmd)[0].(toast.ShowMsg)
	assert.Equal(t, toast.Error, shown.Level)
	assert.Contains(t, shown.Text, "file too large")
}

func TestMissingLocalFileNeverReachesBackend(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.path = filepath.Join(t.TempDir(), "nope.txt")

	msg := testutil.Messages(m.submit(modeUpload))[0].(uploadedMsg)
	require.Error(t, msg.err)
	assert.Empty(t, fake.Requests())
}

func TestMultipleUploadNamesResultsByIndex(t *testing.T) {
	m, fake := newTestModel(t)
	fake.RespondData([]map[string]any{
		{"key": "k/one", "url": "u1", "bucket": "media"},
		{"key": "k/two", "url": "u2"},
	})

	a := writeFile(t, "one.txt", "1")
	b := writeFile(t, "two.txt", "2")
	m.fb.paths = a + ",\n" + b
	m.fb.folderMany = "k"

	m, cmd := m.Update(testutil.Messages(m.submit(modeUploadMany))[0])

	files := m.files()
	require.Len(t, files, 2)
	// each result is prepended, so the last one lands on top
	assert.Equal(t, "two.txt", files[0].name)
	assert.Equal(t, "N/A", files[0].bucket)
	assert.Equal(t, "one.txt", files[1].name)
	assert.Equal(t, "media", files[1].bucket)
	assert.Empty(t, m.fb.paths)

	out := testutil.Messages(cmd)
	shown, _ := testutil.Find[toast.ShowMsg](out)
	assert.Equal(t, "2 files uploaded successfully", shown.Text)
	count, _ := testutil.Find[dashboard.CountMsg](out)
	assert.Equal(t, 2, count.N)
}

func TestSignedURLOpensDetailPane(t *testing.T) {
	m, fake := newTestModel(t)
	m.list.InsertItem(0, uploadedFile{name: "a.txt", key: "docs/a b.txt"})

	m, cmd := m.Update(testutil.Key("g"))
	assert.Equal(t, "signing", m.files()[0].pending)

	fake.RespondData(map[string]any{"url": "https://signed/a", "expiresIn": 3600})
	m, _ = m.Update(testutil.Messages(cmd)[0])

	req := fake.Last(t)
	assert.Equal(t, "/api/s3/signed-url/docs/a%20b.txt", req.Path)
	assert.Equal(t, "expiresIn=3600", req.RawQuery)

	assert.Equal(t, modeSignedURL, m.mode)
	assert.Equal(t, "https://signed/a", m.signed.URL)
	assert.Empty(t, m.files()[0].pending)
	assert.Contains(t, m.View(), "https://signed/a")

	m, _ = m.Update(testutil.Key("esc"))
	assert.Equal(t, modeList, m.mode)
}

func TestDeleteRemovesOnlyOnSuccess(t *testing.T) {
	m, fake := newTestModel(t)
	m.list.InsertItem(0, uploadedFile{name: "a.txt", key: "a.txt"})

	fake.Respond(http.StatusInternalServerError, map[string]any{"message": "access denied"})
	m, cmd := m.Update(testutil.Key("d"))
	m, _ = m.Update(testutil.Messages(cmd)[0])
	require.Len(t, m.files(), 1)
	assert.Empty(t, m.files()[0].pending)

	fake.RespondData(nil)
	m, cmd = m.Update(testutil.Key("d"))
	m, cmd = m.Update(testutil.Messages(cmd)[0])
	assert.Empty(t, m.files())
	assert.Equal(t, http.MethodDelete, fake.Last(t).Method)

	shown := testutil.Messages(cmd)[0].(toast.ShowMsg)
	assert.Equal(t, "File deleted successfully", shown.Text)
}

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b c", "/d"}, splitPaths(" /a ,/b c\n\n/d,"))
	assert.Empty(t, splitPaths(" , "))
}
