package mail

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/backend/ses"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/toast"
	"github.com/nhle/cloudconsole/tests/testutil"
)

func newTestModel(t *testing.T) (Model, *testutil.Backend) {
	t.Helper()
	fake := testutil.NewBackend(t)
	m := New(ses.New(fake.Client), "console@example.com", keys.DefaultKeyMap(), 100, 30)
	m.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }
	return m, fake
}

func withTemplates(t *testing.T, m Model, fake *testutil.Backend, names ...string) Model {
	t.Helper()
	rows := make([]map[string]any, len(names))
	for i, n := range names {
		rows[i] = map[string]any{"name": n}
	}
	fake.RespondData(rows)
	m, _ = m.Update(testutil.Messages(m.Init())[0])
	return m
}

func TestInitLoadsTemplates(t *testing.T) {
	m, fake := newTestModel(t)
	fake.RespondData([]map[string]any{{"name": "welcome", "createdTimestamp": "2026-01-01T00:00:00Z"}})

	m, cmd := m.Update(testutil.Messages(m.Init())[0])

	assert.Equal(t, "/api/ses/templates", fake.Last(t).Path)
	require.Len(t, m.list.Items(), 1)
	shown, _ := testutil.Find[toast.ShowMsg](testutil.Messages(cmd))
	assert.Equal(t, "1 templates loaded", shown.Text)
}

func TestComposeDefaultsToHTML(t *testing.T) {
	m, _ := newTestModel(t)
	assert.True(t, m.fb.email.isHTML)
	assert.True(t, m.fb.bulk.isHTML)
}

func TestSendEmailSuccessResets(t *testing.T) {
	m, fake := newTestModel(t)
	fake.RespondData(map[string]any{"messageId": "ses-1"})

	m.fb.email = emailFields{
		to:      "a@example.com, b@example.com",
		cc:      "c@example.com",
		subject: "Hello",
		body:    "<p>hi</p>",
		isHTML:  true,
	}

	m, cmd := m.Update(testutil.Messages(m.submit(modeCompose))[0])

	assert.JSONEq(t, `{
		"to": ["a@example.com", "b@example.com"],
		"cc": ["c@example.com"],
		"subject": "Hello",
		"body": "<p>hi</p>",
		"isHtml": true
	}`, string(fake.Last(t).Body))

	assert.Equal(t, emailFields{isHTML: true}, m.fb.email)

	out := testutil.Messages(cmd)
	shown, _ := testutil.Find[toast.ShowMsg](out)
	assert.Equal(t, "Email sent successfully", shown.Text)
	count, _ := testutil.Find[dashboard.CountMsg](out)
	assert.Equal(t, dashboard.CountMsg{Counter: dashboard.Emails, N: 2}, count)
}

func TestSendEmailFailureKeepsFields(t *testing.T) {
	m, fake := newTestModel(t)
	fake.Respond(http.StatusBadRequest, map[string]any{"message": "Email address is not verified"})
	m.fb.email = emailFields{to: "a@example.com", subject: "s", body: "b"}

	m, cmd := m.Update(testutil.Messages(m.submit(modeCompose))[0])

	assert.Equal(t, "a@example.com", m.fb.email.to)
	shown := testutil.Messages(cmd)[0].(toast.ShowMsg)
	assert.Equal(t, toast.Error, shown.Level)
	assert.Contains(t, shown.Text, "not verified")
}

func TestBulkSendReportsRecipientCount(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.bulk = bulkFields{recipients: "a@x.io\nb@x.io; c@x.io", subject: "s", body: "b", isHTML: false}

	m, cmd := m.Update(testutil.Messages(m.submit(modeBulk))[0])

	body := fake.Last(t).JSON(t)
	assert.Equal(t, "/api/ses/send-bulk", fake.Last(t).Path)
	assert.Len(t, body["recipients"], 3)
	assert.Equal(t, false, body["isHtml"])
	assert.True(t, m.fb.bulk.isHTML)

	shown, _ := testutil.Find[toast.ShowMsg](testutil.Messages(cmd))
	assert.Equal(t, "Emails sent to 3 recipients", shown.Text)
}

func TestTemplatedSendWithInvalidJSONSendsNothing(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.templated = templatedFields{template: "welcome", to: "a@example.com", data: "{name: bob"}

	msgs := testutil.Messages(m.submit(modeUseTemplate))
	shown := msgs[0].(toast.ShowMsg)
	assert.Equal(t, toast.Error, shown.Level)
	assert.Contains(t, shown.Text, "Invalid template data JSON")
	assert.Empty(t, fake.Requests())
}

func TestTemplatedSend(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.templated = templatedFields{template: "welcome", to: "a@example.com", data: `{"name":"Bob"}`}

	m, _ = m.Update(testutil.Messages(m.submit(modeUseTemplate))[0])

	assert.JSONEq(t, `{
		"to": ["a@example.com"],
		"templateName": "welcome",
		"templateData": {"name": "Bob"}
	}`, string(fake.Last(t).Body))
	assert.Equal(t, "{}", m.fb.templated.data)
	assert.Equal(t, "welcome", m.fb.templated.template)
}

func TestCreateTemplateReloadsList(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.tpl = templateFields{name: " weekly ", subject: "Week {{n}}", htmlBody: "<b>{{n}}</b>"}

	m, cmd := m.Update(testutil.Messages(m.submit(modeCreateTemplate))[0])
	created := fake.Last(t)
	assert.Equal(t, http.MethodPost, created.Method)
	assert.Equal(t, "weekly", created.JSON(t)["name"])
	assert.Equal(t, templateFields{}, m.fb.tpl)

	fake.RespondData([]map[string]any{{"name": "weekly"}})
	for _, msg := range testutil.Messages(cmd) {
		m, _ = m.Update(msg)
	}
	assert.Equal(t, http.MethodGet, fake.Last(t).Method)
	assert.Len(t, m.list.Items(), 1)
}

func TestEditTemplateUsesPut(t *testing.T) {
	m, fake := newTestModel(t)
	m.fb.tpl = templateFields{name: "weekly report", subject: "s", htmlBody: "h"}

	testutil.Messages(m.submit(modeEditTemplate))

	req := fake.Last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/ses/templates/weekly%20report", req.Path)
}

func TestViewTemplateThenEdit(t *testing.T) {
	m, fake := newTestModel(t)
	m = withTemplates(t, m, fake, "welcome")

	fake.RespondData(map[string]any{"name": "welcome", "subject": "Hi {{name}}", "htmlBody": "<h1>Hi</h1>"})
	m, cmd := m.Update(testutil.Key("enter"))
	m, _ = m.Update(testutil.Messages(cmd)[0])

	assert.Equal(t, "/api/ses/templates/welcome", fake.Last(t).Path)
	assert.Equal(t, modeViewTemplate, m.mode)
	assert.Contains(t, m.View(), "Hi {{name}}")

	m, _ = m.Update(testutil.Key("e"))
	assert.Equal(t, modeEditTemplate, m.mode)
	assert.Equal(t, "<h1>Hi</h1>", m.fb.tpl.htmlBody)
}

func TestDeleteTemplateFailureKeepsList(t *testing.T) {
	m, fake := newTestModel(t)
	m = withTemplates(t, m, fake, "a", "b")

	fake.Respond(http.StatusNotFound, map[string]any{"message": "Template does not exist"})
	m, cmd := m.Update(testutil.Key("d"))
	m, cmd = m.Update(testutil.Messages(cmd)[0])

	assert.Equal(t, http.MethodDelete, fake.Requests()[1].Method)
	assert.Len(t, m.list.Items(), 2)
	shown := testutil.Messages(cmd)[0].(toast.ShowMsg)
	assert.Equal(t, toast.Error, shown.Level)
}

func TestPreviewRendersComposedEmail(t *testing.T) {
	m, fake := newTestModel(t)

	m, cmd := m.Update(testutil.Key("p"))
	assert.Equal(t, modeTemplates, m.mode)
	assert.Equal(t, toast.Warning, testutil.Messages(cmd)[0].(toast.ShowMsg).Level)

	m.fb.email = emailFields{to: "ops@example.com", subject: "Status", body: "all green", isHTML: false}
	m, _ = m.Update(testutil.Key("p"))

	require.Equal(t, modePreview, m.mode)
	view := m.View()
	assert.Contains(t, view, "Subject: Status")
	assert.Contains(t, view, "all green")
	assert.Empty(t, fake.Requests())

	m, _ = m.Update(testutil.Key("esc"))
	assert.Equal(t, modeTemplates, m.mode)
}

func TestAddressValidation(t *testing.T) {
	required := addresses("Recipient", true)
	assert.Error(t, required(""))
	assert.Error(t, required("not an address"))
	assert.NoError(t, required("a@example.com, Bob <b@example.com>"))

	optional := addresses("Cc", false)
	assert.NoError(t, optional("  "))
}
