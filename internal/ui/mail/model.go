// Package mail is the email view: plain and bulk sends, stored templates
// and a local preview of the composed message.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nhle/cloudconsole/internal/backend"
	"github.com/nhle/cloudconsole/internal/backend/ses"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/form"
	"github.com/nhle/cloudconsole/internal/ui/toast"
)

type mode int

const (
	modeTemplates mode = iota
	modeCompose
	modeBulk
	modeCreateTemplate
	modeEditTemplate
	modeUseTemplate
	modeViewTemplate
	modePreview
)

var formTitles = map[mode]string{
	modeCompose:        "Send Email",
	modeBulk:           "Bulk Email",
	modeCreateTemplate: "New Template",
	modeEditTemplate:   "Edit Template",
	modeUseTemplate:    "Send With Template",
}

type sendKind int

const (
	sendPlain sendKind = iota
	sendBulk
	sendTemplated
)

type sentMsg struct {
	kind       sendKind
	recipients int
	err        error
}

type templatesLoadedMsg struct {
	templates []ses.TemplateSummary
	err       error
}

type templateSavedMsg struct {
	name    string
	created bool
	err     error
}

type templateDeletedMsg struct {
	name string
	err  error
}

type templateLoadedMsg struct {
	template ses.EmailTemplate
	err      error
}

// Model is the mail view.
type Model struct {
	mode mode
	form *huh.Form
	fb   *formBindings

	svc  *ses.Service
	from string
	now  func() time.Time

	list     list.Model
	viewing  ses.EmailTemplate
	viewport viewport.Model

	keys          *keys.KeyMap
	width, height int
}

// New creates the mail view. from is only used for previews and may be
// empty.
func New(svc *ses.Service, from string, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Templates"
	l.SetShowHelp(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		mode:     modeTemplates,
		fb:       newFormBindings(),
		svc:      svc,
		from:     from,
		now:      time.Now,
		list:     l,
		viewport: viewport.New(width-4, height-4),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init loads the stored templates.
func (m Model) Init() tea.Cmd {
	return m.loadTemplates()
}

// Update handles messages for the mail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sentMsg:
		return m.handleSent(msg)

	case templatesLoadedMsg:
		if msg.err != nil {
			log.Error("listing templates", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to load templates: %s", backend.ErrorMessage(msg.err))
		}
		items := make([]list.Item, len(msg.templates))
		for i, t := range msg.templates {
			items[i] = templateItem{t}
		}
		cmd := m.list.SetItems(items)
		return m, tea.Batch(cmd, toast.Showf(toast.Success, "%d templates loaded", len(msg.templates)))

	case templateSavedMsg:
		if msg.err != nil {
			log.Error("saving template", "name", msg.name, "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to save template: %s", backend.ErrorMessage(msg.err))
		}
		m.fb.tpl = templateFields{}
		text := "Template updated successfully"
		if msg.created {
			text = "Template created successfully"
		}
		return m, tea.Batch(toast.Showf(toast.Success, "%s", text), m.loadTemplates())

	case templateDeletedMsg:
		if msg.err != nil {
			log.Error("deleting template", "name", msg.name, "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to delete template: %s", backend.ErrorMessage(msg.err))
		}
		return m, tea.Batch(toast.Show(toast.Success, "Template deleted successfully"), m.loadTemplates())

	case templateLoadedMsg:
		if msg.err != nil {
			log.Error("loading template", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to load template: %s", backend.ErrorMessage(msg.err))
		}
		m.viewing = msg.template
		m.mode = modeViewTemplate
		m.viewport.SetContent(renderTemplate(msg.template))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleSent(msg sentMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.Error("sending email", "err", msg.err)
		switch msg.kind {
		case sendBulk:
			return m, toast.Showf(toast.Error, "Failed to send bulk email: %s", backend.ErrorMessage(msg.err))
		case sendTemplated:
			return m, toast.Showf(toast.Error, "Failed to send templated email: %s", backend.ErrorMessage(msg.err))
		}
		return m, toast.Showf(toast.Error, "Failed to send email: %s", backend.ErrorMessage(msg.err))
	}

	var shown tea.Cmd
	switch msg.kind {
	case sendBulk:
		m.fb.bulk.reset()
		shown = toast.Showf(toast.Success, "Emails sent to %d recipients", msg.recipients)
	case sendTemplated:
		m.fb.templated.reset(m.fb.templated.template)
		shown = toast.Show(toast.Success, "Templated email sent successfully")
	default:
		m.fb.email.reset()
		shown = toast.Show(toast.Success, "Email sent successfully")
	}
	return m, tea.Batch(shown, dashboard.Count(dashboard.Emails, msg.recipients))
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeTemplates:
		return m.handleListKeys(msg)

	case modeViewTemplate:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.mode = modeTemplates
			return m, nil
		case key.Matches(msg, m.keys.EditTemplate):
			m.fb.tpl = templateFields{
				name:     m.viewing.Name,
				subject:  m.viewing.Subject,
				htmlBody: m.viewing.HTMLBody,
				textBody: m.viewing.TextBody,
			}
			return m.openForm(modeEditTemplate)
		case key.Matches(msg, m.keys.UseTemplate):
			m.fb.templated.reset(m.viewing.Name)
			return m.openForm(modeUseTemplate)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case modePreview:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeTemplates
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	default:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeTemplates
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Compose):
		return m.openForm(modeCompose)
	case key.Matches(msg, m.keys.Bulk):
		return m.openForm(modeBulk)
	case key.Matches(msg, m.keys.NewTemplate):
		m.fb.tpl = templateFields{}
		return m.openForm(modeCreateTemplate)
	case key.Matches(msg, m.keys.Preview):
		return m.preview()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTemplates()

	case key.Matches(msg, m.keys.UseTemplate):
		if t, ok := m.selected(); ok {
			m.fb.templated.reset(t.Name)
			return m.openForm(modeUseTemplate)
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if t, ok := m.selected(); ok {
			return m, m.getTemplate(t.Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.deleteTemplate(t.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) openForm(md mode) (Model, tea.Cmd) {
	m.mode = md
	switch md {
	case modeCompose:
		m.form = composeForm(m.width, &m.fb.email)
	case modeBulk:
		m.form = bulkForm(m.width, &m.fb.bulk)
	case modeCreateTemplate:
		m.form = templateForm(m.width, &m.fb.tpl, false)
	case modeEditTemplate:
		m.form = templateForm(m.width, &m.fb.tpl, true)
	case modeUseTemplate:
		m.form = templatedForm(m.width, &m.fb.templated)
	}
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	f, cmd, state := form.Step(m.form, msg)
	m.form = f

	switch state {
	case huh.StateCompleted:
		submitted := m.mode
		m.mode = modeTemplates
		m.form = nil
		return m, m.submit(submitted)
	case huh.StateAborted:
		m.mode = modeTemplates
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// submit issues the request for a completed form.
func (m Model) submit(md mode) tea.Cmd {
	svc := m.svc
	ctx := context.Background()

	switch md {
	case modeCompose:
		opts := m.fb.email.options()
		return func() tea.Msg {
			_, err := svc.Send(ctx, opts)
			return sentMsg{kind: sendPlain, recipients: len(opts.To), err: err}
		}

	case modeBulk:
		b := m.fb.bulk
		recipients := ses.SplitAddresses(b.recipients)
		return func() tea.Msg {
			_, err := svc.SendBulk(ctx, recipients, b.subject, b.body, b.isHTML)
			return sentMsg{kind: sendBulk, recipients: len(recipients), err: err}
		}

	case modeCreateTemplate, modeEditTemplate:
		tpl := m.fb.tpl.template()
		created := md == modeCreateTemplate
		return func() tea.Msg {
			var err error
			if created {
				_, err = svc.CreateTemplate(ctx, tpl)
			} else {
				_, err = svc.UpdateTemplate(ctx, tpl.Name, tpl)
			}
			return templateSavedMsg{name: tpl.Name, created: created, err: err}
		}

	case modeUseTemplate:
		t := m.fb.templated
		var data map[string]any
		if err := json.Unmarshal([]byte(t.data), &data); err != nil {
			return toast.Showf(toast.Error, "Invalid template data JSON: %v", err)
		}
		opts := ses.TemplatedEmailOptions{
			To:           ses.SplitAddresses(t.to),
			TemplateName: t.template,
			TemplateData: data,
		}
		return func() tea.Msg {
			_, err := svc.SendTemplated(ctx, opts)
			return sentMsg{kind: sendTemplated, recipients: len(opts.To), err: err}
		}
	}
	return nil
}

// preview renders the compose form's current content locally.
func (m Model) preview() (Model, tea.Cmd) {
	opts := m.fb.email.options()
	if len(opts.To) == 0 {
		return m, toast.Show(toast.Warning, "Compose an email first")
	}

	rendered, err := ses.Preview(opts, m.from, m.now())
	if err != nil {
		return m, toast.Showf(toast.Error, "Cannot preview email: %v", err)
	}

	m.mode = modePreview
	m.viewport.SetContent(strings.ReplaceAll(rendered, "\r\n", "\n"))
	m.viewport.GotoTop()
	return m, nil
}

func (m Model) loadTemplates() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.ListTemplates(context.Background())
		if err != nil {
			return templatesLoadedMsg{err: err}
		}
		return templatesLoadedMsg{templates: resp.Data}
	}
}

func (m Model) getTemplate(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.GetTemplate(context.Background(), name)
		if err != nil {
			return templateLoadedMsg{err: err}
		}
		return templateLoadedMsg{template: resp.Data}
	}
}

func (m Model) deleteTemplate(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.DeleteTemplate(context.Background(), name)
		return templateDeletedMsg{name: name, err: err}
	}
}

func (m Model) selected() (ses.TemplateSummary, bool) {
	it, ok := m.list.SelectedItem().(templateItem)
	return it.summary, ok
}

func renderTemplate(t ses.EmailTemplate) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(t.Name))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Subject: %s\n\n", t.Subject)
	b.WriteString(theme.HelpStyle.Render("HTML body"))
	b.WriteString("\n")
	b.WriteString(t.HTMLBody)
	b.WriteString("\n")
	if t.TextBody != "" {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("Text body"))
		b.WriteString("\n")
		b.WriteString(t.TextBody)
		b.WriteString("\n")
	}
	return b.String()
}

// Capturing reports whether a form or the list filter has keyboard focus.
func (m Model) Capturing() bool {
	return m.form != nil || m.list.FilterState() == list.Filtering
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeTemplates:
		return "s send | b bulk | p preview | n new template | enter view | t use | d delete | r refresh"
	case modeViewTemplate:
		return "e edit | t use | esc back"
	case modePreview:
		return "↑/↓ scroll | esc back"
	default:
		return "enter submit | esc cancel"
	}
}

// View renders the mail view.
func (m Model) View() string {
	if m.form != nil {
		return form.View(formTitles[m.mode], m.form, m.width, m.height)
	}

	switch m.mode {
	case modeViewTemplate, modePreview:
		return theme.DetailPanelStyle.
			Width(m.width - 2).
			Height(m.height - 2).
			Render(m.viewport.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(theme.DimmedStyle.Render("No templates. Press n to create one or s to send an email."))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(m.list.View())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-2, height-2)
	m.viewport.Width = width - 4
	m.viewport.Height = height - 4
}
