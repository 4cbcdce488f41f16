// Package queue is the message queue view: single sends, a batch editor,
// receiving and the queue attribute pane.
package queue

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nhle/cloudconsole/internal/backend"
	"github.com/nhle/cloudconsole/internal/backend/sqs"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/form"
	"github.com/nhle/cloudconsole/internal/ui/toast"
)

// Queue limits enforced by the backend.
const (
	maxDelaySeconds = 900
	maxReceive      = 10
	maxWaitSeconds  = 20
)

var validMaxMessages = form.IntRange("Max messages", 1, maxReceive)

type mode int

const (
	modeMain mode = iota
	modeSend
	modeBatchEdit
	modeReceive
	modeAttributes
)

var formTitles = map[mode]string{
	modeSend:      "Send Message",
	modeBatchEdit: "Edit Batch Message",
	modeReceive:   "Receive Messages",
}

// batchRow is one editable entry of the batch editor.
type batchRow struct {
	id      string
	message string
	delay   int
}

func newBatchRow() batchRow {
	return batchRow{id: "msg-" + uuid.NewString()}
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	message string
	delay   string

	rowMessage string
	rowDelay   string

	maxMessages string
	waitTime    string
}

func newFormBindings() *formBindings {
	return &formBindings{delay: "0", maxMessages: "1", waitTime: "0"}
}

type sentMsg struct {
	result sqs.SendResult
	err    error
}

type batchSentMsg struct {
	sent   int
	result sqs.BatchResult
	err    error
}

type receivedMsg struct {
	message  string
	messages []sqs.ReceivedMessage
	err      error
}

type attributesMsg struct {
	attrs map[string]any
	err   error
}

// Model is the queue view.
type Model struct {
	mode mode
	form *huh.Form
	fb   *formBindings

	svc *sqs.Service

	rows   []batchRow
	cursor int

	received   []sqs.ReceivedMessage
	attributes map[string]any

	keys          *keys.KeyMap
	width, height int
}

// New creates the queue view with a single empty batch row.
func New(svc *sqs.Service, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeMain,
		fb:     newFormBindings(),
		svc:    svc,
		rows:   []batchRow{newBatchRow()},
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init does nothing; the queue is only read on request.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the queue view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sentMsg:
		if msg.err != nil {
			log.Error("sending queue message", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to send message: %s", backend.ErrorMessage(msg.err))
		}
		m.fb.message = ""
		m.fb.delay = "0"
		return m, tea.Batch(
			toast.Showf(toast.Success, "Message sent to queue (%s)", msg.result.MessageID),
			dashboard.Count(dashboard.Messages, 1),
		)

	case batchSentMsg:
		return m.handleBatchSent(msg)

	case receivedMsg:
		if msg.err != nil {
			log.Error("receiving queue messages", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to receive messages: %s", backend.ErrorMessage(msg.err))
		}
		m.received = msg.messages
		text := msg.message
		if text == "" {
			text = fmt.Sprintf("%d messages received", len(msg.messages))
		}
		return m, toast.Showf(toast.Success, "%s", text)

	case attributesMsg:
		if msg.err != nil {
			log.Error("loading queue attributes", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to load queue attributes: %s", backend.ErrorMessage(msg.err))
		}
		m.attributes = msg.attrs
		m.mode = modeAttributes
		return m, toast.Show(toast.Success, "Queue attributes loaded")

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleBatchSent(msg batchSentMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.Error("sending queue batch", "err", msg.err)
		return m, toast.Showf(toast.Error, "Failed to send batch: %s", backend.ErrorMessage(msg.err))
	}

	m.rows = []batchRow{newBatchRow()}
	m.cursor = 0

	failed := len(msg.result.Failed)
	delivered := msg.sent - failed
	if len(msg.result.Successful) > 0 {
		delivered = len(msg.result.Successful)
	}
	for _, f := range msg.result.Failed {
		log.Warn("batch entry rejected", "id", f.ID, "code", f.Code, "message", f.Message)
	}

	count := dashboard.Count(dashboard.Messages, delivered)
	if failed > 0 {
		return m, tea.Batch(
			toast.Showf(toast.Warning, "%d messages sent, %d failed", delivered, failed),
			count,
		)
	}
	return m, tea.Batch(
		toast.Showf(toast.Success, "%d messages sent to queue", delivered),
		count,
	)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeMain:
		return m.handleMainKeys(msg)
	case modeAttributes:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.mode = modeMain
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadAttributes()
		}
		return m, nil
	default:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeMain
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)
	}
}

func (m Model) handleMainKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Send):
		return m.openForm(modeSend)

	case key.Matches(msg, m.keys.BatchAdd):
		m.rows = append(m.rows, newBatchRow())
		m.cursor = len(m.rows) - 1
		return m.openBatchEdit()
	case key.Matches(msg, m.keys.BatchEdit):
		if len(m.rows) == 0 {
			return m, nil
		}
		return m.openBatchEdit()
	case key.Matches(msg, m.keys.Delete):
		m.removeRow(m.cursor)
	case key.Matches(msg, m.keys.BatchSend):
		return m, m.sendBatch()

	case key.Matches(msg, m.keys.Receive):
		return m.openForm(modeReceive)
	case key.Matches(msg, m.keys.Attributes):
		return m, m.loadAttributes()
	}
	return m, nil
}

func (m Model) openBatchEdit() (Model, tea.Cmd) {
	row := m.rows[m.cursor]
	m.fb.rowMessage = row.message
	m.fb.rowDelay = fmt.Sprint(row.delay)
	return m.openForm(modeBatchEdit)
}

func (m Model) openForm(md mode) (Model, tea.Cmd) {
	m.mode = md
	m.form = m.buildForm(md)
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	f, cmd, state := form.Step(m.form, msg)
	m.form = f

	switch state {
	case huh.StateCompleted:
		submitted := m.mode
		m.mode = modeMain
		m.form = nil
		return m.submit(submitted)
	case huh.StateAborted:
		m.mode = modeMain
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) buildForm(md mode) *huh.Form {
	switch md {
	case modeSend:
		return form.New(m.width,
			huh.NewText().
				Title("Message").
				Value(&m.fb.message).
				Validate(form.Required("Message")),
			huh.NewInput().
				Title("Delay (seconds)").
				Description(fmt.Sprintf("0 to %d", maxDelaySeconds)).
				Value(&m.fb.delay).
				Validate(form.NonNegativeInt("Delay", maxDelaySeconds)),
		)
	case modeBatchEdit:
		return form.New(m.width,
			huh.NewText().
				Title("Message").
				Description("Blank rows are skipped when the batch is sent").
				Value(&m.fb.rowMessage),
			huh.NewInput().
				Title("Delay (seconds)").
				Value(&m.fb.rowDelay).
				Validate(form.NonNegativeInt("Delay", maxDelaySeconds)),
		)
	default:
		return form.New(m.width,
			huh.NewInput().
				Title("Max messages").
				Description(fmt.Sprintf("1 to %d", maxReceive)).
				Value(&m.fb.maxMessages).
				Validate(validMaxMessages),
			huh.NewInput().
				Title("Wait time (seconds)").
				Description(fmt.Sprintf("0 to %d, long polling when above 0", maxWaitSeconds)).
				Value(&m.fb.waitTime).
				Validate(form.NonNegativeInt("Wait time", maxWaitSeconds)),
		)
	}
}

func (m Model) submit(md mode) (Model, tea.Cmd) {
	switch md {
	case modeSend:
		return m, m.send()
	case modeBatchEdit:
		if m.cursor < len(m.rows) {
			m.rows[m.cursor].message = m.fb.rowMessage
			m.rows[m.cursor].delay = form.Atoi(m.fb.rowDelay)
		}
		return m, nil
	default:
		return m, m.receive()
	}
}

func (m Model) send() tea.Cmd {
	svc := m.svc
	req := sqs.SendRequest{
		Message:      m.fb.message,
		DelaySeconds: form.Atoi(m.fb.delay),
	}
	return func() tea.Msg {
		resp, err := svc.Send(context.Background(), req)
		if err != nil {
			return sentMsg{err: err}
		}
		return sentMsg{result: resp.Data}
	}
}

// sendBatch sends the non-blank rows, or warns when there are none.
func (m Model) sendBatch() tea.Cmd {
	var messages []sqs.BatchMessage
	for _, r := range m.rows {
		if strings.TrimSpace(r.message) == "" {
			continue
		}
		messages = append(messages, sqs.BatchMessage{
			ID:           r.id,
			Message:      r.message,
			DelaySeconds: r.delay,
		})
	}
	if len(messages) == 0 {
		return toast.Show(toast.Warning, "Add at least one message with content")
	}

	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.SendBatch(context.Background(), messages)
		if err != nil {
			return batchSentMsg{err: err}
		}
		return batchSentMsg{sent: len(messages), result: resp.Data}
	}
}

func (m Model) receive() tea.Cmd {
	svc := m.svc
	maxMessages := form.Atoi(m.fb.maxMessages)
	if maxMessages == 0 {
		// blank
		maxMessages = 1
	}
	wait := form.Atoi(m.fb.waitTime)

	return func() tea.Msg {
		resp, err := svc.Receive(context.Background(), maxMessages, wait)
		if err != nil {
			return receivedMsg{err: err}
		}
		return receivedMsg{message: resp.Message, messages: resp.Data}
	}
}

func (m Model) loadAttributes() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.Attributes(context.Background())
		if err != nil {
			return attributesMsg{err: err}
		}
		return attributesMsg{attrs: resp.Data}
	}
}

// removeRow drops row i, keeping the cursor in range.
func (m *Model) removeRow(i int) {
	if i < 0 || i >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:i:i], m.rows[i+1:]...)
	if m.cursor >= len(m.rows) && m.cursor > 0 {
		m.cursor = len(m.rows) - 1
	}
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.form != nil
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeMain:
		return "s send | a add row | e edit row | d remove row | B send batch | v receive | A attributes"
	case modeAttributes:
		return "r refresh | esc back"
	default:
		return "enter submit | esc cancel"
	}
}

// View renders the queue view.
func (m Model) View() string {
	if m.form != nil {
		return form.View(formTitles[m.mode], m.form, m.width, m.height)
	}
	if m.mode == modeAttributes {
		return m.viewAttributes()
	}

	left := m.viewBatch()
	right := m.viewReceived()
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) viewBatch() string {
	w := m.width / 2

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Batch (%d rows)", len(m.rows))))
	b.WriteString("\n")
	if len(m.rows) == 0 {
		b.WriteString(theme.DimmedStyle.Render("No rows. Press a to add one."))
	}
	for i, r := range m.rows {
		text := strings.ReplaceAll(r.message, "\n", " ")
		if text == "" {
			text = theme.DimmedStyle.Render("(empty)")
		}
		line := truncate(fmt.Sprintf("%2d. %s  +%ds", i+1, text, r.delay), w-4)
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(theme.ListItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(w).Height(m.height).Render(b.String())
}

func (m Model) viewReceived() string {
	w := m.width - m.width/2

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Received (%d)", len(m.received))))
	b.WriteString("\n")
	if len(m.received) == 0 {
		b.WriteString(theme.DimmedStyle.Render("Nothing received yet. Press v to poll the queue."))
	}
	for _, msg := range m.received {
		b.WriteString(theme.DimmedStyle.Render(msg.MessageID))
		b.WriteString("\n")
		b.WriteString(truncate(strings.ReplaceAll(msg.Body, "\n", " "), w-4))
		b.WriteString("\n\n")
	}

	return theme.BorderStyle.Width(w - 2).Height(m.height - 2).Render(b.String())
}

func (m Model) viewAttributes() string {
	names := make([]string, 0, len(m.attributes))
	for k := range m.attributes {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Queue Attributes"))
	b.WriteString("\n\n")
	for _, k := range names {
		fmt.Fprintf(&b, "%-40s %v\n", k, m.attributes[k])
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

func truncate(s string, n int) string {
	if n <= 3 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-3 {
		r = r[:n-3]
	}
	return string(r) + "..."
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
