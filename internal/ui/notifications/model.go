// Package notifications is the push notification view: REST sends to a
// user, everyone or a room, the connected users pane, channel room and
// chat actions, and the list of notifications received this session.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nhle/cloudconsole/internal/backend"
	notifsvc "github.com/nhle/cloudconsole/internal/backend/notifications"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/notify"
	"github.com/nhle/cloudconsole/internal/realtime"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui/form"
	"github.com/nhle/cloudconsole/internal/ui/toast"
)

const connectTimeout = 15 * time.Second

// Channel is the part of the realtime client the view drives.
type Channel interface {
	Connect(ctx context.Context, clientID string) error
	Disconnect()
	JoinRoom(room string)
	LeaveRoom(room string)
	SendDirectMessage(to, message string)
	SendRoomMessage(room, message string)
}

type mode int

const (
	modeList mode = iota
	modeUsers
	modeSendUser
	modeBroadcast
	modeSendRoom
	modeJoinRoom
	modeLeaveRoom
	modeDirectMessage
	modeRoomMessage
)

var formTitles = map[mode]string{
	modeSendUser:      "Send Notification to User",
	modeBroadcast:     "Broadcast Notification",
	modeSendRoom:      "Send Notification to Room",
	modeJoinRoom:      "Join Room",
	modeLeaveRoom:     "Leave Room",
	modeDirectMessage: "Direct Message",
	modeRoomMessage:   "Room Message",
}

// notificationFields backs one of the three notification forms.
type notificationFields struct {
	target           string
	title            string
	message          string
	notificationType string
}

func (f *notificationFields) reset() {
	*f = notificationFields{notificationType: string(model.NotificationInfo)}
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	sendUser  notificationFields
	broadcast notificationFields
	sendRoom  notificationFields

	room string
	to   string
	chat string
}

func newFormBindings() *formBindings {
	fb := &formBindings{}
	fb.sendUser.reset()
	fb.broadcast.reset()
	fb.sendRoom.reset()
	return fb
}

// sentMsg reports the outcome of one of the REST send forms.
type sentMsg struct {
	mode   mode
	target string
	sent   bool
	err    error
}

type usersLoadedMsg struct {
	users notifsvc.ConnectedUsers
	err   error
}

type connectResultMsg struct {
	err error
}

// Model is the notifications view: REST sends, channel actions and the
// list of notifications received this session.
type Model struct {
	mode mode
	form *huh.Form
	fb   *formBindings

	svc      *notifsvc.Service
	channel  Channel
	received *notify.Log
	clientID string
	state    realtime.State

	users      []model.ConnectedUser
	usersCount int

	list          list.Model
	keys          *keys.KeyMap
	width, height int
}

// New creates the notifications view. received is the session's log and
// is owned by this view from here on.
func New(
	svc *notifsvc.Service,
	channel Channel,
	received *notify.Log,
	clientID string,
	k *keys.KeyMap,
	width, height int,
) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-3)
	l.Title = "Received"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	m := Model{
		mode:     modeList,
		fb:       newFormBindings(),
		svc:      svc,
		channel:  channel,
		received: received,
		clientID: clientID,
		list:     l,
		keys:     k,
		width:    width,
		height:   height,
	}
	m.syncList()
	return m
}

// Init connects the channel and loads the connected users.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.loadUsers())
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case realtime.NotificationMsg:
		m.received.Prepend(msg.Notification)
		cmd := m.syncList()
		n := msg.Notification
		text := n.Message
		if text == "" {
			text = n.Title
		}
		return m, tea.Batch(cmd, toast.Showf(toast.LevelFor(n.Type), "%s", text))

	case realtime.StateMsg:
		prev := m.state
		m.state = msg.State
		switch {
		case msg.State == realtime.Connected:
			return m, toast.Show(toast.Success, "Channel connected")
		case msg.State == realtime.Disconnected && prev != realtime.Disconnected:
			return m, toast.Show(toast.Error, "Channel disconnected")
		}
		return m, nil

	case connectResultMsg:
		if msg.err != nil {
			log.Warn("channel connect failed", "err", msg.err)
			return m, toast.Showf(toast.Error, "Could not connect to channel: %v", msg.err)
		}
		return m, nil

	case sentMsg:
		return m.handleSent(msg)

	case usersLoadedMsg:
		if msg.err != nil {
			log.Error("loading connected users", "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to load connected users: %s", backend.ErrorMessage(msg.err))
		}
		m.users = msg.users.Users
		m.usersCount = msg.users.Count
		return m, toast.Showf(toast.Success, "%d users connected", msg.users.Count)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKeys(msg)
	case modeUsers:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.mode = modeList
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadUsers()
		}
		return m, nil
	default:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SendUser):
		return m.openForm(modeSendUser)
	case key.Matches(msg, m.keys.Broadcast):
		return m.openForm(modeBroadcast)
	case key.Matches(msg, m.keys.SendRoom):
		return m.openForm(modeSendRoom)
	case key.Matches(msg, m.keys.JoinRoom):
		return m.openForm(modeJoinRoom)
	case key.Matches(msg, m.keys.LeaveRoom):
		return m.openForm(modeLeaveRoom)
	case key.Matches(msg, m.keys.DirectMessage):
		return m.openForm(modeDirectMessage)
	case key.Matches(msg, m.keys.RoomMessage):
		return m.openForm(modeRoomMessage)

	case key.Matches(msg, m.keys.Users):
		m.mode = modeUsers
		return m, m.loadUsers()

	case key.Matches(msg, m.keys.Clear):
		cmd := m.Clear()
		return m, cmd

	case key.Matches(msg, m.keys.Connect):
		if m.state == realtime.Disconnected {
			return m, m.connect()
		}
		m.channel.Disconnect()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
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
		m.mode = modeList
		m.form = nil
		return m, m.submit(submitted)
	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) buildForm(md mode) *huh.Form {
	switch md {
	case modeSendUser:
		return m.notificationForm(&m.fb.sendUser, "User ID", "user-1a2b3c4d")
	case modeBroadcast:
		return m.notificationForm(&m.fb.broadcast, "", "")
	case modeSendRoom:
		return m.notificationForm(&m.fb.sendRoom, "Room", "ops")
	case modeJoinRoom, modeLeaveRoom:
		return form.New(m.width,
			huh.NewInput().
				Title("Room").
				Value(&m.fb.room).
				Validate(form.Required("Room")),
		)
	case modeDirectMessage:
		return form.New(m.width,
			huh.NewInput().
				Title("To").
				Description("Client ID of the recipient").
				Value(&m.fb.to).
				Validate(form.Required("Recipient")),
			huh.NewInput().
				Title("Message").
				Value(&m.fb.chat).
				Validate(form.Required("Message")),
		)
	default:
		return form.New(m.width,
			huh.NewInput().
				Title("Room").
				Value(&m.fb.room).
				Validate(form.Required("Room")),
			huh.NewInput().
				Title("Message").
				Value(&m.fb.chat).
				Validate(form.Required("Message")),
		)
	}
}

// notificationForm builds one of the REST send forms. An empty target
// title omits the target field.
func (m *Model) notificationForm(f *notificationFields, targetTitle, placeholder string) *huh.Form {
	var fields []huh.Field
	if targetTitle != "" {
		fields = append(fields,
			huh.NewInput().
				Title(targetTitle).
				Placeholder(placeholder).
				Value(&f.target).
				Validate(form.Required(targetTitle)),
		)
	}

	typeOptions := make([]huh.Option[string], len(model.NotificationTypes))
	for i, t := range model.NotificationTypes {
		typeOptions[i] = huh.NewOption(string(t), string(t))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Title").
			Value(&f.title).
			Validate(form.Required("Title")),
		huh.NewText().
			Title("Message").
			Value(&f.message).
			Validate(form.Required("Message")),
		huh.NewSelect[string]().
			Title("Type").
			Options(typeOptions...).
			Value(&f.notificationType),
	)

	return form.New(m.width, fields...)
}

// submit issues the request for a completed form.
func (m Model) submit(md mode) tea.Cmd {
	switch md {
	case modeSendUser:
		return m.sendNotification(md, m.fb.sendUser)
	case modeBroadcast:
		return m.sendNotification(md, m.fb.broadcast)
	case modeSendRoom:
		return m.sendNotification(md, m.fb.sendRoom)
	}

	if m.state != realtime.Connected {
		return toast.Show(toast.Warning, "Channel not connected")
	}

	ch := m.channel
	room, to, chat := strings.TrimSpace(m.fb.room), strings.TrimSpace(m.fb.to), m.fb.chat

	return func() tea.Msg {
		switch md {
		case modeJoinRoom:
			ch.JoinRoom(room)
			return toast.ShowMsg{Level: toast.Success, Text: "Joined room " + room}
		case modeLeaveRoom:
			ch.LeaveRoom(room)
			return toast.ShowMsg{Level: toast.Info, Text: "Left room " + room}
		case modeDirectMessage:
			ch.SendDirectMessage(to, chat)
			return toast.ShowMsg{Level: toast.Success, Text: "Message sent to " + to}
		case modeRoomMessage:
			ch.SendRoomMessage(room, chat)
			return toast.ShowMsg{Level: toast.Success, Text: "Message sent to room " + room}
		}
		return nil
	}
}

func (m Model) sendNotification(md mode, f notificationFields) tea.Cmd {
	svc := m.svc
	msg := notifsvc.Message{
		Title:   f.title,
		Message: f.message,
		Type:    model.NotificationType(f.notificationType),
	}
	target := strings.TrimSpace(f.target)

	return func() tea.Msg {
		ctx := context.Background()
		switch md {
		case modeSendUser:
			resp, err := svc.Send(ctx, target, msg)
			if err != nil {
				return sentMsg{mode: md, target: target, err: err}
			}
			return sentMsg{mode: md, target: target, sent: resp.Data.Sent}
		case modeSendRoom:
			_, err := svc.SendToRoom(ctx, target, msg)
			return sentMsg{mode: md, target: target, sent: err == nil, err: err}
		default:
			_, err := svc.Broadcast(ctx, msg)
			return sentMsg{mode: md, sent: err == nil, err: err}
		}
	}
}

func (m Model) handleSent(msg sentMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.Error("sending notification", "target", msg.target, "err", msg.err)
		return m, toast.Showf(toast.Error, "Failed to send notification: %s", backend.ErrorMessage(msg.err))
	}

	switch msg.mode {
	case modeSendUser:
		if !msg.sent {
			return m, toast.Show(toast.Warning, "User not connected")
		}
		m.fb.sendUser.reset()
		return m, toast.Showf(toast.Success, "Notification sent to %s", msg.target)
	case modeSendRoom:
		m.fb.sendRoom.reset()
		return m, toast.Showf(toast.Success, "Notification sent to room %s", msg.target)
	default:
		m.fb.broadcast.reset()
		return m, toast.Show(toast.Success, "Broadcast sent")
	}
}

func (m Model) connect() tea.Cmd {
	ch, id := m.channel, m.clientID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return connectResultMsg{err: ch.Connect(ctx, id)}
	}
}

func (m Model) loadUsers() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.Connected(context.Background())
		if err != nil {
			return usersLoadedMsg{err: err}
		}
		return usersLoadedMsg{users: resp.Data}
	}
}

// Connect starts connecting the channel unless it is already up.
func (m Model) Connect() tea.Cmd {
	if m.state != realtime.Disconnected {
		return toast.Showf(toast.Info, "Channel already %s", m.state)
	}
	return m.connect()
}

// CheckStatus asks the backend whether userID holds a channel
// connection and reports the answer as a toast.
func (m Model) CheckStatus(userID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.Status(context.Background(), userID)
		if err != nil {
			log.Error("checking user status", "user", userID, "err", err)
			return toast.ShowMsg{
				Level: toast.Error,
				Text:  "Failed to check status: " + backend.ErrorMessage(err),
			}
		}
		if resp.Data.Connected {
			return toast.ShowMsg{Level: toast.Success, Text: userID + " is connected"}
		}
		return toast.ShowMsg{Level: toast.Warning, Text: userID + " is not connected"}
	}
}

// Disconnect closes the channel.
func (m Model) Disconnect() {
	m.channel.Disconnect()
}

// JoinRoom joins room over the channel.
func (m Model) JoinRoom(room string) tea.Cmd {
	m.fb.room = room
	return m.submit(modeJoinRoom)
}

// LeaveRoom leaves room over the channel.
func (m Model) LeaveRoom(room string) tea.Cmd {
	m.fb.room = room
	return m.submit(modeLeaveRoom)
}

// Clear empties the received list.
func (m *Model) Clear() tea.Cmd {
	m.received.Clear()
	return tea.Batch(m.syncList(), toast.Show(toast.Info, "Notifications cleared"))
}

// syncList copies the log into the list widget.
func (m *Model) syncList() tea.Cmd {
	entries := m.received.Items()
	items := make([]list.Item, len(entries))
	for i, n := range entries {
		items[i] = item{n: n}
	}
	return m.list.SetItems(items)
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.form != nil
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeList:
		return "u user | b broadcast | o room | J/L join/leave | m/M message | U users | x clear | C connect"
	case modeUsers:
		return "r refresh | esc back"
	default:
		return "enter submit | esc cancel"
	}
}

// View renders the notifications view.
func (m Model) View() string {
	if m.form != nil {
		return form.View(formTitles[m.mode], m.form, m.width, m.height)
	}
	if m.mode == modeUsers {
		return m.viewUsers()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	status := fmt.Sprintf("Client %s  channel %s  %d received",
		m.clientID,
		theme.ConnectionStyle(m.state.String()).UnsetBackground().UnsetPadding().Render(m.state.String()),
		m.received.Len(),
	)

	var body string
	if m.received.Len() == 0 {
		body = theme.DimmedStyle.Render("No notifications received yet.")
	} else {
		body = m.list.View()
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(m.width).
		Height(m.height).
		Render(status + "\n\n" + body)
}

func (m Model) viewUsers() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Connected Users (%d)", m.usersCount)))
	b.WriteString("\n")

	if len(m.users) == 0 {
		b.WriteString(theme.DimmedStyle.Render("No users connected."))
	}
	for _, u := range m.users {
		line := fmt.Sprintf("%-24s %-24s %s",
			u.UserID, u.SocketID, u.ConnectedAt.Local().Format(time.DateTime))
		if u.UserID == m.clientID {
			b.WriteString(theme.SelectedItemStyle.Render(line + "  (you)"))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-2, height-3)
}
