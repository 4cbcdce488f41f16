package app

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/credential"
	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/realtime"
	"github.com/nhle/cloudconsole/internal/ui/command"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/settings"
	"github.com/nhle/cloudconsole/internal/ui/toast"
	"github.com/nhle/cloudconsole/tests/testutil"
)

type fakeChannel struct {
	calls []string
	waits int
}

func (f *fakeChannel) Connect(_ context.Context, clientID string) error {
	f.calls = append(f.calls, "connect:"+clientID)
	return nil
}

func (f *fakeChannel) Disconnect()                    { f.calls = append(f.calls, "disconnect") }
func (f *fakeChannel) JoinRoom(room string)           { f.calls = append(f.calls, "join:"+room) }
func (f *fakeChannel) LeaveRoom(room string)          { f.calls = append(f.calls, "leave:"+room) }
func (f *fakeChannel) SendDirectMessage(to, m string) { f.calls = append(f.calls, "dm:"+to+":"+m) }
func (f *fakeChannel) SendRoomMessage(r, m string)    { f.calls = append(f.calls, "room:"+r+":"+m) }

func (f *fakeChannel) WaitForEvent() tea.Cmd {
	f.waits++
	return nil
}

func newTestApp(t *testing.T) (Model, *testutil.Backend, *fakeChannel) {
	t.Helper()
	fake := testutil.NewBackend(t)
	ch := &fakeChannel{}
	m := New(Deps{
		Config:     *model.DefaultAppConfig(),
		ConfigPath: t.TempDir() + "/config.yaml",
		Client:     fake.Client,
		Channel:    ch,
		Secrets:    credential.NewKeyringWith(keyring.NewArrayKeyring(nil)),
		ClientID:   "user-test",
	})
	return m, fake, ch
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTabNavigation(t *testing.T) {
	m, _, _ := newTestApp(t)
	assert.Equal(t, TabDashboard, m.activeTab)

	m, _ = update(t, m, testutil.Key("tab"))
	assert.Equal(t, TabNotifications, m.activeTab)

	m, _ = update(t, m, testutil.Key("4"))
	assert.Equal(t, TabQueue, m.activeTab)

	m, _ = update(t, m, testutil.Key("1"))
	m, _ = update(t, m, testutil.Key("shift+tab"))
	assert.Equal(t, TabMail, m.activeTab)
}

func TestGlobalKeysIgnoredWhileFormOpen(t *testing.T) {
	m, _, ch := newTestApp(t)
	m, _ = update(t, m, testutil.Key("3"))
	m, _ = update(t, m, testutil.Key("u"))
	require.True(t, m.capturing())

	m, _ = update(t, m, testutil.Key("1"))
	assert.Equal(t, TabStorage, m.activeTab)

	m, _ = update(t, m, testutil.Key("q"))
	assert.True(t, m.capturing())
	assert.NotContains(t, ch.calls, "disconnect")

	m, _ = update(t, m, testutil.Key("esc"))
	assert.False(t, m.capturing())
}

func TestQuitDisconnectsChannel(t *testing.T) {
	m, _, ch := newTestApp(t)

	_, cmd := update(t, m, testutil.Key("q"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, []string{"disconnect"}, ch.calls)
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	m, _, ch := newTestApp(t)
	m, _ = update(t, m, testutil.Key("3"))
	m, _ = update(t, m, testutil.Key("u"))

	_, cmd := update(t, m, testutil.Key("ctrl+c"))
	assert.True(t, isQuit(cmd))
	assert.Contains(t, ch.calls, "disconnect")
}

func TestHelpOverlay(t *testing.T) {
	m, _, _ := newTestApp(t)

	m, _ = update(t, m, testutil.Key("?"))
	assert.Equal(t, ViewHelp, m.currentView)

	m, _ = update(t, m, testutil.Key("2"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Equal(t, TabDashboard, m.activeTab)

	m, _ = update(t, m, testutil.Key("esc"))
	assert.Equal(t, ViewTabs, m.currentView)
}

func TestCommandSwitchesTab(t *testing.T) {
	m, _, _ := newTestApp(t)
	m, _ = update(t, m, testutil.Key(":"))
	require.Equal(t, ViewCommand, m.currentView)

	m, _ = update(t, m, command.CommandMsg{Name: "mail"})
	assert.Equal(t, ViewTabs, m.currentView)
	assert.Equal(t, TabMail, m.activeTab)
}

func TestCommandConnectDialsChannel(t *testing.T) {
	m, _, ch := newTestApp(t)

	_, cmd := update(t, m, command.CommandMsg{Name: "connect"})
	testutil.Messages(cmd)
	assert.Equal(t, []string{"connect:user-test"}, ch.calls)
}

func TestCommandQuit(t *testing.T) {
	m, _, ch := newTestApp(t)

	_, cmd := update(t, m, command.CommandMsg{Name: "quit"})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, []string{"disconnect"}, ch.calls)
}

func TestChannelEventsRearmListener(t *testing.T) {
	m, _, ch := newTestApp(t)

	m, _ = update(t, m, realtime.StateMsg{State: realtime.Connected})
	assert.Equal(t, realtime.Connected, m.state)
	assert.Equal(t, 1, ch.waits)

	m, _ = update(t, m, realtime.NotificationMsg{Notification: model.Notification{
		Type:  model.NotificationInfo,
		Title: "Hello",
	}})
	assert.Equal(t, 2, ch.waits)
	assert.Equal(t, 1, m.dashboard.Value(dashboard.Notifications))
}

func TestCountsReachDashboardFromAnyTab(t *testing.T) {
	m, _, _ := newTestApp(t)
	m, _ = update(t, m, testutil.Key("4"))

	m, _ = update(t, m, dashboard.CountMsg{Counter: dashboard.Messages, N: 3})
	assert.Equal(t, 3, m.dashboard.Value(dashboard.Messages))
}

func TestSavedSettingsReconfigureClient(t *testing.T) {
	m, _, _ := newTestApp(t)
	cfg := *model.DefaultAppConfig()
	cfg.API.BaseURL = "http://backend.internal:9000/api"

	m, cmd := update(t, m, settings.SavedMsg{Config: cfg, Token: "tok"})
	assert.Equal(t, "http://backend.internal:9000/api", m.client.BaseURL())

	msgs := testutil.Messages(cmd)
	show, ok := testutil.Find[toast.ShowMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, toast.Success, show.Level)

	_, cmd = update(t, m, settings.SavedMsg{Config: cfg, ChannelChanged: true})
	show, ok = testutil.Find[toast.ShowMsg](testutil.Messages(cmd))
	require.True(t, ok)
	assert.Equal(t, toast.Warning, show.Level)
	assert.Contains(t, show.Text, "restart")
}

func TestSettingsOverlayClosesOnDone(t *testing.T) {
	m, _, _ := newTestApp(t)

	m, cmd := update(t, m, testutil.Key("S"))
	assert.Equal(t, ViewSettings, m.currentView)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, settings.DoneMsg{})
	assert.Equal(t, ViewTabs, m.currentView)
}

func TestViewRendersHeaderAndTabs(t *testing.T) {
	m, _, _ := newTestApp(t)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "Cloud Console")
	for _, label := range tabLabels {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "disconnected")
}
