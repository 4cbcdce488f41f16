package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application. Global bindings are
// handled by the root model; the rest are interpreted by the active view.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Tabs
	NextTab key.Binding
	PrevTab key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Settings
	Settings key.Binding

	// Manual refresh
	Refresh key.Binding

	// Channel
	Connect       key.Binding
	SendUser      key.Binding
	Broadcast     key.Binding
	SendRoom      key.Binding
	JoinRoom      key.Binding
	LeaveRoom     key.Binding
	DirectMessage key.Binding
	RoomMessage   key.Binding
	Users         key.Binding
	Clear         key.Binding

	// Storage
	Upload     key.Binding
	UploadMany key.Binding
	SignedURL  key.Binding
	Delete     key.Binding

	// Queue
	Send       key.Binding
	BatchAdd   key.Binding
	BatchEdit  key.Binding
	BatchSend  key.Binding
	Receive    key.Binding
	Attributes key.Binding

	// Mail
	Compose      key.Binding
	Bulk         key.Binding
	NewTemplate  key.Binding
	UseTemplate  key.Binding
	EditTemplate key.Binding
	Preview      key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Settings: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "settings"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Connect: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "connect/disconnect"),
		),
		SendUser: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "send to user"),
		),
		Broadcast: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "broadcast"),
		),
		SendRoom: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "send to room"),
		),
		JoinRoom: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "join room"),
		),
		LeaveRoom: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "leave room"),
		),
		DirectMessage: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "direct message"),
		),
		RoomMessage: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "room message"),
		),
		Users: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "connected users"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		UploadMany: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "upload many"),
		),
		SignedURL: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "signed url"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Send: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send"),
		),
		BatchAdd: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add batch row"),
		),
		BatchEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit batch row"),
		),
		BatchSend: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "send batch"),
		),
		Receive: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "receive"),
		),
		Attributes: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "queue attributes"),
		),
		Compose: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send email"),
		),
		Bulk: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bulk email"),
		),
		NewTemplate: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new template"),
		),
		UseTemplate: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "send with template"),
		),
		EditTemplate: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit template"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview email"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.NextTab, k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit, k.NextTab, k.PrevTab},
		{k.Command, k.Help, k.Settings, k.Refresh},
		{k.Connect, k.SendUser, k.Broadcast, k.SendRoom, k.JoinRoom, k.LeaveRoom, k.DirectMessage, k.RoomMessage, k.Users, k.Clear},
		{k.Upload, k.UploadMany, k.SignedURL, k.Delete},
		{k.Send, k.BatchAdd, k.BatchEdit, k.BatchSend, k.Receive, k.Attributes},
		{k.Compose, k.Bulk, k.NewTemplate, k.UseTemplate, k.EditTemplate, k.Preview},
	}
}
