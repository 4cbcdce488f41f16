// Package storage is the object storage view: single and multiple file
// uploads, signed download links and deletes for files uploaded this
// session.
package storage

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
	"github.com/nhle/cloudconsole/internal/backend/s3"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	"github.com/nhle/cloudconsole/internal/ui/form"
	"github.com/nhle/cloudconsole/internal/ui/toast"
)

// signedURLExpiry is the lifetime requested for download links, in seconds.
const signedURLExpiry = 3600

type mode int

const (
	modeList mode = iota
	modeUpload
	modeUploadMany
	modeSignedURL
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	path   string
	folder string
	userID string

	paths      string
	folderMany string
}

type uploadedMsg struct {
	many  bool
	files []uploadedFile
	err   error
}

type signedMsg struct {
	key  string
	link s3.SignedURL
	err  error
}

type deletedMsg struct {
	key string
	err error
}

// Model is the storage view.
type Model struct {
	mode mode
	form *huh.Form
	fb   *formBindings

	svc  *s3.Service
	now  func() time.Time
	list list.Model

	signed    s3.SignedURL
	signedKey string

	keys          *keys.KeyMap
	width, height int
}

// New creates the storage view with an empty uploaded-files list.
func New(svc *s3.Service, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Uploaded Files"
	l.SetShowHelp(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		mode:   modeList,
		fb:     &formBindings{},
		svc:    svc,
		now:    time.Now,
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init does nothing; the list starts empty every session.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the storage view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadedMsg:
		return m.handleUploaded(msg)

	case signedMsg:
		m.setPending(msg.key, "")
		if msg.err != nil {
			log.Error("signing url", "key", msg.key, "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to generate signed URL: %s", backend.ErrorMessage(msg.err))
		}
		m.signed = msg.link
		m.signedKey = msg.key
		m.mode = modeSignedURL
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.setPending(msg.key, "")
			log.Error("deleting object", "key", msg.key, "err", msg.err)
			return m, toast.Showf(toast.Error, "Failed to delete file: %s", backend.ErrorMessage(msg.err))
		}
		m.remove(msg.key)
		return m, toast.Show(toast.Success, "File deleted successfully")

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleUploaded(msg uploadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.Error("uploading files", "err", msg.err)
		if msg.many {
			return m, toast.Showf(toast.Error, "Failed to upload files: %s", backend.ErrorMessage(msg.err))
		}
		return m, toast.Showf(toast.Error, "Failed to upload file: %s", backend.ErrorMessage(msg.err))
	}

	var cmds []tea.Cmd
	for _, f := range msg.files {
		cmds = append(cmds, m.list.InsertItem(0, f))
	}
	m.list.Select(0)

	if msg.many {
		m.fb.paths = ""
		m.fb.folderMany = ""
		cmds = append(cmds, toast.Showf(toast.Success, "%d files uploaded successfully", len(msg.files)))
	} else {
		m.fb.path = ""
		m.fb.folder = ""
		m.fb.userID = ""
		cmds = append(cmds, toast.Show(toast.Success, "File uploaded successfully"))
	}
	cmds = append(cmds, dashboard.Count(dashboard.Files, len(msg.files)))
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKeys(msg)
	case modeSignedURL:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
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
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Upload):
		return m.openForm(modeUpload)
	case key.Matches(msg, m.keys.UploadMany):
		return m.openForm(modeUploadMany)

	case key.Matches(msg, m.keys.SignedURL):
		f, ok := m.selected()
		if !ok || f.pending != "" {
			return m, nil
		}
		m.setPending(f.key, "signing")
		return m, m.signURL(f.key)

	case key.Matches(msg, m.keys.Delete):
		f, ok := m.selected()
		if !ok || f.pending != "" {
			return m, nil
		}
		m.setPending(f.key, "deleting")
		return m, m.deleteObject(f.key)
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
	if md == modeUploadMany {
		return form.New(m.width,
			huh.NewText().
				Title("Files").
				Description("Local paths, one per line or comma separated").
				Value(&m.fb.paths).
				Validate(form.Required("At least one file")),
			huh.NewInput().
				Title("Folder").
				Description("Optional key prefix").
				Value(&m.fb.folderMany),
		)
	}

	return form.New(m.width,
		huh.NewInput().
			Title("File").
			Description("Local path of the file to upload").
			Value(&m.fb.path).
			Validate(form.Required("File")),
		huh.NewInput().
			Title("Folder").
			Description("Optional key prefix").
			Value(&m.fb.folder),
		huh.NewInput().
			Title("User ID").
			Description("Optional owner recorded with the object").
			Value(&m.fb.userID),
	)
}

// submit reads the chosen files and uploads them.
func (m Model) submit(md mode) tea.Cmd {
	svc, now := m.svc, m.now

	if md == modeUploadMany {
		paths := splitPaths(m.fb.paths)
		folder := strings.TrimSpace(m.fb.folderMany)
		return func() tea.Msg {
			files := make([]backend.File, 0, len(paths))
			for _, p := range paths {
				f, err := backend.ReadFile(p)
				if err != nil {
					return uploadedMsg{many: true, err: err}
				}
				files = append(files, f)
			}

			resp, err := svc.UploadMultiple(context.Background(), files, folder)
			if err != nil {
				return uploadedMsg{many: true, err: err}
			}

			uploaded := make([]uploadedFile, 0, len(resp.Data))
			for i, r := range resp.Data {
				name := r.Key
				if i < len(files) {
					name = files[i].Name
				}
				uploaded = append(uploaded, newUploadedFile(name, r, now()))
			}
			return uploadedMsg{many: true, files: uploaded}
		}
	}

	path := strings.TrimSpace(m.fb.path)
	folder := strings.TrimSpace(m.fb.folder)
	userID := strings.TrimSpace(m.fb.userID)
	return func() tea.Msg {
		f, err := backend.ReadFile(path)
		if err != nil {
			return uploadedMsg{err: err}
		}
		resp, err := svc.Upload(context.Background(), f, folder, userID)
		if err != nil {
			return uploadedMsg{err: err}
		}
		return uploadedMsg{files: []uploadedFile{newUploadedFile(f.Name, resp.Data, now())}}
	}
}

func newUploadedFile(name string, r s3.UploadResult, at time.Time) uploadedFile {
	bucket := r.Bucket
	if bucket == "" {
		bucket = "N/A"
	}
	return uploadedFile{
		name:       name,
		key:        r.Key,
		url:        r.URL,
		bucket:     bucket,
		uploadedAt: at,
	}
}

func (m Model) signURL(k string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		resp, err := svc.SignedURL(context.Background(), k, signedURLExpiry)
		if err != nil {
			return signedMsg{key: k, err: err}
		}
		return signedMsg{key: k, link: resp.Data}
	}
}

func (m Model) deleteObject(k string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.Delete(context.Background(), k)
		return deletedMsg{key: k, err: err}
	}
}

// splitPaths splits a comma or newline separated list of paths.
func splitPaths(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (m Model) selected() (uploadedFile, bool) {
	f, ok := m.list.SelectedItem().(uploadedFile)
	return f, ok
}

func (m *Model) files() []uploadedFile {
	items := m.list.Items()
	out := make([]uploadedFile, 0, len(items))
	for _, it := range items {
		if f, ok := it.(uploadedFile); ok {
			out = append(out, f)
		}
	}
	return out
}

func (m *Model) setPending(k, op string) {
	for i, it := range m.list.Items() {
		if f, ok := it.(uploadedFile); ok && f.key == k {
			f.pending = op
			m.list.SetItem(i, f)
			return
		}
	}
}

func (m *Model) remove(k string) {
	for i, it := range m.list.Items() {
		if f, ok := it.(uploadedFile); ok && f.key == k {
			m.list.RemoveItem(i)
			return
		}
	}
}

// Capturing reports whether a form or the list filter has keyboard focus.
func (m Model) Capturing() bool {
	return m.form != nil || m.list.FilterState() == list.Filtering
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeList:
		return "u upload | U upload many | g signed url | d delete | / filter"
	case modeSignedURL:
		return "esc back"
	default:
		return "enter submit | esc cancel"
	}
}

// View renders the storage view.
func (m Model) View() string {
	switch m.mode {
	case modeUpload:
		return form.View("Upload File", m.form, m.width, m.height)
	case modeUploadMany:
		return form.View("Upload Multiple Files", m.form, m.width, m.height)
	case modeSignedURL:
		return m.viewSignedURL()
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(theme.DimmedStyle.Render("No files uploaded yet. Press u to upload one."))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(m.list.View())
}

func (m Model) viewSignedURL() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Signed URL"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Key:     %s\n", m.signedKey)
	fmt.Fprintf(&b, "Expires: in %s\n\n", time.Duration(m.signed.ExpiresIn)*time.Second)
	b.WriteString(lipgloss.NewStyle().Width(m.width - 8).Render(m.signed.URL))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-2, height-2)
}
