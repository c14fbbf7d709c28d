package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/desertthunder/propdesk/internal/workflow"
	"github.com/dustin/go-humanize"
)

const barWidth = 48

var menu = []struct {
	view  ViewState
	title string
	desc  string
}{
	{UploadView, "Upload Spreadsheet", "Process an Excel workbook and save the result"},
	{ProjectView, "Project Download", "Turn a listing URL into an archive of its data and images"},
}

// UploadWorkflow is the subset of [workflow.UploadController] the TUI drives.
type UploadWorkflow interface {
	Extension() string
	Snapshot() workflow.UploadSnapshot
	Subscribe(fn func(workflow.UploadSnapshot)) func()
	SubmitDropped(ctx context.Context, files []workflow.SelectedFile) error
	Reset()
}

// ProjectWorkflow is the subset of [workflow.ProjectController] the TUI drives.
type ProjectWorkflow interface {
	Snapshot() workflow.ProjectSnapshot
	Subscribe(fn func(workflow.ProjectSnapshot)) func()
	Convert(ctx context.Context, rawURL string) error
}

// ModelOpts configures optional [Model] dependencies.
type ModelOpts struct {
	Logger   *log.Logger
	StartDir string             // Initial directory of the file browser
	Opener   func(string) error // Opens a saved artifact; defaults to [shared.OpenPath]
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	router  *Router
	upload  UploadWorkflow
	project ProjectWorkflow
	logger  *log.Logger
	opener  func(string) error

	uploadSnap    workflow.UploadSnapshot
	projectSnap   workflow.ProjectSnapshot
	uploadNotify  chan struct{}
	projectNotify chan struct{}
	unsubscribe   []func()

	cursor   int
	path     textinput.Model
	url      textinput.Model
	picker   filepicker.Model
	browsing bool
	spinner  spinner.Model
	bar      progress.Model
	errBar   progress.Model
	alert    string
	shown    string // Attempt whose snapshot alert was already raised
	width    int
	height   int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model wired to the workflow controllers.
//
// Call [Model.Close] when the program exits to drop the subscriptions.
func NewModel(ctx context.Context, upload UploadWorkflow, project ProjectWorkflow, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Opener == nil {
		opts.Opener = shared.OpenPath
	}
	if opts.StartDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.StartDir = wd
		}
	}

	path := textinput.New()
	path.Placeholder = "/path/to/workbook" + upload.Extension()
	path.Prompt = "› "
	path.Width = barWidth

	url := textinput.New()
	url.Placeholder = "https://"
	url.Prompt = "› "
	url.Width = barWidth

	picker := filepicker.New()
	picker.AllowedTypes = []string{upload.Extension()}
	picker.CurrentDirectory = opts.StartDir

	m := &Model{
		ctx:           ctx,
		router:        NewRouter(),
		upload:        upload,
		project:       project,
		logger:        opts.Logger.With("component", "tui"),
		opener:        opts.Opener,
		uploadSnap:    upload.Snapshot(),
		projectSnap:   project.Snapshot(),
		uploadNotify:  make(chan struct{}, 1),
		projectNotify: make(chan struct{}, 1),
		path:          path,
		url:           url,
		picker:        picker,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.selected)),
		bar:           progress.New(progress.WithSolidFill(accentColor), progress.WithWidth(barWidth)),
		errBar:        progress.New(progress.WithSolidFill(errColor), progress.WithWidth(barWidth)),
		help:          help.New(),
		keys:          newKeyMap(),
	}

	m.unsubscribe = []func(){
		upload.Subscribe(func(workflow.UploadSnapshot) { notify(m.uploadNotify) }),
		project.Subscribe(func(workflow.ProjectSnapshot) { notify(m.projectNotify) }),
	}
	return m
}

// notify signals ch without blocking. Receivers read the latest snapshot, so coalesced signals lose nothing.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Close removes the model's workflow subscriptions.
func (m *Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
}

// Router exposes the view router.
func (m *Model) Router() *Router {
	return m.router
}

// Init starts listening for workflow changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpload(), m.waitForProject(), m.spinner.Tick, m.picker.Init())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.exit) {
			return m, tea.Quit
		}
		if m.alert != "" {
			if key.Matches(msg, m.keys.dismiss) {
				m.alert = ""
			}
			return m, nil
		}
		switch m.router.Current() {
		case HomeView:
			return m.handleHomeKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		case ProjectView:
			return m.handleProjectKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var pickerCmd, pathCmd, urlCmd tea.Cmd
	m.picker, pickerCmd = m.picker.Update(msg)
	m.path, pathCmd = m.path.Update(msg)
	m.url, urlCmd = m.url.Update(msg)
	return m, tea.Batch(pickerCmd, pathCmd, urlCmd)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUploadChanged:
		m.uploadSnap = msg.data.(workflow.UploadSnapshot)
		if m.uploadSnap.State == workflow.Idle {
			m.path.Reset()
		}
		return m, m.waitForUpload()

	case MsgProjectChanged:
		m.projectSnap = msg.data.(workflow.ProjectSnapshot)
		if m.projectSnap.Alert != "" && m.projectSnap.Attempt != m.shown {
			m.shown = m.projectSnap.Attempt
			m.alert = m.projectSnap.Alert
		}
		return m, m.waitForProject()

	case MsgActionDone:
		data := msg.data.(struct {
			view ViewState
			err  error
		})
		m.handleActionErr(data.view, data.err)
	}
	return m, nil
}

// handleActionErr surfaces validation problems as alerts. Settled failures render from snapshots instead.
func (m *Model) handleActionErr(view ViewState, err error) {
	if err == nil || errors.Is(err, shared.ErrBusy) {
		return
	}
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		m.alert = verr.Message
		return
	}
	m.logger.Debug("action finished with error", "view", view, "error", err)
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(menu)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.upload):
		return m, m.show(UploadView)
	case key.Matches(msg, m.keys.project):
		return m, m.show(ProjectView)
	case key.Matches(msg, m.keys.enter):
		return m, m.show(menu[m.cursor].view)
	}
	return m, nil
}

// show switches views and moves focus to the view's input.
func (m *Model) show(v ViewState) tea.Cmd {
	m.router.Show(v)
	m.path.Blur()
	m.url.Blur()
	switch v {
	case UploadView:
		return m.path.Focus()
	case ProjectView:
		return m.url.Focus()
	}
	return nil
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.uploadSnap

	if m.browsing {
		if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.browse) {
			m.browsing = false
			return m, m.path.Focus()
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.browsing = false
			return m, tea.Batch(cmd, m.submitPath(path))
		}
		if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
			m.alert = workflow.AlertText(workflow.CheckFile(filepath.Base(path), m.upload.Extension()))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.show(HomeView)
	case snap.ResetVisible() && key.Matches(msg, m.keys.reset):
		m.upload.Reset()
		return m, m.path.Focus()
	case snap.Artifact != nil && key.Matches(msg, m.keys.open):
		return m, m.open(snap.Artifact.Path)
	case !snap.InputVisible():
		return m, nil
	case key.Matches(msg, m.keys.browse):
		m.browsing = true
		m.path.Blur()
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.enter):
		return m, m.submitPath(m.path.Value())
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	if msg.Paste {
		return m, tea.Batch(cmd, m.submitPath(m.path.Value()))
	}
	return m, cmd
}

func (m *Model) handleProjectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.projectSnap

	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.show(HomeView)
	case snap.Artifact != nil && key.Matches(msg, m.keys.open):
		return m, m.open(snap.Artifact.Path)
	case key.Matches(msg, m.keys.enter):
		if !snap.TriggerEnabled {
			return m, nil
		}
		return m, m.convert(m.url.Value())
	}

	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

// submitPath reads the file at raw and hands it to the upload workflow.
func (m *Model) submitPath(raw string) tea.Cmd {
	ext := m.upload.Extension()
	return func() tea.Msg {
		file, ok, err := workflow.LoadFile(raw, ext)
		if err != nil {
			return actionDoneMsg(UploadView, err)
		}
		var files []workflow.SelectedFile
		if ok {
			files = append(files, file)
		}
		return actionDoneMsg(UploadView, m.upload.SubmitDropped(m.ctx, files))
	}
}

func (m *Model) convert(raw string) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg(ProjectView, m.project.Convert(m.ctx, raw))
	}
}

func (m *Model) open(path string) tea.Cmd {
	view := m.router.Current()
	return func() tea.Msg {
		if err := m.opener(path); err != nil {
			return actionDoneMsg(view, &workflow.ValidationError{Message: fmt.Sprintf("Could not open %s.", filepath.Base(path))})
		}
		return actionDoneMsg(view, nil)
	}
}

func (m *Model) waitForUpload() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.uploadNotify:
			return uploadChangedMsg(m.upload.Snapshot())
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForProject() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.projectNotify:
			return projectChangedMsg(m.project.Snapshot())
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.router.Current() {
	case HomeView:
		body = m.renderHome()
	case UploadView:
		body = m.renderUpload()
	case ProjectView:
		body = m.renderProject()
	}

	if m.alert != "" {
		alert := styles.alert.Render(m.alert + "\n\n" + styles.help.Render("press enter to dismiss"))
		return fmt.Sprintf("%s\n\n%s", body, alert)
	}
	return body
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("propdesk"))
	b.WriteString("\n")
	for i, item := range menu {
		line := fmt.Sprintf("%d. %s", i+1, item.title)
		if i == m.cursor {
			b.WriteString(styles.selected.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n     " + styles.help.Render(item.desc) + "\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func savedLine(a *workflow.Artifact) string {
	return fmt.Sprintf("Saved to %s (%s)", a.Path, humanize.Bytes(uint64(a.Size)))
}

func (m *Model) renderUpload() string {
	snap := m.uploadSnap
	var b strings.Builder
	b.WriteString(styles.title.Render("Upload Spreadsheet"))
	b.WriteString("\n")

	helpKeys := []key.Binding{m.keys.back, m.keys.exit}
	if snap.InputVisible() {
		if m.browsing {
			b.WriteString(m.picker.View())
			helpKeys = []key.Binding{m.keys.enter, m.keys.back}
		} else {
			b.WriteString(fmt.Sprintf("Drop or paste a %s file here:\n%s\n", m.upload.Extension(), m.path.View()))
			helpKeys = append([]key.Binding{m.keys.enter, m.keys.browse}, helpKeys...)
		}
	}

	if snap.BusyVisible() {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), snap.Status))
	} else if snap.StatusVisible() {
		style := styles.ok
		if snap.State == workflow.Failed {
			style = styles.err
		}
		b.WriteString(style.Render(snap.Status) + "\n")
		if snap.Artifact != nil {
			b.WriteString(styles.help.Render(savedLine(snap.Artifact)) + "\n")
			helpKeys = append([]key.Binding{m.keys.open}, helpKeys...)
		}
	}

	if snap.ResetVisible() {
		reset := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", snap.ResetLabel))
		b.WriteString("\n" + styles.warn.Render("[r] "+snap.ResetLabel) + "\n")
		helpKeys = append([]key.Binding{reset}, helpKeys...)
	}

	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderProject() string {
	snap := m.projectSnap
	var b strings.Builder
	b.WriteString(styles.title.Render("Project Download"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Listing URL:\n%s\n", m.url.View()))

	convert := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "convert"))
	if !snap.TriggerEnabled {
		convert.SetEnabled(false)
		b.WriteString(styles.help.Render("Converting...") + "\n")
	}

	if snap.ProgressVisible() {
		bar := m.bar
		status := lipgloss.NewStyle()
		if snap.ErrorColor {
			bar = m.errBar
			status = styles.err
		} else if snap.State == workflow.Succeeded {
			status = styles.ok
		}
		b.WriteString("\n" + bar.ViewAs(snap.Progress/100) + "\n")
		b.WriteString(status.Render(snap.Status) + "\n")
	}

	helpKeys := []key.Binding{convert, m.keys.back, m.keys.exit}
	if snap.Artifact != nil {
		b.WriteString(styles.help.Render(savedLine(snap.Artifact)) + "\n")
		helpKeys = append(helpKeys, m.keys.open)
	}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}
