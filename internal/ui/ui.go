package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/resolve"
	"github.com/sogik/TuneHarvester/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ResolveView ViewState = iota
	TrackListView
	ConfirmView
	HarvestView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       string
	opts         resolve.Options
	resolver     *resolve.Resolver
	engine       *tasks.HarvestEngine
	width        int
	height       int
	trackList    list.Model
	descriptors  []models.QueryDescriptor
	playlist     models.PlaylistContext
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.HarvestResult
	err          error
	help         help.Model
	keys         keyMap
}

type resolvedMsg struct {
	descriptors []models.QueryDescriptor
	playlist    models.PlaylistContext
	err         error
}

type progressUpdateMsg tasks.ProgressUpdate

type harvestCompleteMsg struct {
	result *tasks.HarvestResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source string, opts resolve.Options, resolver *resolve.Resolver, engine *tasks.HarvestEngine) *Model {
	return &Model{
		ctx:      ctx,
		view:     ResolveView,
		source:   source,
		opts:     opts,
		resolver: resolver,
		engine:   engine,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts resolving the source reference.
func (m *Model) Init() tea.Cmd {
	return m.resolveSource()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResolveView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case resolvedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.descriptors = msg.descriptors
		m.playlist = msg.playlist
		items := make([]list.Item, len(msg.descriptors))
		for i, d := range msg.descriptors {
			items[i] = trackItem{descriptor: d}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = m.listTitle()
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case harvestCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ResolveView:
		return m.renderResolve()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case HarvestView:
		return m.renderHarvest()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) listTitle() string {
	if m.playlist.Name != "" {
		return fmt.Sprintf("Tracks in '%s'", m.playlist.Name)
	}
	return "Resolved Tracks"
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = HarvestView
		return m, m.startHarvest()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = TrackListView
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == TrackListView {
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) resolveSource() tea.Cmd {
	return func() tea.Msg {
		descriptors, pctx, err := m.resolver.Resolve(m.ctx, m.source, m.opts)
		return resolvedMsg{descriptors: descriptors, playlist: pctx, err: err}
	}
}

func (m *Model) startHarvest() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progress

	go func() {
		result, err := m.engine.Harvest(m.ctx, m.descriptors, m.playlist, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return harvestCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return harvestCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderResolve() string {
	title := styles.title.Render("Resolving source")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.source, styles.help.Render("q to quit"))
}

func (m *Model) renderTrackList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	target := m.playlist.Name
	if target == "" {
		target = "destination root"
	}
	title := styles.title.Render(fmt.Sprintf("Download %d tracks into '%s'?", len(m.descriptors), target))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s", title, helpView)
}

func (m *Model) renderHarvest() string {
	title := styles.title.Render("Harvesting")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPrimary, tasks.FetchSecondary, tasks.MergeMetadata:
		phase = fmt.Sprintf("Resolving metadata (%d/%d)", m.progress.Track, m.progress.Total)
	case tasks.SearchStream:
		phase = fmt.Sprintf("Searching streams (%d/%d)", m.progress.Track, m.progress.Total)
	case tasks.DownloadTrack, tasks.OrganizeTrack, tasks.TagTrack:
		phase = fmt.Sprintf("Downloading (%d/%d)", m.progress.Track, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Harvest failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Harvest Complete")
	info := fmt.Sprintf(
		"\nDownloaded: %d\nSkipped: %d\nFailed: %d",
		m.result.Downloaded,
		m.result.Skipped,
		m.result.Failed,
	)

	var failed string
	if m.result.Failed > 0 || m.result.Skipped > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render("Not downloaded:"))
		for _, track := range m.result.Tracks {
			if track.Err != nil {
				failed += fmt.Sprintf("\n  • %s", track.Descriptor.Query)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
