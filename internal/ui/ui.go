package ui

import (
	"context"
	"fmt"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/player"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// seekStepMS is how far a single seek key press moves playback.
const seekStepMS = 10000

// Panel identifies the focused dashboard panel.
type Panel int

const (
	UpNextPanel Panel = iota
	HistoryPanel
)

// Model represents the dashboard state.
type Model struct {
	ctx     context.Context
	store   *player.Store
	adapter *player.Adapter
	updates <-chan player.Update

	width  int
	height int
	panel  Panel

	nowPlaying  player.NowPlayingView
	upNext      player.UpNextView
	history     player.HistoryView
	queue       models.Queue
	queueList   list.Model
	historyList list.Model

	volume float64
	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates the dashboard model. The volume percent seeds the local
// volume level used by the +/- bindings.
func NewModel(ctx context.Context, store *player.Store, adapter *player.Adapter, volumePercent int) *Model {
	queueList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	queueList.Title = "Up Next"
	queueList.SetShowHelp(false)
	queueList.SetShowStatusBar(false)

	historyList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	historyList.Title = "History"
	historyList.SetShowHelp(false)
	historyList.SetShowStatusBar(false)

	m := &Model{
		ctx:         ctx,
		store:       store,
		adapter:     adapter,
		updates:     store.Subscribe(),
		queueList:   queueList,
		historyList: historyList,
		volume:      float64(volumePercent) / 100,
		help:        help.New(),
		keys:        newKeyMap(),
	}
	m.refresh()
	return m
}

// Init starts the subscription pump and the progress ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), tick())
}

// waitForUpdate blocks on the store subscription and feeds the next update
// into the Elm loop.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return stateUpdateMsg(update)
	}
}

// refresh rebuilds all three projections from the store.
func (m *Model) refresh() {
	m.nowPlaying = player.BuildNowPlaying(m.store, m.adapter)
	m.upNext = player.BuildUpNext(m.store)
	m.queue = m.store.GetQueue()
	m.history = player.BuildHistory(m.store)

	queueItems := make([]list.Item, len(m.upNext.Items))
	for i, track := range m.upNext.Items {
		queueItems[i] = queueItem{track: track, index: i}
	}
	m.queueList.SetItems(queueItems)

	historyItems := make([]list.Item, len(m.history.Items))
	for i, entry := range m.history.Items {
		historyItems[i] = historyItem{entry: entry}
	}
	m.historyList.SetItems(historyItems)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := (msg.Height - 10) / 2
		if listHeight < 4 {
			listHeight = 4
		}
		m.queueList.SetSize(msg.Width-4, listHeight)
		m.historyList.SetSize(msg.Width-4, listHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case stateUpdateMsg:
		m.refresh()
		return m, m.waitForUpdate()

	case tickMsg:
		m.nowPlaying = player.BuildNowPlaying(m.store, m.adapter)
		return m, tick()

	case commandResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = ""
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.panel):
		if m.panel == UpNextPanel {
			m.panel = HistoryPanel
		} else {
			m.panel = UpNextPanel
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.command("toggle", m.adapter.Toggle)
	case key.Matches(msg, m.keys.next):
		return m, m.command("next", m.adapter.SkipNext)
	case key.Matches(msg, m.keys.prev):
		return m, m.command("previous", m.adapter.SkipPrevious)
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.seek(seekStepMS)
	case key.Matches(msg, m.keys.seekBack):
		return m, m.seek(-seekStepMS)
	case key.Matches(msg, m.keys.volUp):
		return m, m.changeVolume(0.1)
	case key.Matches(msg, m.keys.volDown):
		return m, m.changeVolume(-0.1)
	case key.Matches(msg, m.keys.enter):
		return m, m.playSelected()
	}

	var cmd tea.Cmd
	if m.panel == UpNextPanel {
		m.queueList, cmd = m.queueList.Update(msg)
	} else {
		m.historyList, cmd = m.historyList.Update(msg)
	}
	return m, cmd
}

// command wraps an adapter call into a tea.Cmd reporting its outcome.
func (m *Model) command(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{action: action, err: fn(m.ctx)}
	}
}

func (m *Model) seek(deltaMS int) tea.Cmd {
	fact := m.store.GetCurrentFact()
	if fact == nil {
		return nil
	}
	position := fact.ProgressMS + deltaMS
	if position < 0 {
		position = 0
	}
	if fact.Item.DurationMS > 0 && position > fact.Item.DurationMS {
		position = fact.Item.DurationMS
	}
	return func() tea.Msg {
		return commandResultMsg{action: "seek", err: m.adapter.Seek(m.ctx, position)}
	}
}

func (m *Model) changeVolume(delta float64) tea.Cmd {
	volume := m.volume + delta
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	m.volume = volume
	return func() tea.Msg {
		return commandResultMsg{action: "volume", err: m.adapter.SetVolume(m.ctx, volume)}
	}
}

// playSelected submits a play intent for the highlighted queue or history
// item. The intent carries the item's context so playback continues inside
// the right collection.
func (m *Model) playSelected() tea.Cmd {
	var (
		track        models.Track
		playContext  *models.PlaybackContext
		intentSource string
	)

	switch m.panel {
	case UpNextPanel:
		index := m.queueList.Index()
		selected, context, err := player.QueueItemIntent(m.store.GetCurrentFact(), m.queue, index)
		if err != nil {
			return nil
		}
		track, playContext, intentSource = selected, context, "queue"
	case HistoryPanel:
		selected := m.historyList.SelectedItem()
		item, ok := selected.(historyItem)
		if !ok {
			return nil
		}
		track, playContext = player.HistoryItemIntent(item.entry)
		intentSource = "history"
	}

	return func() tea.Msg {
		err := m.store.SubmitPlayIntent(m.ctx, track, playContext)
		return commandResultMsg{action: fmt.Sprintf("play from %s", intentSource), err: err}
	}
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	out := styles.title.Render("Playback") + "\n"
	out += m.renderNowPlaying()
	out += "\n" + m.renderPanel()

	if m.status != "" {
		out += "\n" + styles.warn.Render(m.status)
	}
	out += "\n" + m.help.View(m.keys)
	return out
}

func (m *Model) renderNowPlaying() string {
	view := m.nowPlaying

	device := styles.ok.Render("device online")
	if !view.Active {
		device = styles.err.Render("device offline")
	}

	if view.Fact == nil {
		return fmt.Sprintf("%s\n%s\n", styles.help.Render("Nothing playing"), device)
	}

	state := "▶"
	if !view.Fact.IsPlaying {
		state = "⏸"
	}

	line := fmt.Sprintf("%s %s - %s", state, view.Title(), view.Artists())
	out := styles.ok.Render(line) + "\n"
	out += fmt.Sprintf("%s  vol %d%%  %s\n", view.Progress(), int(m.volume*100), device)
	if context := view.Fact.Context; context != nil {
		name := context.Name
		if name == "" {
			name = context.ID
		}
		out += styles.help.Render(fmt.Sprintf("from %s %q", context.Type, name)) + "\n"
	}
	return out
}

func (m *Model) renderPanel() string {
	if m.panel == UpNextPanel {
		out := m.queueList.View()
		if indicator := m.upNext.Indicator(); indicator != "" {
			out += "\n" + styles.help.Render(indicator)
		}
		return out
	}
	return m.historyList.View()
}
