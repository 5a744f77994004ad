// Package app is the root Bubble Tea model. It owns the windowed list, the
// deferred search box and the chrome around them, and wires config reloads
// and dataset regeneration into the list.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/miosa/vscroll/config"
	"github.com/miosa/vscroll/deferred"
	"github.com/miosa/vscroll/gitlog"
	"github.com/miosa/vscroll/item"
	"github.com/miosa/vscroll/msg"
	"github.com/miosa/vscroll/procstat"
	"github.com/miosa/vscroll/session"
	"github.com/miosa/vscroll/style"
	"github.com/miosa/vscroll/ui/anim"
	"github.com/miosa/vscroll/ui/help"
	"github.com/miosa/vscroll/ui/search"
	"github.com/miosa/vscroll/ui/status"
	"github.com/miosa/vscroll/ui/toast"
	"github.com/miosa/vscroll/ui/vlist"
)

// loadTimeout bounds a commit-log walk.
const loadTimeout = 30 * time.Second

// Options configures New.
type Options struct {
	Config  config.Config
	Logger  *zap.Logger
	Session session.State

	// Items overrides the configured dataset.
	Items []item.Item

	// Sampler, when set, feeds process stats into the header.
	Sampler *procstat.Sampler
}

// -- Model --------------------------------------------------------------------

// Model is the root Bubble Tea model.
type Model struct {
	list   vlist.Model
	search search.Model
	status status.Model
	help   help.Model
	toasts toast.Model
	keys   KeyMap
	state  State
	layout Layout
	width  int
	height int
	cfg    config.Config
	logger *zap.Logger
	all    []item.Item // full dataset; the list shows the filtered subset
	seed   uint64
	repo   string // commit-log source; empty for generated items
	query  string // query the list is currently filtered by
	faults int64  // render faults already reported

	loading bool
	loadGen uint64         // stamp of the newest dataset load; older results are dropped
	restore *session.State // applied once the first async load lands

	sampler *procstat.Sampler
	stats   procstat.Stats
	sampled bool
}

// New constructs the root Model, applies the configured theme and restores
// the saved session.
func New(opts Options) Model {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Theme != "" {
		style.SetTheme(cfg.Theme)
	}

	keys := DefaultKeyMap()
	m := Model{
		list: vlist.New(
			vlist.WithItemSize(cfg.List.ItemSize),
			vlist.WithOverscan(cfg.List.Overscan),
			vlist.WithMeasured(cfg.List.Measure),
			vlist.WithLogger(logger.Named("vlist")),
		),
		search:  search.New(cfg.DeferDelay()),
		status:  status.New(),
		help:    help.New(keys.HelpSections()...),
		toasts:  toast.New(),
		keys:    keys,
		state:   StateBrowsing,
		cfg:     cfg,
		logger:  logger.Named("app"),
		seed:    cfg.Items.Seed,
		repo:    cfg.Items.Repo,
		sampler: opts.Sampler,
		width:   80,
		height:  24,
	}

	m.all = opts.Items
	if m.all == nil {
		if m.repo != "" {
			m.loading = true
			m.loadGen++
		} else {
			m.all = item.Generate(cfg.Items.Count, cfg.Items.Seed)
		}
	}

	m.resize(m.width, m.height)

	s := opts.Session
	m.search.Restore(s.Query)
	m.applyFilter()
	if m.loading {
		m.restore = &s
	} else {
		m.restorePosition(s)
	}
	return m
}

func (m *Model) restorePosition(s session.State) {
	if s.Selected > 0 {
		m.list.Select(s.Selected)
	}
	if s.ScrollOffset > 0 {
		m.list.ScrollTo(s.ScrollOffset)
	}
}

// Session returns the state to persist on exit.
func (m Model) Session() session.State {
	return session.State{
		Query:        m.search.Input(),
		ScrollOffset: m.list.Viewport().ScrollOffset,
		Selected:     m.list.SelectedIndex(),
	}
}

// State returns the current application state.
func (m Model) State() State { return m.state }

// List exposes the list model, read-only, for callers and tests.
func (m Model) List() vlist.Model { return m.list }

// Search exposes the search model, read-only.
func (m Model) Search() search.Model { return m.search }

// Config returns the settings in effect.
func (m Model) Config() config.Config { return m.cfg }

// -- Init ---------------------------------------------------------------------

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{func() tea.Msg { return tea.RequestWindowSize() }}
	if m.loading {
		cmds = append(cmds, load(m.cfg.Items, m.loadGen))
	}
	if m.sampler != nil {
		cmds = append(cmds, m.sampler.Cmd(0))
	}
	return tea.Batch(cmds...)
}

// -- Update -------------------------------------------------------------------

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(rawMsg)
	m.syncStatus()
	return m, tea.Batch(cmd, m.reportFaults())
}

func (m Model) update(rawMsg tea.Msg) (Model, tea.Cmd) {
	switch v := rawMsg.(type) {

	case tea.WindowSizeMsg:
		m.resize(v.Width, v.Height)
		return m, nil

	case tea.MouseWheelMsg:
		if m.state == StateHelp {
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(v)
		return m, cmd

	case tea.MouseClickMsg:
		if m.state != StateHelp {
			m.list.SelectAtRow(v.Y - m.layout.ListTop)
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(v)

	// -- Deferred search --

	case deferred.SettleMsg, anim.TickMsg:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(v)
		return m, cmd

	case deferred.SettledMsg:
		if v.ID == m.search.QueryID() {
			m.applyFilter()
		}
		return m, nil

	// -- Toasts --

	case toast.TickMsg:
		before := m.toasts.Len()
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(v)
		if m.toasts.Len() != before {
			m.resize(m.width, m.height)
		}
		return m, cmd

	// -- Config & data --

	case msg.ConfigReloaded:
		return m.handleConfig(v)

	case msg.ItemsGenerated:
		return m.handleItems(v)

	case procstat.SampleMsg:
		if v.Err != nil {
			m.logger.Debug("process sample failed", zap.Error(v.Err))
		} else {
			m.stats, m.sampled = v.Stats, true
		}
		if m.sampler == nil {
			return m, nil
		}
		return m, m.sampler.Cmd(procstat.DefaultInterval)
	}

	if m.state == StateSearching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(rawMsg)
		return m, cmd
	}
	return m, nil
}

// -- Key handling -------------------------------------------------------------

func (m Model) handleKey(k tea.KeyPressMsg) (Model, tea.Cmd) {
	switch m.state {
	case StateSearching:
		return m.handleSearchKey(k)
	case StateHelp:
		return m.handleHelpKey(k)
	}
	return m.handleBrowseKey(k)
}

func (m Model) handleBrowseKey(k tea.KeyPressMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(k, m.keys.Help):
		m.state = StateHelp
		return m, nil

	case key.Matches(k, m.keys.Search):
		m.state = StateSearching
		return m, m.search.Focus()

	case key.Matches(k, m.keys.Escape):
		if m.search.Input() != "" {
			return m, m.search.Clear()
		}

	case key.Matches(k, m.keys.Up):
		m.list.MoveSelection(-1)
	case key.Matches(k, m.keys.Down):
		m.list.MoveSelection(1)
	case key.Matches(k, m.keys.PageUp):
		m.list.PageUp()
	case key.Matches(k, m.keys.PageDown):
		m.list.PageDown()
	case key.Matches(k, m.keys.HalfPageUp):
		m.list.HalfPageUp()
	case key.Matches(k, m.keys.HalfPageDown):
		m.list.HalfPageDown()
	case key.Matches(k, m.keys.Top):
		m.list.GotoTop()
	case key.Matches(k, m.keys.Bottom):
		m.list.GotoBottom()

	case key.Matches(k, m.keys.Regenerate):
		if m.loading {
			return m, nil
		}
		next := m.cfg.Items
		next.Seed = m.seed + 1
		m.loading = next.Repo != ""
		m.loadGen++
		return m, load(next, m.loadGen)

	case key.Matches(k, m.keys.ToggleMeasure):
		m.list.SetMeasured(!m.list.Measured())
		mode := "fixed"
		if m.list.Measured() {
			mode = "measured"
		}
		return m, m.toast("rows: "+mode, toast.Info)

	case key.Matches(k, m.keys.CycleTheme):
		m.setTheme(nextTheme(style.CurrentThemeName))
		return m, m.toast("theme: "+style.CurrentThemeName, toast.Info)
	}
	return m, nil
}

func (m Model) handleSearchKey(k tea.KeyPressMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(k, m.keys.Escape):
		m.state = StateBrowsing
		m.search.Blur()
		return m, m.search.Clear()

	case key.Matches(k, m.keys.Submit):
		m.state = StateBrowsing
		m.search.Blur()
		return m, nil

	case key.Matches(k, m.keys.ClearInput):
		return m, m.search.Clear()

	case key.Matches(k, m.keys.ArrowUp):
		m.list.MoveSelection(-1)
		return m, nil

	case key.Matches(k, m.keys.ArrowDown):
		m.list.MoveSelection(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(k)
	return m, cmd
}

func (m Model) handleHelpKey(k tea.KeyPressMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(k, m.keys.Help), key.Matches(k, m.keys.Escape), key.Matches(k, m.keys.Quit):
		m.state = StateBrowsing
	}
	return m, nil
}

// -- Handlers -----------------------------------------------------------------

func (m Model) handleConfig(r msg.ConfigReloaded) (Model, tea.Cmd) {
	if r.Err != nil {
		m.logger.Warn("config reload rejected", zap.Error(r.Err))
		return m, m.toast("config not applied: "+firstLine(r.Err.Error()), toast.Warning)
	}
	cfg := r.Config
	prev := m.cfg
	m.cfg = cfg

	if cfg.Theme != "" && cfg.Theme != style.CurrentThemeName {
		m.setTheme(cfg.Theme)
	}
	m.list.SetItemSize(cfg.List.ItemSize)
	m.list.SetOverscan(cfg.List.Overscan)
	m.list.SetMeasured(cfg.List.Measure)
	m.search.SetDelay(cfg.DeferDelay())

	m.logger.Info("config reloaded",
		zap.Float64("item_size", cfg.List.ItemSize),
		zap.Int("overscan", cfg.List.Overscan),
		zap.Bool("measure", cfg.List.Measure),
		zap.Duration("defer_delay", cfg.DeferDelay()),
	)

	cmds := []tea.Cmd{m.toast("config reloaded", toast.Info)}
	if cfg.Items != prev.Items {
		m.seed = cfg.Items.Seed
		m.loading = cfg.Items.Repo != ""
		m.loadGen++
		cmds = append(cmds, load(cfg.Items, m.loadGen))
	}
	return m, tea.Batch(cmds...)
}

// handleItems swaps the dataset. A query still settling refers to the old
// data, so it is discarded and the list is filtered once by the current input.
// Results of a load that was superseded by a newer one are dropped.
func (m Model) handleItems(g msg.ItemsGenerated) (Model, tea.Cmd) {
	if g.Gen != m.loadGen {
		m.logger.Debug("dropping stale dataset",
			zap.Uint64("gen", g.Gen),
			zap.Uint64("current", m.loadGen),
			zap.Int("items", len(g.Items)),
		)
		return m, nil
	}
	m.loading = false
	if g.Err != nil {
		m.logger.Warn("dataset not loaded", zap.String("repo", g.Repo), zap.Error(g.Err))
		return m, m.toast("load failed: "+firstLine(g.Err.Error()), toast.Error)
	}
	m.all = g.Items
	m.seed = g.Seed
	m.repo = g.Repo
	if m.search.IsPending() {
		m.logger.Debug("discarding in-flight query", zap.String("input", m.search.Input()))
	}
	m.search.Discard()
	m.applyFilter()
	m.list.GotoTop()
	if m.restore != nil {
		m.restorePosition(*m.restore)
		m.restore = nil
	}
	if g.Repo != "" {
		return m, m.toast(fmt.Sprintf("loaded %d commits from %s", len(g.Items), filepath.Base(g.Repo)), toast.Info)
	}
	return m, m.toast(fmt.Sprintf("generated %d items (seed %d)", len(g.Items), g.Seed), toast.Info)
}

// applyFilter runs the derived computation for the settled query.
func (m *Model) applyFilter() {
	q := m.search.Query()
	start := time.Now()
	filtered := item.Filter(m.all, q)
	m.list.SetItems(filtered)
	if q != m.query {
		m.list.GotoTop()
		m.query = q
	}
	m.search.SetCounts(len(filtered), len(m.all))
	m.logger.Debug("filter applied",
		zap.String("query", q),
		zap.Int("matches", len(filtered)),
		zap.Int("total", len(m.all)),
		zap.Duration("took", time.Since(start)),
	)
}

// -- Helpers ------------------------------------------------------------------

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.layout = ComputeLayout(w, h, m.toasts.Len())
	m.list.SetSize(m.layout.ListWidth, m.layout.ListHeight)
	m.search.SetWidth(w)
	m.status.SetWidth(w)
	m.help.SetWidth(m.layout.HelpWidth)
}

func (m *Model) setTheme(name string) {
	if !style.SetTheme(name) {
		return
	}
	m.help.Refresh()
	m.list.Invalidate()
}

func (m *Model) toast(text string, level toast.Level) tea.Cmd {
	cmd := m.toasts.Add(text, level)
	m.resize(m.width, m.height)
	return cmd
}

func (m *Model) syncStatus() {
	m.status.SetMode(m.state.String())
	m.status.SetWindow(m.list.VisibleRange(), m.list.Viewport().ScrollOffset)
	m.status.SetCounts(m.list.Len(), len(m.all))
	m.status.SetRenders(m.list.Renders(), m.list.Faults())
	m.status.SetPending(m.search.IsPending())
	m.status.SetMeasured(m.list.Measured())
}

// reportFaults raises one toast per batch of new render faults.
func (m *Model) reportFaults() tea.Cmd {
	n := m.list.Faults()
	if n <= m.faults {
		return nil
	}
	fresh := n - m.faults
	m.faults = n
	return m.toast(fmt.Sprintf("%d row(s) failed to render; see log", fresh), toast.Error)
}

// load builds the dataset described by ic off the event loop. The result is
// stamped with gen.
func load(ic config.ItemsConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if ic.Repo == "" {
			return msg.ItemsGenerated{Items: item.Generate(ic.Count, ic.Seed), Seed: ic.Seed, Gen: gen}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		items, err := gitlog.Load(ctx, ic.Repo, ic.Count)
		return msg.ItemsGenerated{Items: items, Seed: ic.Seed, Repo: ic.Repo, Gen: gen, Err: err}
	}
}

func nextTheme(current string) string {
	for i, name := range style.ThemeNames {
		if name == current {
			return style.ThemeNames[(i+1)%len(style.ThemeNames)]
		}
	}
	return style.ThemeNames[0]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// -- View ---------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderView())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// renderView composes the full terminal frame as a string.
func (m Model) renderView() string {
	sections := []string{m.renderHeader(), m.search.View()}

	if m.state == StateHelp {
		sections = append(sections, lipgloss.Place(
			m.layout.ListWidth, m.layout.ListHeight,
			lipgloss.Center, lipgloss.Center,
			m.help.View(),
		))
	} else {
		sections = append(sections, m.list.View())
	}

	sections = append(sections, m.status.View())
	if m.toasts.Len() > 0 {
		sections = append(sections, m.toasts.View(m.width))
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := style.HeaderTitle.Render("vscroll")
	var source string
	switch {
	case m.loading:
		source = "loading…"
	case m.repo != "":
		source = fmt.Sprintf("%d commits · %s", len(m.all), filepath.Base(m.repo))
	default:
		source = fmt.Sprintf("%d items · seed %d", len(m.all), m.seed)
	}
	parts := []string{source, style.CurrentThemeName + " theme"}
	if m.sampled {
		parts = append(parts, m.stats.String())
	}
	meta := style.HeaderMeta.Render("  " + strings.Join(parts, " · "))
	line := lipgloss.NewStyle().MaxWidth(max(1, m.width)).Render(title + meta)
	sep := style.HeaderSeparator.Render(strings.Repeat("─", max(0, m.width)))
	return line + "\n" + sep
}
