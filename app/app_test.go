package app

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/vscroll/config"
	"github.com/miosa/vscroll/deferred"
	"github.com/miosa/vscroll/item"
	"github.com/miosa/vscroll/msg"
	"github.com/miosa/vscroll/procstat"
	"github.com/miosa/vscroll/session"
	"github.com/miosa/vscroll/style"
)

// -- Helpers ------------------------------------------------------------------

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Items.Count = 200
	cfg.Search.DeferDelay = "1ms"
	return cfg
}

// fruit alternates "apple N" and "kiwi N" so a "kiwi" query keeps half.
func fruit(n int) []item.Item {
	items := make([]item.Item, n)
	for i := range items {
		name := "apple"
		if i%2 == 1 {
			name = "kiwi"
		}
		items[i] = item.Item{ID: i, DisplayText: fmt.Sprintf("%s %d", name, i)}
	}
	return items
}

func newModel(t *testing.T, n int) Model {
	t.Helper()
	m := New(Options{Config: testConfig(), Items: fruit(n)})
	return send(m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func send(m Model, v tea.Msg) Model {
	next, _ := m.Update(v)
	return next.(Model)
}

func sendCmd(m Model, v tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(v)
	return next.(Model), cmd
}

func press(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func typeText(m Model, text string) (Model, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = sendCmd(m, press(r))
		cmds = append(cmds, cmd)
	}
	return m, cmds
}

// collect runs cmds and their batched children concurrently and returns the
// messages that arrive within the window. Slower ticks are abandoned.
func collect(t *testing.T, within time.Duration, cmds ...tea.Cmd) []tea.Msg {
	t.Helper()
	out := make(chan tea.Msg, 256)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			v := c()
			if batch, ok := v.(tea.BatchMsg); ok {
				for _, child := range batch {
					run(child)
				}
				return
			}
			out <- v
		}()
	}
	for _, c := range cmds {
		run(c)
	}

	var got []tea.Msg
	deadline := time.After(within)
	for {
		select {
		case v := <-out:
			got = append(got, v)
		case <-deadline:
			return got
		}
	}
}

// settle delivers every SettleMsg produced by cmds, then the SettledMsgs
// those produce, and returns the resulting model.
func settle(t *testing.T, m Model, cmds []tea.Cmd) Model {
	t.Helper()
	var next []tea.Cmd
	for _, v := range collect(t, 60*time.Millisecond, cmds...) {
		if s, ok := v.(deferred.SettleMsg); ok {
			var cmd tea.Cmd
			m, cmd = sendCmd(m, s)
			next = append(next, cmd)
		}
	}
	for _, v := range collect(t, 20*time.Millisecond, next...) {
		if s, ok := v.(deferred.SettledMsg); ok {
			m = send(m, s)
		}
	}
	return m
}

func frame(m Model) string {
	return ansi.Strip(m.renderView())
}

// -- Layout & state -----------------------------------------------------------

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name           string
		w, h, toasts   int
		wantTop, wantH int
		wantHelpWidth  int
	}{
		{"standard", 80, 24, 0, 3, 20, 80},
		{"with toasts", 80, 24, 2, 3, 18, 80},
		{"wide help capped", 200, 50, 0, 3, 46, helpMaxWidth},
		{"tiny terminal", 10, 3, 1, 3, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ComputeLayout(tt.w, tt.h, tt.toasts)
			assert.Equal(t, tt.wantTop, l.ListTop)
			assert.Equal(t, tt.wantH, l.ListHeight)
			assert.Equal(t, tt.w, l.ListWidth)
			assert.Equal(t, tt.wantHelpWidth, l.HelpWidth)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "browsing", StateBrowsing.String())
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "help", StateHelp.String())
	assert.Equal(t, "unknown", State(99).String())
}

// -- Construction -------------------------------------------------------------

func TestNew_GeneratesDataset(t *testing.T) {
	m := New(Options{Config: testConfig()})
	assert.Equal(t, 200, m.List().Len())
	assert.Equal(t, StateBrowsing, m.State())
}

func TestNew_RestoresSession(t *testing.T) {
	m := New(Options{
		Config:  testConfig(),
		Items:   fruit(1000),
		Session: session.State{ScrollOffset: 50, Selected: 60},
	})
	assert.Equal(t, 60, m.List().SelectedIndex())
	assert.Equal(t, 50.0, m.List().Viewport().ScrollOffset)

	s := m.Session()
	assert.Equal(t, 60, s.Selected)
	assert.Equal(t, 50.0, s.ScrollOffset)
	assert.Empty(t, s.Query)
}

func TestNew_RestoresQuery(t *testing.T) {
	m := New(Options{
		Config:  testConfig(),
		Items:   fruit(100),
		Session: session.State{Query: "kiwi"},
	})
	assert.Equal(t, "kiwi", m.Search().Query())
	assert.False(t, m.Search().IsPending())
	assert.Equal(t, 50, m.List().Len())
	assert.Equal(t, "kiwi", m.Session().Query)
}

// -- Browsing -----------------------------------------------------------------

func TestWindowSize_SizesList(t *testing.T) {
	m := newModel(t, 1000)
	rng := m.List().VisibleRange()
	assert.Equal(t, 0, rng.StartIndex)
	assert.Equal(t, 30, rng.EndIndex, "20 rows plus overscan on both sides")
	assert.Len(t, strings.Split(frame(m), "\n"), 24)
}

func TestBrowseKeys(t *testing.T) {
	m := newModel(t, 1000)

	m = send(m, press('j'))
	m = send(m, press('j'))
	assert.Equal(t, 2, m.List().SelectedIndex())
	m = send(m, press('k'))
	assert.Equal(t, 1, m.List().SelectedIndex())

	m = send(m, press('f'))
	assert.Equal(t, 20.0, m.List().Viewport().ScrollOffset)
	assert.Equal(t, 1, m.List().SelectedIndex(), "paging scrolls without moving the cursor")

	m = send(m, press('G'))
	assert.Equal(t, 999, m.List().SelectedIndex())
	assert.True(t, m.List().AtBottom())

	m = send(m, press('g'))
	assert.Equal(t, 0, m.List().SelectedIndex())
	assert.Zero(t, m.List().Viewport().ScrollOffset)
}

func TestMouse(t *testing.T) {
	m := newModel(t, 1000)

	m = send(m, tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	assert.Equal(t, 3.0, m.List().Viewport().ScrollOffset)

	m = send(m, tea.MouseClickMsg{X: 4, Y: 5, Button: tea.MouseLeft})
	assert.Equal(t, 5, m.List().SelectedIndex(), "row 2 of the list at offset 3")
}

func TestQuit(t *testing.T) {
	m := newModel(t, 10)
	_, cmd := sendCmd(m, press('q'))
	require.NotNil(t, cmd)

	var quit bool
	for _, v := range collect(t, 20*time.Millisecond, cmd) {
		if _, ok := v.(tea.QuitMsg); ok {
			quit = true
		}
	}
	assert.True(t, quit)
}

func TestHelpToggle(t *testing.T) {
	m := newModel(t, 10)

	m = send(m, press('?'))
	assert.Equal(t, StateHelp, m.State())
	assert.Contains(t, frame(m), "Navigation")

	m = send(m, press('j'))
	assert.Zero(t, m.List().SelectedIndex(), "keys do not reach the list under help")

	m = send(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, StateBrowsing, m.State())
}

// -- Search -------------------------------------------------------------------

func TestSearch_FiltersAfterSettle(t *testing.T) {
	m := newModel(t, 100)

	m = send(m, press('/'))
	require.Equal(t, StateSearching, m.State())

	m, cmds := typeText(m, "kiwi")
	assert.Equal(t, "kiwi", m.Search().Input())
	assert.True(t, m.Search().IsPending())
	assert.Equal(t, 100, m.List().Len(), "list keeps the stale result until the query settles")

	m = settle(t, m, cmds)
	assert.False(t, m.Search().IsPending())
	assert.Equal(t, "kiwi", m.Search().Query())
	assert.Equal(t, 50, m.List().Len())
	for _, it := range m.List().Items() {
		assert.True(t, strings.HasPrefix(it.DisplayText, "kiwi"), it.DisplayText)
	}
	assert.Contains(t, frame(m), "50 / 100")

	m = send(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, StateBrowsing, m.State())
	assert.Equal(t, 50, m.List().Len(), "submit keeps the filter")
}

func TestSearch_ArrowsMoveSelectionWhileTyping(t *testing.T) {
	m := newModel(t, 100)
	m = send(m, press('/'))
	m = send(m, tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, m.List().SelectedIndex())
	assert.Empty(t, m.Search().Input())
}

func TestSearch_EscapeClears(t *testing.T) {
	m := newModel(t, 100)
	m = send(m, press('/'))
	m, cmds := typeText(m, "kiwi")
	m = settle(t, m, cmds)
	require.Equal(t, 50, m.List().Len())

	m, cmd := sendCmd(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, StateBrowsing, m.State())
	assert.Empty(t, m.Search().Input())

	m = settle(t, m, []tea.Cmd{cmd})
	assert.Equal(t, 100, m.List().Len())
}

func TestRegenerate_DiscardsPendingQuery(t *testing.T) {
	m := newModel(t, 100)
	m = send(m, press('/'))
	m, cmds := typeText(m, "kiwi")
	require.True(t, m.Search().IsPending())

	m = send(m, msg.ItemsGenerated{Items: fruit(40), Seed: 7})
	assert.False(t, m.Search().IsPending())
	assert.Equal(t, "kiwi", m.Search().Query(), "current input applies to the new data")
	assert.Equal(t, 20, m.List().Len())
	assert.Zero(t, m.List().Viewport().ScrollOffset)

	// Settles scheduled before the swap are stale and change nothing.
	before := m.List().Renders()
	m = settle(t, m, cmds)
	assert.Equal(t, 20, m.List().Len())
	assert.Equal(t, before, m.List().Renders())
}

func TestRegenerateKey_UsesNextSeed(t *testing.T) {
	m := newModel(t, 100)
	m, cmd := sendCmd(m, press('r'))

	var gen *msg.ItemsGenerated
	for _, v := range collect(t, 50*time.Millisecond, cmd) {
		if g, ok := v.(msg.ItemsGenerated); ok {
			gen = &g
		}
	}
	require.NotNil(t, gen)
	assert.Equal(t, uint64(43), gen.Seed)
	assert.Len(t, gen.Items, 200)

	m = send(m, *gen)
	assert.Equal(t, 200, m.List().Len())
	assert.Contains(t, frame(m), "seed 43")
}

// -- Config -------------------------------------------------------------------

func TestConfigReload_AppliesSettings(t *testing.T) {
	t.Cleanup(func() { style.SetTheme("dark") })
	m := newModel(t, 100)

	cfg := testConfig()
	cfg.Theme = "light"
	cfg.List.Overscan = 2
	cfg.List.Measure = true
	cfg.Search.DeferDelay = "250ms"

	m, cmd := sendCmd(m, msg.ConfigReloaded{Config: cfg})
	assert.Equal(t, "light", style.CurrentThemeName)
	assert.Equal(t, 2, m.List().Overscan())
	assert.True(t, m.List().Measured())
	assert.Equal(t, 250*time.Millisecond, m.Search().Delay())
	assert.Equal(t, cfg, m.Config())

	for _, v := range collect(t, 20*time.Millisecond, cmd) {
		_, regenerated := v.(msg.ItemsGenerated)
		assert.False(t, regenerated, "unchanged items config must not regenerate")
	}
}

func TestConfigReload_ItemsChangeRegenerates(t *testing.T) {
	m := newModel(t, 100)
	cfg := testConfig()
	cfg.Items = config.ItemsConfig{Count: 30, Seed: 9}

	_, cmd := sendCmd(m, msg.ConfigReloaded{Config: cfg})
	var gen *msg.ItemsGenerated
	for _, v := range collect(t, 50*time.Millisecond, cmd) {
		if g, ok := v.(msg.ItemsGenerated); ok {
			gen = &g
		}
	}
	require.NotNil(t, gen)
	assert.Equal(t, uint64(9), gen.Seed)
	assert.Len(t, gen.Items, 30)
}

// itemsFrom returns the single dataset message produced by cmd.
func itemsFrom(t *testing.T, cmd tea.Cmd) msg.ItemsGenerated {
	t.Helper()
	var gen *msg.ItemsGenerated
	for _, v := range collect(t, 50*time.Millisecond, cmd) {
		if g, ok := v.(msg.ItemsGenerated); ok {
			gen = &g
		}
	}
	require.NotNil(t, gen)
	return *gen
}

func TestConfigReload_OutOfOrderLoadsKeepNewest(t *testing.T) {
	m := newModel(t, 100)

	first := testConfig()
	first.Items = config.ItemsConfig{Count: 20, Seed: 1}
	m, cmd1 := sendCmd(m, msg.ConfigReloaded{Config: first})
	second := testConfig()
	second.Items = config.ItemsConfig{Count: 30, Seed: 2}
	m, cmd2 := sendCmd(m, msg.ConfigReloaded{Config: second})

	older := itemsFrom(t, cmd1)
	newer := itemsFrom(t, cmd2)
	require.Greater(t, newer.Gen, older.Gen)

	m = send(m, newer)
	m = send(m, older)
	assert.Equal(t, 30, m.List().Len())
	assert.Contains(t, frame(m), "seed 2")
	assert.Equal(t, second, m.Config())
}

func TestRegenerate_StaleLoadErrorIgnored(t *testing.T) {
	m := newModel(t, 100)
	m, cmd := sendCmd(m, press('r'))
	current := itemsFrom(t, cmd)

	m = send(m, msg.ItemsGenerated{Err: errors.New("walk log: context deadline exceeded"), Gen: current.Gen - 1})
	assert.NotContains(t, frame(m), "load failed")
	assert.Equal(t, 100, m.List().Len())

	m = send(m, current)
	assert.Equal(t, 200, m.List().Len())
}

func TestConfigReload_ErrorKeepsSettings(t *testing.T) {
	m := newModel(t, 100)
	prev := m.Config()

	m = send(m, msg.ConfigReloaded{Config: config.Default(), Err: errors.New("list.overscan must be >= 0, got -1")})
	assert.Equal(t, prev, m.Config())
	assert.Equal(t, 5, m.List().Overscan())
	assert.Contains(t, frame(m), "config not applied")
}

// -- Data sources -------------------------------------------------------------

func TestRepoSource_LoadsAsyncAndRestoresPosition(t *testing.T) {
	cfg := testConfig()
	cfg.Items.Repo = "/src/vscroll"
	m := New(Options{Config: cfg, Session: session.State{Selected: 30}})
	assert.Zero(t, m.List().Len())
	assert.Contains(t, frame(m), "loading…")

	m = send(m, msg.ItemsGenerated{Items: fruit(60), Repo: "/src/vscroll", Gen: 1})
	assert.Equal(t, 60, m.List().Len())
	assert.Equal(t, 30, m.List().SelectedIndex(), "saved selection applies once items exist")
	assert.Contains(t, frame(m), "60 commits · vscroll")
}

func TestLoadError_KeepsDataset(t *testing.T) {
	m := newModel(t, 100)
	m = send(m, msg.ItemsGenerated{Repo: "/nope", Err: errors.New("open repo /nope: repository does not exist")})
	assert.Equal(t, 100, m.List().Len())
	assert.Contains(t, frame(m), "load failed")
}

func TestProcessStats_ShownInHeader(t *testing.T) {
	m := newModel(t, 10)
	assert.NotContains(t, frame(m), "rss")

	m = send(m, procstat.SampleMsg{Stats: procstat.Stats{RSS: 42 << 20, CPU: 1.5}})
	assert.Contains(t, frame(m), "rss 42.0 MB")
}
