package app

import (
	"charm.land/bubbles/v2/key"

	"github.com/miosa/vscroll/ui/help"
)

// KeyMap defines all global keybindings.
type KeyMap struct {
	// Global
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding

	// Navigation
	Up           key.Binding // k
	Down         key.Binding // j
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding // u
	HalfPageDown key.Binding // d
	Top          key.Binding
	Bottom       key.Binding

	// Search
	Search     key.Binding
	Submit     key.Binding
	ArrowUp    key.Binding // cursor keys stay live while typing
	ArrowDown  key.Binding
	ForceQuit  key.Binding
	ClearInput key.Binding

	// Data & display
	Regenerate    key.Binding
	ToggleMeasure key.Binding
	CycleTheme    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter / close"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next item"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup/b", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", "space"),
			key.WithHelp("pgdn/f", "page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "half page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first item"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last item"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "keep filter, back to list"),
		),
		ArrowUp: key.NewBinding(
			key.WithKeys("up"),
		),
		ArrowDown: key.NewBinding(
			key.WithKeys("down"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		ClearInput: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear search"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate dataset"),
		),
		ToggleMeasure: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle measured rows"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next theme"),
		),
	}
}

// HelpSections groups the bindings for the help overlay.
func (k KeyMap) HelpSections() []help.Section {
	return []help.Section{
		{Title: "Navigation", Bindings: []key.Binding{
			k.Up, k.Down, k.PageUp, k.PageDown, k.HalfPageUp, k.HalfPageDown, k.Top, k.Bottom,
		}},
		{Title: "Search", Bindings: []key.Binding{k.Search, k.Submit, k.ClearInput, k.Escape}},
		{Title: "Display", Bindings: []key.Binding{k.Regenerate, k.ToggleMeasure, k.CycleTheme, k.Help, k.Quit}},
	}
}
