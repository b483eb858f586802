package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/yildizm/LogPanel/internal/logs"
)

// KeyMap holds the panel key bindings
type KeyMap struct {
	CycleDedup key.Binding
	Strategy   []key.Binding
	Labels     key.Binding
	Time       key.Binding
	ToggleErr  key.Binding
	ToggleWarn key.Binding
	ToggleInfo key.Binding
	ToggleDbg  key.Binding
	Scan       key.Binding
	Context    key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// strategyKeys maps the number keys to strategies, in order
var strategyKeys = []logs.DedupStrategy{logs.DedupNone, logs.DedupExact, logs.DedupNumbers, logs.DedupSignature}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		CycleDedup: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cycle dedup")),
		Labels:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "labels")),
		Time:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time")),
		ToggleErr:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "errors")),
		ToggleWarn: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warnings")),
		ToggleInfo: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		ToggleDbg:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Scan:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
		Context:    key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "context")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i, s := range strategyKeys {
		n := string(rune('1' + i))
		km.Strategy = append(km.Strategy, key.NewBinding(key.WithKeys(n), key.WithHelp(n, string(s))))
	}
	return km
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CycleDedup, k.Labels, k.Time, k.Scan, k.Context, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		append([]key.Binding{k.CycleDedup}, k.Strategy...),
		{k.ToggleErr, k.ToggleWarn, k.ToggleInfo, k.ToggleDbg},
		{k.Labels, k.Time, k.Scan, k.Context},
		{k.Back, k.Help, k.Quit},
	}
}
