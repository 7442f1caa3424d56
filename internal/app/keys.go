package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Fit        key.Binding
	BaseLayer  key.Binding
	Overlay    key.Binding
	Layers     key.Binding
	Theme      key.Binding
	Screenshot key.Binding
	Image      key.Binding
	Export     key.Binding
	Help       key.Binding
	Close      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan north")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan south")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan west")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan east")),
		Fit:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit boundaries")),
		BaseLayer:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "base layer")),
		Overlay:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle overlay")),
		Layers:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "layer control")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
		Screenshot: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "screenshot (HTML)")),
		Image:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "screenshot (PNG)")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export GeoJSON")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close popup")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Layers, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Up, k.Down, k.Left, k.Right, k.Fit},
		{k.BaseLayer, k.Overlay, k.Layers, k.Theme},
		{k.Screenshot, k.Image, k.Export, k.Close, k.Help, k.Quit},
	}
}
