package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the application
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return m.status.View()
	}

	var sb strings.Builder

	sb.WriteString(m.renderTitleBar())
	sb.WriteString("\n")

	if m.showHelp {
		sb.WriteString(m.renderHelpPanel())
	} else {
		sb.WriteString(m.mapv.Render())
	}
	sb.WriteString("\n")

	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m *Model) renderTitleBar() string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright).Bold(true)
	textDim := lipgloss.NewStyle().Foreground(m.theme.TextDim)

	left := titleStyle.Render("borderview") + textDim.Render(" ▸ "+m.loader.Session().Describe())
	right := m.status.View()

	return joinEnds(left, right, m.width)
}

func (m *Model) renderStatusBar() string {
	borderDim := lipgloss.NewStyle().Foreground(m.theme.BorderDim)
	primaryBright := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright)
	secondary := lipgloss.NewStyle().Foreground(m.theme.Secondary)
	selected := lipgloss.NewStyle().Foreground(m.theme.Selected).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(m.theme.Info).Bold(true)
	textDim := lipgloss.NewStyle().Foreground(m.theme.TextDim)
	sep := borderDim.Render(" │ ")

	var parts []string

	if m.config.Display.ShowCoordinates && m.hasPointer {
		p := m.mapv.LatLngAt(m.mouseCol, m.mouseRow)
		parts = append(parts, secondary.Render(fmt.Sprintf("%8.4f, %9.4f", p.Lat(), p.Lon())))
	}

	parts = append(parts, primaryBright.Render(fmt.Sprintf("z%d", m.mapv.Zoom())))
	parts = append(parts, textDim.Render(m.mapv.ActiveBaseLayer().Name))

	if b := m.loader.Binder(); b != nil && b.Hovered() != nil {
		parts = append(parts, selected.Render(b.Hovered().Label()))
	}

	if n := m.Notification(); n != "" {
		parts = append(parts, infoStyle.Render(n))
	}

	left := " " + strings.Join(parts, sep)
	right := textDim.Render("? help  q quit ")

	return joinEnds(left, right, m.width)
}

func (m *Model) renderHelpPanel() string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright).Bold(true)
	textDim := lipgloss.NewStyle().Foreground(m.theme.TextDim)

	m.help.Styles.FullKey = lipgloss.NewStyle().Foreground(m.theme.PrimaryBright)
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(m.theme.Text)
	m.help.Styles.FullSeparator = lipgloss.NewStyle().Foreground(m.theme.BorderDim)

	body := titleStyle.Render("BORDERVIEW HELP") + "\n\n" +
		m.help.View(m.keys) + "\n\n" +
		textDim.Render("Hover a boundary to highlight it, click it to zoom in.") + "\n" +
		textDim.Render("Press any key to close")

	panel := m.theme.PanelStyle().Padding(1, 2).Render(body)
	return lipgloss.Place(m.width, max(0, m.height-chromeRows), lipgloss.Center, lipgloss.Center, panel)
}

// joinEnds lays out left and right on one line of the given width
func joinEnds(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
