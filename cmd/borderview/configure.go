package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/copystructure"
	"github.com/r3labs/diff/v3"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive configuration wizard",
	Long: `Launch an interactive wizard to configure borderview settings.

The wizard guides you through configuring:
  - Dataset (GeoJSON location and name property)
  - Target (country and display mode)
  - Map (click zoom and zoom control)
  - Display (theme, layer control, coordinates)

Settings are saved to ~/.config/borderview/settings.json

Examples:
  borderview configure`,
	RunE: runConfigure,
}

// Wizard sections
const (
	sectionWelcome = iota
	sectionDataset
	sectionTarget
	sectionMap
	sectionDisplay
	sectionSummary
)

// Field types
const (
	fieldText = iota
	fieldNumber
	fieldBool
	fieldSelect
)

type wizardField struct {
	name        string
	label       string
	help        string
	fieldType   int
	options     []string
	optionKeys  []string
	textInput   textinput.Model
	boolValue   bool
	selectIndex int
}

// editable reports whether the field takes typed input
func (f wizardField) editable() bool {
	return f.fieldType == fieldText || f.fieldType == fieldNumber
}

// display returns the field value as shown in the summary
func (f wizardField) display() string {
	switch f.fieldType {
	case fieldBool:
		if f.boolValue {
			return "ON"
		}
		return "OFF"
	case fieldSelect:
		return f.optionKeys[f.selectIndex]
	}
	return f.textInput.Value()
}

type wizardModel struct {
	cfg          *config.Config
	section      int
	fieldIndex   int
	fields       [][]wizardField
	sectionNames []string
	width        int
	height       int
	quitting     bool
	saved        bool
	err          error
	save         func(*config.Config) error

	titleStyle    lipgloss.Style
	sectionStyle  lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	dimStyle      lipgloss.Style
	successStyle  lipgloss.Style
	errorStyle    lipgloss.Style
}

func newWizardModel(cfg *config.Config) wizardModel {
	t := theme.Get(cfg.Display.Theme)
	m := wizardModel{
		cfg:     cfg,
		section: sectionWelcome,
		sectionNames: []string{
			"Welcome",
			"Dataset",
			"Target",
			"Map",
			"Display",
			"Summary",
		},
		width:  80,
		height: 24,
		save:   config.Save,
	}

	m.titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.PrimaryBright).MarginBottom(1)
	m.sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
	m.labelStyle = lipgloss.NewStyle().Foreground(t.Text)
	m.valueStyle = lipgloss.NewStyle().Foreground(t.Primary)
	m.helpStyle = lipgloss.NewStyle().Foreground(t.TextDim).Italic(true)
	m.selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Selected)
	m.dimStyle = lipgloss.NewStyle().Foreground(t.TextDim)
	m.successStyle = lipgloss.NewStyle().Foreground(t.Success)
	m.errorStyle = lipgloss.NewStyle().Foreground(t.Error)

	m.fields = make([][]wizardField, sectionSummary+1)

	m.fields[sectionDataset] = []wizardField{
		m.createTextField("dataset_url", "Dataset", "GeoJSON URL or local file path", cfg.Dataset.URL),
		m.createTextField("name_property", "Name Property", "Feature property holding the country name", cfg.Dataset.NameProperty),
	}

	modeKeys := []string{string(boundary.ModeSingle), string(boundary.ModeHighlight), string(boundary.ModeAll)}
	modeOptions := []string{
		"single - only the target country",
		"highlight - every country, target emphasised",
		"all - every country, one style",
	}
	m.fields[sectionTarget] = []wizardField{
		m.createTextField("country", "Country", "Name as it appears in the dataset", cfg.Target.Country),
		m.createSelectField("mode", "Mode", "Which countries are drawn", modeOptions, modeKeys, indexOf(modeKeys, cfg.Target.Mode)),
	}

	zoomKeys := []string{string(layer.ZoomIncrement), string(layer.ZoomFixed)}
	zoomOptions := []string{"increment - one level per click", "fixed - fly to a set level"}
	m.fields[sectionMap] = []wizardField{
		m.createSelectField("click_zoom_mode", "Click Zoom", "Zoom applied when a country is clicked", zoomOptions, zoomKeys, indexOf(zoomKeys, string(cfg.Map.ClickZoom.Mode))),
		m.createNumberField("click_zoom_level", "Fixed Zoom Level", fmt.Sprintf("Used in fixed mode (%d-%d)", cfg.Map.MinZoom, cfg.Map.MaxZoom), cfg.Map.ClickZoom.Level),
		m.createBoolField("show_zoom_control", "Zoom Control", "Show the [+] [-] buttons", cfg.Map.ShowZoomControl),
	}

	themeOptions := []string{}
	themeKeys := []string{}
	for _, info := range theme.GetInfo() {
		themeOptions = append(themeOptions, fmt.Sprintf("%s - %s", info.Name, info.Description))
		themeKeys = append(themeKeys, info.Key)
	}
	m.fields[sectionDisplay] = []wizardField{
		m.createSelectField("theme", "Color Theme", "Colors of the map chrome", themeOptions, themeKeys, indexOf(themeKeys, cfg.Display.Theme)),
		m.createBoolField("show_layer_control", "Layer Control", "Keep the layer control expanded after loading", cfg.Display.ShowLayerControl),
		m.createBoolField("show_coordinates", "Coordinates", "Show pointer latitude and longitude", cfg.Display.ShowCoordinates),
	}

	return m
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return 0
}

func (m wizardModel) createTextField(name, label, help, value string) wizardField {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 512
	ti.Width = 50
	return wizardField{name: name, label: label, help: help, fieldType: fieldText, textInput: ti}
}

func (m wizardModel) createNumberField(name, label, help string, value int) wizardField {
	ti := textinput.New()
	ti.SetValue(strconv.Itoa(value))
	ti.CharLimit = 4
	ti.Width = 10
	return wizardField{name: name, label: label, help: help, fieldType: fieldNumber, textInput: ti}
}

func (m wizardModel) createBoolField(name, label, help string, value bool) wizardField {
	return wizardField{name: name, label: label, help: help, fieldType: fieldBool, boolValue: value}
}

func (m wizardModel) createSelectField(name, label, help string, options, keys []string, selected int) wizardField {
	return wizardField{
		name:        name,
		label:       label,
		help:        help,
		fieldType:   fieldSelect,
		options:     options,
		optionKeys:  keys,
		selectIndex: selected,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// inFields reports whether the current section has editable fields
func (m wizardModel) inFields() bool {
	return m.section > sectionWelcome && m.section < sectionSummary && len(m.fields[m.section]) > 0
}

func (m *wizardModel) focusCurrent() {
	if !m.inFields() {
		return
	}
	if f := &m.fields[m.section][m.fieldIndex]; f.editable() {
		f.textInput.Focus()
	}
}

func (m *wizardModel) blurCurrent() {
	if m.inFields() && m.fieldIndex < len(m.fields[m.section]) {
		m.fields[m.section][m.fieldIndex].textInput.Blur()
	}
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.section == sectionWelcome || m.section == sectionSummary {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.section > sectionWelcome {
				m.blurCurrent()
				m.section--
				m.fieldIndex = 0
				m.focusCurrent()
			}
			return m, nil
		case "enter":
			return m.handleEnter()
		case "tab", "down":
			return m.handleNext()
		case "shift+tab", "up":
			return m.handlePrev()
		case "left", "right", " ":
			if m.inFields() {
				f := &m.fields[m.section][m.fieldIndex]
				switch {
				case f.fieldType == fieldBool:
					f.boolValue = !f.boolValue
					return m, nil
				case f.fieldType == fieldSelect && msg.String() == "left" && f.selectIndex > 0:
					f.selectIndex--
					return m, nil
				case f.fieldType == fieldSelect && msg.String() == "right" && f.selectIndex < len(f.options)-1:
					f.selectIndex++
					return m, nil
				case !f.editable():
					return m, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	if m.inFields() {
		f := &m.fields[m.section][m.fieldIndex]
		if f.editable() {
			var cmd tea.Cmd
			f.textInput, cmd = f.textInput.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m wizardModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.section == sectionSummary {
		m.applyFields()
		if err := m.save(m.cfg); err != nil {
			m.err = err
		} else {
			m.saved = true
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m.handleNext()
}

func (m wizardModel) handleNext() (tea.Model, tea.Cmd) {
	switch m.section {
	case sectionWelcome:
		m.section = sectionDataset
		m.fieldIndex = 0
		m.focusCurrent()
		return m, nil
	case sectionSummary:
		return m, nil
	}

	m.blurCurrent()
	m.fieldIndex++
	if m.fieldIndex >= len(m.fields[m.section]) {
		m.section++
		m.fieldIndex = 0
	}
	m.focusCurrent()
	return m, nil
}

func (m wizardModel) handlePrev() (tea.Model, tea.Cmd) {
	if m.section == sectionWelcome {
		return m, nil
	}

	m.blurCurrent()
	m.fieldIndex--
	if m.fieldIndex < 0 {
		if m.section > sectionDataset {
			m.section--
			m.fieldIndex = len(m.fields[m.section]) - 1
		} else {
			m.fieldIndex = 0
		}
	}
	m.focusCurrent()
	return m, nil
}

func (m *wizardModel) applyFields() {
	for _, f := range m.fields[sectionDataset] {
		switch f.name {
		case "dataset_url":
			m.cfg.Dataset.URL = strings.TrimSpace(f.textInput.Value())
		case "name_property":
			m.cfg.Dataset.NameProperty = strings.TrimSpace(f.textInput.Value())
		}
	}

	for _, f := range m.fields[sectionTarget] {
		switch f.name {
		case "country":
			m.cfg.Target.Country = strings.TrimSpace(f.textInput.Value())
		case "mode":
			m.cfg.Target.Mode = f.optionKeys[f.selectIndex]
		}
	}

	for _, f := range m.fields[sectionMap] {
		switch f.name {
		case "click_zoom_mode":
			m.cfg.Map.ClickZoom.Mode = layer.ZoomMode(f.optionKeys[f.selectIndex])
		case "click_zoom_level":
			if v, err := strconv.Atoi(f.textInput.Value()); err == nil {
				m.cfg.Map.ClickZoom.Level = v
			}
		case "show_zoom_control":
			m.cfg.Map.ShowZoomControl = f.boolValue
		}
	}

	for _, f := range m.fields[sectionDisplay] {
		switch f.name {
		case "theme":
			m.cfg.Display.Theme = f.optionKeys[f.selectIndex]
		case "show_layer_control":
			m.cfg.Display.ShowLayerControl = f.boolValue
		case "show_coordinates":
			m.cfg.Display.ShowCoordinates = f.boolValue
		}
	}
}

func (m wizardModel) View() string {
	if m.quitting {
		if m.err != nil {
			return m.errorStyle.Render(fmt.Sprintf("\n  Error saving configuration: %v\n\n", m.err))
		}
		if m.saved {
			return m.successStyle.Render("\n  Configuration saved to ~/.config/borderview/settings.json\n\n")
		}
		return "\n  Configuration wizard cancelled.\n\n"
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.titleStyle.Render("  BORDERVIEW CONFIGURATION WIZARD"))
	b.WriteString("\n\n")

	b.WriteString("  ")
	for i, name := range m.sectionNames {
		switch {
		case i == m.section:
			b.WriteString(m.selectedStyle.Render(fmt.Sprintf("[%s]", name)))
		case i < m.section:
			b.WriteString(m.successStyle.Render(fmt.Sprintf("[%s]", name)))
		default:
			b.WriteString(m.dimStyle.Render(fmt.Sprintf("[%s]", name)))
		}
		if i < len(m.sectionNames)-1 {
			b.WriteString(m.dimStyle.Render(" > "))
		}
	}
	b.WriteString("\n\n")

	switch m.section {
	case sectionWelcome:
		b.WriteString(m.renderWelcome())
	case sectionSummary:
		b.WriteString(m.renderSummary())
	default:
		b.WriteString(m.renderFields())
	}

	b.WriteString("\n")
	switch m.section {
	case sectionWelcome:
		b.WriteString(m.helpStyle.Render("  Press Enter to start, q to quit"))
	case sectionSummary:
		b.WriteString(m.helpStyle.Render("  Press Enter to save, Esc to go back, q to quit without saving"))
	default:
		b.WriteString(m.helpStyle.Render("  Tab/Down: next  Shift+Tab/Up: previous  Space: toggle  Esc: back"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m wizardModel) renderWelcome() string {
	welcome := `  Welcome to the borderview Configuration Wizard!

  This wizard will help you configure:

    1. Dataset  - Where the country boundaries come from
    2. Target   - Which country to show and how
    3. Map      - Click zoom and the zoom control
    4. Display  - Theme and map chrome

  Your settings will be saved to:
    ~/.config/borderview/settings.json

  Command-line flags and BORDERVIEW_* variables override
  individual settings.`

	return m.labelStyle.Render(welcome) + "\n"
}

func (m wizardModel) renderFields() string {
	var b strings.Builder

	b.WriteString(m.sectionStyle.Render(fmt.Sprintf("  %s Settings", m.sectionNames[m.section])))
	b.WriteString("\n\n")

	for i, f := range m.fields[m.section] {
		isSelected := i == m.fieldIndex

		if isSelected {
			b.WriteString(m.selectedStyle.Render(fmt.Sprintf("  > %s: ", f.label)))
		} else {
			b.WriteString(m.labelStyle.Render(fmt.Sprintf("    %s: ", f.label)))
		}

		switch f.fieldType {
		case fieldText, fieldNumber:
			if isSelected {
				b.WriteString(f.textInput.View())
			} else {
				b.WriteString(m.valueStyle.Render(f.textInput.Value()))
			}
		case fieldBool:
			if f.boolValue {
				b.WriteString(m.successStyle.Render("[ON] "))
				b.WriteString(m.dimStyle.Render("OFF"))
			} else {
				b.WriteString(m.dimStyle.Render("ON "))
				b.WriteString(m.errorStyle.Render("[OFF]"))
			}
		case fieldSelect:
			if isSelected {
				b.WriteString(m.dimStyle.Render("< "))
				b.WriteString(m.valueStyle.Render(f.options[f.selectIndex]))
				b.WriteString(m.dimStyle.Render(" >"))
			} else {
				b.WriteString(m.valueStyle.Render(f.options[f.selectIndex]))
			}
		}
		b.WriteString("\n")

		if isSelected && f.help != "" {
			b.WriteString(m.helpStyle.Render(fmt.Sprintf("      %s", f.help)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m wizardModel) renderSummary() string {
	var b strings.Builder

	b.WriteString(m.sectionStyle.Render("  Configuration Summary"))
	b.WriteString("\n\n")

	for section := sectionDataset; section < sectionSummary; section++ {
		b.WriteString(m.labelStyle.Render(fmt.Sprintf("  %s:\n", m.sectionNames[section])))
		for _, f := range m.fields[section] {
			b.WriteString(fmt.Sprintf("    %s: %s\n", m.dimStyle.Render(f.label), m.valueStyle.Render(f.display())))
		}
		if section < sectionSummary-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	copied, err := copystructure.Copy(cfg)
	if err != nil {
		return fmt.Errorf("failed to copy settings: %w", err)
	}
	before := copied.(*config.Config)

	p := tea.NewProgram(newWizardModel(cfg))
	final, err := p.Run()
	if err != nil {
		return err
	}

	wm, ok := final.(wizardModel)
	if !ok || !wm.saved {
		return nil
	}

	changes, err := configChanges(before, wm.cfg)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  No settings changed.")
	}
	for _, c := range changes {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c)
	}

	if err := wm.cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "  Warning: saved settings do not validate: %v\n", err)
	}
	return nil
}

// configChanges describes every setting that differs between before and after
func configChanges(before, after *config.Config) ([]string, error) {
	changelog, err := diff.Diff(before, after)
	if err != nil {
		return nil, fmt.Errorf("failed to compare settings: %w", err)
	}

	lines := make([]string, 0, len(changelog))
	for _, c := range changelog {
		path := strings.Join(c.Path, ".")
		switch c.Type {
		case diff.CREATE:
			lines = append(lines, fmt.Sprintf("%s set to %v", path, c.To))
		case diff.DELETE:
			lines = append(lines, fmt.Sprintf("%s removed (was %v)", path, c.From))
		default:
			lines = append(lines, fmt.Sprintf("%s changed from %v to %v", path, c.From, c.To))
		}
	}
	return lines, nil
}
