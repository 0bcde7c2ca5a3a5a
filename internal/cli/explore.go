package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/scene"
)

// exploreFrameInterval is the TUI frame cadence. Slower than the server
// loop; a terminal list does not need 30fps.
const exploreFrameInterval = 100 * time.Millisecond

// exploreCommand creates the explore command for interactive terminal
// exploration of an analysis file.
func (c *CLI) exploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [analysis.json]",
		Short: "Explore an analysis file interactively in the terminal",
		Long: `Explore an analysis file interactively in the terminal.

The explore command loads an analyzer payload and drives the same scene
the server exposes: layout modes, filter missions, family restrictions,
and node selection, rendered as a live terminal view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(args[0])
		},
	}
	return cmd
}

// runExplore builds a scene from the analysis file and runs the TUI.
func (c *CLI) runExplore(path string) error {
	g, err := loadAnalysisFile(path)
	if err != nil {
		return err
	}
	sc, err := scene.New(g, scene.Options{
		FrameInterval: exploreFrameInterval,
		Logger:        c.Logger,
	})
	if err != nil {
		return err
	}

	m := newExploreModel(sc, path)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// loadAnalysisFile reads and builds a graph from an analyzer payload.
func loadAnalysisFile(path string) (*model.Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis %s: %w", path, err)
	}
	analysis, err := model.UnmarshalAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return model.Build(analysis), nil
}

// =============================================================================
// exploreModel - bubbletea model driving a local scene
// =============================================================================

// frameTickMsg advances the scene by one frame.
type frameTickMsg time.Time

// exploreModel drives the scene synchronously from the bubbletea event
// loop: every tick calls Step, so the scene needs no goroutine of its own.
type exploreModel struct {
	scene *scene.Scene
	path  string
	frame scene.Frame

	cursor       int
	offset       int
	height       int
	hideExternal bool
	status       string
}

func newExploreModel(sc *scene.Scene, path string) exploreModel {
	return exploreModel{
		scene:  sc,
		path:   path,
		frame:  sc.Step(time.Now()),
		height: 15,
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(exploreFrameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m exploreModel) Init() tea.Cmd {
	return frameTick()
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		m.frame = m.scene.Step(time.Time(msg))
		m.clampCursor()
		return m, frameTick()

	case tea.WindowSizeMsg:
		m.height = msg.Height - 9
		if m.height < 5 {
			m.height = 5
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}

	case "down", "j":
		if m.cursor < len(m.visibleNodes())-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "enter":
		if nodes := m.visibleNodes(); m.cursor < len(nodes) {
			m.dispatch(scene.SelectNode{ID: nodes[m.cursor].ID})
		}

	case "esc":
		m.dispatch(scene.ClearSelection{})

	case "tab":
		next := layout.ModeFormation
		if m.frame.Mode == layout.ModeFormation {
			next = layout.ModeOrganic
		}
		m.dispatch(scene.SetMode{Mode: next})

	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		if idx < len(filter.Missions) {
			m.dispatch(scene.SetMission{Mission: filter.Missions[idx]})
		}

	case "0":
		m.dispatch(scene.SetMission{Mission: filter.MissionNone})

	case "e":
		m.hideExternal = !m.hideExternal
		m.dispatch(scene.SetHideExternal{Hide: m.hideExternal})

	case "c":
		next := encode.ColorByCategory
		if m.frame.ColorMode == encode.ColorByCategory {
			next = encode.ColorByFamily
		}
		m.dispatch(scene.SetColorMode{Mode: next})

	case "r":
		m.dispatch(scene.ResetView{})

	case "o":
		m.dispatch(scene.RestoreHorizon{})

	case "R":
		g, err := loadAnalysisFile(m.path)
		if err != nil {
			m.status = err.Error()
			break
		}
		m.dispatch(scene.ReplaceGraph{Graph: g})
		m.cursor, m.offset = 0, 0
		m.status = "reloaded " + m.path
	}
	return m, nil
}

// dispatch queues an action, surfacing a full queue in the status line.
func (m *exploreModel) dispatch(a scene.Action) {
	if err := m.scene.Dispatch(a); err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
}

// visibleNodes returns the frame's non-dimmed nodes sorted by id.
func (m exploreModel) visibleNodes() []scene.NodeFrame {
	nodes := make([]scene.NodeFrame, 0, m.frame.Visible)
	for _, n := range m.frame.Nodes {
		if n.Visual.Opacity > 0.5 {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (m *exploreModel) clampCursor() {
	if n := len(m.visibleNodes()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("depspace · " + m.path))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(familyLegend(m.frame.Stats.ByFamily))
	b.WriteString("\n\n")

	nodes := m.visibleNodes()
	end := m.offset + m.height
	if end > len(nodes) {
		end = len(nodes)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.nodeLine(nodes[i], i == m.cursor))
		b.WriteString("\n")
	}
	if len(nodes) == 0 {
		b.WriteString(StyleDim.Render("  (nothing visible)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ select  esc clear  tab mode  1-5 mission  0 none  e external  c colors  r reset  o horizon  R reload  q quit"))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.status))
	}
	return b.String()
}

// statusLine summarizes the frame: mode, mission, visibility, stats.
func (m exploreModel) statusLine() string {
	parts := []string{
		"mode " + StyleHighlight.Render(m.frame.Mode.String()),
	}
	if m.frame.Progress < 1 {
		parts = append(parts, fmt.Sprintf("transition %2.0f%%", m.frame.Progress*100))
	}
	if mission := m.frame.State.Mission; mission != filter.MissionNone {
		parts = append(parts, "mission "+StyleHighlight.Render(string(mission)))
	}
	if sel := m.frame.State.SelectedNode; sel != "" {
		parts = append(parts, "focus "+StyleHighlight.Render(sel))
	}
	parts = append(parts, fmt.Sprintf("%d/%d visible", m.frame.Visible, m.frame.Stats.Nodes))
	if m.frame.Fallback {
		parts = append(parts, StyleWarning.Render("fallback"))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// familyLegend renders the family counts in the scene palette's colors,
// in formation order.
func familyLegend(byFamily map[string]int) string {
	var parts []string
	for _, f := range model.Families {
		count, ok := byFamily[f.String()]
		if !ok || count == 0 {
			continue
		}
		parts = append(parts, familyStyle(f).Render(fmt.Sprintf("%s %d", f, count)))
	}
	return StyleDim.Render("  ") + strings.Join(parts, StyleDim.Render("  "))
}

// nodeLine renders one node row with its scene color.
func (m exploreModel) nodeLine(n scene.NodeFrame, current bool) string {
	cursor := "  "
	if current {
		cursor = "▸ "
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Visual.Color)).Render("●")
	pos := StyleDim.Render(fmt.Sprintf("(%6.1f %6.1f %6.1f)", n.Pos.X, n.Pos.Y, n.Pos.Z))

	id := n.ID
	if current {
		id = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render(id)
	} else {
		id = StyleValue.Render(id)
	}
	return fmt.Sprintf("%s%s %-40s %s", cursor, dot, id, pos)
}
