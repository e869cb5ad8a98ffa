package cli

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/preview"
	"github.com/blockprint/blockprint/pkg/render/sink"
	"github.com/blockprint/blockprint/pkg/render/styles"
	"github.com/blockprint/blockprint/pkg/viewport"
)

// headerLines is the space above and below the drawing: title and help.
const headerLines = 2

var (
	tuiHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tuiErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// screen holds the latest terminal rendering. Passes triggered by resizes
// write it from inside Update, so it is shared by pointer between model
// copies.
type screen struct {
	mu      sync.Mutex
	content string
}

func (s *screen) set(content string) {
	s.mu.Lock()
	s.content = content
	s.mu.Unlock()
}

func (s *screen) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// previewModel is the bubbletea host for a viewport adapter. The terminal
// is the surface: window size messages resize the frame, and every pass is
// rasterized into half-block cells.
type previewModel struct {
	title    string
	load     func() (*blueprint.Blueprint, error)
	logger   *log.Logger
	palettes []string
	palette  int
	grid     bool
	label    bool

	bp      *blueprint.Blueprint
	frame   *viewport.Frame
	adapter *viewport.Adapter
	screen  *screen
	err     error
}

type previewConfig struct {
	title   string
	palette string
	grid    bool
	label   bool
	cols    int
	rows    int
}

// newPreviewModel loads the blueprint and draws the first pass at the
// initial terminal size.
func newPreviewModel(cfg previewConfig, load func() (*blueprint.Blueprint, error), logger *log.Logger) (previewModel, error) {
	m := previewModel{
		title:    cfg.title,
		load:     load,
		logger:   logger,
		palettes: styles.Names(),
		grid:     cfg.grid,
		label:    cfg.label,
		screen:   &screen{},
	}
	if cfg.palette != "" {
		p, err := styles.Lookup(cfg.palette)
		if err != nil {
			return m, err
		}
		m.palette = max(0, slices.Index(m.palettes, p.Name))
	} else {
		m.palette = max(0, slices.Index(m.palettes, styles.DefaultName))
	}

	bp, err := load()
	if err != nil {
		return m, err
	}
	m.bp = bp
	m.frame = viewport.NewFrame(cellViewport(cfg.cols, cfg.rows), m.paint)
	if err := m.attach(); err != nil {
		return m, err
	}
	return m, nil
}

// cellViewport converts a terminal size to a surface size, leaving room
// for the header and help lines.
func cellViewport(cols, rows int) viewport.Size {
	w, h := sink.CellSize(cols, max(rows-headerLines, 1))
	return viewport.Size{Width: w, Height: h, Density: 1}
}

func (m previewModel) paint(size viewport.Size, cmds []draw.Command) error {
	cols := int(size.Width * size.Density / sink.DefaultCellWidth)
	rows := int(size.Height * size.Density / sink.DefaultCellHeight)
	m.screen.set(sink.RenderCells(cmds, cols, rows))
	return nil
}

// attach replaces the adapter, which is how render options change.
func (m *previewModel) attach() error {
	if m.adapter != nil {
		m.adapter.Detach()
	}
	palette, err := styles.Lookup(m.palettes[m.palette])
	if err != nil {
		return err
	}
	a, err := viewport.Attach(m.frame, m.frame, m.bp,
		viewport.WithLogger(m.logger),
		viewport.WithRenderOptions(
			preview.WithPalette(palette),
			preview.WithGrid(m.grid),
			preview.WithLabel(m.label),
		),
		viewport.WithErrorHandler(func(err error) {
			m.logger.Warn("preview pass failed", "err", err)
		}),
	)
	if err != nil {
		return err
	}
	m.adapter = a
	return nil
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame.Resize(cellViewport(msg.Width, msg.Height))
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.adapter.Detach()
			return m, tea.Quit
		case "g":
			m.grid = !m.grid
			m.err = m.attach()
		case "l":
			m.label = !m.label
			m.err = m.attach()
		case "p":
			m.palette = (m.palette + 1) % len(m.palettes)
			m.err = m.attach()
		case "r":
			m.err = m.reload()
		}
	}
	return m, nil
}

// reload reads the blueprint again. An unreadable file keeps the previous
// drawing on screen and shows the error.
func (m *previewModel) reload() error {
	bp, err := m.load()
	if err != nil {
		return err
	}
	m.bp = bp
	return m.adapter.SetBlueprint(bp)
}

func (m previewModel) View() string {
	var b strings.Builder

	size := m.frame.Size()
	header := fmt.Sprintf("%s  %s",
		StyleTitle.Render(m.title),
		tuiHelpStyle.Render(fmt.Sprintf("%s · %d blocks wide · ~%d blocks · pass %d",
			m.palettes[m.palette], m.bp.TotalWidth(), m.bp.BlockCount(), m.adapter.Passes())))
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.screen.get())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(tuiErrorStyle.Render(iconError + " " + m.err.Error()))
	} else {
		b.WriteString(tuiHelpStyle.Render(fmt.Sprintf("g grid  l label  p palette  r reload  q quit  %.0fx%.0f",
			size.Width, size.Height)))
	}
	return b.String()
}
