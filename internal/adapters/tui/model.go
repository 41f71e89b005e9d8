// Package tui renders one local game in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/internal/domain/scoring"
	"github.com/okian/concentration/internal/domain/types"
)

const volumeStep = 0.1

var resultText = map[scoring.Result]string{ //nolint:gochecknoglobals // lookup table
	scoring.Player1Wins: "Player 1 wins!",
	scoring.Player2Wins: "Player 2 wins!",
	scoring.Tie:         "It's a tie!",
}

// Model is the bubbletea model for one game.
type Model struct {
	game   *game.Game
	feed   *Feed
	board  types.Board
	keys   KeyMap
	help   help.Model
	cursor int
	cols   int
	status string
	width  int
	height int
}

// New returns a model over g. feed must be the notifier g was built with.
func New(g *game.Game, feed *Feed) Model {
	b := g.Snapshot()
	return Model{
		game:  g,
		feed:  feed,
		board: b,
		keys:  DefaultKeys,
		help:  help.New(),
		cols:  columns(len(b.Cards)),
	}
}

// columns lays n cards out as close to a square as possible.
func columns(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.feed.Wait()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case notificationMsg:
		m.board = m.game.Snapshot()
		if msg.Cue != model.CueNone {
			m.status = cueText(model.Notification(msg))
		}
		return m, m.feed.Wait()
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.board.Cards)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.cursor%m.cols > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Right):
		if m.cursor%m.cols < m.cols-1 && m.cursor+1 < n {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor-m.cols >= 0 {
			m.cursor -= m.cols
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor+m.cols < n {
			m.cursor += m.cols
		}

	case key.Matches(msg, m.keys.Reveal):
		res := m.game.Reveal(context.Background(), m.cursor)
		if !res.Accepted {
			m.status = "ignored: " + strings.ReplaceAll(string(res.Reason), "_", " ")
		} else {
			m.status = ""
		}
		m.board = m.game.Snapshot()

	case key.Matches(msg, m.keys.NewGame):
		m.game.Reset(context.Background())
		m.board = m.game.Snapshot()
		m.cursor = 0
		m.status = "new game"

	case key.Matches(msg, m.keys.VolumeUp):
		m.setVolume(m.board.Volume + volumeStep)

	case key.Matches(msg, m.keys.VolumeDown):
		m.setVolume(m.board.Volume - volumeStep)
	}
	return m, nil
}

func (m *Model) setVolume(v float64) {
	v = math.Round(min(max(v, 0), 1)*100) / 100
	m.game.SetVolume(v)
	m.board = m.game.Snapshot()
}

func cueText(n model.Notification) string {
	switch n.Cue {
	case model.CueFlip:
		return "♪ flip"
	case model.CueMatch:
		return "♪ match!"
	case model.CueMismatch:
		return fmt.Sprintf("♪ no match (%d)", n.CueVariant+1)
	case model.CueGameOver:
		return "♪ game over"
	default:
		return ""
	}
}

// Board returns the snapshot the model last rendered.
func (m Model) Board() types.Board { return m.board }

// Cursor returns the selected card id.
func (m Model) Cursor() int { return m.cursor }

// Status returns the current status line.
func (m Model) Status() string { return m.status }

// View implements tea.Model.
func (m Model) View() string {
	parts := []string{
		titleStyle.Render("Concentration"),
		m.renderScores(),
		m.renderBoard(),
	}
	if r := m.board.Result; r != nil {
		parts = append(parts, resultStyle.Render("Game over! "+resultText[*r]))
	}
	parts = append(parts,
		fmt.Sprintf("volume %s %3.0f%%", volumeBar(m.board.Volume), m.board.Volume*100),
		statusStyle.Render(m.status),
		m.help.View(m.keys),
	)
	view := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.width == 0 || m.height == 0 {
		return view
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
}

func (m Model) renderScores() string {
	seat := func(p scoring.Player) string {
		s := fmt.Sprintf("Player %d: %d", int(p)+1, m.board.Scores[p])
		if p == m.board.CurrentPlayer && m.board.Result == nil {
			return activeStyle.Render("▶ " + s)
		}
		return idleStyle.Render("  " + s)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, seat(scoring.PlayerOne), "    ", seat(scoring.PlayerTwo))
}

func (m Model) renderBoard() string {
	var rows []string
	for start := 0; start < len(m.board.Cards); start += m.cols {
		end := min(start+m.cols, len(m.board.Cards))
		cells := make([]string, 0, end-start)
		for _, c := range m.board.Cards[start:end] {
			cells = append(cells, m.renderCard(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCard(c types.Card) string {
	var style lipgloss.Style
	face := c.Symbol
	switch c.Status {
	case game.Matched.String():
		style = matchedStyle
	case game.Revealed.String():
		style = revealedStyle
	default:
		style = hiddenStyle
		face = "?"
	}
	if c.ID == m.cursor {
		style = style.BorderForeground(cursorBorder)
	}
	return style.Render(face)
}

func volumeBar(v float64) string {
	const width = 10
	filled := int(math.Round(v * width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}
