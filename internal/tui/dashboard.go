// Package tui renders the market dashboard served over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"index-pulse/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#0077cc")
	upColor      = lipgloss.Color("#33cc33")
	downColor    = lipgloss.Color("#cc3300")
	mutedColor   = lipgloss.Color("#999999")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(mutedColor)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	upStyle        = lipgloss.NewStyle().Foreground(upColor)
	downStyle      = lipgloss.NewStyle().Foreground(downColor)
	mutedStyle     = lipgloss.NewStyle().Foreground(mutedColor)
)

// Views is where the dashboard reads published market and pre-open views.
type Views interface {
	LatestMarketView(ctx context.Context) (domain.MarketView, error)
	LatestPreOpenView(ctx context.Context) (domain.PreOpenView, error)
}

type tab int

const (
	tabMarket tab = iota
	tabPreOpen
)

type viewsMsg struct {
	market     domain.MarketView
	preopen    domain.PreOpenView
	marketErr  error
	preopenErr error
	at         time.Time
}

type tickMsg time.Time

type Model struct {
	views        Views
	loc          *time.Location
	refreshEvery time.Duration
	username     string

	spinner spinner.Model
	loading bool
	tab     tab
	width   int
	height  int

	market     domain.MarketView
	preopen    domain.PreOpenView
	marketErr  error
	preopenErr error
	updatedAt  time.Time
}

func NewModel(views Views, username string, loc *time.Location, refreshEvery time.Duration) Model {
	if loc == nil {
		loc = time.UTC
	}
	if refreshEvery <= 0 {
		refreshEvery = 15 * time.Second
	}
	return Model{
		views:        views,
		loc:          loc,
		refreshEvery: refreshEvery,
		username:     username,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading:      true,
		width:        80,
		height:       24,
	}
}

func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	views := m.views
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg := viewsMsg{at: time.Now()}
		msg.market, msg.marketErr = views.LatestMarketView(ctx)
		msg.preopen, msg.preopenErr = views.LatestPreOpenView(ctx)
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "left":
			m.tab = (m.tab + 1) % 2
		case "1":
			m.tab = tabMarket
		case "2":
			m.tab = tabPreOpen
		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.fetch())
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case viewsMsg:
		m.loading = false
		m.market, m.marketErr = msg.market, msg.marketErr
		m.preopen, m.preopenErr = msg.preopen, msg.preopenErr
		m.updatedAt = msg.at
		return m, tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })

	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetch())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NIFTY 50 · index-pulse"))
	if m.username != "" {
		b.WriteString(mutedStyle.Render("  " + m.username))
	}
	b.WriteString("\n\n")

	tabs := []string{"1 Market", "2 Pre-open"}
	for i, name := range tabs {
		if tab(i) == m.tab {
			b.WriteString(activeTabStyle.Render(name))
		} else {
			b.WriteString(tabStyle.Render(name))
		}
	}
	b.WriteString("\n\n")

	switch m.tab {
	case tabMarket:
		b.WriteString(m.marketPanel())
	case tabPreOpen:
		b.WriteString(m.preopenPanel())
	}

	b.WriteString("\n\n")
	footer := "tab switch · r refresh · q quit"
	if m.loading {
		footer = m.spinner.View() + " loading · " + footer
	} else if !m.updatedAt.IsZero() {
		footer = "updated " + m.updatedAt.In(m.loc).Format("15:04:05") + " · " + footer
	}
	b.WriteString(mutedStyle.Render(footer))

	return appStyle.Width(max(m.width-4, 40)).Render(b.String())
}

func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	switch {
	case v > 0:
		return upStyle.Render(s)
	case v < 0:
		return downStyle.Render(s)
	default:
		return s
	}
}

func (m Model) marketPanel() string {
	if m.marketErr != nil {
		return mutedStyle.Render("market view unavailable: " + m.marketErr.Error())
	}
	q := m.market.Quote
	if q == nil {
		return mutedStyle.Render("waiting for the first quote")
	}

	var b strings.Builder
	change := mutedStyle.Render("change n/a")
	if !q.ChangeUnresolved {
		change = signed(q.Change, "%+.2f") + " " + signed(q.ChangePct, "(%+.2f%%)")
	}
	fmt.Fprintf(&b, "Price   ₹%.2f  %s\n", q.Price, change)
	fmt.Fprintf(&b, "Range   O %.2f  H %.2f  L %.2f  %s\n", q.Open, q.High, q.Low, mutedStyle.Render(q.ReliabilityLabel()))
	fmt.Fprintf(&b, "Status  %s · source %s\n", m.market.Status, q.Source)

	ind := m.market.Indicators
	if !ind.Ready() {
		fmt.Fprintf(&b, "\nIndicators need %d points, have %d", domain.MinIndicatorPoints, ind.Points)
		return b.String()
	}
	fmt.Fprintf(&b, "\nSMA20 %.2f  RSI %.1f  MACD %.2f/%.2f\n", ind.SMA[20], ind.RSI, ind.MACD, ind.MACDSignal)
	fmt.Fprintf(&b, "BB    %.2f / %.2f / %.2f  (%s)\n", ind.BollingerUpper, ind.BollingerMiddle, ind.BollingerLower, ind.BollingerPosition)
	fmt.Fprintf(&b, "S/R   %.2f / %.2f\n", ind.Support, ind.Resistance)
	fmt.Fprintf(&b, "Trend %s · %s · %s\n", ind.ShortTrend, ind.MediumTrend, ind.LongTrend)

	if s := m.market.Sentiment; s != nil {
		fmt.Fprintf(&b, "\nSentiment %s (%.0f%%)", s.Label, s.Confidence)
	}
	if p := m.market.Plan; p != nil {
		fmt.Fprintf(&b, "\nPlan      %s strength %.0f", p.Action, p.Strength)
	}
	return b.String()
}

func (m Model) preopenPanel() string {
	if m.preopenErr != nil {
		return mutedStyle.Render("pre-open view unavailable: " + m.preopenErr.Error())
	}
	a := m.preopen.Analysis
	if a == nil {
		return mutedStyle.Render("no pre-open scan yet")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s · %s (%.0f%%) · net %s\n", a.Gap, a.Sentiment, a.Probability, signed(a.NetImpact, "%+.3f"))
	fmt.Fprintf(&b, "scanned %s\n", a.ScannedAt.In(m.loc).Format("15:04:05"))

	rows := func(heading string, movers []domain.Mover) {
		fmt.Fprintf(&b, "\n%s\n", heading)
		if len(movers) == 0 {
			b.WriteString(mutedStyle.Render("  none") + "\n")
		}
		for i, mv := range movers {
			if i == 8 {
				break
			}
			fmt.Fprintf(&b, "  %-12s %s  ₹%.2f  %s\n", mv.Symbol, signed(mv.ChangePct, "%+6.2f%%"), mv.Price, mutedStyle.Render(mv.Sector))
		}
	}
	rows("Gainers", m.preopen.Gainers)
	rows("Losers", m.preopen.Losers)
	return b.String()
}
