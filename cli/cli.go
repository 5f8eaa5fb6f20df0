// cli/cli.go
// Package cli provides the interactive comparison picker and dashboard
// for the evaldeck application.
package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evaldeck/evaldeck/internal/appconfig"
	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/dashboard"
	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/metadata"
	"github.com/evaldeck/evaldeck/internal/session"
)

// Config represents the shared application configuration for the CLI.
type Config = appconfig.Config

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewExperimentPicker is the state where the user stages experiments.
	viewExperimentPicker viewState = iota
	// viewBaselinePicker is the state where the user picks the baseline.
	viewBaselinePicker
	// viewBaselineSwap is the state where a committed baseline is replaced.
	viewBaselineSwap
	// viewCommitting is the state while validation and hydration run.
	viewCommitting
	// viewDashboard is the state showing the committed comparison.
	viewDashboard
)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	config           *Config
	board            *dashboard.Dashboard
	cache            *metadata.Cache
	poller           *dashboard.Poller
	state            viewState
	isLoading        bool
	err              error
	statusLine       string
	experimentList   list.Model
	baselineList     list.Model
	viewport         viewport.Model
	spinner          spinner.Model
	experiments      []evalapi.Experiment
	width, height    int
	program          *tea.Program
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *Config, board *dashboard.Dashboard, cache *metadata.Cache) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	expDelegate := list.NewDefaultDelegate()
	expList := list.New(nil, expDelegate, 0, 0)
	expList.Title = "Select experiments to compare (space to stage, enter to continue)"
	expList.SetFilteringEnabled(false)

	baseList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	baseList.Title = "Pick the baseline"
	baseList.SetFilteringEnabled(false)

	vp := viewport.New(100, 5)

	// The selection machine starts picking immediately; a successful
	// restore supersedes this with the committed comparison.
	board.Selector().OpenPicker()

	return &model{
		ctx:            ctx,
		config:         cfg,
		board:          board,
		cache:          cache,
		state:          viewExperimentPicker,
		spinner:        s,
		experimentList: expList,
		baselineList:   baseList,
		viewport:       vp,
	}
}

// item represents a selectable experiment in a Bubble Tea list.
type item struct {
	id     evalapi.ExperimentID
	name   string
	status string
	staged bool
}

// Title returns the rendered title of the list item.
func (i item) Title() string {
	marker := "[ ]"
	if i.staged {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %d  %s", marker, i.id, i.name)
}

// Description returns the status line of the list item.
func (i item) Description() string { return i.status }

// FilterValue returns the name of the item, used for filtering.
func (i item) FilterValue() string { return i.name }

// experimentsReadyMsg carries a freshly fetched experiment list.
type experimentsReadyMsg struct{ experiments []evalapi.Experiment }

// experimentsLoadErr is sent when the experiment list cannot be fetched.
type experimentsLoadErr struct{ error }

// restoredMsg reports whether a persisted comparison was replayed.
type restoredMsg struct{ restored bool }

// committedMsg carries the hydration of a freshly committed comparison.
type committedMsg struct{ hydration *comparison.Hydration }

// commitErr is sent when validation or hydration rejects a commit.
type commitErr struct{ error }

// metadataMsg signals that an experiment's metadata has settled.
type metadataMsg struct{ id evalapi.ExperimentID }

// fetchExperimentsCmd fetches the experiment list for the picker.
func fetchExperimentsCmd(ctx context.Context, lister dashboard.Lister) tea.Cmd {
	return func() tea.Msg {
		experiments, err := lister.ListExperiments(ctx)
		if err != nil {
			return experimentsLoadErr{error: err}
		}
		return experimentsReadyMsg{experiments: experiments}
	}
}

// restoreCmd replays the persisted comparison, if any.
func restoreCmd(ctx context.Context, board *dashboard.Dashboard) tea.Cmd {
	return func() tea.Msg {
		return restoredMsg{restored: board.Restore(ctx)}
	}
}

// commitCmd runs the selection machine's commit: validation, hydration,
// and session persistence.
func commitCmd(ctx context.Context, selector *comparison.Selector) tea.Cmd {
	return func() tea.Msg {
		hydration, err := selector.Commit(ctx)
		if err != nil {
			return commitErr{error: err}
		}
		return committedMsg{hydration: hydration}
	}
}

// swapBaselineCmd re-hydrates the committed comparison under a new baseline.
func swapBaselineCmd(ctx context.Context, selector *comparison.Selector, id evalapi.ExperimentID) tea.Cmd {
	return func() tea.Msg {
		hydration, err := selector.SwapBaseline(ctx, id)
		if err != nil {
			return commitErr{error: err}
		}
		return committedMsg{hydration: hydration}
	}
}

// fetchMetadataCmd resolves one experiment's metadata through the cache.
func fetchMetadataCmd(ctx context.Context, cache *metadata.Cache, id evalapi.ExperimentID) tea.Cmd {
	return func() tea.Msg {
		cache.Get(ctx, id)
		return metadataMsg{id: id}
	}
}

// metadataCmds fans out one metadata fetch per member of a committed set.
func (m *model) metadataCmds(set comparison.Set) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(set.Candidates)+1)
	for _, id := range set.IDs() {
		cmds = append(cmds, fetchMetadataCmd(m.ctx, m.cache, id))
	}
	return cmds
}

// Init starts the spinner, replays any persisted session, and fetches the
// experiment list.
func (m *model) Init() tea.Cmd {
	m.isLoading = true
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, restoreCmd(m.ctx, m.board), fetchExperimentsCmd(m.ctx, m.board.Lister()))
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.experimentList.SetSize(msg.Width-2, msg.Height-4)
		m.baselineList.SetSize(msg.Width-2, msg.Height-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6

	case experimentsReadyMsg:
		m.isLoading = false
		m.experiments = msg.experiments
		m.refreshPickerItems()
		return m, nil

	case experimentsLoadErr:
		m.isLoading = false
		m.err = msg.error
		return m, nil

	case restoredMsg:
		if msg.restored {
			m.state = viewDashboard
			if current := m.board.Current(); current != nil {
				return m, tea.Batch(m.metadataCmds(current.Set)...)
			}
		}
		return m, nil

	case committedMsg:
		m.isLoading = false
		m.statusLine = ""
		m.board.Apply(msg.hydration)
		m.state = viewDashboard
		return m, tea.Batch(m.metadataCmds(msg.hydration.Set)...)

	case commitErr:
		m.isLoading = false
		m.statusLine = msg.error.Error()
		if _, committed := m.board.Selector().Committed(); committed && m.state == viewCommitting {
			m.state = viewDashboard
		} else {
			m.state = viewBaselinePicker
		}
		return m, nil

	case metadataMsg:
		return m, nil
	}

	switch m.state {
	case viewExperimentPicker:
		m.experimentList, cmd = m.experimentList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case " ":
				if selected, ok := m.experimentList.SelectedItem().(item); ok {
					if err := m.board.Selector().ToggleCandidate(selected.id); err != nil {
						m.statusLine = err.Error()
					} else {
						m.statusLine = ""
						m.refreshPickerItems()
					}
				}
			case "enter":
				if err := m.board.Selector().ProceedToBaseline(); err != nil {
					m.statusLine = err.Error()
				} else {
					m.statusLine = ""
					m.refreshBaselineItems(m.board.Selector().Staged())
					m.state = viewBaselinePicker
				}
			}
		}

	case viewBaselinePicker:
		m.baselineList, cmd = m.baselineList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "enter":
				if selected, ok := m.baselineList.SelectedItem().(item); ok {
					if err := m.board.Selector().ChooseBaseline(selected.id); err != nil {
						m.statusLine = err.Error()
						break
					}
					m.state = viewCommitting
					m.isLoading = true
					m.requestStartTime = time.Now()
					cmds = append(cmds, m.spinner.Tick, commitCmd(m.ctx, m.board.Selector()))
				}
			case "esc":
				m.board.Selector().Cancel()
				if _, committed := m.board.Selector().Committed(); committed {
					m.state = viewDashboard
				} else {
					// Cancel leaves the machine idle, so reopen it before
					// the picker accepts toggles again.
					m.board.Selector().OpenPicker()
					m.state = viewExperimentPicker
					m.refreshPickerItems()
				}
			}
		}

	case viewBaselineSwap:
		m.baselineList, cmd = m.baselineList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "enter":
				if selected, ok := m.baselineList.SelectedItem().(item); ok {
					m.state = viewCommitting
					m.isLoading = true
					m.requestStartTime = time.Now()
					cmds = append(cmds, m.spinner.Tick, swapBaselineCmd(m.ctx, m.board.Selector(), selected.id))
				}
			case "esc":
				m.state = viewDashboard
			}
		}

	case viewDashboard:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "m":
				m.cycleScoreModes()
			case "r":
				m.cycleRuntimeModes()
			case "b":
				if set, ok := m.board.Selector().Committed(); ok {
					m.refreshBaselineItems(set.IDs())
					m.baselineList.Title = "Pick the new baseline"
					m.state = viewBaselineSwap
				}
			case "n":
				m.board.Selector().OpenPicker()
				m.refreshPickerItems()
				m.state = viewExperimentPicker
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refreshPickerItems rebuilds the picker list, marking staged experiments.
func (m *model) refreshPickerItems() {
	staged := make(map[evalapi.ExperimentID]struct{})
	for _, id := range m.board.Selector().Staged() {
		staged[id] = struct{}{}
	}
	items := make([]list.Item, len(m.experiments))
	for i, exp := range m.experiments {
		_, isStaged := staged[exp.ID]
		items[i] = item{id: exp.ID, name: exp.Name, status: exp.Status, staged: isStaged}
	}
	m.experimentList.SetItems(items)
}

// refreshBaselineItems rebuilds the baseline list from the given ids.
func (m *model) refreshBaselineItems(ids []evalapi.ExperimentID) {
	names := make(map[evalapi.ExperimentID]evalapi.Experiment, len(m.experiments))
	for _, exp := range m.experiments {
		names[exp.ID] = exp
	}
	items := make([]list.Item, len(ids))
	for i, id := range ids {
		exp := names[id]
		items[i] = item{id: id, name: exp.Name, status: exp.Status, staged: true}
	}
	m.baselineList.SetItems(items)
	m.baselineList.Title = "Pick the baseline"
}

// cycleScoreModes advances every evaluator series to its next aggregation.
func (m *model) cycleScoreModes() {
	current := m.board.Current()
	if current == nil {
		return
	}
	for _, ref := range current.Metrics.EvaluatorScores.CommonEvaluators {
		mode := m.board.ScoreMode(ref.VersionID)
		m.board.SetScoreMode(ref.VersionID, nextScoreMode(mode))
	}
}

// cycleRuntimeModes advances every runtime metric to its next aggregation.
func (m *model) cycleRuntimeModes() {
	for _, metric := range runtimeMetricNames {
		mode := m.board.RuntimeMode(metric)
		m.board.SetRuntimeMode(metric, nextRuntimeMode(mode))
	}
}

// nextScoreMode steps through the score aggregations in display order.
func nextScoreMode(mode comparison.ScoreAggregation) comparison.ScoreAggregation {
	switch mode {
	case comparison.ScoreAverage:
		return comparison.ScoreMax
	case comparison.ScoreMax:
		return comparison.ScoreMin
	case comparison.ScoreMin:
		return comparison.ScoreSum
	case comparison.ScoreSum:
		return comparison.ScoreCount
	default:
		return comparison.ScoreAverage
	}
}

// nextRuntimeMode steps through the runtime aggregations in display order.
func nextRuntimeMode(mode comparison.RuntimeAggregation) comparison.RuntimeAggregation {
	switch mode {
	case comparison.RuntimeTotal:
		return comparison.RuntimeAverage
	case comparison.RuntimeAverage:
		return comparison.RuntimeMax
	case comparison.RuntimeMax:
		return comparison.RuntimeMin
	default:
		return comparison.RuntimeTotal
	}
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.state {
	case viewExperimentPicker:
		return m.listView(m.experimentList, "space: stage  enter: continue  q: quit")

	case viewBaselinePicker, viewBaselineSwap:
		return m.listView(m.baselineList, "enter: select  esc: back  q: quit")

	case viewCommitting:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Validating and fetching comparison... %ss\n", m.spinner.View(), timer)

	case viewDashboard:
		return m.dashboardView()

	default:
		return "Unknown state"
	}
}

// listView renders one of the selection lists with a status and help line.
func (m *model) listView(l list.Model, help string) string {
	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Fetching experiments... %ss\n", m.spinner.View(), timer)
	}
	view := lipgloss.NewStyle().Margin(1, 2).Render(l.View())
	if m.statusLine != "" {
		warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
		view += "\n" + warnStyle.Render("  "+m.statusLine)
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return view + "\n" + helpStyle.Render("  "+help)
}

// StartDashboard initializes and runs the interactive comparison TUI.
func StartDashboard(ctx context.Context, cfg *appconfig.Config, cancel context.CancelFunc) {
	if cfg == nil {
		log.Fatalf("Failed to start: configuration is not loaded")
	}

	f, err := tea.LogToFile(cfg.LogFilePath(), "debug")
	if err != nil {
		log.Fatalf("could not open log file: %v", err)
	}
	defer f.Close()
	defer func() {
		log.Println("Cancelling all running requests...")
		cancel()
	}()

	client := evalapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
	store := session.NewStore(cfg.SessionFilePath())
	fetcher := comparison.NewFetcher(client)
	selector := comparison.NewSelector(fetcher, store)
	board := dashboard.New(client, fetcher, selector, store)
	cache := metadata.NewCache(client)

	m := initialModel(ctx, cfg, board, cache)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p

	poller := dashboard.NewPoller(client, cfg.PollInterval(), func(experiments []evalapi.Experiment) {
		p.Send(experimentsReadyMsg{experiments: experiments})
	})
	m.poller = poller
	poller.Start(ctx)
	defer poller.Stop()

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
