package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/landokit/landokit/pkg/core"
	"github.com/landokit/landokit/pkg/dispatch"
	"github.com/landokit/landokit/pkg/manifest"
)

// Pane identifies which TUI pane is focused.
type Pane int

const (
	PaneProjects Pane = iota
	PaneApps
	PaneServices
	PaneLogs
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePromptQuery
	ModePromptShell
	ModePromptScan
	ModeConfirmPoweroff
)

// maxLogLines bounds the log ring kept in the model.
const maxLogLines = 500

// App is the root Bubble Tea model. All mutation happens here, on the
// program goroutine; background work only ever reaches it as an outcomeMsg
// drained from the dispatcher's queue, one outcome per Update.
type App struct {
	dispatcher *dispatch.Dispatcher

	// State fed by outcomes
	apps     []core.App
	projects []string
	services []core.Service
	loading  bool

	// Selection
	activePane  Pane
	projectIdx  int
	appIdx      int
	serviceIdx  int
	projectMeta *manifest.Manifest

	// Query console
	queryResult string

	// Logs
	logLines   []string
	logPartial string
	logPaused  bool

	// Prompt
	mode  Mode
	input textinput.Model

	// Status
	statusMsg string
	width     int
	height    int
}

// New creates the TUI model around a dispatcher.
func New(d *dispatch.Dispatcher) App {
	ti := textinput.New()
	ti.CharLimit = 512

	return App{
		dispatcher: d,
		input:      ti,
		activePane: PaneProjects,
		mode:       ModeNormal,
	}
}

// Init requests the initial environment listing and starts draining the
// outcome queue.
func (a App) Init() tea.Cmd {
	a.dispatcher.ListApps()
	return tea.Batch(
		awaitOutcome(a.dispatcher.Queue()),
		tea.SetWindowTitle("landokit"),
	)
}

// outcomeMsg carries exactly one drained outcome into Update.
type outcomeMsg struct{ outcome core.Outcome }

// awaitOutcome sleeps until the queue has traffic, then delivers a single
// outcome. Re-armed after every delivery, so Update handles at most one
// outcome per invocation and bursts drain gradually.
func awaitOutcome(q *dispatch.Queue) tea.Cmd {
	return func() tea.Msg {
		for {
			if o, ok := q.TryPop(); ok {
				return outcomeMsg{outcome: o}
			}
			<-q.Wake()
		}
	}
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case outcomeMsg:
		a = a.applyOutcome(msg.outcome)
		return a, awaitOutcome(a.dispatcher.Queue())

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) applyOutcome(o core.Outcome) App {
	a.loading = false

	switch o := o.(type) {
	case core.AppList:
		a.apps = o.Apps
		if a.appIdx >= len(a.apps) {
			a.appIdx = max(0, len(a.apps)-1)
		}
		a.statusMsg = "environments refreshed"

	case core.ProjectsFound:
		a.projects = dispatch.MergeProjects(a.projects, o.Paths)
		a.statusMsg = "scan finished"

	case core.ServiceInfo:
		a.services = o.Services
		if a.serviceIdx >= len(a.services) {
			a.serviceIdx = max(0, len(a.services)-1)
		}

	case core.QueryResult:
		a.queryResult = o.Text

	case core.Success:
		a.statusMsg = o.Message
		// A lifecycle command may have changed service state.
		if o.Command != "ssh" && o.Command != "poweroff" && a.selectedProject() != "" {
			a.loading = true
			a.dispatcher.InspectProject(a.selectedProject())
		}

	case core.Failure:
		a.statusMsg = "error: " + o.Message
		if o.Kind == core.FailExit && o.Command == "db-cli" {
			a.queryResult = o.Message
		}

	case core.Idle:
		// Nothing to apply; the loading indicator is already cleared.

	case core.LogChunk:
		a = a.appendLog(o.Data)
	}

	return a
}

func (a App) appendLog(data []byte) App {
	if a.logPaused {
		return a
	}
	text := a.logPartial + string(data)
	lines := strings.Split(text, "\n")
	a.logPartial = lines[len(lines)-1]
	a.logLines = append(a.logLines, lines[:len(lines)-1]...)
	if len(a.logLines) > maxLogLines {
		a.logLines = a.logLines[len(a.logLines)-maxLogLines:]
	}
	return a
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode != ModeNormal && a.mode != ModeConfirmPoweroff {
		return a.handlePromptKey(msg)
	}

	if a.mode == ModeConfirmPoweroff {
		switch msg.String() {
		case "y", "Y":
			a.mode = ModeNormal
			a.loading = true
			a.statusMsg = "powering off..."
			a.dispatcher.RunLifecycle("poweroff", a.selectedProject())
		default:
			a.mode = ModeNormal
			a.statusMsg = "poweroff cancelled"
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		a = a.moveSelection(1)
	case "k", "up":
		a = a.moveSelection(-1)

	case "tab":
		a.activePane = (a.activePane + 1) % 4

	case "enter":
		if a.activePane == PaneProjects {
			a = a.selectProject()
		}

	case "R":
		a.loading = true
		a.dispatcher.ListApps()

	case "o":
		return a.openPrompt(ModePromptScan, "directory to scan...")

	case "t", "s", "r", "b":
		if path := a.selectedProject(); path != "" {
			command := map[string]string{"t": "start", "s": "stop", "r": "restart", "b": "rebuild"}[msg.String()]
			a.loading = true
			a.statusMsg = "running " + command + "..."
			a.dispatcher.RunLifecycle(command, path)
		}

	case "P":
		if a.selectedProject() != "" {
			a.mode = ModeConfirmPoweroff
			a.statusMsg = "Power off all environments? (y/n)"
		}

	case "c":
		if a.selectedService() != nil {
			return a.openPrompt(ModePromptShell, "shell command...")
		}

	case "d":
		if svc := a.selectedService(); svc != nil && svc.Kind == core.KindDatabase {
			return a.openPrompt(ModePromptQuery, "SQL query...")
		}

	case "T":
		if svc := a.selectedService(); svc != nil && svc.Kind == core.KindDatabase {
			a.loading = true
			a.statusMsg = "testing connection..."
			a.dispatcher.TestConnection(svc.Service, a.selectedProject())
		}

	case " ":
		if a.activePane == PaneLogs {
			a.logPaused = !a.logPaused
		}
	}

	return a, nil
}

func (a App) moveSelection(delta int) App {
	clamp := func(idx, length int) int {
		idx += delta
		if idx < 0 {
			return 0
		}
		if idx >= length {
			return max(0, length-1)
		}
		return idx
	}
	switch a.activePane {
	case PaneProjects:
		a.projectIdx = clamp(a.projectIdx, len(a.projects))
	case PaneApps:
		a.appIdx = clamp(a.appIdx, len(a.apps))
	case PaneServices:
		a.serviceIdx = clamp(a.serviceIdx, len(a.services))
	}
	return a
}

func (a App) selectProject() App {
	path := a.selectedProject()
	if path == "" {
		return a
	}
	a.services = nil
	a.serviceIdx = 0
	a.queryResult = ""

	// The manifest is a cheap local read; services come via dispatch.
	if m, err := manifest.Load(path); err == nil {
		a.projectMeta = m
	} else {
		a.projectMeta = nil
	}

	a.loading = true
	a.statusMsg = "inspecting " + path
	a.dispatcher.InspectProject(path)
	return a
}

func (a App) selectedProject() string {
	if a.projectIdx < len(a.projects) {
		return a.projects[a.projectIdx]
	}
	return ""
}

func (a App) selectedService() *core.Service {
	if a.serviceIdx < len(a.services) {
		return &a.services[a.serviceIdx]
	}
	return nil
}
