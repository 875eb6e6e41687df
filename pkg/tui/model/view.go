package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	statusBarH := 2
	logPaneH := max(a.height/4, 5)
	mainH := a.height - logPaneH - statusBarH - 2
	topH := mainH / 2
	bottomH := mainH - topH

	leftW := a.width*2/5 - 2
	rightW := a.width - leftW - 4

	projects := a.paneBox(PaneProjects, " Projects ", a.renderProjects(leftW, topH), leftW, topH)
	apps := a.paneBox(PaneApps, " Environments ", a.renderApps(rightW, topH), rightW, topH)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, projects, apps)

	services := a.paneBox(PaneServices, " Services ", a.renderServices(a.width-4, bottomH), a.width-4, bottomH)

	logs := a.paneBox(PaneLogs, a.logTitle(), a.renderLogs(a.width-4, logPaneH), a.width-4, logPaneH)

	statusBar := a.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, topRow, services, logs, statusBar)
}

func (a App) paneBox(pane Pane, title, content string, w, h int) string {
	style := paneStyle
	if a.activePane == pane {
		style = activePaneStyle
	}
	return style.Width(w).Height(h).Render(
		titleStyle.Render(title) + "\n" + content,
	)
}

func (a App) renderProjects(w, h int) string {
	if len(a.projects) == 0 {
		return dimStyle.Render("no projects — press o to scan a directory")
	}

	var b strings.Builder
	maxVisible := h - 2
	start := 0
	if a.projectIdx >= maxVisible {
		start = a.projectIdx - maxVisible + 1
	}

	for i := start; i < len(a.projects) && i-start < maxVisible; i++ {
		line := " " + truncate(a.projects[i], w-2)
		if i == a.projectIdx {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}

	if a.projectMeta != nil {
		meta := a.projectMeta.Name
		if a.projectMeta.Recipe != "" {
			meta += " (" + a.projectMeta.Recipe + ")"
		}
		b.WriteString("\n" + dimStyle.Render(truncate(meta, w)))
	}

	if a.mode == ModePromptScan {
		b.WriteString("\n" + a.input.View())
	}

	return b.String()
}

func (a App) renderApps(w, h int) string {
	if len(a.apps) == 0 {
		return dimStyle.Render("no environments")
	}

	var b strings.Builder
	maxVisible := h - 1
	for i := 0; i < len(a.apps) && i < maxVisible; i++ {
		app := a.apps[i]
		indicator := stoppedStyle.Render("○")
		if app.Running {
			indicator = runningStyle.Render("●")
		}
		line := fmt.Sprintf(" %s %s  %s", indicator, app.Name, dimStyle.Render(truncate(app.Location, w-len(app.Name)-8)))
		if i == a.appIdx && a.activePane == PaneApps {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a App) renderServices(w, h int) string {
	if len(a.services) == 0 {
		return dimStyle.Render("select a project and press enter")
	}

	var b strings.Builder
	for i, svc := range a.services {
		line := fmt.Sprintf(" %-14s %-10s %-8s", truncate(svc.Service, 14), svc.Kind, svc.Version)
		if svc.Internal != nil {
			line += dimStyle.Render(" " + svc.Internal.Host + ":" + svc.Internal.Port)
		}
		if i == a.serviceIdx && a.activePane == PaneServices {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}

	if svc := a.selectedService(); svc != nil && svc.Creds != nil {
		creds := fmt.Sprintf("user: %s  database: %s", svc.Creds.User, svc.Creds.Database)
		b.WriteString(dimStyle.Render(" "+creds) + "\n")
	}

	if a.queryResult != "" {
		b.WriteString("\n" + titleStyle.Render(" Result ") + "\n")
		lines := strings.Split(strings.TrimRight(a.queryResult, "\n"), "\n")
		remaining := h - len(a.services) - 4
		for i, line := range lines {
			if i >= remaining {
				b.WriteString(dimStyle.Render(" ...") + "\n")
				break
			}
			b.WriteString(" " + truncate(line, w-2) + "\n")
		}
	}

	if a.mode == ModePromptQuery || a.mode == ModePromptShell {
		b.WriteString("\n" + a.input.View())
	}

	return b.String()
}

func (a App) renderLogs(w, h int) string {
	if len(a.logLines) == 0 {
		return dimStyle.Render("no command output")
	}

	start := 0
	if len(a.logLines) > h-1 {
		start = len(a.logLines) - h + 1
	}

	var b strings.Builder
	for i := start; i < len(a.logLines); i++ {
		b.WriteString(truncate(a.logLines[i], w) + "\n")
	}
	return b.String()
}

func (a App) logTitle() string {
	title := " Output "
	if a.logPaused {
		title += dimStyle.Render("[PAUSED]") + " "
	}
	return title
}

func (a App) renderStatusBar() string {
	left := a.statusMsg
	if a.loading {
		left = "⋯ " + left
	}

	right := "j/k:nav tab:pane enter:open t:start s:stop r:restart b:rebuild c:shell d:query T:ping o:scan q:quit"
	switch a.mode {
	case ModePromptQuery, ModePromptShell, ModePromptScan:
		right = "enter:run esc:cancel"
	case ModeConfirmPoweroff:
		right = "y:confirm n:cancel"
	}

	// Display width, not byte length: the loading prefix is multi-byte.
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
