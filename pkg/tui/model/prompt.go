package model

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// openPrompt focuses the shared text input for one of the prompt modes.
func (a App) openPrompt(mode Mode, placeholder string) (tea.Model, tea.Cmd) {
	a.mode = mode
	a.input.Placeholder = placeholder
	a.input.SetValue("")
	a.input.Focus()
	return a, textinput.Blink
}

// handlePromptKey processes keys while a prompt is open. Escape dismisses
// the prompt without dispatching; the dispatcher is told so the loading
// indicator clears through the same outcome path as everything else.
func (a App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeNormal
		a.input.Blur()
		a.dispatcher.NotifyIdle()
		return a, nil

	case "enter":
		value := a.input.Value()
		mode := a.mode
		a.mode = ModeNormal
		a.input.Blur()
		if value == "" {
			a.dispatcher.NotifyIdle()
			return a, nil
		}
		return a.submitPrompt(mode, value), nil

	default:
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
}

func (a App) submitPrompt(mode Mode, value string) App {
	switch mode {
	case ModePromptScan:
		a.loading = true
		a.statusMsg = "scanning " + value
		a.dispatcher.Scan(value)

	case ModePromptShell:
		if svc := a.selectedService(); svc != nil {
			a.loading = true
			a.statusMsg = "running shell command..."
			a.dispatcher.RunShell(svc.Service, a.selectedProject(), value)
		}

	case ModePromptQuery:
		if svc := a.selectedService(); svc != nil {
			a.loading = true
			a.statusMsg = "running query..."
			a.dispatcher.RunQuery(svc.Service, a.selectedProject(), value)
		}
	}
	return a
}
