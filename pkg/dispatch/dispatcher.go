package dispatch

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/landokit/landokit/pkg/core"
)

// DefaultTool is the external CLI every operation shells out to.
const DefaultTool = "lando"

// aliveProbe is run inside the database service to check liveness; its
// stdout must contain "alive" for the connection to count as healthy.
const aliveProbe = "mysqladmin -u root ping"

// LifecycleCommands is the closed set of commands RunLifecycle accepts.
var LifecycleCommands = map[string]bool{
	"start":    true,
	"stop":     true,
	"restart":  true,
	"rebuild":  true,
	"poweroff": true,
}

// Dispatcher launches lando operations on background goroutines and reports
// every result through its Queue. Every public method returns immediately.
// Per dispatched operation, zero or more LogChunk outcomes are followed by
// exactly one terminal outcome; goroutines never touch consumer state.
type Dispatcher struct {
	// Tool is the executable to invoke. Overridable for tests.
	Tool   string
	queue  *Queue
	logger *slog.Logger
}

// New creates a dispatcher feeding the given queue.
func New(queue *Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Tool: DefaultTool, queue: queue, logger: logger}
}

// Queue returns the outcome queue this dispatcher feeds.
func (d *Dispatcher) Queue() *Queue {
	return d.queue
}

// NotifyIdle clears a pending loading indicator without any other effect.
// Used when a prompt is dismissed without a choice.
func (d *Dispatcher) NotifyIdle() {
	d.queue.Push(core.Idle{})
}

// ListApps asks lando for all known environments and emits an AppList.
func (d *Dispatcher) ListApps() {
	op := uuid.NewString()
	go func() {
		d.logger.Info("list apps", "op", op)
		stdout, stderr, exit, err := runCaptured(d.Tool, []string{"list", "--format", "json"}, "")
		switch {
		case err != nil:
			d.fail(op, core.FailSpawn, "list", fmt.Sprintf("cannot run %s: %v", d.Tool, err))
		case exit != 0:
			d.fail(op, core.FailExit, "list", strings.TrimSpace(string(stderr)))
		default:
			apps, derr := core.DecodeApps(stdout)
			if derr != nil {
				d.fail(op, core.FailDecode, "list", derr.Error())
				return
			}
			d.queue.Push(core.AppList{Apps: apps})
		}
	}()
}

// InspectProject queries the services of the project at path and emits a
// ServiceInfo with every service classified.
func (d *Dispatcher) InspectProject(path string) {
	op := uuid.NewString()
	go func() {
		d.logger.Info("inspect project", "op", op, "dir", path)
		stdout, stderr, exit, err := runCaptured(d.Tool, []string{"info", "--format", "json"}, path)
		switch {
		case err != nil:
			d.fail(op, core.FailSpawn, "info", fmt.Sprintf("cannot run %s: %v", d.Tool, err))
		case exit != 0:
			d.fail(op, core.FailExit, "info", strings.TrimSpace(string(stderr)))
		default:
			services, derr := core.DecodeServices(stdout)
			if derr != nil {
				d.fail(op, core.FailDecode, "info", derr.Error())
				return
			}
			d.queue.Push(core.ServiceInfo{Services: services})
		}
	}()
}

// RunLifecycle runs a lifecycle command (start, stop, restart, rebuild,
// poweroff) in the project at path, streaming combined output as LogChunk.
func (d *Dispatcher) RunLifecycle(command, path string) {
	op := uuid.NewString()
	if !LifecycleCommands[command] {
		go d.fail(op, core.FailSpawn, command, fmt.Sprintf("unknown lifecycle command %q", command))
		return
	}
	go d.stream(op, command, []string{command}, path)
}

// RunShell runs a shell command inside a service via the remote-execution
// wrapper, streaming combined output as LogChunk.
func (d *Dispatcher) RunShell(service, path, command string) {
	op := uuid.NewString()
	go d.stream(op, "ssh", []string{"ssh", "-s", service, "-c", command}, path)
}

// stream is the canonical shape of an interactive command: spawn, pump both
// pipes concurrently, then join the two pumps and the exit status before
// emitting the terminal outcome.
func (d *Dispatcher) stream(op, command string, args []string, dir string) {
	d.logger.Info("run", "op", op, "command", command, "dir", dir)

	h, err := Spawn(d.Tool, args, dir)
	if err != nil {
		d.fail(op, core.FailSpawn, command, fmt.Sprintf("cannot run %s: %v", d.Tool, err))
		return
	}

	sink := func(b []byte) {
		d.queue.Push(core.LogChunk{Op: op, Data: b})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		Pump(h.Stdout, sink)
	}()
	go func() {
		defer wg.Done()
		Pump(h.Stderr, sink)
	}()
	wg.Wait()

	exit, werr := h.Wait()
	switch {
	case werr != nil:
		d.fail(op, core.FailExit, command, fmt.Sprintf("wait for %q: %v", command, werr))
	case exit != 0:
		d.fail(op, core.FailExit, command, fmt.Sprintf("command %q exited with status %d", command, exit))
	default:
		d.logger.Info("run finished", "op", op, "command", command)
		d.queue.Push(core.Success{Op: op, Command: command, Message: fmt.Sprintf("command %q finished successfully", command)})
	}
}

// RunQuery executes a query against a database service. The required
// credential varies per environment, so a non-zero exit with the root user
// is retried once without an explicit user; only the second failure is
// surfaced. The retry is bounded and cannot amplify load.
func (d *Dispatcher) RunQuery(service, path, query string) {
	op := uuid.NewString()
	go func() {
		d.logger.Info("db query", "op", op, "service", service)
		stdout, _, exit, err := runCaptured(d.Tool, []string{"db-cli", "-s", service, "-u", "root", "-e", query}, path)
		switch {
		case err != nil:
			d.fail(op, core.FailSpawn, "db-cli", fmt.Sprintf("cannot run %s db-cli: %v", d.Tool, err))
			return
		case exit == 0:
			d.queue.Push(core.QueryResult{Op: op, Text: string(stdout)})
			return
		}

		d.logger.Info("db query retry without explicit user", "op", op, "service", service)
		stdout, stderr, exit, err := runCaptured(d.Tool, []string{"db-cli", "-s", service, "-e", query}, path)
		switch {
		case err != nil:
			d.fail(op, core.FailSpawn, "db-cli", fmt.Sprintf("cannot run %s db-cli: %v", d.Tool, err))
		case exit != 0:
			d.fail(op, core.FailExit, "db-cli", strings.TrimSpace(string(stderr)))
		default:
			d.queue.Push(core.QueryResult{Op: op, Text: string(stdout)})
		}
	}()
}

// TestConnection probes a database service for liveness. The probe is only
// healthy when it exits zero AND its stdout contains the alive marker; a
// clean exit without the marker is a semantic failure.
func (d *Dispatcher) TestConnection(service, path string) {
	op := uuid.NewString()
	go func() {
		d.logger.Info("test connection", "op", op, "service", service)
		stdout, stderr, exit, err := runCaptured(d.Tool, []string{"ssh", "-s", service, "-c", aliveProbe}, path)
		switch {
		case err != nil:
			d.fail(op, core.FailSpawn, "ssh", fmt.Sprintf("cannot run %s ssh: %v", d.Tool, err))
		case exit != 0:
			d.fail(op, core.FailExit, "ssh", strings.TrimSpace(string(stderr)))
		case !strings.Contains(string(stdout), "alive"):
			d.fail(op, core.FailSemantic, "ssh", fmt.Sprintf("unexpected probe output: %s", strings.TrimSpace(string(stdout))))
		default:
			d.queue.Push(core.QueryResult{Op: op, Text: "connection OK"})
		}
	}()
}

func (d *Dispatcher) fail(op string, kind core.FailureKind, command, message string) {
	if message == "" {
		message = fmt.Sprintf("command %q failed", command)
	}
	d.logger.Warn("operation failed", "op", op, "command", command, "kind", string(kind), "msg", message)
	d.queue.Push(core.Failure{Op: op, Kind: kind, Command: command, Message: message})
}
