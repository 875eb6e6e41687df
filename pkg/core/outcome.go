package core

// FailureKind classifies why a dispatched operation failed.
type FailureKind string

const (
	// FailSpawn means the lando binary could not be launched at all.
	FailSpawn FailureKind = "spawn"
	// FailExit means the process ran but exited non-zero.
	FailExit FailureKind = "exit"
	// FailDecode means the process produced output that did not parse.
	FailDecode FailureKind = "decode"
	// FailSemantic means the process succeeded but its output indicates failure.
	FailSemantic FailureKind = "semantic"
	// FailScan means a project scan could not start.
	FailScan FailureKind = "scan"
)

// Outcome is a message produced by background work and drained by the
// single-threaded poll loop. For any one dispatched operation, zero or more
// LogChunk outcomes are delivered strictly before exactly one terminal
// outcome. No ordering holds across concurrently dispatched operations.
type Outcome interface {
	isOutcome()
}

// AppList is the terminal outcome of an environment listing.
type AppList struct {
	Apps []App
}

// ProjectsFound is the terminal outcome of a project scan. Paths are
// deduplicated and sorted.
type ProjectsFound struct {
	Paths []string
}

// ServiceInfo is the terminal outcome of a project introspection.
type ServiceInfo struct {
	Services []Service
}

// QueryResult is the terminal outcome of a data query or connection test.
type QueryResult struct {
	Op   string
	Text string
}

// Success is the terminal outcome of a fire-and-forget command.
type Success struct {
	Op      string
	Command string
	Message string
}

// Failure is the terminal outcome of any failed operation.
type Failure struct {
	Op      string
	Kind    FailureKind
	Command string
	Message string
}

// Idle tells the consumer to stop showing a loading indicator without
// applying any other effect (a prompt dismissed without a choice).
type Idle struct{}

// LogChunk is a non-terminal slice of combined stdout/stderr output. Op
// identifies the dispatched operation the bytes belong to.
type LogChunk struct {
	Op   string
	Data []byte
}

func (AppList) isOutcome()       {}
func (ProjectsFound) isOutcome() {}
func (ServiceInfo) isOutcome()   {}
func (QueryResult) isOutcome()   {}
func (Success) isOutcome()       {}
func (Failure) isOutcome()       {}
func (Idle) isOutcome()          {}
func (LogChunk) isOutcome()      {}
