package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Handle is one spawned external process with independent stdout and stderr
// pipes. Per the os/exec contract, Wait must only be called after both pipes
// are drained.
type Handle struct {
	cmd    *exec.Cmd
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Spawn launches tool with args in dir. A launch failure (binary missing,
// permission denied) returns an error; a later non-zero exit is not an error
// but a normal Wait result.
func Spawn(tool string, args []string, dir string) (*Handle, error) {
	cmd := exec.Command(tool, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", tool, err)
	}
	return &Handle{cmd: cmd, Stdout: stdout, Stderr: stderr}, nil
}

// Wait reaps the process. A non-zero exit status is reported through the
// exit code, not through err; err covers wait-level failures only.
func (h *Handle) Wait() (exit int, err error) {
	err = h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), nil
	}
	return -1, err
}

// release abandons the handle without waiting for the process. The pipes are
// drained and the child reaped on a background goroutine so it cannot linger
// as a zombie. No dispatcher path abandons a running command today.
func (h *Handle) release() {
	go func() {
		io.Copy(io.Discard, h.Stdout)
		io.Copy(io.Discard, h.Stderr)
		h.cmd.Wait()
	}()
}

// runCaptured runs tool to completion and captures both streams. Used by the
// operations that return one structured result instead of streaming.
func runCaptured(tool string, args []string, dir string) (stdout, stderr []byte, exit int, err error) {
	cmd := exec.Command(tool, args...)
	cmd.Dir = dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout = outBuf.Bytes()
	stderr = errBuf.Bytes()
	if runErr == nil {
		return stdout, stderr, 0, nil
	}
	var ee *exec.ExitError
	if errors.As(runErr, &ee) {
		return stdout, stderr, ee.ExitCode(), nil
	}
	return stdout, stderr, -1, runErr
}
