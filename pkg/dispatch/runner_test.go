package dispatch

import (
	"io"
	"testing"
)

func TestSpawnAndWait(t *testing.T) {
	h, err := Spawn("/bin/sh", []string{"-c", "echo out; echo err >&2"}, "")
	if err != nil {
		t.Fatal(err)
	}

	out, _ := io.ReadAll(h.Stdout)
	errOut, _ := io.ReadAll(h.Stderr)

	exit, werr := h.Wait()
	if werr != nil {
		t.Fatal(werr)
	}
	if exit != 0 {
		t.Errorf("exit = %d, want 0", exit)
	}
	if string(out) != "out\n" {
		t.Errorf("stdout = %q", out)
	}
	if string(errOut) != "err\n" {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestSpawnMissingBinary(t *testing.T) {
	if _, err := Spawn("/no/such/binary", nil, ""); err == nil {
		t.Error("expected spawn error")
	}
}

func TestWaitNonZeroExitIsNotAnError(t *testing.T) {
	h, err := Spawn("/bin/sh", []string{"-c", "exit 3"}, "")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, h.Stdout)
	io.Copy(io.Discard, h.Stderr)

	exit, werr := h.Wait()
	if werr != nil {
		t.Fatalf("non-zero exit reported as error: %v", werr)
	}
	if exit != 3 {
		t.Errorf("exit = %d, want 3", exit)
	}
}

func TestRelease(t *testing.T) {
	h, err := Spawn("/bin/sh", []string{"-c", "echo bye"}, "")
	if err != nil {
		t.Fatal(err)
	}
	// Must not leak the child or panic; reaping happens in the background.
	h.release()
}

func TestRunCaptured(t *testing.T) {
	stdout, stderr, exit, err := runCaptured("/bin/sh", []string{"-c", "echo a; echo b >&2; exit 1"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if exit != 1 {
		t.Errorf("exit = %d, want 1", exit)
	}
	if string(stdout) != "a\n" || string(stderr) != "b\n" {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestRunCapturedSpawnFailure(t *testing.T) {
	_, _, _, err := runCaptured("/no/such/binary", nil, "")
	if err == nil {
		t.Error("expected spawn error")
	}
}
