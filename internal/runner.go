package internal

import (
	"bytes"
	"os/exec"
)

// CommandRunner abstracts running external tools (yt-dlp, ffmpeg) so tests
// can inject a fake runner.
type CommandRunner interface {
	// Run executes the command and returns captured stdout and stderr.
	Run(name string, args []string) (stdout, stderr string, err error)
}

// DefaultCommandRunner uses os/exec.
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(name string, args []string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Package-level runner variable; tests can replace this with a fake implementation.
var commandRunner CommandRunner = &DefaultCommandRunner{}
