// Copyright 2026 The streamdiff Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package btrfsrun invokes the local btrfs(8) userspace tool to produce
// a send stream, so the CLI can be pointed at two live subvolumes
// instead of two pre-captured stream files.
package btrfsrun

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/btrfs-tools/streamdiff/internal/logger"
	"github.com/pkg/errors"
)

// SendOptions configures one `btrfs send` invocation.
type SendOptions struct {
	// Subvolume is the path to the subvolume to send.
	Subvolume string
	// Parent, if non-empty, is passed as -p so the produced stream is
	// an incremental delta against that parent subvolume instead of a
	// full send.
	Parent string
	// Logger receives the subprocess's stderr, line by line, at Warn
	// severity. A nil Logger discards it.
	Logger logger.Logger
}

// Send runs `btrfs send` for opts and returns a reader positioned at the
// start of the stream. The returned io.ReadCloser must be closed by the
// caller, which also waits for the subprocess to exit; closing before
// fully draining the stream terminates the subprocess early.
func Send(ctx context.Context, opts SendOptions) (io.ReadCloser, error) {
	args := []string{"send"}
	if opts.Parent != "" {
		args = append(args, "-p", opts.Parent)
	}
	args = append(args, opts.Subvolume)

	cmd := exec.CommandContext(ctx, "btrfs", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening btrfs send stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening btrfs send stderr")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "starting btrfs send")
	}

	go drainStderr(stderr, logOrNoOp(opts.Logger))

	return &cmdReader{stdout: stdout, cmd: cmd}, nil
}

func logOrNoOp(l logger.Logger) logger.Logger {
	if l == nil {
		return logger.NoOp()
	}
	return l
}

// drainStderr copies the subprocess's stderr to the logger one line at a
// time so a long-running send doesn't block on a full pipe buffer while
// nobody is reading its diagnostic output.
func drainStderr(r io.Reader, log logger.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			log.Warnf("btrfs send: %s", line)
		}
	}
}

// cmdReader adapts a running command's stdout pipe plus its Wait call
// into a single io.ReadCloser, so callers can treat a live subprocess
// exactly like a stream read from a file.
type cmdReader struct {
	stdout io.ReadCloser
	cmd    *exec.Cmd
	waited bool
}

func (c *cmdReader) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

func (c *cmdReader) Close() error {
	closeErr := c.stdout.Close()
	waitErr := c.wait()
	if waitErr != nil {
		return waitErr
	}
	return closeErr
}

func (c *cmdReader) wait() error {
	if c.waited {
		return nil
	}
	c.waited = true
	if err := c.cmd.Wait(); err != nil {
		return errors.Wrap(err, "btrfs send")
	}
	return nil
}
