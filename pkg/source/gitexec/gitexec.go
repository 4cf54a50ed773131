// Package gitexec reads repositories by shelling out to the git CLI.
//
// It exists for repositories where the pure Go backend struggles: very large
// histories, exotic extensions, or partial clones. Everything is read through
// plumbing commands with machine-readable output.
package gitexec

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/source"
)

// Backend describes the git CLI backend.
var Backend = &source.Backend{
	Name:      "gitexec",
	Aliases:   []string{"cli", "exec"},
	Available: gitOnPath,
	Open:      open,
}

func gitOnPath() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

type repo struct {
	path string
}

func open(path string) (source.Source, error) {
	tmp := &repo{path: path}
	out, err := tmp.runGit(context.Background(), false, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepoNotFound, err, "not a git repository: %s", path)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return nil, errors.New(errors.ErrCodeRepoNotFound, "git rev-parse returned empty root for %s", path)
	}
	return &repo{path: root}, nil
}

// Path returns the repository root.
func (s *repo) Path() string { return s.path }

// Close releases the handle. The CLI backend holds nothing open.
func (s *repo) Close() error { return nil }

// Probe returns a fingerprint over all refs and the symbolic HEAD.
func (s *repo) Probe(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, true, "show-ref", "--head")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, err, "probing %s", s.path)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	// show-ref reports where HEAD points, not which branch it names.
	if symref, err := s.runGit(ctx, true, "symbolic-ref", "-q", "HEAD"); err == nil {
		if target := strings.TrimSpace(symref); target != "" {
			lines = append(lines, "HEAD -> "+target)
		}
	}

	sort.Strings(lines)
	return source.Fingerprint(lines), nil
}

// ExecError reports a failed git invocation with its captured stderr.
type ExecError struct {
	Args     []string // git arguments, without the leading "git"
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: exit %d: %s", strings.Join(e.Args, " "), e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("git %s: exit %d", strings.Join(e.Args, " "), e.ExitCode)
}

var lockFileRe = regexp.MustCompile(`'([^']*\.lock)'`)

// runGit executes git -C <root> with the given arguments and returns stdout.
// With allowExit1, a quiet exit status 1 counts as success with empty-ish
// output, matching the plumbing commands that signal "nothing found" that way.
func (s *repo) runGit(ctx context.Context, allowExit1 bool, args ...string) (string, error) {
	cmdArgs := append([]string{"-C", s.path}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case stderrors.As(err, &exitErr):
			if allowExit1 && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
				break
			}
			msg := strings.TrimSpace(stderr.String())
			if strings.Contains(msg, ".lock") {
				if m := lockFileRe.FindStringSubmatch(msg); m != nil {
					return "", &errors.RepoLockedError{LockFile: m[1]}
				}
				return "", &errors.RepoLockedError{}
			}
			return "", &ExecError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: msg}
		default:
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
	}
	return stdout.String(), nil
}

// Ensure repo implements Source.
var _ source.Source = (*repo)(nil)
