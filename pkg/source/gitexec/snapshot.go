package gitexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/source"
)

// logFormat emits one NUL-terminated record per commit. The first six fields
// are newline-separated; everything after them is the raw message body, which
// may itself contain newlines.
const logFormat = "%H%n%h%n%an%n%ae%n%ct%n%P%n%B%x00"

// refFormat emits one line per ref with NUL-separated fields: full refname,
// tip hash, upstream short name, upstream divergence, and the HEAD marker.
const refFormat = "%(refname)%00%(objectname)%00%(upstream:short)%00%(upstream:track)%00%(HEAD)"

// Snapshot captures the commit window and branch list via git plumbing.
func (s *repo) Snapshot(ctx context.Context, opts source.Options) (*history.Snapshot, error) {
	opts = opts.WithDefaults()

	branches, err := s.branches(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "listing branches in %s", s.path)
	}

	commits, err := s.window(ctx, opts, branches)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "reading history of %s", s.path)
	}

	return &history.Snapshot{
		Repo:       s.path,
		CapturedAt: time.Now().Unix(),
		Commits:    commits,
		Branches:   branches,
	}, nil
}

func (s *repo) window(ctx context.Context, opts source.Options, branches []history.Branch) ([]history.Commit, error) {
	headOut, err := s.runGit(ctx, true, "rev-parse", "-q", "--verify", "HEAD")
	if err != nil {
		return nil, err
	}
	head := strings.TrimSpace(headOut)

	hasLocal := false
	for _, b := range branches {
		if !b.IsRemote {
			hasLocal = true
			break
		}
	}
	if head == "" && !hasLocal {
		return []history.Commit{}, nil
	}

	args := []string{"log", "--no-color", "--date-order", "--branches",
		"--max-count=" + strconv.Itoa(opts.Limit),
		"--pretty=tformat:" + logFormat,
	}
	if opts.Skip > 0 {
		args = append(args, "--skip="+strconv.Itoa(opts.Skip))
	}
	if head != "" {
		args = append(args, "HEAD")
	}

	out, err := s.runGit(ctx, false, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

// parseLog splits NUL-terminated records produced by logFormat.
func parseLog(out string) ([]history.Commit, error) {
	commits := []history.Commit{}
	for _, record := range strings.Split(out, "\x00") {
		// git prints a newline between the terminator and the next record.
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		c, err := parseLogRecord(record)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func parseLogRecord(record string) (history.Commit, error) {
	parts := strings.SplitN(record, "\n", 7)
	if len(parts) < 6 {
		return history.Commit{}, fmt.Errorf("malformed log record: %d fields", len(parts))
	}

	timestamp, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return history.Commit{}, fmt.Errorf("malformed commit time %q: %w", parts[4], err)
	}

	var parents []string
	if parts[5] != "" {
		parents = strings.Fields(parts[5])
	}

	message := ""
	if len(parts) == 7 {
		message = strings.TrimSpace(parts[6])
	}

	author := parts[2]
	if author == "" {
		author = "Unknown"
	}

	return history.Commit{
		SHA:       parts[0],
		ShortSHA:  parts[1],
		Author:    author,
		Email:     parts[3],
		Timestamp: timestamp,
		Message:   message,
		Parents:   parents,
	}, nil
}

func (s *repo) branches(ctx context.Context) ([]history.Branch, error) {
	out, err := s.runGit(ctx, false, "for-each-ref", "--format="+refFormat, "refs/heads", "refs/remotes")
	if err != nil {
		return nil, err
	}
	return parseRefs(out)
}

// parseRefs decodes for-each-ref output into branches, locals before remotes.
func parseRefs(out string) ([]history.Branch, error) {
	var local, remote []history.Branch
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed ref line: %d fields", len(fields))
		}
		refname, hash, upstream, track, headMark := fields[0], fields[1], fields[2], fields[3], fields[4]

		switch {
		case strings.HasPrefix(refname, "refs/heads/"):
			name := strings.TrimPrefix(refname, "refs/heads/")
			ahead, behind := parseTrack(track)
			local = append(local, history.Branch{
				Name:      name,
				TipSHA:    hash,
				IsCurrent: headMark == "*",
				Upstream:  upstream,
				Ahead:     ahead,
				Behind:    behind,
			})
		case strings.HasPrefix(refname, "refs/remotes/"):
			name := strings.TrimPrefix(refname, "refs/remotes/")
			if strings.HasSuffix(name, "/HEAD") {
				continue
			}
			remote = append(remote, history.Branch{
				Name:     name,
				TipSHA:   hash,
				IsRemote: true,
			})
		}
	}

	all := make([]history.Branch, 0, len(local)+len(remote))
	all = append(all, local...)
	return append(all, remote...), nil
}

// parseTrack reads the %(upstream:track) divergence marker. An empty string
// means in sync, "[gone]" means the upstream ref vanished.
func parseTrack(track string) (ahead, behind int) {
	track = strings.TrimSpace(track)
	if track == "" || track == "[gone]" {
		return 0, 0
	}
	track = strings.TrimPrefix(track, "[")
	track = strings.TrimSuffix(track, "]")
	for _, part := range strings.Split(track, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "ahead "):
			ahead, _ = strconv.Atoi(strings.TrimPrefix(part, "ahead "))
		case strings.HasPrefix(part, "behind "):
			behind, _ = strconv.Atoi(strings.TrimPrefix(part, "behind "))
		}
	}
	return ahead, behind
}
