// Package changelog reads commit history and renders it as a fixed
// hierarchical markdown document, grouped by commit type.
package changelog

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/decree-tools/decree/internal/commitmsg"
)

// Commit is one entry from git log, with its parsed message.
type Commit struct {
	Hash    string
	Subject string
	Body    string
	Msg     *commitmsg.Message
}

// Field and record separators for the git log pretty format. Unit and
// record separator control characters cannot appear in commit messages
// written by humans, unlike newlines.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// ReadLog runs git log in root and returns parsed commits, newest first
// (git's native order). since limits the range to since..HEAD; empty
// means full history.
func ReadLog(root, since string) ([]Commit, error) {
	args := []string{"log", "--no-merges", "--pretty=format:%h" + fieldSep + "%s" + fieldSep + "%b" + recordSep}
	if since != "" {
		args = append(args, since+"..HEAD")
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("git log: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("running git log: %w", err)
	}

	return parseLogOutput(string(out)), nil
}

// parseLogOutput splits raw git log output on the record and field
// separators and parses each commit message.
func parseLogOutput(out string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		parts := strings.SplitN(record, fieldSep, 3)
		if len(parts) != 3 {
			continue
		}
		c := Commit{
			Hash:    parts[0],
			Subject: parts[1],
			Body:    parts[2],
		}
		c.Msg = commitmsg.Parse(c.Subject + "\n\n" + c.Body)
		commits = append(commits, c)
	}
	return commits
}
