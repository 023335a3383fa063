// Package collector streams git history into raw commit entries.
package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"golang.org/x/sync/errgroup"
)

// Separators used in the pretty format. Neither can appear in a path or a
// commit message that git emits verbatim.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// headerFields is the number of separated fields before the numstat block.
const headerFields = 7

// maxRecordSize bounds a single commit record, numstat lines included.
const maxRecordSize = 64 * 1024 * 1024

// prettyFormat emits hash, parents, author name, author email, author date,
// subject and body, then leaves the rest of the record to --numstat/--summary.
var prettyFormat = "--pretty=format:" + strings.Join([]string{
	"%x1e%H", "%P", "%an", "%ae", "%aI", "%s", "%b", "",
}, "%x1f")

// Request selects the history to collect.
type Request struct {
	RepoPath   string
	Branch     string // Empty means HEAD
	PathFilter string // Optional pathspec
	Since      time.Time
	Until      time.Time
}

// Args builds the git arguments for a request. Commits come oldest first.
func Args(req Request) []string {
	args := []string{
		"-c", "core.quotepath=off",
		"log",
		"--reverse",
		"--no-color",
		"--numstat",
		"--summary",
		"-M",
		"--date=iso-strict",
		prettyFormat,
	}
	if !req.Since.IsZero() {
		args = append(args, "--since="+req.Since.Format(time.RFC3339))
	}
	if !req.Until.IsZero() {
		args = append(args, "--until="+req.Until.Format(time.RFC3339))
	}
	if req.Branch != "" {
		args = append(args, req.Branch)
	}
	if req.PathFilter != "" {
		args = append(args, "--", req.PathFilter)
	}
	return args
}

// Collect runs git log for req and calls fn once per commit, in git's order.
// Git output is parsed while it streams, so the history is never held in memory.
// The first error from git, the parser or fn stops both sides.
func Collect(ctx context.Context, client contract.GitClient, req Request, fn func(schema.RawCommit) error) error {
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.Stream(gctx, req.RepoPath, pw, Args(req)...)
		_ = pw.CloseWithError(err)
		return err
	})

	g.Go(func() error {
		err := Parse(pr, fn)
		_ = pr.CloseWithError(err)
		return err
	})

	return g.Wait()
}

// Parse reads records produced with Args and calls fn for each commit.
func Parse(r io.Reader, fn func(schema.RawCommit) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	scanner.Split(splitRecords)

	for scanner.Scan() {
		record := scanner.Text()
		if strings.TrimSpace(record) == "" {
			continue
		}
		commit, err := parseRecord(record)
		if err != nil {
			return err
		}
		if err := fn(commit); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading git log: %w", err)
	}
	return nil
}

// splitRecords is a bufio.SplitFunc that yields the text between record separators.
func splitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, recordSep[0]); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// errTruncatedRecord is returned when a record has fewer fields than the format emits.
var errTruncatedRecord = errors.New("truncated git log record")

// parseRecord turns one record into a RawCommit. An unparseable date is left
// zero so the normalizer can reject the commit with its index and hash.
func parseRecord(record string) (schema.RawCommit, error) {
	parts := strings.SplitN(record, fieldSep, headerFields+1)
	if len(parts) < headerFields+1 {
		return schema.RawCommit{}, fmt.Errorf("%w: %q", errTruncatedRecord, truncate(record, 80))
	}

	commit := schema.RawCommit{
		Hash:        strings.TrimSpace(parts[0]),
		Parents:     strings.Fields(parts[1]),
		AuthorName:  parts[2],
		AuthorEmail: parts[3],
		Subject:     parts[5],
		Body:        strings.TrimSpace(parts[6]),
	}
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[4])); err == nil {
		commit.Timestamp = ts
	}
	commit.Files = parseChanges(parts[7])
	return commit, nil
}

// parseChanges reads the numstat and summary lines that follow a header.
func parseChanges(block string) []schema.FileChange {
	var changes []schema.FileChange
	statuses := make(map[string]schema.FileStatus)

	for line := range strings.SplitSeq(block, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if fc, ok := parseNumstatLine(line); ok {
			changes = append(changes, fc)
			continue
		}
		if path, status, ok := parseSummaryLine(line); ok {
			statuses[path] = status
		}
	}

	for i := range changes {
		if status, ok := statuses[changes[i].Path]; ok && changes[i].Status == schema.StatusModified {
			changes[i].Status = status
		}
	}
	return changes
}

// parseNumstatLine parses "added<TAB>deleted<TAB>path". Binary files report
// "-" for both counts, which is recorded as zero.
func parseNumstatLine(line string) (schema.FileChange, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return schema.FileChange{}, false
	}
	add, okAdd := parseChurnValue(parts[0])
	del, okDel := parseChurnValue(parts[1])
	if !okAdd || !okDel || parts[2] == "" {
		return schema.FileChange{}, false
	}

	fc := schema.FileChange{
		Path:       parts[2],
		Insertions: add,
		Deletions:  del,
		Status:     schema.StatusModified,
	}
	if strings.Contains(parts[2], " => ") {
		if oldPath, newPath := parseRenamePath(parts[2]); oldPath != "" && newPath != "" {
			fc.Path = newPath
			fc.OldPath = oldPath
			fc.Status = schema.StatusRenamed
		}
	}
	return fc, true
}

// parseChurnValue converts a numstat count, handling "-" as 0.
func parseChurnValue(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	val, err := strconv.Atoi(s)
	if err != nil || val < 0 {
		return 0, false
	}
	return val, true
}

// parseSummaryLine recognizes " create mode 100644 path" and " delete mode 100644 path".
func parseSummaryLine(line string) (string, schema.FileStatus, bool) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 4)
	if len(fields) < 4 || fields[1] != "mode" {
		return "", "", false
	}
	switch fields[0] {
	case "create":
		return fields[3], schema.StatusAdded, true
	case "delete":
		return fields[3], schema.StatusDeleted, true
	default:
		return "", "", false
	}
}

// parseRenamePath extracts old and new paths from a numstat rename.
// It handles "old => new" and "prefix{old => new}suffix".
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	return joinRename(prefix, renameParts[0], suffix), joinRename(prefix, renameParts[1], suffix)
}

// joinRename rebuilds a path from a braced rename, where either side may be
// empty as in "src/{ => pkg}/file.go".
func joinRename(prefix, middle, suffix string) string {
	p := prefix + middle + suffix
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.TrimPrefix(p, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
