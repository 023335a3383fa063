// Package normalize turns raw commit entries into canonical commit records.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
)

// ShortHashLength is the number of hash characters kept in CommitRecord.ShortHash.
const ShortHashLength = 7

// ErrMalformedCommit is the sentinel wrapped by every MalformedCommitError.
var ErrMalformedCommit = errors.New("malformed commit")

// MalformedCommitError identifies the commit and field that failed validation.
type MalformedCommitError struct {
	Index int
	Hash  string
	Field string
}

func (e *MalformedCommitError) Error() string {
	hash := e.Hash
	if hash == "" {
		hash = "<empty>"
	}
	return fmt.Sprintf("malformed commit at index %d (hash %s): invalid %s", e.Index, hash, e.Field)
}

// Unwrap allows errors.Is(err, ErrMalformedCommit).
func (e *MalformedCommitError) Unwrap() error {
	return ErrMalformedCommit
}

var (
	coAuthorTrailer = regexp.MustCompile(`(?im)^[ \t]*co-authored-by:[ \t]*(.*?)[ \t]*$`)
	coAuthorValue   = regexp.MustCompile(`^(.*?)\s*<([^<>\s@]+@[^<>\s]+)>$`)
)

// Normalize validates one raw commit and produces its canonical record.
// The index is the position of the commit in the input stream and is only used
// for error reporting. Files matching any exclude pattern are dropped before
// line counts are totalled. Non-fatal oddities are returned as warnings.
func Normalize(index int, raw schema.RawCommit, excludes []string) (schema.CommitRecord, []string, error) {
	hash := strings.TrimSpace(raw.Hash)
	if hash == "" {
		return schema.CommitRecord{}, nil, &MalformedCommitError{Index: index, Hash: raw.Hash, Field: "hash"}
	}
	if raw.Timestamp.IsZero() {
		return schema.CommitRecord{}, nil, &MalformedCommitError{Index: index, Hash: hash, Field: "timestamp"}
	}

	short := hash
	if len(short) > ShortHashLength {
		short = short[:ShortHashLength]
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf("commit %s: ", short)+fmt.Sprintf(format, args...))
	}

	name := strings.TrimSpace(raw.AuthorName)
	email := strings.TrimSpace(raw.AuthorEmail)
	key := strings.ToLower(email)
	if key == "" {
		key = strings.ToLower(name)
		if key == "" {
			key = "unknown"
		}
		warn("missing author email, identifying author as %q", key)
	}
	if name == "" {
		name = email
	}

	files := make([]schema.FileChange, 0, len(raw.Files))
	var insertions, deletions int
	for i, fc := range raw.Files {
		fc.Path = strings.TrimSpace(fc.Path)
		if fc.Path == "" {
			return schema.CommitRecord{}, nil, &MalformedCommitError{Index: index, Hash: hash, Field: fmt.Sprintf("files[%d].path", i)}
		}
		if fc.Insertions < 0 {
			return schema.CommitRecord{}, nil, &MalformedCommitError{Index: index, Hash: hash, Field: fmt.Sprintf("files[%d].insertions", i)}
		}
		if fc.Deletions < 0 {
			return schema.CommitRecord{}, nil, &MalformedCommitError{Index: index, Hash: hash, Field: fmt.Sprintf("files[%d].deletions", i)}
		}
		if contract.ShouldIgnore(fc.Path, excludes) {
			continue
		}
		fc = normalizeStatus(fc, warn)
		insertions += fc.Insertions
		deletions += fc.Deletions
		files = append(files, fc)
	}

	subject := strings.TrimSpace(raw.Subject)
	body := strings.TrimSpace(raw.Body)
	message := subject
	if body != "" {
		message = subject + "\n\n" + body
	}

	return schema.CommitRecord{
		Hash:         hash,
		ShortHash:    short,
		AuthorName:   name,
		AuthorEmail:  email,
		AuthorKey:    key,
		Timestamp:    raw.Timestamp,
		Subject:      subject,
		Message:      message,
		Insertions:   insertions,
		Deletions:    deletions,
		FilesChanged: len(files),
		IsMerge:      len(raw.Parents) > 1,
		CoAuthors:    parseCoAuthors(body, key, warn),
		Files:        files,
	}, warnings, nil
}

// normalizeStatus enforces that OldPath is present exactly for renames and copies.
func normalizeStatus(fc schema.FileChange, warn func(string, ...any)) schema.FileChange {
	if fc.Status == "" {
		if fc.OldPath != "" {
			fc.Status = schema.StatusRenamed
		} else {
			fc.Status = schema.StatusModified
		}
	}
	if _, ok := schema.ValidFileStatuses[fc.Status]; !ok {
		warn("unknown status %q for %s, treating as modified", fc.Status, fc.Path)
		fc.Status = schema.StatusModified
	}

	switch fc.Status {
	case schema.StatusRenamed, schema.StatusCopied:
		fc.OldPath = strings.TrimSpace(fc.OldPath)
		if fc.OldPath == "" {
			warn("%s of %s has no source path, rename chain not resolved", fc.Status, fc.Path)
			if fc.Status == schema.StatusRenamed {
				fc.Status = schema.StatusModified
			} else {
				fc.Status = schema.StatusAdded
			}
		}
	default:
		if fc.OldPath != "" {
			warn("ignoring source path %s on %s file %s", fc.OldPath, fc.Status, fc.Path)
			fc.OldPath = ""
		}
	}
	return fc
}

// parseCoAuthors extracts Co-authored-by trailers, deduplicated by lowercase email.
// The primary author is never listed as their own co-author.
func parseCoAuthors(body, authorKey string, warn func(string, ...any)) []schema.CoAuthor {
	matches := coAuthorTrailer.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]struct{}{authorKey: {}}
	var coAuthors []schema.CoAuthor
	for _, m := range matches {
		parts := coAuthorValue.FindStringSubmatch(m[1])
		if parts == nil {
			warn("unparseable co-author trailer %q", m[1])
			continue
		}
		email := strings.TrimSpace(parts[2])
		key := strings.ToLower(email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			name = email
		}
		coAuthors = append(coAuthors, schema.CoAuthor{Name: name, Email: email})
	}
	return coAuthors
}
