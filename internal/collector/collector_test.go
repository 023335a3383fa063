package collector

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

//go:embed testdata/git_log.txt
var gitLogFixture string

// TestMain ensures the streaming collector leaves no goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collectAll(t *testing.T, log string) []schema.RawCommit {
	t.Helper()
	var commits []schema.RawCommit
	err := Parse(strings.NewReader(log), func(c schema.RawCommit) error {
		commits = append(commits, c)
		return nil
	})
	require.NoError(t, err)
	return commits
}

// streamArgs flattens the arguments MockGitClient.Stream passes to m.Called.
func streamArgs(req Request) []any {
	args := []any{mock.Anything, req.RepoPath}
	for _, arg := range Args(req) {
		args = append(args, arg)
	}
	return args
}

func TestParseFixture(t *testing.T) {
	commits := collectAll(t, gitLogFixture)
	require.Len(t, commits, 5)

	first := commits[0]
	assert.Equal(t, strings.Repeat("a", 40), first.Hash)
	assert.Empty(t, first.Parents)
	assert.Equal(t, "Alice", first.AuthorName)
	assert.Equal(t, "alice@example.com", first.AuthorEmail)
	assert.Equal(t, "feat: add main", first.Subject)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, []schema.FileChange{
		{Path: "main.go", Insertions: 10, Status: schema.StatusAdded},
		{Path: "README.md", Insertions: 5, Status: schema.StatusAdded},
	}, first.Files)

	second := commits[1]
	assert.Equal(t, []string{strings.Repeat("a", 40)}, second.Parents)
	assert.Contains(t, second.Body, "Co-authored-by: Alice <alice@example.com>")
	_, offset := second.Timestamp.Zone()
	assert.Equal(t, -6*3600, offset, "author offset is preserved")
	require.Len(t, second.Files, 2)
	assert.Equal(t, schema.FileChange{Path: "logo.png", Status: schema.StatusAdded}, second.Files[1], "binary counts are zero")

	third := commits[2]
	assert.Equal(t, []schema.FileChange{
		{Path: "src/helpers/strings.go", OldPath: "src/util/strings.go", Insertions: 2, Deletions: 2, Status: schema.StatusRenamed},
		{Path: "docs/new.txt", OldPath: "old.txt", Status: schema.StatusRenamed},
	}, third.Files)

	merge := commits[3]
	assert.Len(t, merge.Parents, 2)
	assert.Empty(t, merge.Files)

	last := commits[4]
	assert.Equal(t, []schema.FileChange{
		{Path: "README.md", Deletions: 5, Status: schema.StatusDeleted},
	}, last.Files)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, collectAll(t, ""))
	assert.Empty(t, collectAll(t, "\n\n"))
}

func TestParseTruncatedRecord(t *testing.T) {
	err := Parse(strings.NewReader(recordSep+"abc"+fieldSep+"def"), func(schema.RawCommit) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, errTruncatedRecord)
}

func TestParseBadDateLeavesZeroTimestamp(t *testing.T) {
	record := recordSep + strings.Join([]string{"abc", "", "A", "a@x.com", "not-a-date", "subject", "", ""}, fieldSep)
	commits := collectAll(t, record)
	require.Len(t, commits, 1)
	assert.True(t, commits[0].Timestamp.IsZero())
}

func TestParseStopsOnCallbackError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Parse(strings.NewReader(gitLogFixture), func(schema.RawCommit) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestParseRenamePath(t *testing.T) {
	testCases := []struct {
		name        string
		path        string
		expectedOld string
		expectedNew string
	}{
		{"simple rename", "old/file.go => new/file.go", "old/file.go", "new/file.go"},
		{"braced rename", "src/{old => new}/file.go", "src/old/file.go", "src/new/file.go"},
		{"complex braced rename", "a/b/{c/d => e/f}/file.go", "a/b/c/d/file.go", "a/b/e/f/file.go"},
		{"move into subdir", "src/{ => pkg}/file.go", "src/file.go", "src/pkg/file.go"},
		{"move out of subdir", "{lib => }/file.go", "lib/file.go", "file.go"},
		{"no braces", "old => new", "old", "new"},
		{"malformed - no arrow", "src/file.go", "", ""},
		{"malformed - empty braces", "src/{}/file.go", "", ""},
		{"malformed - unclosed brace", "src/{old => new/file.go", "", ""},
		{"empty old path", " => new/file.go", "", "new/file.go"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o, n := parseRenamePath(tc.path)
			assert.Equal(t, tc.expectedOld, o)
			assert.Equal(t, tc.expectedNew, n)
		})
	}
}

func TestParseNumstatLine(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		ok     bool
		add    int
		del    int
		status schema.FileStatus
	}{
		{"regular", "8\t1\tmain.go", true, 8, 1, schema.StatusModified},
		{"binary", "-\t-\timage.png", true, 0, 0, schema.StatusModified},
		{"rename", "8\t1\told.go => new.go", true, 8, 1, schema.StatusRenamed},
		{"not a number", "x\t1\tmain.go", false, 0, 0, ""},
		{"negative", "-3\t1\tmain.go", false, 0, 0, ""},
		{"missing path", "1\t1", false, 0, 0, ""},
		{"summary line", " create mode 100644 main.go", false, 0, 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fc, ok := parseNumstatLine(tc.line)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.add, fc.Insertions)
				assert.Equal(t, tc.del, fc.Deletions)
				assert.Equal(t, tc.status, fc.Status)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	args := Args(Request{RepoPath: "/repo", Branch: "main", PathFilter: "src/", Since: since})

	assert.Equal(t, []string{"-c", "core.quotepath=off", "log", "--reverse"}, args[:4])
	assert.Contains(t, args, "--numstat")
	assert.Contains(t, args, "--since=2024-01-01T00:00:00Z")
	assert.NotContains(t, strings.Join(args, " "), "--until")
	assert.Equal(t, []string{"main", "--", "src/"}, args[len(args)-3:])
}

func TestCollectWithMockClient(t *testing.T) {
	req := Request{RepoPath: "/repo"}
	mockClient := new(contract.MockGitClient)

	mockClient.On("Stream", streamArgs(req)...).Return([]byte(gitLogFixture), nil).Once()

	var hashes []string
	err := Collect(context.Background(), mockClient, req, func(c schema.RawCommit) error {
		hashes = append(hashes, c.Hash[:1])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "f"}, hashes)
	mockClient.AssertExpectations(t)
}

func TestCollectPropagatesGitError(t *testing.T) {
	gitErr := errors.New("not a git repository")
	req := Request{RepoPath: "/repo"}
	mockClient := new(contract.MockGitClient)
	mockClient.On("Stream", streamArgs(req)...).Return(nil, gitErr)

	err := Collect(context.Background(), mockClient, req, func(schema.RawCommit) error { return nil })
	assert.ErrorIs(t, err, gitErr)
}

func TestCollectPropagatesCallbackError(t *testing.T) {
	req := Request{RepoPath: "/repo"}
	mockClient := new(contract.MockGitClient)
	mockClient.On("Stream", streamArgs(req)...).Return([]byte(gitLogFixture), nil)

	stop := errors.New("stop")
	err := Collect(context.Background(), mockClient, req, func(schema.RawCommit) error { return stop })
	assert.ErrorIs(t, err, stop)
}
