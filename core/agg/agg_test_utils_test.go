package agg

import (
	"time"

	"github.com/huangsam/gitspark/schema"
)

// commit builds a normalized commit touching the given files.
func commit(email string, ts time.Time, files ...schema.FileChange) *schema.CommitRecord {
	c := &schema.CommitRecord{
		Hash:        ts.Format(time.RFC3339Nano) + email,
		ShortHash:   "abc1234",
		AuthorName:  "Author " + email,
		AuthorEmail: email,
		AuthorKey:   lower(email),
		Timestamp:   ts,
		Files:       files,
	}
	for _, fc := range files {
		c.Insertions += fc.Insertions
		c.Deletions += fc.Deletions
	}
	c.FilesChanged = len(files)
	return c
}

func change(path string, ins, del int) schema.FileChange {
	return schema.FileChange{Path: path, Insertions: ins, Deletions: del, Status: schema.StatusModified}
}

func lower(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + 'a' - 'A'
		}
	}
	return string(b)
}

// base is a Monday at 10:00 UTC.
var base = time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
