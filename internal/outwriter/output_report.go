package outwriter

import (
	"sort"
	"strings"

	"github.com/huangsam/gitspark/schema"
)

// reportTopAuthors caps the author table of the full report.
const reportTopAuthors = 10

func reportView(report *schema.AnalysisReport) view {
	return view{
		title:  "gitspark analysis report",
		data:   report,
		report: report,
		width:  70,
		sections: func(f formatter) []section {
			sections := []section{
				summarySection(report, f),
				hotspotSection("Top Hotspots", report, f),
				authorSection("Top Authors", report, reportTopAuthors, f),
				riskBandSection(report.Risk),
				languageSection(report.Repository, f),
			}
			if len(report.Metadata.Warnings) > 0 {
				sections = append(sections, warningSection(report.Metadata.Warnings))
			}
			return sections
		},
	}
}

func summarySection(report *schema.AnalysisReport, f formatter) section {
	repo := report.Repository
	return keyValue("Summary",
		[2]string{"Commits", f.int(repo.TotalCommits)},
		[2]string{"Merge commits", f.int(repo.MergeCommits)},
		[2]string{"Authors", f.int(repo.TotalAuthors)},
		[2]string{"Files", f.int(repo.TotalFiles)},
		[2]string{"Insertions", f.int(repo.TotalInsertions)},
		[2]string{"Deletions", f.int(repo.TotalDeletions)},
		[2]string{"First commit", f.date(repo.FirstCommit)},
		[2]string{"Last commit", f.date(repo.LastCommit)},
		[2]string{"Active days", f.int(repo.ActiveDays)},
		[2]string{"Commits per day", f.float(repo.AvgCommitsPerDay)},
		[2]string{"Bus factor", f.int(repo.BusFactor)},
		[2]string{"Activity index", f.score(report.Summary.ActivityIndex) + " (" + f.activity(report.Summary.ActivityRating) + ")"},
		[2]string{"Governance score", f.score(report.Governance.Score)},
		[2]string{"Team score", f.float(report.Team.Overall)},
		[2]string{"Average risk", f.score(report.Risk.AverageRisk)},
		[2]string{"Max risk", f.score(report.Risk.MaxRisk) + " " + f.path(report.Risk.MaxRiskPath)},
		[2]string{"Fingerprint", report.Metadata.InputFingerprint},
	)
}

// ownerNames maps normalized emails to display names.
func ownerNames(authors []schema.AuthorStats) map[string]string {
	names := make(map[string]string, len(authors))
	for _, a := range authors {
		names[strings.ToLower(a.Email)] = a.Name
	}
	return names
}

// topOwner returns the display name of the largest owner of path.
func topOwner(path string, files map[string]schema.FileStats, names map[string]string) string {
	fs, ok := files[path]
	if !ok {
		return "-"
	}
	owners := schema.TopOwners(fs.Ownership, 1)
	if len(owners) == 0 {
		return "-"
	}
	if name, ok := names[owners[0]]; ok && name != "" {
		return schema.FormatOwners([]string{name})
	}
	return owners[0]
}

func hotspotSection(title string, report *schema.AnalysisReport, f formatter) section {
	files := make(map[string]schema.FileStats, len(report.Files))
	for _, fs := range report.Files {
		files[fs.Path] = fs
	}
	names := ownerNames(report.Authors)

	s := section{
		Title:  title,
		Header: []string{"Rank", "Path", "Hotspot", "Risk", "Band", "Commits", "Churn", "Authors", "Owner", "Last Change"},
	}
	for _, h := range report.Hotspots {
		s.Rows = append(s.Rows, []string{
			f.int(h.Rank),
			f.path(h.Path),
			f.score(h.HotspotScore),
			f.score(h.RiskScore),
			f.label(h.RiskScore),
			f.int(h.Commits),
			f.int(h.Churn),
			f.int(h.Authors),
			topOwner(h.Path, files, names),
			f.date(h.LastChange),
		})
	}
	return s
}

func authorSection(title string, report *schema.AnalysisReport, limit int, f formatter) section {
	authors := schema.EnrichAuthors(report.Authors, report.Repository.TotalCommits)
	if limit > 0 && len(authors) > limit {
		authors = authors[:limit]
	}
	s := section{
		Title:  title,
		Header: []string{"Rank", "Author", "Email", "Commits", "Share", "Churn", "Files", "Active Days", "Last Commit"},
	}
	for _, a := range authors {
		s.Rows = append(s.Rows, []string{
			f.int(a.Rank),
			a.ShortName,
			a.Email,
			f.int(a.Commits),
			f.pct(a.Share),
			f.int(a.Churn),
			f.int(a.FilesChanged),
			f.int(a.ActiveDays),
			f.date(a.LastCommit),
		})
	}
	return s
}

func riskBandSection(risk schema.RiskSummary) section {
	s := section{Title: "Risk Bands", Header: []string{"Band", "Files"}}
	for _, band := range schema.AllRiskBands {
		s.Rows = append(s.Rows, []string{string(band), itoa(risk.BandCounts[band])})
	}
	return s
}

func languageSection(repo schema.RepositoryStats, f formatter) section {
	names := make([]string, 0, len(repo.Languages))
	for name := range repo.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := repo.Languages[names[i]].Churn, repo.Languages[names[j]].Churn
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	s := section{Title: "Languages", Header: []string{"Language", "Files", "Insertions", "Deletions", "Churn"}}
	for _, name := range names {
		l := repo.Languages[name]
		s.Rows = append(s.Rows, []string{name, f.int(l.Files), f.int(l.Insertions), f.int(l.Deletions), f.int(l.Churn)})
	}
	return s
}

func warningSection(warnings []string) section {
	s := section{Title: "Warnings", Header: []string{"#", "Warning"}}
	for i, w := range warnings {
		s.Rows = append(s.Rows, []string{itoa(i + 1), w})
	}
	return s
}
