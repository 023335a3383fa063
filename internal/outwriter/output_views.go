package outwriter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/gitspark/schema"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func authorsView(report *schema.AnalysisReport) view {
	return view{
		title:  "gitspark authors",
		data:   schema.EnrichAuthors(report.Authors, report.Repository.TotalCommits),
		report: report,
		sections: func(f formatter) []section {
			authors := schema.EnrichAuthors(report.Authors, report.Repository.TotalCommits)
			s := section{
				Title: "Authors",
				Header: []string{
					"Rank", "Author", "Email", "Commits", "Share", "Insertions", "Deletions", "Files",
					"Active Days", "Avg Size", "Largest", "After Hours", "Weekend", "First Commit", "Last Commit",
				},
			}
			for _, a := range authors {
				s.Rows = append(s.Rows, []string{
					f.int(a.Rank),
					a.ShortName,
					a.Email,
					f.int(a.Commits),
					f.pct(a.Share),
					f.int(a.Insertions),
					f.int(a.Deletions),
					f.int(a.FilesChanged),
					f.int(a.ActiveDays),
					f.float(a.AvgCommitSize),
					f.int(a.LargestCommit),
					f.int(a.AfterHoursCommits),
					f.int(a.WeekendCommits),
					f.date(a.FirstCommit),
					f.date(a.LastCommit),
				})
			}
			return []section{s}
		},
	}
}

func filesView(report *schema.AnalysisReport) view {
	return view{
		title:  "gitspark hotspots",
		data:   report.Hotspots,
		width:  70,
		report: report,
		sections: func(f formatter) []section {
			factors := section{Title: "Risk Factors", Header: []string{"Rank", "Path"}}
			for _, factor := range schema.AllRiskFactors {
				factors.Header = append(factors.Header, string(factor))
			}
			for _, h := range report.Hotspots {
				row := []string{f.int(h.Rank), f.path(h.Path)}
				for _, factor := range schema.AllRiskFactors {
					row = append(row, f.score(h.Factors[factor]))
				}
				factors.Rows = append(factors.Rows, row)
			}
			return []section{hotspotSection("Hotspots", report, f), factors}
		},
	}
}

func teamView(report *schema.AnalysisReport) view {
	ts := report.Team
	return view{
		title:  "gitspark team score",
		data:   ts,
		report: report,
		sections: func(f formatter) []section {
			c, k, q, w := ts.Collaboration, ts.Consistency, ts.Quality, ts.WorkLife
			limits := section{Title: "Limitations", Header: []string{"Area", "Data Source", "Caveats"}}
			for _, l := range []struct {
				area string
				lim  schema.Limitations
			}{
				{"collaboration", c.Limitations},
				{"consistency", k.Limitations},
				{"quality", q.Limitations},
				{"work_life_balance", w.Limitations},
			} {
				limits.Rows = append(limits.Rows, []string{l.area, l.lim.DataSource, strings.Join(l.lim.Caveats, "; ")})
			}
			return []section{
				keyValue("Team",
					[2]string{"Overall", f.float(ts.Overall)},
				),
				keyValue("Collaboration",
					[2]string{"Files", f.int(c.TotalFiles)},
					[2]string{"Single-author files", f.int(c.SingleAuthorFiles)},
					[2]string{"Multi-author files", f.int(c.MultiAuthorFiles)},
					[2]string{"Specialization", f.float(c.SpecializationScore)},
					[2]string{"Authors per file", f.float(c.AvgAuthorsPerFile)},
					[2]string{"Shared author pairs", f.int(c.SharedAuthorPairs)},
					[2]string{"Cross-author interaction", f.float(c.CrossAuthorInteraction)},
				),
				keyValue("Consistency",
					[2]string{"Bus factor", f.int(k.BusFactor)},
					[2]string{"Bus factor %", f.float(k.BusFactorPercentage)},
					[2]string{"Velocity consistency", f.float(k.VelocityConsistency)},
					[2]string{"Delivery cadence", f.float(k.DeliveryCadence)},
					[2]string{"Cadence CoV", f.score(k.CadenceCoV)},
					[2]string{"Gini coefficient", f.score(k.GiniCoefficient)},
				),
				keyValue("Quality",
					[2]string{"Test files", f.int(q.TestFiles)},
					[2]string{"Test file ratio", f.pct(q.TestFileRatio)},
					[2]string{"Test commits", f.int(q.TestCommits)},
					[2]string{"Test commit ratio", f.pct(q.TestCommitRatio)},
					[2]string{"Refactor commits", f.int(q.RefactorCommits)},
					[2]string{"Refactor ratio", f.pct(q.RefactorRatio)},
					[2]string{"Bugfix commits", f.int(q.BugfixCommits)},
					[2]string{"Bugfix ratio", f.pct(q.BugfixRatio)},
				),
				keyValue("Work-Life Balance",
					[2]string{"After-hours commits", f.int(w.AfterHoursCommits)},
					[2]string{"After-hours share", f.pct(w.AfterHoursShare)},
					[2]string{"Weekend commits", f.int(w.WeekendCommits)},
					[2]string{"Weekend share", f.pct(w.WeekendShare)},
					[2]string{"Active days", f.int(w.ActiveDays)},
					[2]string{"Multi-author days", f.int(w.MultiAuthorDays)},
					[2]string{"Solo-author days", f.int(w.SoloAuthorDays)},
					[2]string{"Multi-author day share", f.pct(w.MultiAuthorDayShare)},
				),
				limits,
			}
		},
	}
}

func trendsView(report *schema.AnalysisReport) view {
	d := report.DailyTrends
	return view{
		title:  "gitspark daily trends",
		data:   d,
		report: report,
		sections: func(f formatter) []section {
			m := d.Metadata
			flow := section{Title: "Flow", Header: []string{"Date", "Commits", "Authors", "Insertions", "Deletions", "Churn", "Files", "P50 Size", "P90 Size"}}
			for _, r := range d.Flow {
				flow.Rows = append(flow.Rows, []string{r.Date, f.int(r.Commits), f.int(r.Authors), f.int(r.Insertions), f.int(r.Deletions), f.int(r.Churn), f.int(r.Files), f.float(r.P50CommitSize), f.float(r.P90CommitSize)})
			}
			stability := section{Title: "Stability", Header: []string{"Date", "Reverts", "Merges", "Merge Ratio", "Retouched", "Retouch Rate", "Renames", "Out of Hours"}}
			for _, r := range d.Stability {
				stability.Rows = append(stability.Rows, []string{r.Date, f.int(r.Reverts), f.int(r.Merges), f.pct(r.MergeRatio), f.int(r.RetouchedFiles), f.pct(r.RetouchRate), f.int(r.Renames), f.pct(r.OutOfHoursShare)})
			}
			ownership := section{Title: "Ownership", Header: []string{"Date", "New Files", "Single Owner", "Authors per File"}}
			for _, r := range d.Ownership {
				ownership.Rows = append(ownership.Rows, []string{r.Date, f.int(r.NewFiles), f.pct(r.SingleOwnerShare), f.float(r.AvgAuthorsPerFile)})
			}
			coupling := section{Title: "Coupling", Header: []string{"Date", "Multi-file Commits", "Co-change Pairs", "Density"}}
			for _, r := range d.Coupling {
				coupling.Rows = append(coupling.Rows, []string{r.Date, f.int(r.MultiFileCommits), f.int(r.CoChangePairs), f.float(r.CoChangeDensity)})
			}
			hygiene := section{Title: "Hygiene", Header: []string{"Date", "Median Length", "Short Messages", "Conventional"}}
			for _, r := range d.Hygiene {
				hygiene.Rows = append(hygiene.Rows, []string{r.Date, f.float(r.MedianMessageLength), f.int(r.ShortMessages), f.int(r.ConventionalCommits)})
			}
			return []section{
				keyValue("Window",
					[2]string{"Timezone", m.Timezone},
					[2]string{"Start", m.StartDate},
					[2]string{"End", m.EndDate},
					[2]string{"Days", f.int(m.TotalDays)},
					[2]string{"Active days", f.int(m.ActiveDays)},
					[2]string{"Retouch window", f.int(m.RetouchWindowDays) + "d"},
					[2]string{"Ownership window", f.int(m.OwnershipWindowDays) + "d"},
					[2]string{"Business hours", f.int(m.BusinessHours.Start) + "-" + f.int(m.BusinessHours.End)},
					[2]string{"Contributions", f.int(d.Contributions.TotalContributions)},
					[2]string{"Busiest day", f.int(d.Contributions.MaxCount)},
				),
				flow, stability, ownership, coupling, hygiene,
			}
		},
	}
}

func governanceView(report *schema.AnalysisReport) view {
	g := report.Governance
	return view{
		title:  "gitspark governance",
		data:   g,
		report: report,
		sections: func(f formatter) []section {
			types := make([]string, 0, len(g.TypeCounts))
			for t := range g.TypeCounts {
				types = append(types, t)
			}
			sort.Slice(types, func(i, j int) bool {
				if g.TypeCounts[types[i]] != g.TypeCounts[types[j]] {
					return g.TypeCounts[types[i]] > g.TypeCounts[types[j]]
				}
				return types[i] < types[j]
			})
			counts := section{Title: "Commit Types", Header: []string{"Type", "Commits"}}
			for _, t := range types {
				counts.Rows = append(counts.Rows, []string{t, f.int(g.TypeCounts[t])})
			}
			return []section{
				keyValue("Governance",
					[2]string{"Commits", f.int(g.TotalCommits)},
					[2]string{"Conventional commits", f.int(g.ConventionalCommits)},
					[2]string{"Conventional ratio", f.pct(g.ConventionalRatio)},
					[2]string{"Issue references", f.int(g.IssueReferences)},
					[2]string{"Traceability", f.pct(g.TraceabilityScore)},
					[2]string{"Short messages", f.int(g.ShortMessages)},
					[2]string{"Short message ratio", f.pct(g.ShortMessageRatio)},
					[2]string{"WIP commits", f.int(g.WIPCommits)},
					[2]string{"Revert commits", f.int(g.RevertCommits)},
					[2]string{"Merge-pattern commits", f.int(g.MergePatternCommits)},
					[2]string{"Large commits", f.int(g.LargeCommits)},
					[2]string{"Small commits", f.int(g.SmallCommits)},
					[2]string{"Message length mean", f.float(g.MessageLength.Mean)},
					[2]string{"Message length median", f.float(g.MessageLength.Median)},
					[2]string{"Message length p90", f.float(g.MessageLength.P90)},
					[2]string{"Message length max", f.int(g.MessageLength.Max)},
					[2]string{"Score", f.score(g.Score)},
				),
				counts,
			}
		},
	}
}

func checkView(result schema.CheckResult) view {
	return view{
		title: "gitspark risk check",
		data:  result,
		width: 40,
		sections: func(f formatter) []section {
			status := "PASSED"
			if !result.Passed {
				status = "FAILED"
			}
			violations := section{Title: "Violations", Header: []string{"Rank", "Path", "Risk", "Band", "Commits", "Churn"}}
			for _, h := range result.Violations {
				violations.Rows = append(violations.Rows, []string{f.int(h.Rank), f.path(h.Path), f.score(h.RiskScore), f.label(h.RiskScore), f.int(h.Commits), f.int(h.Churn)})
			}
			return []section{
				keyValue("Check",
					[2]string{"Max risk", f.score(result.MaxRisk)},
					[2]string{"Hotspots checked", f.int(result.Checked)},
					[2]string{"Violations", f.int(len(result.Violations))},
					[2]string{"Status", status},
				),
				violations,
			}
		},
	}
}
