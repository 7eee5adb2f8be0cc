package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/intelscan/intelscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as a Markdown document.
func (w *MarkdownWriter) Write(ctx context.Context, report *model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writePresence(md, report)
	w.writePhones(md, report)
	w.writeDomain(md, report)
	w.writeBreaches(md, report)
	w.writeDarkweb(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return md.Build()
}

// Format returns FormatMarkdown.
func (w *MarkdownWriter) Format() string {
	return FormatMarkdown
}

// writeHeader writes the title and the subject overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Intelscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", "`" + report.Subject + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Profiles Found", fmt.Sprintf("%d of %d platforms", report.FoundCount, report.TotalProbes)},
		},
	})
	md.PlainText("")
}

// writePresence writes the probe summary table, the found-profile link
// list and the found versus not-found pie chart.
func (w *MarkdownWriter) writePresence(md *markdown.Markdown, report *model.Report) {
	md.H2(sectionTitle("username presence"))
	md.PlainText("")

	if len(report.ProbeResults) == 0 {
		md.PlainText("No platforms were probed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.ProbeResults))
	for i, pr := range report.ProbeResults {
		verdict := "❌"
		if pr.Found {
			verdict = "✅"
		}
		rows[i] = []string{pr.Platform, verdict, truncateString(pr.Reason, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Found", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	if found := report.FoundProfiles(); len(found) > 0 {
		md.PlainText("### " + sectionTitle("found profiles"))
		md.PlainText("")

		links := make([]string, len(found))
		for i, pr := range found {
			links[i] = fmt.Sprintf("[%s](%s)", pr.Platform, pr.URL)
		}
		md.BulletList(links...)
		md.PlainText("")
	}

	w.writePieChart(md, report)
}

// writePieChart writes a mermaid pie chart of found versus not found
// platforms.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	if report.TotalProbes == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Profile Presence"),
		piechart.WithShowData(true),
	)

	if report.FoundCount > 0 {
		chart.LabelAndIntValue("Found", uint64(report.FoundCount))
	}
	if notFound := report.TotalProbes - report.FoundCount; notFound > 0 {
		chart.LabelAndIntValue("Not found", uint64(notFound))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePhones writes one table row per analyzed phone number.
func (w *MarkdownWriter) writePhones(md *markdown.Markdown, report *model.Report) {
	if len(report.PhoneLookups) == 0 {
		return
	}

	md.H2(sectionTitle("phone numbers"))
	md.PlainText("")

	rows := make([][]string, len(report.PhoneLookups))
	for i, pl := range report.PhoneLookups {
		valid := "❌"
		if pl.Valid {
			valid = "✅"
		}
		rows[i] = []string{
			"`" + pl.Number + "`",
			valid,
			orDash(pl.Country),
			orDash(pl.Carrier),
			orDash(pl.LineType),
			orDash(pl.Location),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Number", "Valid", "Country", "Carrier", "Type", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDomain writes the registration table and the DNS record table.
func (w *MarkdownWriter) writeDomain(md *markdown.Markdown, report *model.Report) {
	dl := report.DomainLookup
	if dl == nil {
		return
	}

	md.H2(sectionTitle("domain intelligence"))
	md.PlainText("")

	rows := [][]string{
		{"Domain", "`" + dl.Domain + "`"},
		{"Registrar", orDash(dl.Registrar)},
		{"Created", orDash(dl.CreatedDate)},
		{"Expires", orDash(dl.ExpirationDate)},
	}
	if servers := decodeStringList(dl.NameServers); len(servers) > 0 {
		rows = append(rows, []string{"Name Servers", strings.Join(servers, ", ")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	records := decodeRecordMap(dl.DNSRecords)
	if len(records) == 0 {
		return
	}

	types := make([]string, 0, len(records))
	for recordType := range records {
		types = append(types, recordType)
	}
	sort.Strings(types)

	recordRows := make([][]string, 0, len(types))
	for _, recordType := range types {
		recordRows = append(recordRows, []string{recordType, strings.Join(records[recordType], ", ")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Record", "Values"},
		Rows:   recordRows,
	})
	md.PlainText("")
}

// writeBreaches writes the exposure alert and the breach table.
func (w *MarkdownWriter) writeBreaches(md *markdown.Markdown, report *model.Report) {
	if len(report.BreachHits) == 0 {
		return
	}

	md.H2(sectionTitle("breach exposure"))
	md.PlainText("")

	maxSev, _ := report.MaxBreachSeverity()
	switch {
	case maxSev >= model.SeverityCritical:
		md.Cautionf(
			"Plaintext credentials exposed! %d breach hit(s) require immediate password rotation.",
			len(report.BreachHits),
		)
	case maxSev >= model.SeverityHigh:
		md.Warningf(
			"Hashed credentials exposed. %d breach hit(s) should prompt a password change.",
			len(report.BreachHits),
		)
	default:
		md.Importantf(
			"The subject appears in %d breach record(s).",
			len(report.BreachHits),
		)
	}
	md.PlainText("")

	rows := make([][]string, len(report.BreachHits))
	for i, hit := range report.BreachHits {
		rows[i] = []string{
			hit.BreachName,
			hit.Source,
			severityLabel(hit.Severity),
			truncateString(orDash(hit.Details), 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Breach", "Source", "Severity", "Details"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDarkweb writes the onion search engine mentions.
func (w *MarkdownWriter) writeDarkweb(md *markdown.Markdown, report *model.Report) {
	if len(report.DarkwebMentions) == 0 {
		return
	}

	md.H2(sectionTitle("dark-web mentions"))
	md.PlainText("")

	rows := make([][]string, len(report.DarkwebMentions))
	for i, mention := range report.DarkwebMentions {
		rows[i] = []string{
			orDash(truncateString(mention.Title, 40)),
			mention.Engine,
			"`" + mention.OnionHost + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Engine", "Onion Host"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors lists module failures recorded during the run.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.Report) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2(sectionTitle("errors"))
	md.PlainText("")
	md.Warningf(
		"%d module(s) failed during this investigation. Sections may be incomplete.",
		len(report.Errors),
	)
	md.PlainText("")
	md.BulletList(report.Errors...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [intelscan](https://github.com/intelscan/intelscan)*")
}

// sectionTitle renders a heading from its lowercase section name.
func sectionTitle(name string) string {
	return cases.Title(language.English).String(name)
}

// severityLabel renders a severity for display in tables.
func severityLabel(s model.Severity) string {
	return cases.Title(language.English).String(strings.ToLower(s.String()))
}

// orDash substitutes a dash for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// decodeStringList decodes a JSON-encoded string list stored on a
// lookup row. Malformed data renders as nothing rather than failing the
// report.
func decodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// decodeRecordMap decodes the JSON-encoded DNS record map stored on a
// lookup row.
func decodeRecordMap(raw string) map[string][]string {
	if raw == "" {
		return nil
	}
	out := make(map[string][]string)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
