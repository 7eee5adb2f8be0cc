package output

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/intelscan/intelscan/internal/breach"
	"github.com/intelscan/intelscan/internal/darkweb"
	"github.com/intelscan/intelscan/internal/domainintel"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/phone"
	"github.com/intelscan/intelscan/internal/search"
)

// Printer writes lookup results to a terminal stream.
//
// All line output flows through a log.Logger with no prefix and no
// flags, which appends the trailing newline and serializes concurrent
// writes. Tables write to the underlying stream directly.
type Printer struct {
	// out is the destination stream, shared by line output and tables.
	out io.Writer

	// logger writes line-oriented output.
	logger *log.Logger

	// noColor disables ANSI escape sequences.
	noColor bool

	// verbose includes probe failure reasons in sweep output.
	verbose bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithNoColor disables ANSI colors. Use when output is redirected to a
// file or the terminal does not understand escape sequences.
func WithNoColor(noColor bool) Option {
	return func(p *Printer) {
		p.noColor = noColor
	}
}

// WithVerbose enables failure detail in sweep output. Without it a
// probe that never got a response prints a bare "Error" verdict.
func WithVerbose(verbose bool) Option {
	return func(p *Printer) {
		p.verbose = verbose
	}
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:    out,
		logger: log.New(out, "", 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SearchHeader announces the start of a username sweep.
func (p *Printer) SearchHeader(username string, total int) {
	p.logger.Printf("\n%s", p.paint(color.FgHiCyan,
		fmt.Sprintf("[*] Searching for username: %s (%d platforms)", username, total)))
}

// ProbeResult reports one completed platform probe. Hits print the
// profile URL on an indented follow-up line; transport failures print
// an "Error" verdict, expanded to the full reason in verbose mode.
func (p *Printer) ProbeResult(result model.ProbeResult) {
	checking := p.paint(color.FgHiBlue, fmt.Sprintf("[*] Checking %s...", result.Platform))

	switch {
	case result.Found:
		p.logger.Printf("%s %s", checking, p.paint(color.FgHiGreen, "FOUND!"))
		p.logger.Printf("    %s", p.paint(color.FgHiCyan, result.URL))
	case result.StatusCode == 0:
		// No HTTP response at all, so this is not a definitive miss.
		verdict := "Error"
		if p.verbose {
			verdict = result.Reason
		}
		p.logger.Printf("%s %s", checking, p.paint(color.FgHiYellow, verdict))
	default:
		p.logger.Printf("%s %s", checking, p.paint(color.FgHiRed, "Not found"))
	}
}

// SearchSummary reports the final found/total counts of a sweep.
func (p *Printer) SearchSummary(found, total int) {
	p.logger.Printf("\n%s", p.paint(color.FgHiGreen,
		fmt.Sprintf("[+] Found on %d/%d platforms", found, total)))
}

// PhoneResult renders one phone number analysis.
func (p *Printer) PhoneResult(result *phone.Result) {
	if result == nil {
		return
	}

	record := result.Record
	if !record.Valid {
		p.logger.Print(p.paint(color.FgHiRed, "[-] Invalid phone number"))
		return
	}

	carrier := record.Carrier
	if carrier == "" {
		carrier = "Unknown"
	}

	p.logger.Print(p.paint(color.FgHiGreen, "[+] Valid number!"))
	p.field("Country", record.Country)
	p.field("Carrier", carrier)
	p.field("Line Type", record.LineType)
	p.field("Location", record.Location)
	p.field("Timezone", record.Timezone)
	p.field("International Format", result.Formats.International)
	p.field("National Format", result.Formats.National)
}

// DomainResult renders one domain lookup. Registration fields that the
// registrar did not report are omitted rather than printed empty.
func (p *Printer) DomainResult(result *domainintel.Result) {
	if result == nil {
		return
	}

	record := result.Record
	p.logger.Print(p.paint(color.FgHiGreen, "[+] "+record.Domain))
	if record.Registrar != "" {
		p.field("Registrar", record.Registrar)
	}
	if record.CreatedDate != "" {
		p.field("Created", record.CreatedDate)
	}
	if record.ExpirationDate != "" {
		p.field("Expires", record.ExpirationDate)
	}
	if len(result.NameServers) > 0 {
		p.field("Name Servers", strings.Join(result.NameServers, ", "))
	}

	types := make([]string, 0, len(result.DNSRecords))
	for recordType := range result.DNSRecords {
		types = append(types, recordType)
	}
	sort.Strings(types)

	for _, recordType := range types {
		p.field(recordType, strings.Join(result.DNSRecords[recordType], ", "))
	}
}

// BreachResult renders one breach exposure check. Hits render as a
// table with severity highlighted.
func (p *Printer) BreachResult(result *breach.Result) {
	if result == nil {
		return
	}

	if result.Clean {
		p.logger.Print(p.paint(color.FgHiGreen,
			fmt.Sprintf("[+] No breach records found for %s", result.Account)))
		return
	}

	p.logger.Print(p.paint(color.FgHiRed,
		fmt.Sprintf("[-] Found %d breach record(s) for %s", len(result.Hits), result.Account)))

	table := p.newTable()
	table.Header("Breach", "Source", "Severity", "Details")
	for _, hit := range result.Hits {
		table.Append(hit.BreachName, hit.Source, p.severityCell(hit.Severity), hit.Details)
	}
	if err := table.Render(); err != nil {
		p.logger.Printf("table render failed: %v", err)
	}
}

// DarkwebResult renders one dark web sweep. Engines that failed are
// reported first so degraded coverage is visible before the results.
func (p *Printer) DarkwebResult(result *darkweb.Result) {
	if result == nil {
		return
	}

	for _, name := range result.Failed {
		p.logger.Print(p.paint(color.FgHiYellow, fmt.Sprintf("[!] %s: engine query failed", name)))
	}

	if len(result.Mentions) == 0 {
		p.logger.Print(p.paint(color.FgHiYellow, "[-] No dark web mentions found"))
		return
	}

	p.logger.Print(p.paint(color.FgHiGreen,
		fmt.Sprintf("[+] Found %d dark web mention(s)", len(result.Mentions))))
	for _, mention := range result.Mentions {
		title := mention.Title
		if title == "" {
			title = mention.OnionHost
		}
		p.logger.Printf("%s %s", p.paint(color.FgHiWhite, title),
			p.paint(color.FgHiBlue, "("+mention.Engine+")"))
		p.logger.Printf("    %s", p.paint(color.FgHiCyan, mention.URL))
	}
}

// Report renders a full investigation report. Sections with no
// findings are skipped, so a username-only run prints only the sweep.
func (p *Printer) Report(rep *model.Report) {
	if rep == nil {
		return
	}

	p.logger.Printf("\n%s", p.paint(color.FgHiCyan,
		fmt.Sprintf("[*] Investigation report for %s", rep.Subject)))
	p.field("Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05"))

	if rep.TotalProbes > 0 {
		p.logger.Print(p.paint(color.FgHiGreen,
			fmt.Sprintf("[+] Found on %d/%d platforms", rep.FoundCount, rep.TotalProbes)))
		for _, probe := range rep.ProbeResults {
			if !probe.Found {
				continue
			}
			p.logger.Printf("    %s %s", p.paint(color.FgHiWhite, probe.Platform+":"),
				p.paint(color.FgHiCyan, probe.URL))
		}
	}

	for _, lookup := range rep.PhoneLookups {
		if !lookup.Valid {
			p.logger.Print(p.paint(color.FgHiRed,
				fmt.Sprintf("[-] Invalid phone number: %s", lookup.Number)))
			continue
		}
		carrier := lookup.Carrier
		if carrier == "" {
			carrier = "Unknown"
		}
		p.logger.Print(p.paint(color.FgHiGreen, "[+] "+lookup.Number))
		p.field("Country", lookup.Country)
		p.field("Carrier", carrier)
		p.field("Line Type", lookup.LineType)
	}

	if lookup := rep.DomainLookup; lookup != nil {
		p.logger.Print(p.paint(color.FgHiGreen, "[+] "+lookup.Domain))
		if lookup.Registrar != "" {
			p.field("Registrar", lookup.Registrar)
		}
		if lookup.CreatedDate != "" {
			p.field("Created", lookup.CreatedDate)
		}
		if lookup.ExpirationDate != "" {
			p.field("Expires", lookup.ExpirationDate)
		}
		if servers := decodeStrings(lookup.NameServers); len(servers) > 0 {
			p.field("Name Servers", strings.Join(servers, ", "))
		}
	}

	if len(rep.BreachHits) > 0 {
		p.logger.Print(p.paint(color.FgHiRed,
			fmt.Sprintf("[-] Found %d breach record(s)", len(rep.BreachHits))))
		table := p.newTable()
		table.Header("Breach", "Source", "Severity", "Details")
		for _, hit := range rep.BreachHits {
			table.Append(hit.BreachName, hit.Source, p.severityCell(hit.Severity), hit.Details)
		}
		if err := table.Render(); err != nil {
			p.logger.Printf("table render failed: %v", err)
		}
	}

	if len(rep.DarkwebMentions) > 0 {
		p.logger.Print(p.paint(color.FgHiGreen,
			fmt.Sprintf("[+] Found %d dark web mention(s)", len(rep.DarkwebMentions))))
		for _, mention := range rep.DarkwebMentions {
			title := mention.Title
			if title == "" {
				title = mention.OnionHost
			}
			p.logger.Printf("%s %s", p.paint(color.FgHiWhite, title),
				p.paint(color.FgHiBlue, "("+mention.Engine+")"))
			p.logger.Printf("    %s", p.paint(color.FgHiCyan, mention.URL))
		}
	}

	for _, msg := range rep.Errors {
		p.logger.Print(p.paint(color.FgHiYellow, "[!] "+msg))
	}
}

// Sessions renders the recent-searches view, newest first as given.
func (p *Printer) Sessions(sessions []model.SearchSession) {
	if len(sessions) == 0 {
		p.logger.Print(p.paint(color.FgHiYellow, "No searches yet"))
		return
	}

	table := p.newTable()
	table.Header("When", "Type", "Query", "Results")
	for _, session := range sessions {
		table.Append(session.CreatedAt.Format("2006-01-02 15:04:05"),
			session.Type, session.Query, session.ResultsCount)
	}
	if err := table.Render(); err != nil {
		p.logger.Printf("table render failed: %v", err)
	}
}

// ExportedTo confirms where a report was written.
func (p *Printer) ExportedTo(path string) {
	p.logger.Print(p.paint(color.FgHiGreen, "[+] Exported to: "+path))
}

// Headerf prints a banner line announcing a lookup, preceded by a
// blank line.
func (p *Printer) Headerf(format string, args ...any) {
	p.logger.Printf("\n%s", p.paint(color.FgHiCyan, "[*] "+fmt.Sprintf(format, args...)))
}

// Successf prints a green confirmation line.
func (p *Printer) Successf(format string, args ...any) {
	p.logger.Print(p.paint(color.FgHiGreen, "[+] "+fmt.Sprintf(format, args...)))
}

// Warnf prints a yellow notice line.
func (p *Printer) Warnf(format string, args ...any) {
	p.logger.Print(p.paint(color.FgHiYellow, "[!] "+fmt.Sprintf(format, args...)))
}

// Errorf prints a red error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.logger.Print(p.paint(color.FgHiRed, "[!] Error: "+fmt.Sprintf(format, args...)))
}

// field prints a "Label: value" line with the label highlighted.
func (p *Printer) field(label, value string) {
	p.logger.Printf("%s %s", p.paint(color.FgHiBlue, label+":"), value)
}

// newTable builds a borderless table writing to the output stream.
func (p *Printer) newTable() *tablewriter.Table {
	return tablewriter.NewTable(p.out,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{Borders: tw.BorderNone})))
}

// severityCell formats a breach severity for table output. High and
// critical exposures read in red, medium in yellow.
func (p *Printer) severityCell(s model.Severity) string {
	switch {
	case s >= model.SeverityHigh:
		return p.paint(color.FgHiRed, s.String())
	case s == model.SeverityMedium:
		return p.paint(color.FgHiYellow, s.String())
	default:
		return s.String()
	}
}

// decodeStrings decodes a JSON string array persisted by the domain
// store. Malformed data renders as nothing rather than failing the
// whole report.
func decodeStrings(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil
	}
	return values
}

// paint wraps s in the given color unless colors are disabled. The
// color package additionally drops escape sequences on its own when
// stdout is not a terminal.
func (p *Printer) paint(attr color.Attribute, s string) string {
	if p.noColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

// The search sweep reports progress through this interface.
var _ search.Printer = (*Printer)(nil)
