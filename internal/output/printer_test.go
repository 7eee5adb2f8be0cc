package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/intelscan/intelscan/internal/breach"
	"github.com/intelscan/intelscan/internal/darkweb"
	"github.com/intelscan/intelscan/internal/domainintel"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/phone"
)

const testOnionHost = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

// plainPrinter creates a color-free printer writing into buf.
func plainPrinter(buf *bytes.Buffer, opts ...Option) *Printer {
	return NewPrinter(buf, append([]Option{WithNoColor(true)}, opts...)...)
}

// TestPrinterSearchHeader verifies the sweep banner line.
func TestPrinterSearchHeader(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	plainPrinter(buf).SearchHeader("alice", 12)

	want := "\n[*] Searching for username: alice (12 platforms)\n"
	if got := buf.String(); got != want {
		t.Errorf("SearchHeader() = %q, want %q", got, want)
	}
}

// TestPrinterProbeResult verifies the per-probe verdict lines.
func TestPrinterProbeResult(t *testing.T) {
	t.Parallel()

	t.Run("found profile prints URL", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).ProbeResult(model.ProbeResult{
			Platform:   "GitHub",
			URL:        "https://github.com/alice",
			Found:      true,
			StatusCode: 200,
			Reason:     "HTTP 200 - Likely exists",
		})

		want := "[*] Checking GitHub... FOUND!\n    https://github.com/alice\n"
		if got := buf.String(); got != want {
			t.Errorf("ProbeResult() = %q, want %q", got, want)
		}
	})

	t.Run("miss prints not found", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).ProbeResult(model.ProbeResult{
			Platform:   "Reddit",
			URL:        "https://www.reddit.com/user/alice",
			StatusCode: 404,
			Reason:     "HTTP 404 - Not found",
		})

		want := "[*] Checking Reddit... Not found\n"
		if got := buf.String(); got != want {
			t.Errorf("ProbeResult() = %q, want %q", got, want)
		}
	})

	t.Run("transport failure prints short verdict", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).ProbeResult(model.ProbeResult{
			Platform: "VK",
			URL:      "https://vk.com/alice",
			Reason:   "Error: context deadline exceeded",
		})

		want := "[*] Checking VK... Error\n"
		if got := buf.String(); got != want {
			t.Errorf("ProbeResult() = %q, want %q", got, want)
		}
	})

	t.Run("verbose transport failure prints full reason", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf, WithVerbose(true)).ProbeResult(model.ProbeResult{
			Platform: "VK",
			URL:      "https://vk.com/alice",
			Reason:   "Error: context deadline exceeded",
		})

		want := "[*] Checking VK... Error: context deadline exceeded\n"
		if got := buf.String(); got != want {
			t.Errorf("ProbeResult() = %q, want %q", got, want)
		}
	})
}

// TestPrinterSearchSummary verifies the sweep footer line.
func TestPrinterSearchSummary(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	plainPrinter(buf).SearchSummary(3, 12)

	want := "\n[+] Found on 3/12 platforms\n"
	if got := buf.String(); got != want {
		t.Errorf("SearchSummary() = %q, want %q", got, want)
	}
}

// TestPrinterPhoneResult verifies the phone analysis rendering.
func TestPrinterPhoneResult(t *testing.T) {
	t.Parallel()

	t.Run("valid number prints all fields", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).PhoneResult(&phone.Result{
			Record: model.PhoneLookup{
				Number:   "+447700900000",
				Valid:    true,
				Country:  "United Kingdom",
				Carrier:  "Vodafone",
				LineType: "Mobile",
				Location: "United Kingdom",
				Timezone: "Europe/London",
			},
			Formats: phone.Formats{
				E164:          "+447700900000",
				International: "+44 7700 900000",
				National:      "07700 900000",
			},
		})

		want := strings.Join([]string{
			"[+] Valid number!",
			"Country: United Kingdom",
			"Carrier: Vodafone",
			"Line Type: Mobile",
			"Location: United Kingdom",
			"Timezone: Europe/London",
			"International Format: +44 7700 900000",
			"National Format: 07700 900000",
		}, "\n") + "\n"
		if got := buf.String(); got != want {
			t.Errorf("PhoneResult() = %q, want %q", got, want)
		}
	})

	t.Run("missing carrier prints unknown", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).PhoneResult(&phone.Result{
			Record: model.PhoneLookup{Number: "+447700900000", Valid: true},
		})

		if got := buf.String(); !strings.Contains(got, "Carrier: Unknown") {
			t.Errorf("PhoneResult() = %q, want carrier fallback", got)
		}
	})

	t.Run("invalid number prints verdict only", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).PhoneResult(&phone.Result{
			Record: model.PhoneLookup{Number: "+44123", Valid: false},
		})

		want := "[-] Invalid phone number\n"
		if got := buf.String(); got != want {
			t.Errorf("PhoneResult() = %q, want %q", got, want)
		}
	})

	t.Run("nil result prints nothing", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).PhoneResult(nil)

		if buf.Len() != 0 {
			t.Errorf("PhoneResult(nil) wrote %q, want no output", buf.String())
		}
	})
}

// TestPrinterDomainResult verifies the domain lookup rendering.
func TestPrinterDomainResult(t *testing.T) {
	t.Parallel()

	t.Run("full lookup prints sorted records", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DomainResult(&domainintel.Result{
			Record: model.DomainLookup{
				Domain:         "example-intel.org",
				Registrar:      "Example Registrar LLC",
				CreatedDate:    "2010-08-24T13:54:10Z",
				ExpirationDate: "2027-08-24T13:54:10Z",
			},
			NameServers: []string{"ns1.example-dns.net", "ns2.example-dns.net"},
			DNSRecords: map[string][]string{
				"MX": {"10 mail.example-intel.org"},
				"A":  {"93.184.216.34"},
			},
		})

		want := strings.Join([]string{
			"[+] example-intel.org",
			"Registrar: Example Registrar LLC",
			"Created: 2010-08-24T13:54:10Z",
			"Expires: 2027-08-24T13:54:10Z",
			"Name Servers: ns1.example-dns.net, ns2.example-dns.net",
			"A: 93.184.216.34",
			"MX: 10 mail.example-intel.org",
		}, "\n") + "\n"
		if got := buf.String(); got != want {
			t.Errorf("DomainResult() = %q, want %q", got, want)
		}
	})

	t.Run("thin whois omits empty fields", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DomainResult(&domainintel.Result{
			Record: model.DomainLookup{Domain: "example-intel.org"},
		})

		want := "[+] example-intel.org\n"
		if got := buf.String(); got != want {
			t.Errorf("DomainResult() = %q, want %q", got, want)
		}
	})

	t.Run("nil result prints nothing", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DomainResult(nil)

		if buf.Len() != 0 {
			t.Errorf("DomainResult(nil) wrote %q, want no output", buf.String())
		}
	})
}

// TestPrinterBreachResult verifies the breach check rendering.
func TestPrinterBreachResult(t *testing.T) {
	t.Parallel()

	t.Run("clean account prints confirmation", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).BreachResult(&breach.Result{
			Account: "alice@example.com",
			Sources: []string{"breachdirectory", "hibp"},
			Clean:   true,
		})

		want := "[+] No breach records found for alice@example.com\n"
		if got := buf.String(); got != want {
			t.Errorf("BreachResult() = %q, want %q", got, want)
		}
	})

	t.Run("hits render as table", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).BreachResult(&breach.Result{
			Account: "alice@example.com",
			Hits: []model.BreachHit{
				{
					Account:    "alice@example.com",
					Source:     "breachdirectory",
					BreachName: "Collection #1",
					Severity:   model.SeverityCritical,
					Details:    "password exposed: p4ssw...",
				},
				{
					Account:    "alice@example.com",
					Source:     "hibp",
					BreachName: "Example Forum",
					Severity:   model.SeverityHigh,
					Details:    "breached 2019-03-07, exposing Email addresses, Passwords",
				},
			},
			Sources: []string{"breachdirectory", "hibp"},
		})

		got := buf.String()
		if !strings.Contains(got, "[-] Found 2 breach record(s) for alice@example.com") {
			t.Errorf("BreachResult() = %q, want hit summary line", got)
		}
		for _, fragment := range []string{
			"Collection #1", "breachdirectory", "CRITICAL",
			"Example Forum", "hibp", "HIGH",
		} {
			if !strings.Contains(got, fragment) {
				t.Errorf("BreachResult() = %q, want %q in table", got, fragment)
			}
		}
	})

	t.Run("nil result prints nothing", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).BreachResult(nil)

		if buf.Len() != 0 {
			t.Errorf("BreachResult(nil) wrote %q, want no output", buf.String())
		}
	})
}

// TestPrinterDarkwebResult verifies the dark web sweep rendering.
func TestPrinterDarkwebResult(t *testing.T) {
	t.Parallel()

	t.Run("mentions print title engine and URL", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DarkwebResult(&darkweb.Result{
			Term: "alice underground",
			Mentions: []model.DarkwebMention{
				{
					Engine:    "ahmia",
					Title:     "Alice Underground Market",
					URL:       "http://" + testOnionHost + "/market",
					OnionHost: testOnionHost,
				},
			},
			Engines: []string{"ahmia"},
		})

		want := strings.Join([]string{
			"[+] Found 1 dark web mention(s)",
			"Alice Underground Market (ahmia)",
			"    http://" + testOnionHost + "/market",
		}, "\n") + "\n"
		if got := buf.String(); got != want {
			t.Errorf("DarkwebResult() = %q, want %q", got, want)
		}
	})

	t.Run("missing title falls back to host", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DarkwebResult(&darkweb.Result{
			Term: "alice",
			Mentions: []model.DarkwebMention{
				{
					Engine:    "ahmia",
					URL:       "http://" + testOnionHost,
					OnionHost: testOnionHost,
				},
			},
			Engines: []string{"ahmia"},
		})

		if got := buf.String(); !strings.Contains(got, testOnionHost+" (ahmia)") {
			t.Errorf("DarkwebResult() = %q, want host as title", got)
		}
	})

	t.Run("no mentions prints notice", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DarkwebResult(&darkweb.Result{
			Term:    "alice",
			Engines: []string{"ahmia"},
		})

		want := "[-] No dark web mentions found\n"
		if got := buf.String(); got != want {
			t.Errorf("DarkwebResult() = %q, want %q", got, want)
		}
	})

	t.Run("failed engines warn before results", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DarkwebResult(&darkweb.Result{
			Term: "alice",
			Mentions: []model.DarkwebMention{
				{
					Engine:    "ahmia",
					Title:     "Alice Underground Market",
					URL:       "http://" + testOnionHost + "/market",
					OnionHost: testOnionHost,
				},
			},
			Engines: []string{"ahmia"},
			Failed:  []string{"broken"},
		})

		got := buf.String()
		if !strings.HasPrefix(got, "[!] broken: engine query failed\n") {
			t.Errorf("DarkwebResult() = %q, want failure warning first", got)
		}
		if !strings.Contains(got, "[+] Found 1 dark web mention(s)") {
			t.Errorf("DarkwebResult() = %q, want mention summary", got)
		}
	})

	t.Run("nil result prints nothing", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).DarkwebResult(nil)

		if buf.Len() != 0 {
			t.Errorf("DarkwebResult(nil) wrote %q, want no output", buf.String())
		}
	})
}

// TestPrinterReport verifies the full investigation report rendering.
func TestPrinterReport(t *testing.T) {
	t.Parallel()

	t.Run("full report renders every section", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).Report(&model.Report{
			Subject:     "alice",
			GeneratedAt: time.Date(2026, 2, 14, 15, 30, 40, 0, time.UTC),
			ProbeResults: []model.ProbeResult{
				{Platform: "GitHub", URL: "https://github.com/alice", Found: true, StatusCode: 200},
				{Platform: "Reddit", URL: "https://www.reddit.com/user/alice", StatusCode: 404},
			},
			FoundCount:  1,
			TotalProbes: 2,
			PhoneLookups: []model.PhoneLookup{
				{Number: "+447700900000", Valid: true, Country: "United Kingdom", LineType: "Mobile"},
			},
			DomainLookup: &model.DomainLookup{
				Domain:      "example-intel.org",
				Registrar:   "Example Registrar LLC",
				NameServers: `["ns1.example-dns.net","ns2.example-dns.net"]`,
			},
			BreachHits: []model.BreachHit{
				{
					Account:    "alice",
					Source:     "hibp",
					BreachName: "Example Forum",
					Severity:   model.SeverityHigh,
					Details:    "breached 2019-03-07, exposing Email addresses, Passwords",
				},
			},
			DarkwebMentions: []model.DarkwebMention{
				{
					Engine:    "ahmia",
					Title:     "Alice Underground Market",
					URL:       "http://" + testOnionHost + "/market",
					OnionHost: testOnionHost,
				},
			},
			Errors: []string{"darkweb: every search engine failed"},
		})

		got := buf.String()
		for _, fragment := range []string{
			"[*] Investigation report for alice",
			"Generated: 2026-02-14 15:30:40",
			"[+] Found on 1/2 platforms",
			"GitHub: https://github.com/alice",
			"[+] +447700900000",
			"Country: United Kingdom",
			"Carrier: Unknown",
			"[+] example-intel.org",
			"Registrar: Example Registrar LLC",
			"Name Servers: ns1.example-dns.net, ns2.example-dns.net",
			"[-] Found 1 breach record(s)",
			"Example Forum",
			"[+] Found 1 dark web mention(s)",
			"Alice Underground Market (ahmia)",
			"[!] darkweb: every search engine failed",
		} {
			if !strings.Contains(got, fragment) {
				t.Errorf("Report() = %q, want %q", got, fragment)
			}
		}
		if strings.Contains(got, "Reddit:") {
			t.Errorf("Report() = %q, want misses omitted from URL list", got)
		}
	})

	t.Run("invalid phone row prints verdict", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).Report(&model.Report{
			Subject:      "alice",
			PhoneLookups: []model.PhoneLookup{{Number: "+44123", Valid: false}},
		})

		if got := buf.String(); !strings.Contains(got, "[-] Invalid phone number: +44123") {
			t.Errorf("Report() = %q, want invalid phone verdict", got)
		}
	})

	t.Run("empty report prints header only", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).Report(&model.Report{
			Subject:     "alice",
			GeneratedAt: time.Date(2026, 2, 14, 15, 30, 40, 0, time.UTC),
		})

		want := "\n[*] Investigation report for alice\nGenerated: 2026-02-14 15:30:40\n"
		if got := buf.String(); got != want {
			t.Errorf("Report() = %q, want %q", got, want)
		}
	})

	t.Run("nil report prints nothing", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).Report(nil)

		if buf.Len() != 0 {
			t.Errorf("Report(nil) wrote %q, want no output", buf.String())
		}
	})
}

// TestPrinterSessions verifies the recent-searches rendering.
func TestPrinterSessions(t *testing.T) {
	t.Parallel()

	t.Run("empty history prints notice", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		plainPrinter(buf).Sessions(nil)

		want := "No searches yet\n"
		if got := buf.String(); got != want {
			t.Errorf("Sessions() = %q, want %q", got, want)
		}
	})

	t.Run("rows render as table", func(t *testing.T) {
		t.Parallel()

		createdAt := time.Date(2026, 2, 14, 15, 30, 40, 0, time.UTC)
		buf := &bytes.Buffer{}
		plainPrinter(buf).Sessions([]model.SearchSession{
			{
				SessionID:    "a2720713-9064-446f-89c5-f97a2f1de404",
				Type:         "darkweb",
				Query:        "alice underground",
				ResultsCount: 2,
				CreatedAt:    createdAt,
			},
			{
				SessionID:    "41b717e8-1a09-40e4-a2c3-e96dbc81bc6e",
				Type:         "username",
				Query:        "alice",
				ResultsCount: 3,
				CreatedAt:    createdAt.Add(-time.Hour),
			},
		})

		got := buf.String()
		for _, fragment := range []string{
			"2026-02-14 15:30:40", "darkweb", "alice underground",
			"2026-02-14 14:30:40", "username",
		} {
			if !strings.Contains(got, fragment) {
				t.Errorf("Sessions() = %q, want %q in table", got, fragment)
			}
		}
	})
}

// TestPrinterExportedTo verifies the export confirmation line.
func TestPrinterExportedTo(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	plainPrinter(buf).ExportedTo("/tmp/intelscan_report_alice_20260214_153040.json")

	want := "[+] Exported to: /tmp/intelscan_report_alice_20260214_153040.json\n"
	if got := buf.String(); got != want {
		t.Errorf("ExportedTo() = %q, want %q", got, want)
	}
}

// TestPrinterBanners verifies the generic banner helpers.
func TestPrinterBanners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		print func(p *Printer)
		want  string
	}{
		{
			name:  "header",
			print: func(p *Printer) { p.Headerf("Analyzing phone number: %s", "+447700900000") },
			want:  "\n[*] Analyzing phone number: +447700900000\n",
		},
		{
			name:  "success",
			print: func(p *Printer) { p.Successf("saved %d rows", 3) },
			want:  "[+] saved 3 rows\n",
		},
		{
			name:  "warning",
			print: func(p *Printer) { p.Warnf("no breach provider API keys configured") },
			want:  "[!] no breach provider API keys configured\n",
		},
		{
			name:  "error",
			print: func(p *Printer) { p.Errorf("connection refused") },
			want:  "[!] Error: connection refused\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			tt.print(plainPrinter(buf))

			if got := buf.String(); got != tt.want {
				t.Errorf("banner output = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestPrinterColor verifies that escape sequences appear exactly when
// colors are enabled. Not parallel: it toggles the package-level
// color.NoColor flag that the color library consults at print time.
func TestPrinterColor(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	colored := &bytes.Buffer{}
	NewPrinter(colored).SearchSummary(3, 12)
	if got := colored.String(); !strings.Contains(got, "\x1b[") {
		t.Errorf("colored output = %q, want ANSI escape sequences", got)
	}
	if got := colored.String(); !strings.Contains(got, "[+] Found on 3/12 platforms") {
		t.Errorf("colored output = %q, want summary text", got)
	}

	plain := &bytes.Buffer{}
	NewPrinter(plain, WithNoColor(true)).SearchSummary(3, 12)
	if got := plain.String(); strings.Contains(got, "\x1b[") {
		t.Errorf("plain output = %q, want no escape sequences", got)
	}
}
