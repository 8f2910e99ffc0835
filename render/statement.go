/*
Package render produces the printable royalty statement document.

PURPOSE:
  Turns a saved statement record plus its book into a self-contained HTML
  page: header with logo and period, agency/ISBN info block, the sales
  detail table, and the financial summary box. The same markup serves the
  on-screen view and the PDF exporter; a data-target attribute switches the
  CSS between a comfortable screen density and a compact print density.

MONEY:
  Amounts render as "$1,234.50" with comma grouping and two decimals.
  Formatting happens in Go (the template only prints strings) so the
  grouping logic is testable without parsing HTML.

SEE ALSO:
  - api/handlers.go: the /render endpoint that drives this package
*/
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/royalty"
)

// Target selects the CSS density of the rendered page.
type Target string

const (
	TargetScreen Target = "screen"
	TargetPDF    Target = "pdf"
)

// =============================================================================
// MONEY FORMATTING
// =============================================================================

// Money formats an amount as "$1,234.50". Negative amounts keep the sign
// after the currency symbol ("$-1,234.50"), matching the ledger exports the
// back office already produces.
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	grouped := groupThousands(intPart)
	if neg {
		return "$-" + grouped + "." + fracPart
	}
	return "$" + grouped + "." + fracPart
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// =============================================================================
// VIEW MODEL
// =============================================================================

type statementView struct {
	Target      Target
	LogoBase64  string
	Title       string
	PartyName   string
	PeriodStart string
	PeriodEnd   string

	AgencyName  string
	AgencyLines []string
	ISBNs       []string

	Rows   []rowView
	Totals totalsView

	AdvancePaid       string
	RoyaltyForPeriod  string
	LastPeriodBalance string
	Balance           string
	AmountPayable     string

	GeneratedAt string
}

type rowView struct {
	Category         string
	LifetimeQuantity int64
	ReturnsToDate    int64
	Units            int64
	Returns          int64
	NetUnits         int64
	UnitPrice        string
	RatePercent      string
	Discount         string
	NetRevenue       string
	Value            string
	Royalty          string
}

type totalsView struct {
	Units    int64
	Returns  int64
	NetUnits int64
	Value    string
	Royalty  string
}

// Options tunes the rendered document.
type Options struct {
	Target Target
	// LogoBase64 is an inline PNG for the header; empty omits the logo.
	LogoBase64 string
	// Now overrides the generation timestamp, for deterministic tests.
	Now time.Time
}

// Statement renders the statement document for one party to w.
func Statement(w io.Writer, book *catalog.Book, rec catalog.StatementRecord, opts Options) error {
	if opts.Target == "" {
		opts.Target = TargetScreen
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	view := statementView{
		Target:      opts.Target,
		LogoBase64:  opts.LogoBase64,
		Title:       fullTitle(book),
		PartyName:   rec.PersonName,
		PeriodStart: rec.PeriodStart,
		PeriodEnd:   rec.PeriodEnd,
		ISBNs:       book.ISBNs(),

		AdvancePaid:       Money(rec.Summary.AdvancePaid),
		RoyaltyForPeriod:  Money(rec.Summary.RoyaltyForPeriod),
		LastPeriodBalance: Money(rec.Summary.LastPeriodBalance),
		Balance:           Money(rec.Summary.Balance),
		AmountPayable:     Money(rec.Summary.AmountPayable),

		GeneratedAt: now.Format("January 2, 2006 at 3:04 PM"),
	}
	view.AgencyName, view.AgencyLines = agencyBlock(book, rec.Party)

	var totalValue, totalRoyalty decimal.Decimal
	for _, r := range rec.Rows {
		net := ""
		if r.NetRevenue {
			net = "Yes"
		}
		view.Totals.Units += r.Units
		view.Totals.Returns += r.Returns
		view.Totals.NetUnits += r.NetUnits
		totalValue = totalValue.Add(r.ValueAmount)
		totalRoyalty = totalRoyalty.Add(r.RoyaltyAmount)
		view.Rows = append(view.Rows, rowView{
			Category:         r.Category,
			LifetimeQuantity: r.LifetimeQuantity,
			ReturnsToDate:    r.ReturnsToDate,
			Units:            r.Units,
			Returns:          r.Returns,
			NetUnits:         r.NetUnits,
			UnitPrice:        Money(r.UnitPrice),
			RatePercent:      r.EffectiveRatePercent.StringFixed(2) + "%",
			Discount:         r.DiscountPercent.String() + "%",
			NetRevenue:       net,
			Value:            Money(r.ValueAmount),
			Royalty:          Money(r.RoyaltyAmount),
		})
	}
	view.Totals.Value = Money(totalValue)
	view.Totals.Royalty = Money(totalRoyalty)

	return statementTmpl.Execute(w, view)
}

// NoStatement renders the placeholder page shown when a party has no
// statement to present (an illustrator with no royalty terms).
func NoStatement(w io.Writer, bookTitle, reason string) error {
	return noStatementTmpl.Execute(w, struct {
		Title  string
		Reason string
	}{Title: bookTitle, Reason: reason})
}

func fullTitle(b *catalog.Book) string {
	if b.Subtitle != "" {
		return fmt.Sprintf("%s: %s", b.Title, b.Subtitle)
	}
	return b.Title
}

// agencyBlock resolves the agency header for the statement's party: the
// agency (or agent) name plus address lines.
func agencyBlock(b *catalog.Book, party royalty.Party) (name string, lines []string) {
	var agent *catalog.Agent
	switch {
	case party == royalty.PartyIllustrator && b.Illustrator != nil:
		agent = b.Illustrator.Agent
	case party == royalty.PartyAuthor:
		agent = b.AuthorAgent
	}
	if agent == nil {
		return "", nil
	}

	name = agent.Agency
	if name == "" {
		name = agent.Name
	}

	addr := agent.Address
	if addr.Street != "" {
		lines = append(lines, addr.Street)
	}
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(addr.City, addr.State, addr.Zip), " "))
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	return name, lines
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// TEMPLATES
// =============================================================================

var statementTmpl = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html data-target="{{.Target}}">
<head>
<meta charset="UTF-8">
<title>Royalty Statement - {{.PartyName}}</title>
<style>
  :root { --font-base: 17px; --line: 1.5; --pad: 10px; --density: 1; }
  html[data-target="pdf"] { --font-base: 11pt; --line: 1.35; --pad: 6px; --density: .92; }
  @page { size: Letter; margin: 0.7in; background: #ffffff; }
  html, body { background: #ffffff; color: #000; }
  body { font-family: 'Segoe UI', Arial, sans-serif; font-size: var(--font-base); line-height: var(--line); color: #333; margin: 0; }
  .header { text-align: center; margin: 0 0 20px 0; padding: 10px 0 15px 0; border-bottom: 2px solid #333; }
  .logo { max-width: 300px; height: auto; margin-bottom: 10px; }
  .title { font-size: clamp(18px, 2.2vw, 22px); font-weight: bold; margin: 10px 0; }
  .info-section { display: grid; grid-template-columns: 1fr 260px; align-items: start; margin: 20px 0; }
  .agency-box { line-height: 1.5; }
  .agency-name { margin-bottom: 5px; font-weight: 600; }
  .info-row { display: flex; align-items: flex-start; gap: 3px; margin: 3px 0; }
  .info-row .label { flex: 0 0 80px; font-weight: 600; white-space: nowrap; }
  table { width: 100%; border-collapse: collapse; margin: 20px 0; font-size: calc(0.85 * var(--font-base)); font-variant-numeric: tabular-nums; }
  thead th { background: #2c3e50; color: #fff; padding: 8px 4px; text-align: left; font-weight: 600; }
  td { padding: calc(6px * var(--density)) 4px; border-bottom: 1px solid #ddd; }
  tbody tr:nth-child(even) { background: #f9f9f9; }
  .text-right { text-align: right; }
  .text-center { text-align: center; }
  .summary { width: 240px; margin-left: auto; padding: 10px 8px 10px 12px; background: #e8f4f8; border-left: 4px solid #2c3e50; border-radius: 6px; margin-bottom: 24px; }
  .summary h3 { margin: 0 0 6px 0; font-size: calc(0.95 * var(--font-base)); text-align: left; }
  .summary-row { display: grid; grid-template-columns: minmax(0, 62%) 1fr; column-gap: 12px; align-items: baseline; font-size: calc(0.95 * var(--font-base)); line-height: 1.25; }
  .summary-total { font-size: calc(1.1 * var(--font-base)); font-weight: 700; margin-top: 6px; padding-top: 6px; border-top: 1px solid #333; }
  .summary-row .label { white-space: nowrap; }
  .summary-row .value { white-space: nowrap; text-align: right; }
  .footer { clear: both; margin-top: 40px; padding-top: 6px; border-top: 1px solid #ccc; text-align: center; font-size: calc(0.6 * var(--font-base)); color: #666; page-break-inside: avoid; }
  thead { display: table-header-group; }
</style>
</head>
<body>
  <div class="header">
    {{if .LogoBase64}}<img src="data:image/png;base64,{{.LogoBase64}}" class="logo" />{{end}}
    <div class="title">ROYALTY STATEMENT</div>
    <div class="book-title">{{.Title}}</div>
    <div>Period: {{.PeriodStart}} to {{.PeriodEnd}}</div>
  </div>

  <div class="info-section">
    <div class="agency-box">
      {{if .AgencyName}}<div class="agency-name">{{.AgencyName}}</div>{{end}}
      {{range .AgencyLines}}<div>{{.}}</div>{{end}}
      <div class="info-row" style="margin-top:10px">
        <span class="label">Statement For:</span>
        <span style="font-weight:600;">{{.PartyName}}</span>
      </div>
    </div>
    <div class="info-row">
      <span class="label">ISBN(s):</span>
      <span class="value">{{if .ISBNs}}{{range .ISBNs}}<div class="isbn-line">{{.}}</div>{{end}}{{else}}N/A{{end}}</span>
    </div>
  </div>

  <h3>Sales Detail</h3>
  <table>
    <thead>
      <tr>
        <th>Category</th>
        <th class="text-right">Lifetime Qty</th>
        <th class="text-right">RTD</th>
        <th class="text-right">Units</th>
        <th class="text-right">Returns</th>
        <th class="text-right">Net Units</th>
        <th class="text-right">Price</th>
        <th class="text-right">Royalty %</th>
        <th class="text-right">Disc.</th>
        <th class="text-center">Net</th>
        <th class="text-right">Value</th>
        <th class="text-right">Royalty</th>
      </tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr>
        <td>{{.Category}}</td>
        <td class="text-right">{{.LifetimeQuantity}}</td>
        <td class="text-right">{{.ReturnsToDate}}</td>
        <td class="text-right">{{.Units}}</td>
        <td class="text-right">{{.Returns}}</td>
        <td class="text-right">{{.NetUnits}}</td>
        <td class="text-right">{{.UnitPrice}}</td>
        <td class="text-right">{{.RatePercent}}</td>
        <td class="text-right">{{.Discount}}</td>
        <td class="text-center">{{.NetRevenue}}</td>
        <td class="text-right">{{.Value}}</td>
        <td class="text-right" style="font-weight:600;">{{.Royalty}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr style="font-weight:700; border-top: 2px solid #333;">
        <td>Total</td>
        <td></td>
        <td></td>
        <td class="text-right">{{.Totals.Units}}</td>
        <td class="text-right">{{.Totals.Returns}}</td>
        <td class="text-right">{{.Totals.NetUnits}}</td>
        <td></td>
        <td></td>
        <td></td>
        <td></td>
        <td class="text-right">{{.Totals.Value}}</td>
        <td class="text-right">{{.Totals.Royalty}}</td>
      </tr>
    </tfoot>
  </table>

  <div class="summary">
    <h3>Financial Summary</h3>
    <div class="summary-row"><span class="label">Advance Paid:</span><span class="value">{{.AdvancePaid}}</span></div>
    <div class="summary-row"><span class="label">Royalty for Period:</span><span class="value">{{.RoyaltyForPeriod}}</span></div>
    <div class="summary-row"><span class="label">Last Period Balance:</span><span class="value">{{.LastPeriodBalance}}</span></div>
    <div class="summary-row"><span class="label">Current Balance:</span><span class="value">{{.Balance}}</span></div>
    <div class="summary-total summary-row"><span class="label">Amount Payable:</span><span class="value" style="color:#16a34a;">{{.AmountPayable}}</span></div>
  </div>

  <div class="footer">
    <p>This statement is generated for informational purposes.</p>
    <p>Generated: {{.GeneratedAt}}</p>
  </div>
</body>
</html>
`))

var noStatementTmpl = template.Must(template.New("no-statement").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>No Statement Available</title>
<style>
  body { font-family: 'Segoe UI', Arial, sans-serif; color: #333; margin: 60px auto; max-width: 520px; text-align: center; }
  h1 { font-size: 22px; }
  p { color: #666; }
</style>
</head>
<body>
  <h1>No Statement Available</h1>
  <p>{{.Title}}</p>
  <p>{{.Reason}}</p>
</body></html>
`))
