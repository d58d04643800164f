package output

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/id88/urlspider/pkg/config"
	"github.com/id88/urlspider/pkg/models"
)

// Human-readable headings per reporting bucket
var categoryTitles = map[models.Category]string{
	models.CategoryInternal:   "Internal URLs",
	models.CategorySubdomains: "Subdomain URLs",
	models.CategoryExternal:   "External URLs",
	models.CategoryFiles:      "Files",
	models.CategoryAPIs:       "API Endpoints",
	models.CategoryStatic:     "Static Assets",
}

// Printer renders crawl results on the console. In quiet mode it emits only
// the bare URL list, one per line, so output can be piped into other tools.
type Printer struct {
	cfg config.OutputConfig
}

// NewPrinter creates a Printer and applies the global color setting
func NewPrinter(cfg config.OutputConfig) *Printer {
	if cfg.NoColor {
		pterm.DisableColor()
	}
	return &Printer{cfg: cfg}
}

// Banner prints the session header before crawling starts
func (p *Printer) Banner(target, mode string) {
	if p.cfg.Quiet {
		return
	}
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Printfln("urlspider - URL discovery")
	pterm.Printfln("%s %s", pterm.Gray("Target:"), pterm.Cyan(target))
	pterm.Printfln("%s %s", pterm.Gray("Mode:"), pterm.Yellow(mode))
	pterm.Println()
}

// Results prints the categorized URL listing and the session statistics.
// Each category lists at most DisplayLimit entries; the remainder is
// summarized as a count and still reaches the export files in full.
func (p *Printer) Results(result *models.CrawlResult, byCategory map[models.Category][]string) {
	if p.cfg.Quiet {
		for _, u := range result.URLs {
			fmt.Println(u)
		}
		return
	}

	for _, cat := range models.Categories {
		urls := byCategory[cat]
		if len(urls) == 0 {
			continue
		}
		pterm.DefaultSection.WithLevel(2).Printfln("%s (%d)", categoryTitles[cat], len(urls))
		shown := urls
		if p.cfg.DisplayLimit > 0 && len(shown) > p.cfg.DisplayLimit {
			shown = shown[:p.cfg.DisplayLimit]
		}
		for _, u := range shown {
			pterm.Printfln("  %s", u)
		}
		if hidden := len(urls) - len(shown); hidden > 0 {
			pterm.Println(pterm.Gray(fmt.Sprintf("  ... and %d more", hidden)))
		}
	}

	if len(result.Subdomains) > 0 {
		pterm.DefaultSection.WithLevel(2).Printfln("Discovered Subdomains (%d)", len(result.Subdomains))
		for _, s := range result.Subdomains {
			pterm.Printfln("  %s", pterm.Magenta(s))
		}
	}

	p.statistics(result, byCategory)
}

// statistics prints the closing summary table
func (p *Printer) statistics(result *models.CrawlResult, byCategory map[models.Category][]string) {
	tableData := pterm.TableData{{"Metric", "Count"}}
	tableData = append(tableData,
		[]string{"Total URLs", fmt.Sprintf("%d", len(result.URLs))},
		[]string{"Subdomains", fmt.Sprintf("%d", len(result.Subdomains))},
		[]string{"Pages crawled", fmt.Sprintf("%d", result.PagesCrawled)},
	)
	for _, cat := range models.Categories {
		if n := len(byCategory[cat]); n > 0 {
			tableData = append(tableData, []string{categoryTitles[cat], fmt.Sprintf("%d", n)})
		}
	}

	pterm.Println()
	pterm.DefaultSection.WithLevel(2).Println("Statistics")
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Printfln("%s %s", pterm.Gray("Duration:"),
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String())
}

// Exported announces the files written by the exporter
func (p *Printer) Exported(paths []string) {
	if p.cfg.Quiet || len(paths) == 0 {
		return
	}
	pterm.Println()
	for _, path := range paths {
		pterm.Success.Printfln("Saved %s", path)
	}
}
