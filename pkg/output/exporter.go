package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/sirupsen/logrus"

	"github.com/id88/urlspider/pkg/config"
	"github.com/id88/urlspider/pkg/models"
	"github.com/id88/urlspider/pkg/parse"
)

// Exporter writes crawl results to disk. The plain-text list is always
// written; JSON, CSV and Markdown are opt-in. All files of one session share
// a timestamped base name under the output directory.
type Exporter struct {
	cfg config.OutputConfig
	log *logrus.Logger
}

// NewExporter creates an Exporter
func NewExporter(cfg config.OutputConfig, log *logrus.Logger) *Exporter {
	return &Exporter{cfg: cfg, log: log}
}

// jsonReport is the on-disk JSON shape: the session result plus a
// statistics block with per-category counts
type jsonReport struct {
	*models.CrawlResult
	Statistics jsonStatistics `json:"statistics"`
}

type jsonStatistics struct {
	TotalURLs       int                      `json:"total_urls"`
	TotalSubdomains int                      `json:"total_subdomains"`
	ByCategory      map[models.Category]int  `json:"by_category"`
	Categorized     map[models.Category][]string `json:"categorized"`
}

// Export writes every enabled format and returns the paths written
func (e *Exporter) Export(result *models.CrawlResult, byCategory map[models.Category][]string) ([]string, error) {
	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", e.cfg.Dir, err)
	}
	base := filepath.Join(e.cfg.Dir, e.baseName(result))

	var paths []string
	write := func(path string, fn func(string) error) error {
		if err := fn(path); err != nil {
			return err
		}
		e.log.WithField("path", path).Debug("Export written")
		paths = append(paths, path)
		return nil
	}

	if err := write(base+".txt", func(p string) error { return e.writeText(p, result) }); err != nil {
		return paths, err
	}
	if e.cfg.JSON {
		if err := write(base+".json", func(p string) error { return e.writeJSON(p, result, byCategory) }); err != nil {
			return paths, err
		}
	}
	if e.cfg.CSV {
		if err := write(base+".csv", func(p string) error { return e.writeCSV(p, byCategory) }); err != nil {
			return paths, err
		}
	}
	if e.cfg.Markdown {
		if err := write(base+".md", func(p string) error { return e.writeMarkdown(p, result, byCategory) }); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// baseName derives "<host>_<timestamp>" from the session target
func (e *Exporter) baseName(result *models.CrawlResult) string {
	host := parse.Hostname(result.Target)
	if host == "" {
		host = "results"
	}
	host = strings.Map(func(r rune) rune {
		if r == ':' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, host)
	return fmt.Sprintf("%s_%s", host, result.FinishedAt.Format("20060102_150405"))
}

// writeText writes the plain URL list, one per line, with subdomains appended
func (e *Exporter) writeText(path string, result *models.CrawlResult) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# urlspider results for %s\n", result.Target))
	b.WriteString(fmt.Sprintf("# session %s, finished %s\n\n", result.SessionID,
		result.FinishedAt.Format(time.RFC3339)))
	for _, u := range result.URLs {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if len(result.Subdomains) > 0 {
		b.WriteString("\n# subdomains\n")
		for _, s := range result.Subdomains {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// writeJSON writes the result with the statistics block, indented
func (e *Exporter) writeJSON(path string, result *models.CrawlResult, byCategory map[models.Category][]string) error {
	counts := make(map[models.Category]int, len(byCategory))
	for cat, urls := range byCategory {
		counts[cat] = len(urls)
	}
	report := jsonReport{
		CrawlResult: result,
		Statistics: jsonStatistics{
			TotalURLs:       len(result.URLs),
			TotalSubdomains: len(result.Subdomains),
			ByCategory:      counts,
			Categorized:     byCategory,
		},
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// writeCSV writes url,category rows in category display order
func (e *Exporter) writeCSV(path string, byCategory map[models.Category][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"url", "category"}); err != nil {
		return err
	}
	for _, cat := range models.Categories {
		for _, u := range byCategory[cat] {
			if err := w.Write([]string{u, string(cat)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeMarkdown writes a shareable report with summary table and
// per-category listings
func (e *Exporter) writeMarkdown(path string, result *models.CrawlResult, byCategory map[models.Category][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1("URL Discovery Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + result.Target + "`"},
			{"Session", result.SessionID},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", result.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages crawled", strconv.FormatInt(result.PagesCrawled, 10)},
			{"URLs found", strconv.Itoa(len(result.URLs))},
			{"Subdomains", strconv.Itoa(len(result.Subdomains))},
		},
	})
	md.PlainText("")

	for _, cat := range models.Categories {
		urls := byCategory[cat]
		if len(urls) == 0 {
			continue
		}
		md.H2(fmt.Sprintf("%s (%d)", categoryTitles[cat], len(urls)))
		items := make([]string, len(urls))
		for i, u := range urls {
			items[i] = "`" + u + "`"
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(result.Subdomains) > 0 {
		md.H2(fmt.Sprintf("Discovered Subdomains (%d)", len(result.Subdomains)))
		md.BulletList(result.Subdomains...)
		md.PlainText("")
	}

	return md.Build()
}
