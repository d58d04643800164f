package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/id88/urlspider/pkg/config"
	"github.com/id88/urlspider/pkg/crawler"
	"github.com/id88/urlspider/pkg/filter"
	"github.com/id88/urlspider/pkg/input"
	"github.com/id88/urlspider/pkg/models"
	"github.com/id88/urlspider/pkg/output"
	"github.com/id88/urlspider/pkg/parse"
	"github.com/id88/urlspider/pkg/utils"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.WarnLevel) // Default: keep the console for results

	urlFlag := flag.StringP("url", "u", "", "Target URL or domain to crawl")
	fileFlag := flag.StringP("file", "f", "", "Seed file: URLs, script file paths or inline script content, one per line")
	cookieFlags := flag.StringArrayP("cookie", "c", nil, "Cookie as name=value (repeatable, or 'a=b; c=d')")
	userAgentFlag := flag.String("user-agent", "", "Fixed User-Agent (default rotates a built-in pool)")
	jsFlag := flag.BoolP("js", "j", false, "Fetch discovered script files and extract URLs from their bodies")
	deepFlag := flag.BoolP("deep", "d", false, "Recursively crawl discovered in-scope URLs")
	depthFlag := flag.Int("depth", 0, "Maximum crawl depth for --deep")
	maxPagesFlag := flag.Int("max-pages", 0, "Page budget per crawl session")
	threadsFlag := flag.Int("threads", 0, "Worker-pool size")
	includeSubsFlag := flag.Bool("include-subdomains", false, "Admit subdomains of the target domain")
	includeExternalFlag := flag.Bool("include-external", false, "Disable domain scoping entirely")
	filterFlags := flag.StringArray("filter", nil, "Only keep URLs matching this regex (repeatable)")
	excludeFlags := flag.StringArray("exclude", nil, "Drop URLs matching this regex (repeatable)")
	outputFlag := flag.StringP("output", "o", "", "Output directory for result files")
	jsonFlag := flag.Bool("json", false, "Also export results as JSON")
	csvFlag := flag.Bool("csv", false, "Also export results as CSV")
	markdownFlag := flag.Bool("markdown", false, "Also export results as Markdown")
	noColorFlag := flag.Bool("no-color", false, "Disable colored console output")
	quietFlag := flag.BoolP("quiet", "q", false, "Print only the discovered URLs, one per line")
	timeoutFlag := flag.Int("timeout", 0, "Per-request timeout in seconds")
	retriesFlag := flag.Int("retries", 0, "Retry budget for transient fetch failures")
	respectRobotsFlag := flag.Bool("respect-robots", false, "Honor robots.txt disallow rules")
	configFlag := flag.String("config", "", "Path to YAML config file (flags override file values)")
	logLevelFlag := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Config file first, explicit flags override
	cfg := &config.AppConfig{}
	if *configFlag != "" {
		loaded, err := config.LoadFile(*configFlag)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, flags{
		url: *urlFlag, cookies: *cookieFlags, userAgent: *userAgentFlag,
		js: *jsFlag, deep: *deepFlag, depth: *depthFlag, maxPages: *maxPagesFlag,
		threads: *threadsFlag, includeSubs: *includeSubsFlag, includeExternal: *includeExternalFlag,
		include: *filterFlags, exclude: *excludeFlags,
		outputDir: *outputFlag, json: *jsonFlag, csv: *csvFlag, markdown: *markdownFlag,
		noColor: *noColorFlag, quiet: *quietFlag,
		timeout: *timeoutFlag, retries: *retriesFlag, respectRobots: *respectRobotsFlag,
	})

	if *logLevelFlag != "" {
		level, err := logrus.ParseLevel(*logLevelFlag)
		if err != nil {
			log.Warnf("Invalid log level '%s', keeping '%s': %v", *logLevelFlag, log.GetLevel(), err)
		} else {
			log.SetLevel(level)
		}
	}
	if cfg.Output.Quiet {
		log.SetLevel(logrus.ErrorLevel)
	}

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	if cfg.Scope.Target == "" && *fileFlag == "" {
		flag.Usage()
		log.Fatal("Either --url or --file is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := output.NewPrinter(cfg.Output)
	startedAt := time.Now()

	var result *models.CrawlResult
	var flt *filter.Filter
	if *fileFlag != "" {
		result, flt, err = runFileMode(ctx, cfg, *fileFlag, printer, startedAt, log)
	} else {
		result, flt, err = runURLMode(ctx, cfg, printer, startedAt, log)
	}
	if err != nil {
		log.Fatalf("Crawl failed: %v", err)
	}

	byCategory := flt.Categorize(result.URLs)
	printer.Results(result, byCategory)

	exporter := output.NewExporter(cfg.Output, log)
	paths, err := exporter.Export(result, byCategory)
	if err != nil {
		log.Errorf("Export failed: %v", err)
	}
	printer.Exported(paths)
}

// runURLMode crawls a single target, recursively when --deep is set
func runURLMode(ctx context.Context, cfg *config.AppConfig, printer *output.Printer, startedAt time.Time, log *logrus.Logger) (*models.CrawlResult, *filter.Filter, error) {
	target := input.NormalizeSeed(cfg.Scope.Target)
	if target == "" {
		return nil, nil, utils.WrapErrorf(utils.ErrConfigValidation, "target %q is not a crawlable URL", cfg.Scope.Target)
	}
	cfg.Scope.Target = target

	flt, err := newScopedFilter(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	mode := "single page"
	if cfg.Crawl.Deep {
		mode = "deep crawl"
	}
	printer.Banner(target, mode)

	c := crawler.New(cfg, flt, log)
	if cfg.Crawl.Deep {
		c.CrawlDeep(ctx, target)
	} else {
		c.CrawlSingle(ctx, target)
	}
	return c.Result(target, startedAt), flt, nil
}

// runFileMode processes a line-delimited seed file. URL seeds are crawled
// (each with its own domain scope when --deep is set, batched otherwise);
// script seeds are extracted without fetching. Everything merges into one
// aggregate result.
func runFileMode(ctx context.Context, cfg *config.AppConfig, path string, printer *output.Printer, startedAt time.Time, log *logrus.Logger) (*models.CrawlResult, *filter.Filter, error) {
	seeds, err := input.ReadSeeds(path, log)
	if err != nil {
		return nil, nil, err
	}

	mode := "batch"
	if cfg.Crawl.Deep {
		mode = "deep crawl per seed"
	}
	printer.Banner(path, mode)

	// Scope-free session handles script seeds and non-deep URL batches; the
	// user's include/exclude patterns still apply
	openCfg := *cfg
	openCfg.Scope.Target = ""
	openFlt, err := newScopedFilter(&openCfg, log)
	if err != nil {
		return nil, nil, err
	}
	open := crawler.New(&openCfg, openFlt, log)

	aggregate := models.NewResultSet()
	var pages int64
	var batch []string

	for _, seed := range seeds {
		switch seed.Kind {
		case input.SeedURL:
			if !cfg.Crawl.Deep {
				batch = append(batch, seed.Value)
				continue
			}
			// Deep crawl each URL seed inside its own domain scope
			seedCfg := *cfg
			seedCfg.Scope.Target = seed.Value
			flt, err := newScopedFilter(&seedCfg, log)
			if err != nil {
				return nil, nil, err
			}
			c := crawler.New(&seedCfg, flt, log)
			c.CrawlDeep(ctx, seed.Value)
			r := c.Result(seed.Value, startedAt)
			aggregate.AddURLs(r.URLs)
			aggregate.AddSubdomains(r.Subdomains)
			pages += r.PagesCrawled

		case input.SeedScriptFile:
			content, err := input.ReadScriptFile(seed.Value)
			if err != nil {
				log.Warnf("Skipping script seed: %v", err)
				continue
			}
			open.ExtractScript(content, "")

		case input.SeedScript:
			open.ExtractScript(seed.Value, "")
		}
	}

	if len(batch) > 0 {
		open.CrawlBatch(ctx, batch)
	}
	r := open.Result(path, startedAt)
	aggregate.AddURLs(r.URLs)
	aggregate.AddSubdomains(r.Subdomains)
	pages += r.PagesCrawled

	return aggregate.Finalize(path, uuid.NewString(), startedAt, pages, parse.Hostname), openFlt, nil
}

// newScopedFilter builds the admission filter from the scope configuration
func newScopedFilter(cfg *config.AppConfig, log *logrus.Logger) (*filter.Filter, error) {
	domain := cfg.Scope.Target
	if cfg.Scope.IncludeExternal {
		domain = "" // No domain scoping; patterns still apply
	}
	return filter.New(filter.Options{
		Domain:            domain,
		IncludeSubdomains: cfg.Scope.IncludeSubdomains,
		IncludePatterns:   cfg.Scope.IncludePatterns,
		ExcludePatterns:   cfg.Scope.ExcludePatterns,
	}, log)
}

// flags carries parsed flag values into the config overlay
type flags struct {
	url             string
	cookies         []string
	userAgent       string
	js              bool
	deep            bool
	depth           int
	maxPages        int
	threads         int
	includeSubs     bool
	includeExternal bool
	include         []string
	exclude         []string
	outputDir       string
	json            bool
	csv             bool
	markdown        bool
	noColor         bool
	quiet           bool
	timeout         int
	retries         int
	respectRobots   bool
}

// applyFlags overlays explicitly-set flags onto the (possibly file-loaded)
// configuration; zero values from unset flags never clobber file settings
func applyFlags(cfg *config.AppConfig, f flags) {
	set := flag.CommandLine.Changed

	if f.url != "" {
		cfg.Scope.Target = f.url
	}
	if set("include-subdomains") {
		cfg.Scope.IncludeSubdomains = f.includeSubs
	}
	if set("include-external") {
		cfg.Scope.IncludeExternal = f.includeExternal
	}
	if len(f.include) > 0 {
		cfg.Scope.IncludePatterns = append(cfg.Scope.IncludePatterns, f.include...)
	}
	if len(f.exclude) > 0 {
		cfg.Scope.ExcludePatterns = append(cfg.Scope.ExcludePatterns, f.exclude...)
	}

	if set("deep") {
		cfg.Crawl.Deep = f.deep
	}
	if set("js") {
		cfg.Crawl.ExtractJS = f.js
	}
	if f.depth > 0 {
		cfg.Crawl.MaxDepth = f.depth
	}
	if f.maxPages > 0 {
		cfg.Crawl.MaxPages = f.maxPages
	}
	if f.threads > 0 {
		cfg.Crawl.Workers = f.threads
	}

	if f.userAgent != "" {
		cfg.HTTP.UserAgent = f.userAgent
	}
	if f.timeout > 0 {
		cfg.HTTP.Timeout = time.Duration(f.timeout) * time.Second
	}
	if f.retries > 0 {
		cfg.HTTP.MaxRetries = f.retries
	}
	if set("respect-robots") {
		cfg.HTTP.RespectRobots = f.respectRobots
	}
	if cookies := parseCookies(f.cookies); len(cookies) > 0 {
		if cfg.HTTP.Cookies == nil {
			cfg.HTTP.Cookies = make(map[string]string, len(cookies))
		}
		for name, value := range cookies {
			cfg.HTTP.Cookies[name] = value
		}
	}

	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if set("json") {
		cfg.Output.JSON = f.json
	}
	if set("csv") {
		cfg.Output.CSV = f.csv
	}
	if set("markdown") {
		cfg.Output.Markdown = f.markdown
	}
	if set("no-color") {
		cfg.Output.NoColor = f.noColor
	}
	if set("quiet") {
		cfg.Output.Quiet = f.quiet
	}
}

// parseCookies accepts repeated name=value flags and "a=b; c=d" bundles
func parseCookies(raw []string) map[string]string {
	cookies := make(map[string]string)
	for _, entry := range raw {
		for _, pair := range strings.Split(entry, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, value, found := strings.Cut(pair, "=")
			if !found || name == "" {
				continue
			}
			cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return cookies
}
