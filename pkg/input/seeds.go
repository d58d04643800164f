package input

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/id88/urlspider/pkg/utils"
)

// SeedKind classifies one line of a seed file
type SeedKind int

const (
	// SeedURL is a crawlable URL (scheme-less hosts get https:// prepended)
	SeedURL SeedKind = iota
	// SeedScriptFile is a path to a local script file to extract from
	SeedScriptFile
	// SeedScript is inline script/text content to extract from directly
	SeedScript
)

// Seed is one classified input line
type Seed struct {
	Kind  SeedKind
	Value string
}

// Matches bare host seeds like "example.com" or "sub.example.co.uk/path"
var bareHostRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)+(:[0-9]+)?(/\S*)?$`)

// NormalizeSeed turns a raw seed into a crawlable URL, upgrading scheme-less
// hosts to https://. Returns "" when the value cannot be a URL seed.
func NormalizeSeed(raw string) string {
	seed := strings.TrimSpace(raw)
	switch {
	case seed == "":
		return ""
	case strings.HasPrefix(seed, "http://"), strings.HasPrefix(seed, "https://"):
		return seed
	case strings.HasPrefix(seed, "//"):
		return "https:" + seed
	case bareHostRe.MatchString(seed):
		return "https://" + seed
	}
	return ""
}

// Classify decides what a single seed-file line is: a URL to crawl, a local
// script file to read, or inline content to extract from as-is
func Classify(line string) Seed {
	trimmed := strings.TrimSpace(line)

	if u := NormalizeSeed(trimmed); u != "" {
		return Seed{Kind: SeedURL, Value: u}
	}
	if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
		return Seed{Kind: SeedScriptFile, Value: trimmed}
	}
	return Seed{Kind: SeedScript, Value: trimmed}
}

// ReadSeeds parses a line-delimited seed file. Blank lines and lines
// starting with '#' are skipped.
func ReadSeeds(path string, log *logrus.Logger) ([]Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrConfigValidation, "seed file %s: %v", path, err)
	}
	defer f.Close()

	var seeds []Seed
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seed := Classify(line)
		log.WithFields(logrus.Fields{"line": lineNo, "kind": seed.Kind}).Debug("Seed classified")
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, utils.WrapErrorf(utils.ErrParsing, "seed file %s: %v", path, err)
	}

	log.Infof("Loaded %d seeds from %s", len(seeds), path)
	return seeds, nil
}

// ReadScriptFile loads a local script file referenced by a seed line
func ReadScriptFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", utils.WrapErrorf(utils.ErrParsing, "script file %s: %v", path, err)
	}
	return string(data), nil
}
