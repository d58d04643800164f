package extract

import (
	"regexp"

	"github.com/id88/urlspider/pkg/parse"
)

// Candidate is a single unvalidated extraction hit, tagged with the strategy
// that produced it. When the pattern defined a capture group the first
// non-empty capture wins, otherwise the whole match (minus quotes) is used.
type Candidate struct {
	Strategy string
	Match    string
	Capture  string
}

// Resolve reduces the candidate to the raw URL string it represents
func (c Candidate) Resolve() string {
	if c.Capture != "" {
		return c.Capture
	}
	return parse.CleanCandidate(c.Match)
}

// pattern pairs a strategy name with its compiled expression
type pattern struct {
	name string
	re   *regexp.Regexp
}

// Extensions recognized in bare quoted filenames: executables, documents,
// archives, media, source code and config files. Broad on purpose; the
// filter weeds out junk afterwards.
const bareFileExtensions = `php|php3|php4|php5|php7|php8|phtml|phar|` +
	`asp|aspx|ascx|ashx|asmx|jsp|jspx|do|action|` +
	`json|jsonp|xml|html|htm|xhtml|js|jsx|mjs|cjs|ts|tsx|` +
	`css|scss|sass|less|txt|text|log|md|rst|` +
	`pdf|doc|docx|xls|xlsx|ppt|pptx|zip|rar|7z|gz|tar|` +
	`svg|png|jpg|jpeg|gif|bmp|ico|webp|mp3|mp4|avi|mov|flv|wmv|mkv|` +
	`env|config|ini|cfg|conf|properties|yml|yaml|toml|` +
	`sql|db|sqlite|mdb|bak|backup|old|tmp|swp|` +
	`py|pyc|rb|erb|go|java|class|jar|cs|csproj|vb|vbs|swift|pl|pm|` +
	`sh|bash|bat|cmd|ps1|psm1|reg|dll|exe|msi|app|apk|ipa|deb|rpm|pkg`

// urlPatterns is the ordered pattern family run over every content blob.
// The first entry is the quoted-delimiter mega pattern: four alternatives for
// absolute/scheme-relative URLs, rooted or dot-relative paths, slashed
// resource paths with an extension, and bare filenames.
var urlPatterns = []pattern{
	{"quoted", regexp.MustCompile(`["'](((?:[a-zA-Z]{1,10}://|//)[^"'/]+\.[a-zA-Z]{2,}[^"']*)|` +
		`((?:/|\.\./|\./)[^"'><,;|*()%$^/\\\[\]][^"'><,;|()]+)|` +
		`([a-zA-Z0-9_\-/]+/[a-zA-Z0-9_\-/]+\.(?:[a-zA-Z]{1,6}|action|config|env|htaccess|yml|yaml|ts|tsx|vue|svelte|md|py|rb|go|java|cs|swift|kt|scala|pl|sh|bat|cmd)(?:[?#][^"']*)?)|` +
		`([a-zA-Z0-9_\-]+\.(?:` + bareFileExtensions + `)(?:[?#][^"']*)?))["']`)},
	{"absolute", regexp.MustCompile(`(?i)(?:https?|ftp|ws|wss)://[a-zA-Z0-9][a-zA-Z0-9\-._~:/?#\[\]@!$&'()*+,;=%]*`)},
	{"scheme-relative", regexp.MustCompile(`(?i)//[a-zA-Z0-9][a-zA-Z0-9\-._~:/?#\[\]@!$&'()*+,;=%]*`)},
	{"attribute", regexp.MustCompile(`(?i)(?:src|href|data-src|data-href)\s*=\s*["']([^"']+)["']`)},
	{"xhr", regexp.MustCompile(`(?i)(?:fetch|axios\.get|axios\.post|\.ajax|\.get|\.post|XMLHttpRequest)\s*\(\s*["']([^"']+)["']`)},
	{"graphql", regexp.MustCompile(`(?i)["'](/?(?:api/)?graphql[^"']*)["']`)},
	{"service-worker", regexp.MustCompile(`(?i)navigator\.serviceWorker\.register\(\s*["']([^"']+)["']`)},
	{"url-assignment", regexp.MustCompile(`(?i)(?:url|endpoint|api|path)\s*[:=]\s*["']([^"']+)["']`)},
	{"navigation", regexp.MustCompile(`(?i)(?:window\.location|location\.href|\.src)\s*=\s*["']([^"']+)["']`)},
	{"websocket", regexp.MustCompile(`(?i)new\s+WebSocket\s*\(\s*["']([^"']+)["']`)},
	{"relative-file", regexp.MustCompile(`(?i)["'][./][^"']+\.(?:js|css|png|jpg|jpeg|gif|svg|ico|php|asp|aspx|jsp|json|html|xml|txt|csv)[^"']*["']`)},
}

// scriptPatterns are the additional strategies run over script content:
// module-loader calls, import/export/require arguments, asset template
// literals, JSON "url" fields and string literals bound to fresh variables
var scriptPatterns = []pattern{
	{"webpack", regexp.MustCompile(`(?i)__webpack_require__\(\s*["']([^"']+)["']`)},
	{"module", regexp.MustCompile(`(?i)(?:import|export|from|require)\s*["']([^"']+)["']`)},
	{"template-literal", regexp.MustCompile("(?i)`([^`]+\\.(?:js|css|png|jpg|jpeg|gif|svg))`")},
	{"json-url", regexp.MustCompile(`(?i)"url"\s*:\s*["']([^"']+)["']`)},
	{"var-declaration", regexp.MustCompile(`(?i)(?:const|let|var)\s+[a-zA-Z_$][a-zA-Z0-9_$]*\s*=\s*["']([^"']+)["']`)},
}

// cssURLPattern matches url(...) references inside style blocks/attributes
var cssURLPattern = regexp.MustCompile(`(?i)url\s*\(\s*["']?([^"')]+)["']?\s*\)`)

// scanPatterns runs a pattern family over content and returns the tagged hits
func scanPatterns(patterns []pattern, content string) []Candidate {
	var out []Candidate
	for _, p := range patterns {
		matches := p.re.FindAllStringSubmatch(content, -1)
		for _, m := range matches {
			cand := Candidate{Strategy: p.name, Match: m[0]}
			for _, group := range m[1:] {
				if group != "" {
					cand.Capture = group
					break
				}
			}
			out = append(out, cand)
		}
	}
	return out
}
