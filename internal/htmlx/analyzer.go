// Package htmlx is the HTML Analyzer: it turns a document's raw bytes
// and canonical URL into an ordered, filtered token stream with
// positions, plus the outbound hyperlinks and the informational URL
// set used by the spider and indexer.
//
// Traversal is a pre-order walk over the golang.org/x/net/html parse
// tree. Visible text, outbound links, and the informational URL set
// are each extracted by their own function, which parses and walks the
// document separately; links and URL-set members are picked out by
// element atom.
package htmlx

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is an outbound hyperlink discovered on a document, with its
// normalized crawl target and the anchor's visible text.
type Link struct {
	Target     string
	AnchorText string
}

// rejectedSchemes are link targets the crawler must never follow.
var rejectedSchemes = []string{"mailto:", "javascript:", "tel:", "ftp:"}

// visibleText walks the parse tree in document order and concatenates
// every text node's data with a single space separator, mirroring
// BeautifulSoup's get_text(separator=' ') — script/style bodies are
// plain text nodes to the parser and are included, matching the
// original indexer's behavior.
func visibleText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}

// cleanWord strips the fixed punctuation cutset from both ends and
// lowercases the result. It returns "", false when the cleaned word
// isn't purely ASCII-alphabetic.
func cleanWord(raw string) (string, bool) {
	trimmed := strings.Trim(raw, punctuationCutset)
	if trimmed == "" {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, r := range lower {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return "", false
		}
	}
	return lower, true
}

// Tokenize splits text on whitespace, cleans and lowercases each word,
// keeps only fully-alphabetic survivors, and drops stop words. The
// returned slice's index for a given occurrence is that token's
// position; positions is the position list per distinct surviving
// token, built as a side effect of the same pass.
func Tokenize(text string) (tokens []string, positions map[string][]int) {
	positions = make(map[string][]int)
	for _, raw := range strings.Fields(text) {
		word, ok := cleanWord(raw)
		if !ok {
			continue
		}
		if IsStopWord(word) {
			continue
		}
		positions[word] = append(positions[word], len(tokens))
		tokens = append(tokens, word)
	}
	return tokens, positions
}

// AnalyzeDocument extracts the filtered token stream and positional
// map for a document's bytes. When anchorTexts is non-empty, the
// space-joined anchor text is appended to the body text twice before
// tokenization — the sole mechanism that gives inbound anchor text
// double term-frequency weight; positions for the doubled anchor
// tokens continue on from the end of the body-only token stream
// because they are produced by the same single tokenize pass.
func AnalyzeDocument(docBytes []byte, anchorTexts []string) (tokens []string, positions map[string][]int, err error) {
	doc, err := html.Parse(strings.NewReader(string(docBytes)))
	if err != nil {
		return nil, nil, err
	}

	text := visibleText(doc)
	if len(anchorTexts) > 0 {
		combined := strings.Join(anchorTexts, " ")
		text = text + " " + combined + " " + combined
	}

	tokens, positions = Tokenize(text)
	return tokens, positions, nil
}

// NormalizeTarget canonicalizes a raw hyperlink target relative to
// baseURL: drop the fragment, reject non-crawlable schemes, resolve
// relative targets, percent-decode, and strip a leading slash. It
// returns ("", false) when the target should not be followed.
func NormalizeTarget(raw, baseURL string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	for _, scheme := range rejectedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	resolved := raw
	if baseURL != "" {
		if base, err := url.Parse(baseURL); err == nil {
			if ref, err := url.Parse(raw); err == nil {
				resolved = base.ResolveReference(ref).String()
			}
		}
	}

	decoded, err := url.PathUnescape(resolved)
	if err != nil {
		decoded = resolved
	}

	decoded = strings.TrimPrefix(decoded, "/")
	if decoded == "" {
		return "", false
	}
	return decoded, true
}

// IsHTMLTarget reports whether a normalized target is HTML-shaped:
// it ends in .html, .htm, or a trailing slash (directory index).
func IsHTMLTarget(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasSuffix(lower, ".html") ||
		strings.HasSuffix(lower, ".htm") ||
		strings.HasSuffix(lower, "/")
}

// anchorTextOf concatenates and trims all visible text under an
// element node — the anchor text used both for crawling and for the
// anchor-augmented tokenization boost.
func anchorTextOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// ExtractLinks walks the parse tree for <a href> elements and returns
// their normalized, HTML-shaped targets paired with anchor text. Non-
// HTML or unfollowable targets are silently omitted — they simply
// never enter the crawl frontier.
func ExtractLinks(docBytes []byte, baseURL string) ([]Link, error) {
	doc, err := html.Parse(strings.NewReader(string(docBytes)))
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				target, ok := NormalizeTarget(attr.Val, baseURL)
				if ok && IsHTMLTarget(target) {
					links = append(links, Link{
						Target:     target,
						AnchorText: anchorTextOf(n),
					})
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// urlSetAtoms are the elements whose href/src attributes contribute to
// the informational, non-crawled global URL set.
var urlSetAtoms = map[atom.Atom]string{
	atom.A:      "href",
	atom.Link:   "href",
	atom.Img:    "src",
	atom.Script: "src",
	atom.Iframe: "src",
}

// ExtractURLSet collects every href/src value from a/link/img/script/
// iframe elements, resolving relative values against baseURL when one
// is given and the value isn't already absolute or a rejected scheme.
// Results are not deduplicated by this function; the caller (the
// indexer) merges and dedups across the whole corpus.
func ExtractURLSet(docBytes []byte, baseURL string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(string(docBytes)))
	if err != nil {
		return nil, err
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attrName, ok := urlSetAtoms[n.DataAtom]; ok {
				for _, attr := range n.Attr {
					if attr.Key == attrName && attr.Val != "" {
						urls = append(urls, resolveInformational(attr.Val, baseURL))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return urls, nil
}

func resolveInformational(raw, baseURL string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
		return raw
	}
	if baseURL == "" {
		return raw
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
