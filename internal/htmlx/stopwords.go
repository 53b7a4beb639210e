package htmlx

// stopWords is the closed list of 63 English function words filtered
// out of every document token stream before indexing. Query strings
// are not filtered against it; a stop word in a query matches nothing
// because the index holds none.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "will": {}, "with": {}, "you": {}, "your": {}, "this": {},
	"but": {}, "or": {}, "not": {}, "have": {}, "had": {}, "what": {},
	"when": {}, "where": {}, "who": {}, "which": {}, "why": {}, "how": {},
	"all": {}, "any": {}, "both": {}, "each": {}, "few": {}, "more": {},
	"most": {}, "other": {}, "some": {}, "such": {}, "no": {}, "nor": {},
	"only": {}, "own": {}, "same": {}, "so": {}, "than": {}, "too": {},
	"very": {}, "can": {}, "may": {}, "should": {}, "would": {}, "could": {},
}

// IsStopWord reports whether w (already lowercased) is filtered out
// before indexing.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// punctuationCutset is the fixed set of leading/trailing punctuation
// stripped from a raw word before it is judged alphabetic.
const punctuationCutset = ".,!?;:\"()[]{}"
