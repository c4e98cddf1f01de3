package textproc

// stopWords are high-frequency English words excluded from term indexes.
// A query that reduces to nothing after this filter is reported as a bad
// term by the search engine rather than executed.
var stopWords = map[string]bool{
	// Articles
	"an": true, "the": true,

	// Pronouns
	"me": true, "my": true, "myself": true, "we": true, "our": true,
	"ours": true, "ourselves": true, "you": true, "your": true,
	"yours": true, "yourself": true, "yourselves": true, "he": true,
	"him": true, "his": true, "himself": true, "she": true, "her": true,
	"hers": true, "herself": true, "it": true, "its": true,
	"itself": true, "they": true, "them": true, "their": true,
	"theirs": true, "themselves": true,

	// Prepositions
	"of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"above": true, "below": true, "to": true, "from": true, "up": true,
	"down": true, "in": true, "out": true, "on": true, "off": true,
	"over": true, "under": true,

	// Conjunctions
	"and": true, "or": true, "but": true, "if": true, "while": true,
	"because": true, "as": true, "until": true, "than": true, "so": true,
	"nor": true, "yet": true,

	// Common verbs
	"is": true, "am": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "having": true, "do": true, "does": true, "did": true,
	"doing": true, "will": true, "would": true, "should": true,
	"could": true, "can": true, "may": true, "might": true, "must": true,

	// Other common words
	"this": true, "that": true, "these": true, "those": true,
	"what": true, "which": true, "who": true, "whom": true,
	"whose": true, "when": true, "where": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true,
	"such": true, "no": true, "not": true, "only": true, "own": true,
	"same": true, "then": true, "there": true, "too": true, "very": true,
}
