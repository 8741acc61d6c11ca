package types

// IntentKind is the closed set of message intents
type IntentKind string

const (
	IntentProductSearch IntentKind = "product_search"
	IntentProductLookup IntentKind = "product_lookup"
	IntentIssueReport   IntentKind = "issue_report"
	IntentGeneral       IntentKind = "general"
)

// Intent is the tagged result of classifying a user message. Exactly one of
// the payload fields is meaningful, selected by Kind.
type Intent struct {
	Kind      IntentKind
	Query     string // IntentProductSearch: the search query
	ProductID int64  // IntentProductLookup: the referenced product ID
	Text      string // IntentIssueReport / IntentGeneral: the raw message
}

// NewProductSearch creates a product search intent
func NewProductSearch(query string) Intent {
	return Intent{Kind: IntentProductSearch, Query: query}
}

// NewProductLookup creates a specific-product lookup intent
func NewProductLookup(productID int64) Intent {
	return Intent{Kind: IntentProductLookup, ProductID: productID}
}

// NewIssueReport creates an issue report intent
func NewIssueReport(text string) Intent {
	return Intent{Kind: IntentIssueReport, Text: text}
}

// NewGeneral creates a general chat intent
func NewGeneral(text string) Intent {
	return Intent{Kind: IntentGeneral, Text: text}
}
