package generator

// Category groups articles for prompting and history display.
type Category string

const (
	CategoryTechnology Category = "technology"
	CategoryBusiness   Category = "business"
	CategoryLifestyle  Category = "lifestyle"
	CategoryHealth     Category = "health"
	CategoryTravel     Category = "travel"
	CategoryFinance    Category = "finance"
)

// Length is the requested article size.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// words 给提示词一个具体的目标字数。
func (l Length) words() int {
	switch l {
	case LengthShort:
		return 400
	case LengthLong:
		return 1500
	default:
		return 800
	}
}

// TrendRange scopes topic suggestions in time.
type TrendRange string

const (
	RangeWeekly    TrendRange = "weekly"
	RangeMonthly   TrendRange = "monthly"
	RangeEvergreen TrendRange = "evergreen"
)

// Article is the generation contract as a typed struct. The five text fields
// must all be present after a successful generation; Chart and SponsoredLink
// are optional extras the model may include. GeneratedImageURL is derived
// later by the image call and is never part of the requested schema.
type Article struct {
	Title             string         `json:"title"`
	Introduction      string         `json:"introduction"`
	Body              string         `json:"body"`
	Conclusion        string         `json:"conclusion"`
	ImagePrompt       string         `json:"imagePrompt"`
	Chart             *Chart         `json:"chart,omitempty"`
	SponsoredLink     *SponsoredLink `json:"sponsoredLink,omitempty"`
	GeneratedImageURL string         `json:"generatedImageUrl,omitempty"`
}

// Chart carries optional data points the article references.
type Chart struct {
	Title  string       `json:"title"`
	Kind   string       `json:"kind"` // bar, pie or line
	Points []ChartPoint `json:"points"`
}

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SponsoredLink is an optional promotional footer the model may weave in.
type SponsoredLink struct {
	Anchor      string `json:"anchor"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Suggestion is one proposed topic from SuggestTopics.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
