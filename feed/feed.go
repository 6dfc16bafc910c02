package feed

import "time"

// Language selects the locale of the requested news batch.
type Language = string

var (
	LangEN = Language("en")
	LangZH = Language("zh-HK")
)

// FreshFor is how long a cached payload may serve a refresh.
const FreshFor = 15 * time.Minute

// Article is a single news item produced by the remote query.
type Article struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Category  string `json:"category"`
	SourceURL string `json:"sourceUrl"`
}

// CachePayload is what the store keeps per language.
type CachePayload struct {
	Timestamp int64     `json:"timestamp"` // epoch millis of the last write
	Articles  []Article `json:"articles"`
}

// Fresh reports whether the payload may serve a refresh without a
// remote query: younger than FreshFor and holding at least one article.
func (p CachePayload) Fresh(now time.Time) bool {
	age := now.UnixMilli() - p.Timestamp
	return age < FreshFor.Milliseconds() && len(p.Articles) > 0
}

// CacheKey returns the store key for a language.
func CacheKey(lang Language) string {
	return "news:v1:" + lang
}

// SampleArticles is the last-resort batch shown when a refresh fails
// and no cached payload of any age is usable.
func SampleArticles(now time.Time) []Article {
	base := now.UnixMilli()
	return []Article{
		{
			ID:        base,
			Title:     "Hong Kong SMEs embrace digital payment solutions",
			Summary:   "Small and medium enterprises across Hong Kong are rapidly adopting digital payment platforms, with adoption rates climbing as merchants respond to changing consumer habits. Industry groups report that neighbourhood shops and wet market stalls alike now accept mobile wallets, and banks have rolled out simplified onboarding for smaller merchants. Analysts note the shift is reshaping cash-heavy districts and opening cross-border commerce opportunities with the Greater Bay Area.",
			Category:  "Business",
			SourceURL: "https://www.scmp.com/business",
		},
		{
			ID:        base + 1,
			Title:     "Community initiatives expand support for local districts",
			Summary:   "Community organisations in Hong Kong are widening neighbourhood support programmes, from elderly care visits to youth mentorship schemes. District councils have partnered with NGOs to fund shared kitchens and learning centres, and volunteers report growing participation from younger residents. Organisers say the programmes aim to strengthen ties in districts undergoing rapid redevelopment, where long-standing residents can otherwise lose access to familiar services.",
			Category:  "Community",
			SourceURL: "https://www.news.gov.hk",
		},
	}
}
