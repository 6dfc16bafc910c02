package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scipunch/newsdesk/agent"
	"github.com/scipunch/newsdesk/config"
	"github.com/scipunch/newsdesk/feed"
)

const agentName = "gemini"

// BatchSize is how many stories one query requests.
const BatchSize = 5

// Agent queries Gemini with Google Search grounding for current
// Hong Kong news. It makes a single attempt per call and classifies
// failures before returning them.
type Agent struct {
	g   *genkit.Genkit
	log *zap.Logger
}

// New creates a Gemini agent with its own genkit instance.
// It fails fast if the credentials are incomplete.
func New(ctx context.Context, creds config.GeminiCredentials, log *zap.Logger) (*Agent, error) {
	if !creds.IsValid() {
		return nil, fmt.Errorf("invalid Gemini credentials: API key and model must be set")
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: creds.APIKey,
		}),
		genkit.WithDefaultModel(fmt.Sprintf("googleai/%s", creds.Model)),
	)

	return &Agent{g: g, log: log}, nil
}

// Name returns the agent identifier
func (a *Agent) Name() string {
	return agentName
}

// Query asks Gemini for a fresh news batch in the given language.
func (a *Agent) Query(ctx context.Context, lang feed.Language, now time.Time) (string, error) {
	prompt := BuildPrompt(lang, now)
	start := time.Now()

	resp, err := genkit.Generate(ctx, a.g,
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}),
	)
	if err != nil {
		a.log.Warn("gemini query failed",
			zap.String("lang", lang),
			zap.Error(err))
		return "", agent.Classify(err)
	}

	a.log.Info("gemini query completed",
		zap.String("lang", lang),
		zap.Duration("took", time.Since(start)))

	return resp.Text(), nil
}

// BuildPrompt renders the news request for the given language. The two
// variants ask for the same thing; only wording and the month format differ.
func BuildPrompt(lang feed.Language, now time.Time) string {
	switch lang {
	case feed.LangZH:
		return fmt.Sprintf(
			"請搜尋%d年%d月香港最重要的%d宗新聞。"+
				"只輸出一個JSON陣列，不要任何前言、markdown或其他文字。"+
				"每個元素必須是包含以下欄位的物件："+
				`"title"（標題）、"summary"（100至150字摘要）、`+
				`"category"（分類，例如 Business、Community、Technology）、`+
				`"sourceUrl"（新聞來源的直接連結）。`,
			now.Year(), int(now.Month()), BatchSize)
	default:
		return fmt.Sprintf(
			"Search the web for the %d most important Hong Kong news stories of %s. "+
				"Respond with ONLY a single JSON array and nothing else: no introduction, "+
				"no markdown fences, no trailing text. Each element must be an object with "+
				`exactly these keys: "title" (the headline), "summary" (a 100-150 word summary), `+
				`"category" (one word, e.g. Business, Community, Technology), and `+
				`"sourceUrl" (a direct link to the source article).`,
			BatchSize, now.Format("January 2006"))
	}
}
