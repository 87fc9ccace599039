package generative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// ErrProviderUnavailable is returned when a provider lacks credentials.
var ErrProviderUnavailable = errors.New("layout provider is not configured")

// Provider produces raw layout suggestions for a prompt.
type Provider interface {
	Name() string
	Suggest(ctx context.Context, prompt string) (string, error)
}

// LemurProvider asks AssemblyAI LeMUR for a JSON widget list.
type LemurProvider struct {
	client    *assemblyai.Client
	catalog   *widgets.Catalog
	model     string
	maxTokens int
	logger    *logging.ChanneledLogger
}

// NewLemurProvider creates a LeMUR-backed provider. An empty apiKey yields a
// provider whose Suggest always fails with ErrProviderUnavailable.
func NewLemurProvider(apiKey, model string, maxTokens int, catalog *widgets.Catalog, logger *logging.ChanneledLogger) *LemurProvider {
	if model == "" {
		model = "anthropic/claude-3-5-sonnet"
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	if catalog == nil {
		catalog = widgets.Default()
	}
	p := &LemurProvider{catalog: catalog, model: model, maxTokens: maxTokens, logger: logger}
	if apiKey != "" {
		p.client = assemblyai.NewClient(apiKey)
	}
	return p
}

func (p *LemurProvider) Name() string { return "lemur" }

// Suggest sends the prompt with a catalog description and returns the raw
// model response.
func (p *LemurProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	if p.client == nil {
		return "", ErrProviderUnavailable
	}
	start := time.Now()

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(layoutInstructions(p.catalog))
	params.InputText = assemblyai.String(prompt)
	params.FinalModel = assemblyai.LeMURModel(p.model)
	params.MaxOutputSize = assemblyai.Int64(int64(p.maxTokens))
	params.Temperature = assemblyai.Float64(0.3)

	p.logger.Generative().Debug("Calling Assembly AI LeMUR API", "model", p.model)
	response, err := p.client.LeMUR.Task(ctx, params)
	if err != nil {
		p.logger.Generative().Error("Assembly AI LeMUR API call failed", "error", err.Error(), "duration", time.Since(start))
		return "", fmt.Errorf("lemur task failed: %w", err)
	}
	if response.Response == nil {
		return "", fmt.Errorf("%w: empty lemur response", ErrMalformedLayout)
	}
	p.logger.Generative().Info("Assembly AI LeMUR API call successful", "duration", time.Since(start))
	return *response.Response, nil
}

func layoutInstructions(catalog *widgets.Catalog) string {
	var b strings.Builder
	b.WriteString("You design landing page layouts. Reply with ONLY a JSON array of widgets, no prose. ")
	b.WriteString(`Each item is {"type": "<type>", ...props}. Use {"type":"section"} to start a new section and {"type":"column"} to start a new column. `)
	b.WriteString("Available types and their props:\n")
	for _, typ := range catalog.Types() {
		def, _ := catalog.Get(typ)
		keys := make([]string, 0, len(def.Fields))
		for _, f := range def.Fields {
			keys = append(keys, f.Key)
		}
		fmt.Fprintf(&b, "- %s: %s\n", typ, strings.Join(keys, ", "))
	}
	return b.String()
}

// HeuristicProvider builds a suggestion locally from keywords in the prompt.
// It needs no network access and is used when no AI key is configured.
type HeuristicProvider struct{}

func (HeuristicProvider) Name() string { return "heuristic" }

type keywordBlock struct {
	words []string
	items []Candidate
}

var heuristicBlocks = []keywordBlock{
	{
		words: []string{"feature", "service", "pricing", "plan", "product"},
		items: []Candidate{
			{"type": "section", "bg": "bg-gray-100"},
			{"type": "heading", "text": "Features"},
			{"type": "column", "width": "md:w-1/3"},
			{"type": "card", "title": "Fast"},
			{"type": "column", "width": "md:w-1/3"},
			{"type": "card", "title": "Reliable"},
			{"type": "column", "width": "md:w-1/3"},
			{"type": "card", "title": "Simple"},
		},
	},
	{
		words: []string{"about", "story", "team", "mission"},
		items: []Candidate{
			{"type": "section"},
			{"type": "heading", "text": "About Us"},
			{"type": "text", "text": "Tell visitors who you are and what you care about."},
		},
	},
	{
		words: []string{"gallery", "photo", "image", "portfolio"},
		items: []Candidate{
			{"type": "section"},
			{"type": "column", "width": "md:w-1/2"},
			{"type": "image", "alt": "Gallery image"},
			{"type": "column", "width": "md:w-1/2"},
			{"type": "image", "alt": "Gallery image"},
		},
	},
	{
		words: []string{"video", "demo", "watch"},
		items: []Candidate{
			{"type": "section"},
			{"type": "heading", "text": "See It In Action", "tag": "h3"},
			{"type": "video"},
		},
	},
	{
		words: []string{"contact", "form", "signup", "sign up", "newsletter", "touch"},
		items: []Candidate{
			{"type": "section", "bg": "bg-white"},
			{"type": "form"},
		},
	},
}

// Suggest returns a JSON widget list: a hero titled from the prompt, one
// block per matched keyword group and a closing call to action.
func (HeuristicProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lower := strings.ToLower(prompt)
	items := []Candidate{
		{"type": "section", "padding": "p-0"},
		{"type": "hero", "title": heroTitle(prompt)},
	}
	matched := false
	for _, block := range heuristicBlocks {
		for _, w := range block.words {
			if strings.Contains(lower, w) {
				items = append(items, block.items...)
				matched = true
				break
			}
		}
	}
	if !matched {
		items = append(items,
			Candidate{"type": "section"},
			Candidate{"type": "heading", "text": "Why Choose Us"},
			Candidate{"type": "text"},
		)
	}
	items = append(items,
		Candidate{"type": "section", "bg": "bg-gray-900"},
		Candidate{"type": "heading", "text": "Ready to get started?", "color": "text-white"},
		Candidate{"type": "button", "text": "Get Started", "align": "text-center"},
	)
	return marshalCandidates(items)
}

func heroTitle(prompt string) string {
	title := strings.TrimSpace(prompt)
	if title == "" {
		return "Build Something Great"
	}
	if r := []rune(title); len(r) > 60 {
		title = strings.TrimSpace(string(r[:60])) + "..."
	}
	r := []rune(title)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
