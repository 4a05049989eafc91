package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/docdex/docdex"
	"google.golang.org/genai"
)

// askRetrievalLimit is the number of passages retrieved as answer
// context when the caller does not set one.
const askRetrievalLimit = 10

// Ensure Asker implements docdex.Asker at compile time.
var _ docdex.Asker = (*Asker)(nil)

// Asker answers questions about indexed documentation. It retrieves the
// top-ranked passages for the question and synthesizes a cited answer
// with Gemini.
type Asker struct {
	client *genai.Client
	search docdex.SearchService
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, search docdex.SearchService) *Asker {
	return &Asker{client: client, search: search}
}

// Ask answers a natural language question grounded in retrieved
// passages. Returns ENOTFOUND when nothing relevant is indexed.
func (a *Asker) Ask(ctx context.Context, question string, opts docdex.SearchOptions) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", docdex.Errorf(docdex.EINVALID, "question required")
	}
	if opts.Limit <= 0 {
		opts.Limit = askRetrievalLimit
	}

	results, err := a.search.Search(ctx, question, opts)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", docdex.Errorf(docdex.ENOTFOUND, "no indexed content matches the question")
	}

	prompt := BuildUserPrompt(results, question)
	config := BuildConfig()

	result, err := a.client.Models.GenerateContent(ctx, generationModel,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", docdex.Errorf(docdex.EUNAVAILABLE, "generation request failed: %v", err)
	}
	if result == nil {
		return "", docdex.Errorf(docdex.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for answer synthesis.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about software documentation. Answer based only on the passages provided, and cite the source locator of each passage you rely on. If the answer is not in the passages, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt renders retrieved passages and the question into the
// user prompt.
func BuildUserPrompt(results []docdex.SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("<passages>\n")
	for i, r := range results {
		sb.WriteString("<passage>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		if r.Metadata.Title != "" {
			fmt.Fprintf(&sb, "<title>%s</title>\n", r.Metadata.Title)
		}
		fmt.Fprintf(&sb, "<source>%s</source>\n", r.Citation())
		fmt.Fprintf(&sb, "<content>%s</content>\n", r.Text)
		sb.WriteString("</passage>\n")
	}
	sb.WriteString("</passages>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
