package usecase

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

//go:embed prompt/chat_system.md
var chatSystemPrompt string

// ApologyReply is returned when reply generation fails after all retries.
// The chat endpoint still answers 200 with this text.
const ApologyReply = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."

var generateBackoff = []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}

// composeInput carries everything the prompt builder needs for one turn
type composeInput struct {
	Message  string
	History  []model.ConversationTurn
	Memories []*model.MemoryRecord
	Products []model.Product
}

// composeReply generates the assistant reply. The whole attempt budget shares
// one timeout; each failed attempt backs off before the next. After the last
// failure it returns the fixed apology together with the generation error so
// the caller can log it and still answer the user.
func (uc *UseCases) composeReply(ctx context.Context, in composeInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.generateTimeout)
	defer cancel()

	prompt := buildChatPrompt(in)

	var lastErr error
	for attempt := 0; attempt <= uc.generateRetries; attempt++ {
		if attempt > 0 {
			backoff := generateBackoff[len(generateBackoff)-1]
			if attempt-1 < len(generateBackoff) {
				backoff = generateBackoff[attempt-1]
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ApologyReply, goerr.Wrap(types.ErrGeneration, "generation timed out",
					goerr.V("error", ctx.Err().Error()),
				)
			}
			logging.From(ctx).Warn("retrying reply generation",
				"attempt", attempt, "error", lastErr)
		}

		reply, err := uc.generateOnce(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}

	return ApologyReply, goerr.Wrap(types.ErrGeneration, "all generation attempts failed",
		goerr.V("attempts", uc.generateRetries+1),
		goerr.V("error", lastErr.Error()),
	)
}

func (uc *UseCases) generateOnce(ctx context.Context, prompt string) (string, error) {
	ssn, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(chatSystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := ssn.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate reply")
	}
	if resp == nil || len(resp.Texts) == 0 || strings.TrimSpace(strings.Join(resp.Texts, "")) == "" {
		return "", goerr.New("LLM returned empty reply")
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "\n")), nil
}

func buildChatPrompt(in composeInput) string {
	var b strings.Builder

	if len(in.History) > 0 {
		b.WriteString("# Conversation so far\n\n")
		for _, turn := range in.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	if len(in.Memories) > 0 {
		b.WriteString("# Known about this customer\n\n")
		for _, m := range in.Memories {
			fmt.Fprintf(&b, "- %s\n", m.Content)
		}
		b.WriteString("\n")
	}

	if len(in.Products) > 0 {
		b.WriteString("# Matched products\n\n")
		for _, p := range in.Products {
			fmt.Fprintf(&b, "- ID %d: %s ($%.2f, %s): %s\n",
				p.ID, p.Name, p.Price, p.Category, p.Description)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("# Matched products\n\n(none)\n\n")
	}

	b.WriteString("# Customer message\n\n")
	b.WriteString(in.Message)

	return b.String()
}

var (
	productMarkerRe  = regexp.MustCompile(`\[product:(\d+)\]`)
	productMentionRe = regexp.MustCompile(`(?i)\bproduct\s+#?(\d+)\b`)
)

// RewriteProductLinks replaces [product:ID] markers and bare "product N"
// mentions with absolute store links. Unknown IDs keep their plain text form
// with the marker stripped. The rewrite is idempotent: applying it to its own
// output changes nothing.
func RewriteProductLinks(text, baseURL string, exists func(id int64) bool) string {
	base := strings.TrimRight(baseURL, "/")

	var markers strings.Builder
	last := 0
	for _, loc := range productMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		id, err := strconv.ParseInt(text[loc[2]:loc[3]], 10, 64)
		if err == nil && exists(id) {
			markers.WriteString(text[last:start])
			fmt.Fprintf(&markers, "(%s/products/%d)", base, id)
			last = end
			continue
		}

		// stripping a marker must not leave a stray space at the junction;
		// newlines and the rest of the text stay untouched
		if start > last && text[start-1] == ' ' {
			start--
		} else if end < len(text) && text[end] == ' ' {
			end++
		}
		markers.WriteString(text[last:start])
		last = end
	}
	markers.WriteString(text[last:])
	out := markers.String()

	var b strings.Builder
	last = 0
	for _, loc := range productMentionRe.FindAllStringSubmatchIndex(out, -1) {
		matchEnd := loc[1]
		id, err := strconv.ParseInt(out[loc[2]:loc[3]], 10, 64)
		if err != nil || !exists(id) {
			continue
		}

		link := fmt.Sprintf(" (%s/products/%d)", base, id)
		if strings.HasPrefix(out[matchEnd:], link) {
			continue
		}

		b.WriteString(out[last:matchEnd])
		b.WriteString(link)
		last = matchEnd
	}
	b.WriteString(out[last:])

	return b.String()
}
