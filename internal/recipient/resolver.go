package recipient

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotFound indicates no candidate cleared the relevance threshold.
var ErrNotFound = errors.New("no recipient matched the description")

// SearchResult is one hit from the web search capability.
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// Searcher is the outbound web search capability. Tests substitute a
// deterministic fake.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Lookup is the outcome of resolving a descriptive query: the best match plus
// any ranked alternates that also cleared the threshold.
type Lookup struct {
	Best       Resolved
	Candidates []Resolved
}

var addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Scoring constants for ranked candidates. An address must reach minScore to
// be trusted; anything below is treated as no match.
const (
	scorePerHit     = 2
	scoreTokenBonus = 1
	scoreFirstBonus = 1
	minScore        = 3
)

// Resolver maps raw recipient input to a Resolved address, searching the
// organization's domain when the input is descriptive.
type Resolver struct {
	searcher Searcher
	domain   string
}

// NewResolver creates a Resolver scoped to orgDomain (e.g. "uic.edu").
func NewResolver(searcher Searcher, orgDomain string) *Resolver {
	return &Resolver{
		searcher: searcher,
		domain:   strings.ToLower(strings.TrimSpace(orgDomain)),
	}
}

// Resolve classifies raw input and returns a Lookup. Direct addresses are
// returned as-is with exact confidence and no search call. Descriptive input
// triggers one domain-scoped search; ErrNotFound when nothing clears the
// threshold.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Lookup, error) {
	raw = strings.TrimSpace(raw)

	if ClassifyQuery(raw) == DirectAddress {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("mail.ParseAddress failed: %w", err)
		}
		best := Resolved{
			Address:     addr.Address,
			DisplayName: addr.Name,
			Confidence:  ConfidenceExact,
		}
		return &Lookup{Best: best, Candidates: []Resolved{best}}, nil
	}

	if r.searcher == nil {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf("%s email site:%s", raw, r.domain)
	log.Debug().Str("query", query).Msg("Searching for recipient address")

	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searcher.Search failed: %w", err)
	}

	candidates := r.rankCandidates(raw, results)
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	log.Debug().
		Str("address", candidates[0].Address).
		Int("alternates", len(candidates)-1).
		Msg("Recipient resolved from search")

	return &Lookup{Best: candidates[0], Candidates: candidates}, nil
}

type scoredCandidate struct {
	resolved Resolved
	score    int
}

func (r *Resolver) rankCandidates(raw string, results []SearchResult) []Resolved {
	tokens := queryTokens(raw)
	byAddress := map[string]*scoredCandidate{}

	for i, res := range results {
		text := res.Title + " " + res.Snippet
		for _, match := range addressPattern.FindAllString(text, -1) {
			addr := strings.ToLower(match)
			if r.domain != "" && !strings.HasSuffix(addr, r.domain) {
				continue
			}

			cand, ok := byAddress[addr]
			if !ok {
				name, dept := splitTitle(res.Title)
				cand = &scoredCandidate{resolved: Resolved{
					Address:     addr,
					DisplayName: name,
					Department:  dept,
					Confidence:  ConfidenceInferred,
				}}
				byAddress[addr] = cand
			}

			cand.score += scorePerHit
			if i == 0 {
				cand.score += scoreFirstBonus
			}
			if tokenOverlap(tokens, strings.ToLower(text)) {
				cand.score += scoreTokenBonus
			}
		}
	}

	ranked := make([]scoredCandidate, 0, len(byAddress))
	for _, cand := range byAddress {
		if cand.score >= minScore {
			ranked = append(ranked, *cand)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].resolved.Address < ranked[j].resolved.Address
	})

	resolved := make([]Resolved, 0, len(ranked))
	for _, cand := range ranked {
		resolved = append(resolved, cand.resolved)
	}
	return resolved
}

func queryTokens(raw string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(raw)) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func tokenOverlap(tokens []string, text string) bool {
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// splitTitle pulls a display name and department out of a result title like
// "Jane Doe | Computer Science | UIC" or "Jane Doe - Department of CS".
func splitTitle(title string) (name, department string) {
	parts := strings.FieldsFunc(title, func(r rune) bool {
		return r == '|' || r == '-' || r == '–'
	})
	if len(parts) == 0 {
		return "", ""
	}
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		department = strings.TrimSpace(parts[1])
	}
	if addressPattern.MatchString(name) {
		return "", ""
	}
	return name, department
}
