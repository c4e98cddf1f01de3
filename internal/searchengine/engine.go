package searchengine

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/textproc"
)

// Score multipliers by where a term matched. A term hit in the title
// outranks the same hit in the URL, which outranks one in the body.
const (
	multiplierContent = 1.0
	multiplierURL     = 1.1
	multiplierTitle   = 1.2
)

const defaultLimit = 10

// Engine answers search queries through a Source.
type Engine struct {
	src    Source
	logger *slog.Logger
}

// New creates an Engine over the given backend.
func New(src Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, logger: logger}
}

// Search runs a full query: term lookups when terms are present, a
// newest-first lookback otherwise, with domain, tag, bookmark, date, and
// pagination filters applied either way.
func (e *Engine) Search(ctx context.Context, params model.SearchParams) (*model.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	if params.Skip < 0 {
		params.Skip = 0
	}
	if params.EndDate <= 0 {
		params.EndDate = math.MaxInt64
	}

	include, bad := refineQueryTerms(params.Terms)
	if bad {
		// The query had terms but none survived tokenization, so no
		// page can ever match. Report it rather than returning
		// everything.
		return &model.SearchResult{IsBadTerm: true, ResultsExhausted: true}, nil
	}
	exclude, _ := refineQueryTerms(params.TermsExclude)

	filter, err := e.buildFilter(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(include) == 0 {
		return e.lookbackSearch(ctx, params, filter)
	}
	return e.termSearch(ctx, params, include, exclude, filter)
}

// Suggest completes a domain or tag prefix.
func (e *Engine) Suggest(ctx context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return e.src.Suggest(ctx, kind, prefix, limit)
}

// refineQueryTerms tokenizes raw query words the same way the indexer
// does. bad is true when the input had words but none survived.
func refineQueryTerms(raw []string) (terms []string, bad bool) {
	had := false
	for _, word := range raw {
		if word == "" {
			continue
		}
		had = true
		terms = append(terms, textproc.ExtractTerms(word).Slice()...)
	}
	return terms, had && len(terms) == 0
}

// urlFilter is the precomputed allow/deny decision for one query.
type urlFilter struct {
	allowed map[string]struct{} // nil means unrestricted
	denied  map[string]struct{}
}

func (f *urlFilter) ok(pageID string) bool {
	if _, deny := f.denied[pageID]; deny {
		return false
	}
	if f.allowed == nil {
		return true
	}
	_, ok := f.allowed[pageID]
	return ok
}

// buildFilter resolves the domain and tag filters into page ID sets up
// front. Multiple domains widen the filter; multiple tags narrow it.
func (e *Engine) buildFilter(ctx context.Context, params model.SearchParams) (*urlFilter, error) {
	f := &urlFilter{denied: make(map[string]struct{})}

	if len(params.Domains) > 0 {
		f.allowed = make(map[string]struct{})
		for _, domain := range params.Domains {
			ids, err := e.src.DomainMatches(ctx, domain)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				f.allowed[id] = struct{}{}
			}
		}
	}

	for _, tag := range params.Tags {
		ids, err := e.src.TagMatches(ctx, tag)
		if err != nil {
			return nil, err
		}
		tagged := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			tagged[id] = struct{}{}
		}
		f.allowed = intersect(f.allowed, tagged)
	}

	for _, domain := range params.DomainsExclude {
		ids, err := e.src.DomainMatches(ctx, domain)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			f.denied[id] = struct{}{}
		}
	}

	return f, nil
}

// intersect narrows a (possibly nil, meaning unrestricted) set by
// another set.
func intersect(a, b map[string]struct{}) map[string]struct{} {
	if a == nil {
		return b
	}
	out := make(map[string]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// lookbackSearch serves blank queries by walking recent visits and
// bookmarks newest-first. The walk stops as soon as one page past the
// requested window has been found, so old history is never touched.
func (e *Engine) lookbackSearch(ctx context.Context, params model.SearchParams, filter *urlFilter) (*model.SearchResult, error) {
	want := params.Skip + params.Limit + 1
	seen := make(map[string]struct{})
	ordered := make([]string, 0, want)

	var walkErr error
	err := e.src.LatestEvents(ctx, params.StartDate, params.EndDate, func(pageID string, ts int64) bool {
		if _, dup := seen[pageID]; dup {
			return true
		}
		seen[pageID] = struct{}{}
		if !filter.ok(pageID) {
			return true
		}
		if params.BookmarksOnly {
			marked, err := e.src.Bookmarked(ctx, []string{pageID})
			if err != nil {
				walkErr = err
				return false
			}
			if !marked[pageID] {
				return true
			}
		}
		ordered = append(ordered, pageID)
		return len(ordered) < want
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}

	exhausted := len(ordered) < want
	window := paginate(ordered, params.Skip, params.Limit)

	docs, err := e.src.DisplayDocs(ctx, window)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Docs:             docs,
		TotalCount:       len(ordered),
		ResultsExhausted: exhausted,
	}, nil
}

// scoredPage carries the ranking inputs for one matched page.
type scoredPage struct {
	pageID string
	score  int64
	latest int64
}

// termSearch intersects the match sets of every included term, drops
// pages matching any excluded term, applies the filters, and ranks by
// score descending.
func (e *Engine) termSearch(ctx context.Context, params model.SearchParams, include, exclude []string, filter *urlFilter) (*model.SearchResult, error) {
	var matched map[string]scoredPage
	for _, term := range include {
		termScores, err := e.scoreTerm(ctx, term)
		if err != nil {
			return nil, err
		}
		if matched == nil {
			matched = termScores
			continue
		}
		// Pages must match every term. Where several terms match, the
		// last term's score wins.
		next := make(map[string]scoredPage)
		for id, sp := range termScores {
			if _, ok := matched[id]; ok {
				next[id] = sp
			}
		}
		matched = next
	}

	for _, term := range exclude {
		termScores, err := e.scoreTerm(ctx, term)
		if err != nil {
			return nil, err
		}
		for id := range termScores {
			delete(matched, id)
		}
	}

	ranked := make([]scoredPage, 0, len(matched))
	for _, sp := range matched {
		if sp.latest < params.StartDate || sp.latest > params.EndDate {
			continue
		}
		if !filter.ok(sp.pageID) {
			continue
		}
		ranked = append(ranked, sp)
	}

	if params.BookmarksOnly && len(ranked) > 0 {
		ids := make([]string, len(ranked))
		for i, sp := range ranked {
			ids[i] = sp.pageID
		}
		marked, err := e.src.Bookmarked(ctx, ids)
		if err != nil {
			return nil, err
		}
		kept := ranked[:0]
		for _, sp := range ranked {
			if marked[sp.pageID] {
				kept = append(kept, sp)
			}
		}
		ranked = kept
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].latest != ranked[j].latest {
			return ranked[i].latest > ranked[j].latest
		}
		return ranked[i].pageID < ranked[j].pageID
	})

	total := len(ranked)
	ids := make([]string, total)
	for i, sp := range ranked {
		ids[i] = sp.pageID
	}
	window := paginate(ids, params.Skip, params.Limit)

	docs, err := e.src.DisplayDocs(ctx, window)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Docs:             docs,
		TotalCount:       total,
		ResultsExhausted: params.Skip+params.Limit >= total,
	}, nil
}

// scoreTerm looks one term up across all three indexes. Within a term a
// page keeps its best placement: title beats URL beats body.
func (e *Engine) scoreTerm(ctx context.Context, term string) (map[string]scoredPage, error) {
	kinds := []struct {
		kind TermKind
		mult float64
	}{
		{TermContent, multiplierContent},
		{TermURL, multiplierURL},
		{TermTitle, multiplierTitle},
	}

	out := make(map[string]scoredPage)
	for _, k := range kinds {
		matches, err := e.src.TermMatches(ctx, k.kind, term)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			score := int64(math.Floor(k.mult * float64(m.Latest)))
			if prev, ok := out[m.PageID]; ok && prev.score >= score {
				continue
			}
			out[m.PageID] = scoredPage{pageID: m.PageID, score: score, latest: m.Latest}
		}
	}
	return out, nil
}

// paginate slices [skip, skip+limit) clamped to the input.
func paginate(ids []string, skip, limit int) []string {
	if skip >= len(ids) {
		return nil
	}
	end := skip + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[skip:end]
}
