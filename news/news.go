// Package news implements the feed fetch-cache orchestrator: it
// coordinates the cache store, the remote query agent, and the response
// parser behind a small view-state surface consumed by the presentation
// layer.
package news

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scipunch/newsdesk/agent"
	"github.com/scipunch/newsdesk/cache"
	"github.com/scipunch/newsdesk/feed"
	"github.com/scipunch/newsdesk/parse"
)

// User-facing messages. Translation is the presentation layer's concern.
const (
	MsgRefreshFailed   = "Unable to load the latest news right now."
	MsgRateLimited     = "The news service is busy right now. Please try again in a few minutes."
	MsgLoadMoreFailed  = "Couldn't load more articles."
	MsgLoadMoreLimited = "Couldn't load more articles: the news service is busy. Try again shortly."
)

// State is a snapshot of the orchestrator's view state.
type State struct {
	Articles     []feed.Article
	Loading      bool // initial fetch in flight
	FetchingMore bool // load-more fetch in flight
	Error        string
}

// Feed orchestrates refresh and load-more fetches over a cache store and
// a remote query agent. All failures are absorbed into view state; no
// method returns an error.
//
// Methods are safe for concurrent use. A refresh started while an older
// fetch is in flight supersedes it: the stale fetch's result is discarded
// when it eventually completes instead of overwriting newer state.
type Feed struct {
	store cache.Store
	agent agent.Agent
	now   func() time.Time

	mu           sync.Mutex
	gen          uint64
	loadingGen   uint64 // generation that set the loading flag
	articles     []feed.Article
	loading      bool
	fetchingMore bool
	errMsg       string
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// New creates a Feed over the given store and agent.
func New(store cache.Store, ag agent.Agent, opts ...Option) *Feed {
	f := &Feed{
		store: store,
		agent: ag,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns a copy of the current view state.
func (f *Feed) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	articles := make([]feed.Article, len(f.articles))
	copy(articles, f.articles)
	return State{
		Articles:     articles,
		Loading:      f.loading,
		FetchingMore: f.fetchingMore,
		Error:        f.errMsg,
	}
}

// Refresh replaces the article list for lang. A fresh cache payload
// short-circuits the whole operation; otherwise the remote agent is
// queried and the result cached. On failure the fallback policy adopts
// stale cache articles, or the fixed sample set when no cache is usable.
func (f *Feed) Refresh(ctx context.Context, lang feed.Language) {
	key := feed.CacheKey(lang)

	f.mu.Lock()
	f.gen++
	token := f.gen

	if payload, ok := f.usableCache(key); ok {
		if payload.Fresh(f.now()) {
			slog.Debug("serving refresh from cache", "lang", lang, "articles", len(payload.Articles))
			f.articles = payload.Articles
			f.errMsg = ""
			f.mu.Unlock()
			return
		}
	}

	f.errMsg = ""
	f.loading = true
	f.loadingGen = token
	f.mu.Unlock()

	raw, qerr := f.agent.Query(ctx, lang, f.now())

	f.mu.Lock()
	defer f.mu.Unlock()
	// clear the loading flag unless a newer refresh has taken it over
	if f.loadingGen == token {
		f.loading = false
	}
	if token != f.gen {
		slog.Debug("discarding superseded refresh result", "lang", lang)
		return
	}

	if qerr != nil {
		f.fallbackRefresh(key, qerr)
		return
	}

	articles, perr := parse.Articles(raw, f.now())
	if perr != nil {
		f.fallbackRefresh(key, perr)
		return
	}

	f.articles = articles
	f.errMsg = ""
	f.writeCache(key, articles)
}

// LoadMore appends a fresh batch to the current list. It never serves
// from cache and is a no-op while another load-more is in flight; the
// caller is expected to debounce beyond that. On failure the existing
// articles and cache are left untouched.
func (f *Feed) LoadMore(ctx context.Context, lang feed.Language) {
	f.mu.Lock()
	if f.fetchingMore {
		f.mu.Unlock()
		return
	}
	f.fetchingMore = true
	f.errMsg = ""
	token := f.gen
	f.mu.Unlock()

	raw, qerr := f.agent.Query(ctx, lang, f.now())

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchingMore = false
	if token != f.gen {
		slog.Debug("discarding superseded load-more result", "lang", lang)
		return
	}

	if qerr != nil {
		f.errMsg = loadMoreMessage(qerr)
		return
	}

	batch, perr := parse.Articles(raw, f.now())
	if perr != nil {
		f.errMsg = loadMoreMessage(perr)
		return
	}

	f.articles = append(f.articles, batch...)
	f.writeCache(feed.CacheKey(lang), f.articles)
}

// usableCache reads key from the store, discarding unreadable entries
// and stale-empty payloads. Callers hold f.mu.
func (f *Feed) usableCache(key string) (feed.CachePayload, bool) {
	payload, found, err := f.store.Get(key)
	if err != nil {
		slog.Warn("discarding unreadable cache entry", "key", key, "error", err)
		if rerr := f.store.Remove(key); rerr != nil {
			slog.Warn("failed to remove cache entry", "key", key, "error", rerr)
		}
		return feed.CachePayload{}, false
	}
	if !found {
		return feed.CachePayload{}, false
	}
	if len(payload.Articles) == 0 && !payload.Fresh(f.now()) {
		// stale and empty, nothing worth keeping
		if rerr := f.store.Remove(key); rerr != nil {
			slog.Warn("failed to remove cache entry", "key", key, "error", rerr)
		}
		return feed.CachePayload{}, false
	}
	return payload, true
}

// fallbackRefresh applies the refresh-mode fallback policy: prefer stale
// cached articles over the hardcoded sample set, and always surface a
// user-facing message. Callers hold f.mu.
func (f *Feed) fallbackRefresh(key string, cause error) {
	if payload, ok := f.usableCache(key); ok && len(payload.Articles) > 0 {
		slog.Info("refresh failed, falling back to cached articles",
			"key", key, "articles", len(payload.Articles), "error", cause)
		f.articles = payload.Articles
	} else {
		slog.Info("refresh failed with no usable cache, falling back to samples",
			"key", key, "error", cause)
		f.articles = feed.SampleArticles(f.now())
	}
	f.errMsg = refreshMessage(cause)
}

func (f *Feed) writeCache(key string, articles []feed.Article) {
	payload := feed.CachePayload{
		Timestamp: f.now().UnixMilli(),
		Articles:  articles,
	}
	if err := f.store.Set(key, payload); err != nil {
		slog.Warn("failed to write cache payload", "key", key, "error", err)
	}
}

func refreshMessage(err error) string {
	if agent.IsRateLimited(err) {
		return MsgRateLimited
	}
	return MsgRefreshFailed
}

func loadMoreMessage(err error) string {
	if agent.IsRateLimited(err) {
		return MsgLoadMoreLimited
	}
	return MsgLoadMoreFailed
}
