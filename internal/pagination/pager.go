package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

var (
	ErrFetchInProgress = errors.New("a page fetch is already in progress")
	ErrNoMorePages     = errors.New("no more pages")
	ErrDisabled        = errors.New("pager is disabled")
)

// FetchFunc fetches the page identified by cursor
type FetchFunc[T any] func(ctx context.Context, cursor string) (*common.Page[T], error)

// Option configures a Pager
type Option[T any] func(*Pager[T])

// WithFilter keeps only the items for which keep returns true
func WithFilter[T any](keep func(T) bool) Option[T] {
	return func(p *Pager[T]) { p.keep = keep }
}

// WithEnabled toggles whether the pager may fetch at all
func WithEnabled[T any](enabled bool) Option[T] {
	return func(p *Pager[T]) { p.enabled = enabled }
}

// OnPage registers a hook that sees each filtered page right after it is stored
func OnPage[T any](fn func(ctx context.Context, cursor string, page common.Page[T])) Option[T] {
	return func(p *Pager[T]) { p.onPage = fn }
}

// Pager walks a cursor-paginated collection in order. Only one fetch runs at a time and
// the next cursor always comes from the last page's next URL.
type Pager[T any] struct {
	fetch   FetchFunc[T]
	keep    func(T) bool
	enabled bool
	onPage  func(ctx context.Context, cursor string, page common.Page[T])

	mu       sync.Mutex
	pages    []common.Page[T]
	cursor   string
	hasNext  bool
	fetching bool
	err      error
}

// New creates a pager positioned before the first page
func New[T any](fetch FetchFunc[T], opts ...Option[T]) *Pager[T] {
	p := &Pager[T]{
		fetch:   fetch,
		enabled: true,
		cursor:  common.FirstCursor,
		hasNext: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchNext fetches and appends the next page
func (p *Pager[T]) FetchNext(ctx context.Context) error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return ErrDisabled
	}
	if p.fetching {
		p.mu.Unlock()
		return ErrFetchInProgress
	}
	if !p.hasNext {
		p.mu.Unlock()
		return ErrNoMorePages
	}
	cursor := p.cursor
	p.fetching = true
	p.mu.Unlock()

	return p.load(ctx, cursor, false)
}

// Refresh refetches the first page and replaces everything fetched so far with it
func (p *Pager[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return ErrDisabled
	}
	if p.fetching {
		p.mu.Unlock()
		return ErrFetchInProgress
	}
	p.fetching = true
	p.mu.Unlock()

	return p.load(ctx, common.FirstCursor, true)
}

func (p *Pager[T]) load(ctx context.Context, cursor string, replace bool) error {
	page, err := p.fetch(ctx, cursor)
	if err == nil && page == nil {
		page = &common.Page[T]{}
	}
	var next string
	var more bool
	if err == nil {
		next, more, err = common.NextCursor(page.Next)
	}

	p.mu.Lock()
	p.fetching = false
	if err != nil {
		p.err = err
		p.mu.Unlock()
		return err
	}

	filtered := p.filter(*page)
	if replace {
		p.pages = []common.Page[T]{filtered}
	} else {
		p.pages = append(p.pages, filtered)
	}
	p.cursor = next
	p.hasNext = more
	p.err = nil
	hook := p.onPage
	p.mu.Unlock()

	if hook != nil {
		hook(ctx, cursor, filtered)
	}
	return nil
}

func (p *Pager[T]) filter(page common.Page[T]) common.Page[T] {
	if p.keep == nil {
		return page
	}
	kept := make([]T, 0, len(page.Results))
	for _, item := range page.Results {
		if p.keep(item) {
			kept = append(kept, item)
		}
	}
	page.Results = kept
	return page
}

// SetEnabled toggles fetching, e.g. once a thread id becomes known
func (p *Pager[T]) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Items returns every item fetched so far, in page order
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	var items []T
	for _, page := range p.pages {
		items = append(items, page.Results...)
	}
	return items
}

// Pages returns copies of the fetched pages
func (p *Pager[T]) Pages() []common.Page[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	pages := make([]common.Page[T], len(p.pages))
	for i, page := range p.pages {
		page.Results = append([]T(nil), page.Results...)
		pages[i] = page
	}
	return pages
}

// HasNextPage reports whether FetchNext can make progress
func (p *Pager[T]) HasNextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && p.hasNext
}

// IsFetching reports whether a fetch is outstanding
func (p *Pager[T]) IsFetching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetching
}

// Err returns the error of the last failed fetch, cleared by the next success
func (p *Pager[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// FetchAll keeps fetching until the collection ends or limit pages are held (limit <= 0 means no limit)
func (p *Pager[T]) FetchAll(ctx context.Context, limit int) error {
	for {
		if limit > 0 && len(p.Pages()) >= limit {
			return nil
		}
		err := p.FetchNext(ctx)
		if errors.Is(err, ErrNoMorePages) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
