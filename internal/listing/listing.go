package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/types"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrStale is returned when a newer fetch superseded this one. The result
// was dropped.
var ErrStale = errors.New("list fetch superseded")

type Fetcher[T any] func(ctx context.Context, page, pageSize int) (types.Page[T], error)

// View is a snapshot for rendering. Items keep the previous page while a
// refresh is in flight.
type View[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	Pages    int
	Loading  bool
	State    State
	Err      error
}

// Controller mirrors one page of a server collection. It never edits items
// locally: every change goes through a refetch.
type Controller[T any] struct {
	fetch    Fetcher[T]
	pageSize int
	log      zerolog.Logger

	mu    sync.Mutex
	page  int
	items []T
	total int
	state State
	err   error
	gen   uint64
}

func New[T any](fetch Fetcher[T], pageSize int, log zerolog.Logger) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller[T]{fetch: fetch, pageSize: pageSize, log: log, page: 1}
}

// Load is the initial mount.
func (c *Controller[T]) Load(ctx context.Context) error { return c.Refresh(ctx) }

// Refresh refetches the current page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page := c.page
	c.mu.Unlock()
	return c.load(ctx, page)
}

// SetPage is the only way the current page changes.
func (c *Controller[T]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return &types.FieldError{Field: "page", Reason: "pages start at 1"}
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return c.load(ctx, page)
}

func (c *Controller[T]) load(ctx context.Context, page int) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = Loading
	c.err = nil
	size := c.pageSize
	c.mu.Unlock()

	res, err := c.fetch(ctx, page, size)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug().Int("page", page).Msg("dropping superseded list result")
		return ErrStale
	}
	if err != nil {
		c.state = Failed
		c.err = err
		return err
	}
	items := res.Items
	if len(items) > size {
		items = items[:size]
	}
	c.items = items
	c.total = res.Count
	c.state = Loaded
	return nil
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return View[T]{
		Items:    items,
		Total:    c.total,
		Page:     c.page,
		PageSize: c.pageSize,
		Pages:    PageCount(c.total, c.pageSize),
		Loading:  c.state == Loading,
		State:    c.state,
		Err:      c.err,
	}
}

func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// SlicePage pages a complete collection on the client, for endpoints that
// return everything at once.
func SlicePage[T any](all []T, page, pageSize int) types.Page[T] {
	out := types.Page[T]{Count: len(all)}
	from := (page - 1) * pageSize
	if from < 0 || from >= len(all) {
		return out
	}
	to := from + pageSize
	if to > len(all) {
		to = len(all)
	}
	out.Items = all[from:to]
	return out
}
