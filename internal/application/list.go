package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Source supplies the remote collection behind a list screen.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
	Search(ctx context.Context, filter Filter) ([]T, error)
	Delete(ctx context.Context, id string) error
}

// SheetRenderer turns a list into a downloadable spreadsheet.
type SheetRenderer[T any] interface {
	FileName() string
	Render(items []T) ([]byte, error)
}

// Artifact is a rendered export ready to be written or downloaded.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SpreadsheetContentType is the media type of rendered xlsx workbooks.
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListOptions configures a ListController.
type ListOptions[T any] struct {
	// Name labels log lines, e.g. "meetings".
	Name string
	// DefaultPageSize is restored by Reset. Zero means DefaultPageSize.
	DefaultPageSize int
	// InitialPageSize is used before the first Reset. Zero means DefaultPageSize.
	InitialPageSize int
	// PageSizes restricts SetPageSize. Empty means any positive size.
	PageSizes []int
	// NotFoundMessage replaces the server text when a delete answers 404.
	NotFoundMessage string
	// EmptyExportMessage is shown when Export is called on an empty list.
	EmptyExportMessage string
	// Sheet renders exports. Without one Export reports an error.
	Sheet SheetRenderer[T]
	// Clone deep copies an item so snapshots never share memory with state.
	Clone    func(T) T
	Notifier Notifier
	Logger   *slog.Logger
}

// ListController owns the in-memory state of one list screen: the last
// fetched items, the search filter, and the pagination window.
//
// Concurrent actions are not coordinated; whichever response arrives last
// replaces the list. The mutex only keeps memory access race free.
type ListController[T any] struct {
	source Source[T]
	opts   ListOptions[T]
	logger *slog.Logger

	inflight atomic.Int32

	mu       sync.Mutex
	items    []T
	filter   Filter
	page     int
	pageSize int
}

// NewListController builds a controller over source.
func NewListController[T any](source Source[T], opts ListOptions[T]) *ListController[T] {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.InitialPageSize <= 0 {
		opts.InitialPageSize = opts.DefaultPageSize
	}
	if opts.Name == "" {
		opts.Name = "list"
	}
	return &ListController[T]{
		source:   source,
		opts:     opts,
		logger:   defaultLogger(opts.Logger),
		page:     1,
		pageSize: opts.InitialPageSize,
	}
}

func (c *ListController[T]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return componentLogger(ctx, c.logger, "ListController", operation, append([]any{"list", c.opts.Name}, attrs...)...)
}

func (c *ListController[T]) begin() func() {
	c.inflight.Add(1)
	return func() { c.inflight.Add(-1) }
}

// Loading reports whether a network call is in flight.
func (c *ListController[T]) Loading() bool {
	return c.inflight.Load() > 0
}

// Fetch replaces the list with the server collection, newest first.
func (c *ListController[T]) Fetch(ctx context.Context) ([]T, error) {
	if c == nil || c.source == nil {
		return nil, fmt.Errorf("ListController is not configured")
	}
	done := c.begin()
	defer done()

	logger := c.log(ctx, "Fetch")
	items, err := c.source.Fetch(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "fetch failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, c.opts.Notifier, NoticeError, failureNotice(err))
		return c.Items(), err
	}

	items = c.cloneAll(items)
	slices.Reverse(items)

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	logger.DebugContext(ctx, "list fetched", "count", len(items))
	return c.Items(), nil
}

// Refetch is Fetch under the name mutation forms use after a successful save.
func (c *ListController[T]) Refetch(ctx context.Context) error {
	_, err := c.Fetch(ctx)
	return err
}

// Search replaces the list with the server's matches for filter. Results
// are kept in server order.
func (c *ListController[T]) Search(ctx context.Context, filter Filter) ([]T, error) {
	if c == nil || c.source == nil {
		return nil, fmt.Errorf("ListController is not configured")
	}
	done := c.begin()
	defer done()

	filter.Category = strings.TrimSpace(filter.Category)
	filter.Text = strings.TrimSpace(filter.Text)
	logger := c.log(ctx, "Search", "category", filter.Category)

	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()

	items, err := c.source.Search(ctx, filter)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, c.opts.Notifier, NoticeError, searchFailureNotice(err))
		return c.Items(), err
	}

	items = c.cloneAll(items)
	c.mu.Lock()
	c.items = items
	c.page = 1
	c.mu.Unlock()

	if len(items) == 0 {
		notify(ctx, c.opts.Notifier, NoticeWarning, MsgNoMatches)
	} else {
		notify(ctx, c.opts.Notifier, NoticeSuccess, MsgSearchFetched)
	}
	logger.DebugContext(ctx, "search completed", "count", len(items))
	return c.Items(), nil
}

// Reset clears the search inputs and the list, restores the default page
// size, and fetches again.
func (c *ListController[T]) Reset(ctx context.Context) ([]T, error) {
	if c == nil {
		return nil, fmt.Errorf("ListController is nil")
	}
	c.mu.Lock()
	c.items = nil
	c.filter = Filter{}
	c.page = 1
	c.pageSize = c.opts.DefaultPageSize
	c.mu.Unlock()

	c.log(ctx, "Reset").DebugContext(ctx, "list reset")
	return c.Fetch(ctx)
}

// Delete removes one record remotely and fetches again. The list is left
// untouched when the server refuses.
func (c *ListController[T]) Delete(ctx context.Context, id string) error {
	if c == nil || c.source == nil {
		return fmt.Errorf("ListController is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		vErr := &ValidationError{}
		vErr.add("id", "id is required")
		return vErr
	}

	done := c.begin()
	defer done()

	logger := c.log(ctx, "Delete", "id", id)
	if err := c.source.Delete(ctx, id); err != nil {
		logger.ErrorContext(ctx, "delete failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, c.opts.Notifier, NoticeError, c.deleteFailureNotice(err))
		return err
	}

	logger.InfoContext(ctx, "record deleted")
	notify(ctx, c.opts.Notifier, NoticeSuccess, MsgDeleted)
	_, err := c.Fetch(ctx)
	return err
}

func (c *ListController[T]) deleteFailureNotice(err error) string {
	if c.opts.NotFoundMessage != "" && errors.Is(err, ErrNotFound) {
		return c.opts.NotFoundMessage
	}
	return failureNotice(err)
}

// Export renders the whole in-memory list, not just the visible page.
func (c *ListController[T]) Export(ctx context.Context) (Artifact, error) {
	if c == nil {
		return Artifact{}, fmt.Errorf("ListController is nil")
	}
	logger := c.log(ctx, "Export")
	items := c.Items()
	if len(items) == 0 {
		notify(ctx, c.opts.Notifier, NoticeInfo, c.opts.EmptyExportMessage)
		return Artifact{}, ErrNothingToExport
	}
	if c.opts.Sheet == nil {
		return Artifact{}, fmt.Errorf("export: no sheet configured for %s", c.opts.Name)
	}

	data, err := c.opts.Sheet.Render(items)
	if err != nil {
		logger.ErrorContext(ctx, "export failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, c.opts.Notifier, NoticeError, MsgExportFailed)
		return Artifact{}, fmt.Errorf("export %s: %w", c.opts.Name, err)
	}

	logger.InfoContext(ctx, "list exported", "rows", len(items), "bytes", len(data))
	return Artifact{
		FileName:    c.opts.Sheet.FileName(),
		ContentType: SpreadsheetContentType,
		Data:        data,
	}, nil
}

// Items returns a fresh copy of the current list.
func (c *ListController[T]) Items() []T {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cloneAll(c.items)
}

// Filter returns the active search inputs.
func (c *ListController[T]) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// PageSize returns the active page size.
func (c *ListController[T]) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// PageSizes lists the selectable page sizes.
func (c *ListController[T]) PageSizes() []int {
	return append([]int(nil), c.opts.PageSizes...)
}

// SetPageSize changes the page size and returns to the first page.
func (c *ListController[T]) SetPageSize(size int) error {
	if err := c.validatePageSize(size); err != nil {
		return err
	}
	c.mu.Lock()
	c.pageSize = size
	c.page = 1
	c.mu.Unlock()
	return nil
}

// GoTo moves to page n, clamped to the available pages.
func (c *ListController[T]) GoTo(n int) Page[T] {
	c.mu.Lock()
	page := Paginate(c.items, n, c.pageSize)
	c.page = page.Number
	if c.page == 0 {
		c.page = 1
	}
	c.mu.Unlock()
	return c.clonePage(page)
}

// View returns the current page.
func (c *ListController[T]) View() Page[T] {
	c.mu.Lock()
	page := Paginate(c.items, c.page, c.pageSize)
	c.mu.Unlock()
	return c.clonePage(page)
}

// Paginate applies a page size and page number in one step. A size change
// without a page lands on the first page; zero values keep the current ones.
func (c *ListController[T]) Paginate(page, size int) (Page[T], error) {
	if size > 0 && size != c.PageSize() {
		if err := c.SetPageSize(size); err != nil {
			return c.View(), err
		}
	}
	if page > 0 {
		return c.GoTo(page), nil
	}
	return c.View(), nil
}

func (c *ListController[T]) validatePageSize(size int) error {
	if size <= 0 {
		vErr := &ValidationError{}
		vErr.add("page_size", "page size must be positive")
		return vErr
	}
	if len(c.opts.PageSizes) == 0 || slices.Contains(c.opts.PageSizes, size) {
		return nil
	}
	options := make([]string, len(c.opts.PageSizes))
	for i, option := range c.opts.PageSizes {
		options[i] = strconv.Itoa(option)
	}
	vErr := &ValidationError{}
	vErr.add("page_size", "page size must be one of "+strings.Join(options, ", "))
	return vErr
}

func (c *ListController[T]) cloneAll(items []T) []T {
	out := make([]T, len(items))
	if c.opts.Clone == nil {
		copy(out, items)
		return out
	}
	for i, item := range items {
		out[i] = c.opts.Clone(item)
	}
	return out
}

func (c *ListController[T]) clonePage(page Page[T]) Page[T] {
	page.Items = c.cloneAll(page.Items)
	return page
}
