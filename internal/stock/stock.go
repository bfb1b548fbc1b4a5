// Package stock pages through the upstream stock count and applies search,
// status filters and sorting to the current page.
package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 100
	windowSize   = 5
	lowThreshold = 10

	FilterAll        = "all"
	FilterLowStock   = "low-stock"
	FilterOutOfStock = "out-of-stock"
)

var ErrUnknownFilter = errors.New("unknown stock filter")

type Fetcher interface {
	GetJSON(ctx context.Context, url string) ([]byte, error)
}

// Quantity accepts JSON numbers and numeric strings.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*q = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*q = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %s", data)
	}
	*q = Quantity(int(f))
	return nil
}

type Item struct {
	SKU              string   `json:"sku"`
	ProductVariation string   `json:"product_variation"`
	TotalSales       Quantity `json:"total_sales"`
	CurrentStock     Quantity `json:"current_stock"`
	IncomingStock    Quantity `json:"incoming_stock"`
	ReserveStock     Quantity `json:"reserve_stock"`
	Lead             string   `json:"lead"`
	TotalStock       Quantity `json:"total_stock"`
}

// StatusClass colors the reserve column.
func (i Item) StatusClass() string {
	switch {
	case i.ReserveStock <= 0:
		return "text-danger"
	case i.ReserveStock < lowThreshold:
		return "text-warning"
	default:
		return "text-success"
	}
}

// Page mirrors the upstream pagination envelope.
type Page struct {
	Data        []Item `json:"data"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	Limit       int    `json:"limit"`
}

type Query struct {
	Page      int
	Search    string
	Filter    string
	SortBy    string
	SortOrder string
}

type View struct {
	Page
	Search    string `json:"search"`
	Filter    string `json:"filter"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Window    []int  `json:"window"`
	HasPrev   bool   `json:"has_prev"`
	HasNext   bool   `json:"has_next"`
}

type Service struct {
	endpoint string
	limit    int
	fetcher  Fetcher
}

func NewService(endpoint string, limit int, fetcher Fetcher) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{endpoint: endpoint, limit: limit, fetcher: fetcher}
}

// Fetch loads one upstream page and shapes it for display.
func (s *Service) Fetch(ctx context.Context, q Query) (View, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Filter == "" {
		q.Filter = FilterAll
	}
	switch q.Filter {
	case FilterAll, FilterLowStock, FilterOutOfStock:
	default:
		return View{}, ErrUnknownFilter
	}

	u, err := pageURL(s.endpoint, q.Page, s.limit)
	if err != nil {
		return View{}, err
	}
	body, err := s.fetcher.GetJSON(ctx, u)
	if err != nil {
		return View{}, fmt.Errorf("fetch stock page %d: %w", q.Page, err)
	}
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return View{}, fmt.Errorf("decode stock page: %w", err)
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = q.Page
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	if page.Limit < 1 {
		page.Limit = s.limit
	}

	total := len(page.Data)
	page.Data = Apply(page.Data, q.Search, q.Filter)
	if q.SortBy != "" {
		SortItems(page.Data, q.SortBy, q.SortOrder != "desc")
	}

	log.Ctx(ctx).Debug().Int("page", page.CurrentPage).Int("total", total).Int("shown", len(page.Data)).Msg("Fetched stock page")
	return View{
		Page:      page,
		Search:    q.Search,
		Filter:    q.Filter,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Window:    Window(page.CurrentPage, page.TotalPages),
		HasPrev:   page.CurrentPage > 1,
		HasNext:   page.CurrentPage < page.TotalPages,
	}, nil
}

func pageURL(endpoint string, page, limit int) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("stock endpoint is not configured")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse stock endpoint: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += "stock-count/all/"
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Apply runs the case-insensitive search on sku and variation, then the
// reserve-stock filter.
func Apply(items []Item, search, filter string) []Item {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if search != "" &&
			!strings.Contains(strings.ToLower(it.SKU), search) &&
			!strings.Contains(strings.ToLower(it.ProductVariation), search) {
			continue
		}
		switch filter {
		case FilterLowStock:
			if it.ReserveStock <= 0 || it.ReserveStock >= lowThreshold {
				continue
			}
		case FilterOutOfStock:
			if it.ReserveStock != 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// SortItems orders items by a column name as used in the table header.
// Unknown columns leave the order unchanged.
func SortItems(items []Item, column string, asc bool) {
	var less func(a, b Item) bool
	switch column {
	case "sku":
		less = func(a, b Item) bool { return strings.ToLower(a.SKU) < strings.ToLower(b.SKU) }
	case "product_variation":
		less = func(a, b Item) bool {
			return strings.ToLower(a.ProductVariation) < strings.ToLower(b.ProductVariation)
		}
	case "lead":
		less = func(a, b Item) bool { return strings.ToLower(a.Lead) < strings.ToLower(b.Lead) }
	default:
		get := quantityColumn(column)
		if get == nil {
			return
		}
		less = func(a, b Item) bool { return get(a) < get(b) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func quantityColumn(column string) func(Item) Quantity {
	switch column {
	case "total_sales":
		return func(i Item) Quantity { return i.TotalSales }
	case "current_stock":
		return func(i Item) Quantity { return i.CurrentStock }
	case "incoming_stock":
		return func(i Item) Quantity { return i.IncomingStock }
	case "reserve_stock":
		return func(i Item) Quantity { return i.ReserveStock }
	case "total_stock":
		return func(i Item) Quantity { return i.TotalStock }
	}
	return nil
}

// Window returns up to five page numbers around current.
func Window(current, total int) []int {
	if total < 1 {
		return nil
	}
	start := max(1, current-2)
	end := min(total, start+windowSize-1)
	start = max(1, end-windowSize+1)
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
