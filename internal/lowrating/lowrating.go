// Package lowrating serves buyer reviews filtered by shop, star count and
// review date.
package lowrating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/health"
)

const (
	MessageSelectShop = "Please select a shop"
	MessageNoOrders   = "No orders found"

	dateLayout = "2006-01-02"
)

var (
	ErrInvalidStars = errors.New("stars must be between 1 and 5")
	ErrInvalidDate  = errors.New("dates must be YYYY-MM-DD")
)

type Fetcher interface {
	GetJSON(ctx context.Context, url string) ([]byte, error)
}

type Review struct {
	Date     string   `json:"date"`
	Shop     string   `json:"shop"`
	OrderID  string   `json:"orderId"`
	Username string   `json:"username"`
	Stars    int      `json:"stars"`
	Item     string   `json:"item"`
	Comment  string   `json:"comment"`
	Pictures []string `json:"pictures"`
}

// StarsLabel renders "1 Stars" style labels as the review table shows them.
func (r Review) StarsLabel() string {
	return fmt.Sprintf("%d Stars", r.Stars)
}

// Filter holds the query. Stars 0 means all; dates are YYYY-MM-DD or empty.
type Filter struct {
	Shop  string
	Stars int
	Start string
	End   string
}

// ParseFilter validates raw query values.
func ParseFilter(shop, stars, start, end string) (Filter, error) {
	f := Filter{Shop: strings.TrimSpace(shop), Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if stars = strings.TrimSpace(stars); stars != "" && !strings.EqualFold(stars, "all") {
		n, err := strconv.Atoi(stars)
		if err != nil || n < 1 || n > 5 {
			return Filter{}, ErrInvalidStars
		}
		f.Stars = n
	}
	for _, d := range []string{f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return Filter{}, ErrInvalidDate
		}
	}
	return f, nil
}

type Result struct {
	Shop    string   `json:"shop"`
	Stars   int      `json:"stars"`
	Reviews []Review `json:"reviews"`
	Message string   `json:"message,omitempty"`
}

type Service struct {
	endpoint string
	fetcher  Fetcher
}

func NewService(endpoint string, fetcher Fetcher) *Service {
	return &Service{endpoint: endpoint, fetcher: fetcher}
}

// List returns matching reviews. Without a shop nothing is fetched.
func (s *Service) List(ctx context.Context, f Filter) (Result, error) {
	res := Result{Shop: f.Shop, Stars: f.Stars}
	if f.Shop == "" {
		res.Message = MessageSelectShop
		return res, nil
	}
	if s.endpoint == "" {
		return res, fmt.Errorf("low rating endpoint is not configured")
	}

	body, err := s.fetcher.GetJSON(ctx, s.endpoint)
	if err != nil {
		return res, fmt.Errorf("fetch low ratings: %w", err)
	}
	var reviews []Review
	if err := json.Unmarshal(body, &reviews); err != nil {
		return res, fmt.Errorf("decode low ratings: %w", err)
	}

	res.Reviews = Apply(reviews, f)
	if len(res.Reviews) == 0 {
		res.Message = MessageNoOrders
	}
	log.Ctx(ctx).Debug().Str("shop", f.Shop).Int("stars", f.Stars).Int("shown", len(res.Reviews)).Msg("Listed low ratings")
	return res, nil
}

// Apply filters reviews. Dates compare lexically, which is chronological for
// YYYY-MM-DD.
func Apply(reviews []Review, f Filter) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if f.Start != "" && r.Date < f.Start {
			continue
		}
		if f.End != "" && r.Date > f.End {
			continue
		}
		if !health.IsAllShops(f.Shop) && !strings.EqualFold(r.Shop, f.Shop) {
			continue
		}
		if f.Stars != 0 && r.Stars != f.Stars {
			continue
		}
		if r.Pictures == nil {
			r.Pictures = []string{}
		}
		out = append(out, r)
	}
	return out
}
