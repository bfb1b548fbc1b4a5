// Package shipments lists late shipments per platform and forwards remark
// edits to the upstream service.
package shipments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/health"
)

const (
	KindShopee = "shopee"
	KindTikTok = "tiktok"

	unknownShop    = "Unknown Shop"
	unknownProduct = "Unknown Product"
	notAvailable   = "N/A"
)

var (
	ErrUnknownPlatform = errors.New("unknown shipment platform")
	ErrInvalidResponse = errors.New("invalid shipment response")
)

// Fetcher is the upstream transport.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) ([]byte, error)
	PostJSON(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Record is one late shipment normalized across platforms.
type Record struct {
	OrderID     string    `json:"order_id"`
	RawDate     string    `json:"raw_date"`
	Date        time.Time `json:"-"`
	DisplayDate string    `json:"date"`
	Shop        string    `json:"shop"`
	Product     string    `json:"product"`
	Courier     string    `json:"courier"`
	Status      string    `json:"status"`
	Remark      string    `json:"remark"`
}

// HasDate reports whether the upstream date parsed.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

type Filter struct {
	Shop  string
	Start time.Time
	End   time.Time
}

type Result struct {
	Platform string   `json:"platform"`
	Label    string   `json:"label"`
	Shop     string   `json:"shop"`
	Shops    []string `json:"shops"`
	Records  []Record `json:"records"`
	Message  string   `json:"message,omitempty"`
}

type Service struct {
	order   []string
	sources map[string]config.ShipmentSource
	shops   []string
	fetcher Fetcher
	loc     *time.Location
}

func NewService(sources []config.ShipmentSource, shops []string, fetcher Fetcher, loc *time.Location) (*Service, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		sources: make(map[string]config.ShipmentSource, len(sources)),
		shops:   health.ShopOptions(shops),
		fetcher: fetcher,
		loc:     loc,
	}
	for _, src := range sources {
		switch src.Kind {
		case KindShopee, KindTikTok:
		default:
			return nil, fmt.Errorf("shipment source %s: unsupported kind %q", src.Key, src.Kind)
		}
		if _, dup := s.sources[src.Key]; dup {
			return nil, fmt.Errorf("duplicate shipment source %s", src.Key)
		}
		s.sources[src.Key] = src
		s.order = append(s.order, src.Key)
	}
	return s, nil
}

// Sources returns the configured platforms in config order.
func (s *Service) Sources() []config.ShipmentSource {
	out := make([]config.ShipmentSource, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.sources[key])
	}
	return out
}

// List fetches a platform's shipments and applies the filter.
func (s *Service) List(ctx context.Context, platform string, f Filter) (Result, error) {
	src, ok := s.sources[platform]
	if !ok {
		return Result{}, ErrUnknownPlatform
	}
	res := Result{Platform: src.Key, Label: src.Label, Shop: health.AllShops, Shops: s.shops}
	if !health.IsAllShops(f.Shop) {
		res.Shop = strings.TrimSpace(f.Shop)
	}

	body, err := s.fetcher.GetJSON(ctx, src.Endpoint)
	if err != nil {
		return res, fmt.Errorf("fetch shipments for %s: %w", platform, err)
	}
	records, err := Decode(body, src.Kind, s.loc)
	if err != nil {
		return res, err
	}

	res.Records = Apply(records, f)
	if len(res.Records) == 0 {
		res.Message = fmt.Sprintf("No Orders Found for %s", res.Shop)
	}
	log.Ctx(ctx).Debug().Str("platform", platform).Int("total", len(records)).Int("shown", len(res.Records)).Msg("Listed late shipments")
	return res, nil
}

// UpdateRemark posts {order_id, remark} to the platform's update-remark endpoint.
func (s *Service) UpdateRemark(ctx context.Context, platform, orderID, remark string) error {
	src, ok := s.sources[platform]
	if !ok {
		return ErrUnknownPlatform
	}
	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("order id is required")
	}
	payload, err := json.Marshal(map[string]string{"order_id": orderID, "remark": remark})
	if err != nil {
		return err
	}
	if _, err := s.fetcher.PostJSON(ctx, remarkURL(src.Endpoint), payload); err != nil {
		return fmt.Errorf("update remark for %s: %w", orderID, err)
	}
	return nil
}

func remarkURL(endpoint string) string {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint + "update-remark/"
}

// Decode maps an upstream array into records using the platform's field names.
func Decode(body []byte, kind string, loc *time.Location) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	fields := shopeeFields
	if kind == KindTikTok {
		fields = tiktokFields
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		r := Record{
			OrderID: text(item, fields.orderID, notAvailable),
			RawDate: text(item, fields.date, ""),
			Shop:    text(item, "shop_name", unknownShop),
			Product: text(item, fields.product, unknownProduct),
			Courier: text(item, fields.courier, notAvailable),
			Status:  text(item, fields.status, notAvailable),
			Remark:  text(item, fields.remark, ""),
		}
		if t, ok := ParseDate(r.RawDate, loc); ok {
			r.Date = t
			r.DisplayDate = t.Format("02/01/2006")
		} else if r.RawDate == "" {
			r.DisplayDate = "No Date"
		} else {
			r.DisplayDate = r.RawDate
		}
		records = append(records, r)
	}
	return records, nil
}

type fieldNames struct {
	orderID, date, product, courier, status, remark string
}

var (
	shopeeFields = fieldNames{orderID: "order_id", date: "date", product: "skus", courier: "courier", status: "status", remark: "remark"}
	tiktokFields = fieldNames{orderID: "order_id", date: "date_ordered", product: "sku", courier: "courier_name", status: "shipment_status", remark: "shipment_caution"}
)

func text(item map[string]any, key, def string) string {
	switch v := item[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	}
	return def
}

var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts DD/MM/YYYY with optional time, or ISO dates.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Apply filters by shop and an inclusive date range. Records without a
// parsable date are dropped only when a range bound is set.
func Apply(records []Record, f Filter) []Record {
	out := make([]Record, 0, len(records))
	var end time.Time
	if !f.End.IsZero() {
		end = f.End.AddDate(0, 0, 1)
	}
	for _, r := range records {
		if !health.IsAllShops(f.Shop) && !strings.EqualFold(r.Shop, strings.TrimSpace(f.Shop)) {
			continue
		}
		if !f.Start.IsZero() || !f.End.IsZero() {
			if !r.HasDate() {
				continue
			}
			if !f.Start.IsZero() && r.Date.Before(f.Start) {
				continue
			}
			if !end.IsZero() && !r.Date.Before(end) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
