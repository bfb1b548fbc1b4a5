package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrDayDisabled   = errors.New("no data endpoint for that day")
	ErrStaleResponse = errors.New("response superseded by a newer selection")
)

type RefreshPolicy string

const (
	// RefreshTodayOnly reloads only when the current selection is today.
	RefreshTodayOnly RefreshPolicy = "today_only"
	// RefreshAlways selects today and reloads, replacing a manual selection.
	RefreshAlways RefreshPolicy = "always"
)

// Fetcher retrieves an upstream JSON document.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	Key       string
	Label     string
	Kind      Kind
	Endpoints map[string]string // weekday name to URL
	Shops     []string
	Mode      CalendarMode
	Location  *time.Location
	Clock     Clock
}

// Dashboard owns the state of one platform tab: calendar, loaded records,
// overview, shop filter and sort. All methods are safe for concurrent use.
type Dashboard struct {
	key       string
	label     string
	set       MetricSet
	endpoints map[string]string
	shops     []string
	loc       *time.Location
	clock     Clock
	fetcher   Fetcher
	status    *StatusBoard

	mu         sync.Mutex
	calendar   *Calendar
	records    []PerformanceRecord
	overview   Overview
	dateData   map[string]any
	message    string
	shop       string
	sort       SortState
	seq        uint64
	appliedSeq uint64
	inFlight   int
}

func NewDashboard(opts Options, fetcher Fetcher) (*Dashboard, error) {
	set, err := MetricSetFor(opts.Kind)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Mode == "" {
		opts.Mode = ModeWeek
	}
	days := make([]string, 0, len(opts.Endpoints))
	for day := range opts.Endpoints {
		days = append(days, day)
	}
	sort.Strings(days)

	d := &Dashboard{
		key:       opts.Key,
		label:     opts.Label,
		set:       set,
		endpoints: opts.Endpoints,
		shops:     ShopOptions(opts.Shops),
		loc:       opts.Location,
		clock:     opts.Clock,
		fetcher:   fetcher,
		status:    NewStatusBoard(opts.Clock, MessageTTL),
		message:   MessageNoData,
	}
	d.calendar = NewCalendar(opts.Mode, days, d.now())
	return d, nil
}

func (d *Dashboard) Key() string          { return d.key }
func (d *Dashboard) Label() string        { return d.label }
func (d *Dashboard) Set() MetricSet       { return d.set }
func (d *Dashboard) Shops() []string      { return d.shops }
func (d *Dashboard) Status() *StatusBoard { return d.status }

func (d *Dashboard) now() time.Time {
	return d.clock.Now().In(d.loc)
}

type loadToken struct {
	seq uint64
	key string
	day string
	url string
}

// Load selects today's default day and fetches it.
func (d *Dashboard) Load(ctx context.Context) error {
	return d.Navigate(ctx, 0)
}

// Select moves the calendar to date and loads it. Disabled days leave the
// state untouched and return ErrDayDisabled.
func (d *Dashboard) Select(ctx context.Context, date time.Time) error {
	d.mu.Lock()
	if !d.calendar.Select(date.In(d.loc)) {
		d.mu.Unlock()
		return ErrDayDisabled
	}
	tok := d.beginLoadLocked()
	d.mu.Unlock()
	return d.load(ctx, tok)
}

// Navigate shifts the displayed range by weeks; zero returns to today.
func (d *Dashboard) Navigate(ctx context.Context, weeks int) error {
	d.mu.Lock()
	var ok bool
	if weeks == 0 {
		_, ok = d.calendar.Today(d.now())
	} else {
		_, ok = d.calendar.Shift(weeks)
	}
	if !ok {
		d.clearLocked(MessageNoData)
		d.mu.Unlock()
		return nil
	}
	tok := d.beginLoadLocked()
	d.mu.Unlock()
	return d.load(ctx, tok)
}

// Refresh reloads today's data according to policy. It reports whether a
// fetch was issued.
func (d *Dashboard) Refresh(ctx context.Context, policy RefreshPolicy) (bool, error) {
	now := d.now()
	logger := log.Ctx(ctx).With().Str("platform", d.key).Logger()

	d.mu.Lock()
	if !d.calendar.IsEnabled(now) {
		d.mu.Unlock()
		logger.Debug().Str("day", now.Weekday().String()).Msg("No endpoint for today, skipping refresh")
		return false, nil
	}
	selected, ok := d.calendar.Selected()
	switch policy {
	case RefreshAlways:
		if !ok || !sameDay(selected, now) {
			d.calendar.Today(now)
		}
	default:
		if !ok || !sameDay(selected, now) {
			d.mu.Unlock()
			return false, nil
		}
	}
	tok := d.beginLoadLocked()
	d.mu.Unlock()
	return true, d.load(ctx, tok)
}

func (d *Dashboard) beginLoadLocked() loadToken {
	selected, _ := d.calendar.Selected()
	day, _ := DayName(selected)
	d.seq++
	d.inFlight++
	d.calendar.setPhase(PhaseLoading)
	return loadToken{
		seq: d.seq,
		key: DateKey(selected),
		day: day,
		url: d.endpoints[day],
	}
}

func (d *Dashboard) load(ctx context.Context, tok loadToken) error {
	logger := log.Ctx(ctx).With().Str("platform", d.key).Str("day", tok.day).Uint64("seq", tok.seq).Logger()
	d.status.Post(StatusLoading, fmt.Sprintf("Loading %s data for %s...", d.label, tok.day))

	var snap Snapshot
	body, err := d.fetcher.GetJSON(ctx, tok.url)
	if err == nil {
		snap, err = ParseSnapshot(body, d.set)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--

	if !d.acceptLocked(tok) {
		logger.Debug().Msg("Discarding stale response")
		return ErrStaleResponse
	}
	d.appliedSeq = tok.seq

	if err != nil {
		logger.Error().Err(err).Msg("Failed to load account health data")
		d.clearLocked(fmt.Sprintf("Failed to load data for %s", tok.day))
		d.status.Post(StatusError, fmt.Sprintf("Failed to load %s data for %s", d.label, tok.day))
		return err
	}

	if len(snap.Records) == 0 {
		logger.Info().Msg("No account health data for selected day")
		d.clearLocked(fmt.Sprintf("No data found for %s", tok.day))
		d.status.Post(StatusError, fmt.Sprintf("No data available for %s", tok.day))
		return nil
	}

	d.records = snap.Records
	d.dateData = snap.DateData
	if len(snap.Overview) > 0 {
		d.overview = snap.Overview
	} else {
		d.overview = Aggregate(snap.Records, d.set)
	}
	d.message = ""
	d.calendar.setPhase(PhaseDataLoaded)
	d.status.Post(StatusSuccess, fmt.Sprintf("%s data loaded for %s", d.label, tok.day))
	logger.Info().Int("records", len(snap.Records)).Msg("Account health data loaded")
	return nil
}

// acceptLocked applies a response only while its selection is still current
// and nothing newer for that selection has been applied.
func (d *Dashboard) acceptLocked(tok loadToken) bool {
	selected, ok := d.calendar.Selected()
	if !ok || DateKey(selected) != tok.key {
		return false
	}
	return tok.seq > d.appliedSeq
}

func (d *Dashboard) clearLocked(message string) {
	d.records = nil
	d.overview = nil
	d.dateData = nil
	d.message = message
	d.calendar.setPhase(PhaseNoData)
}

// SetShop filters the loaded records. No fetch is issued.
func (d *Dashboard) SetShop(shop string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if IsAllShops(shop) {
		shop = ""
	}
	d.shop = shop
}

// SortBy toggles the sort on column.
func (d *Dashboard) SortBy(column string) error {
	if column != ShopNameColumn {
		if _, ok := d.set.Criterion(column); !ok {
			return fmt.Errorf("unknown column %q", column)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sort = d.sort.Toggle(column)
	return nil
}

// View is the render model of a dashboard at one instant.
type View struct {
	Key           string         `json:"key"`
	Label         string         `json:"label"`
	Kind          Kind           `json:"kind"`
	Phase         Phase          `json:"phase"`
	Loading       bool           `json:"loading"`
	Title         string         `json:"title"`
	Days          []DayCell      `json:"days"`
	SelectedDate  string         `json:"selected_date,omitempty"`
	SelectedLabel string         `json:"selected_label"`
	ShowToday     bool           `json:"show_today"`
	Shop          string         `json:"shop"`
	Shops         []string       `json:"shops"`
	Sort          SortState      `json:"sort"`
	Table         Table          `json:"table"`
	Cards         []Card         `json:"cards"`
	DateData      map[string]any `json:"date_data,omitempty"`
	Messages      []Message      `json:"messages"`
}

func (d *Dashboard) View() View {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Key:       d.key,
		Label:     d.label,
		Kind:      d.set.Kind,
		Phase:     d.calendar.Phase(),
		Loading:   d.inFlight > 0,
		Title:     d.calendar.Title(),
		Days:      d.calendar.Days(now),
		ShowToday: !d.calendar.ContainsToday(now),
		Shop:      AllShops,
		Shops:     d.shops,
		Sort:      d.sort,
		DateData:  d.dateData,
		Messages:  d.status.Active(),
	}
	if d.shop != "" {
		v.Shop = d.shop
	}

	if selected, ok := d.calendar.Selected(); ok {
		v.SelectedDate = DateKey(selected)
		v.SelectedLabel = fmt.Sprintf("Selected date: %s, %s", selected.Weekday(), displayDate(selected))
	} else {
		v.SelectedLabel = "No date selected"
	}

	if len(d.records) == 0 {
		if v.Phase == PhaseNoData {
			v.SelectedLabel = "No data found for selected date."
		}
		v.Table = BuildTable(nil, d.set, d.sort, d.message)
		v.Cards = BuildCards(nil, d.set)
		return v
	}

	rows := SortRecords(FilterByShop(d.records, d.shop), d.sort)
	v.Table = BuildTable(rows, d.set, d.sort, MessageNoShopData)
	v.Cards = BuildCards(d.overview, d.set)
	return v
}
