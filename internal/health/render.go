package health

const (
	MessageNoData       = "No data available"
	MessageNoShopData   = "No data available for this shop"
	defaultShopName     = "No Shop Name"
	ShopNameColumn      = "shop_name"
	shopNameColumnLabel = "Shop Name"
)

type Header struct {
	Column    string        `json:"column"`
	Label     string        `json:"label"`
	Direction SortDirection `json:"direction,omitempty"`
}

type Cell struct {
	Metric string `json:"metric"`
	Text   string `json:"text"`
	Class  Class  `json:"class"`
}

// Row is either a shop row or the placeholder that stands in for an empty
// table. A placeholder spans every column.
type Row struct {
	Shop        string `json:"shop,omitempty"`
	Cells       []Cell `json:"cells,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Message     string `json:"message,omitempty"`
	ColSpan     int    `json:"colspan,omitempty"`
}

type Table struct {
	Headers []Header `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the table holds only the placeholder row.
func (t Table) Empty() bool {
	return len(t.Rows) == 1 && t.Rows[0].Placeholder
}

type Card struct {
	Metric string `json:"metric"`
	Label  string `json:"label"`
	Text   string `json:"text"`
	Class  Class  `json:"class"`
}

// BuildTable renders one row per record in source order. An empty list yields
// a single placeholder row carrying emptyMessage.
func BuildTable(records []PerformanceRecord, set MetricSet, sort SortState, emptyMessage string) Table {
	cols := set.Columns()
	t := Table{Headers: make([]Header, 0, len(cols)+1)}
	t.Headers = append(t.Headers, Header{Column: ShopNameColumn, Label: shopNameColumnLabel, Direction: sort.directionFor(ShopNameColumn)})
	for _, c := range cols {
		t.Headers = append(t.Headers, Header{Column: c.Metric, Label: c.Label, Direction: sort.directionFor(c.Metric)})
	}

	if len(records) == 0 {
		if emptyMessage == "" {
			emptyMessage = MessageNoData
		}
		t.Rows = []Row{PlaceholderRow(set, emptyMessage)}
		return t
	}

	t.Rows = make([]Row, 0, len(records))
	for _, r := range records {
		row := Row{Shop: r.ShopName, Cells: make([]Cell, 0, len(cols))}
		if row.Shop == "" {
			row.Shop = defaultShopName
		}
		for _, c := range cols {
			v, ok := r.Value(c.Metric)
			row.Cells = append(row.Cells, Cell{
				Metric: c.Metric,
				Text:   FormatValue(v, ok, c.Percent),
				Class:  Classify(v, ok, c),
			})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func PlaceholderRow(set MetricSet, message string) Row {
	return Row{Placeholder: true, Message: message, ColSpan: set.ColumnCount()}
}

// BuildCards renders one summary card per criterion. A nil or empty overview
// yields neutral N/A cards.
func BuildCards(overview Overview, set MetricSet) []Card {
	cards := make([]Card, 0, len(set.Criteria))
	for _, c := range set.Criteria {
		v, ok := overview.Value(c.Metric)
		cards = append(cards, Card{
			Metric: c.Metric,
			Label:  c.Label,
			Text:   FormatValue(v, ok, c.Percent),
			Class:  Classify(v, ok, c),
		})
	}
	return cards
}
