package marketv1

import "sort"

const (
	// Currency is the settlement currency every trade is denominated in.
	Currency = "SEASHELLS"
	// Submission is the synthetic counterparty identity used to tag the
	// strategy's own side of a trade.
	Submission = "SUBMISSION"
)

// DefaultLimits is the built-in position limit table. A deployment can
// override it with a YAML limits file.
var DefaultLimits = map[string]int{
	"AMETHYSTS":      20,
	"STARFRUIT":      20,
	"ORCHIDS":        100,
	"CHOCOLATE":      250,
	"STRAWBERRIES":   350,
	"ROSES":          60,
	"GIFT_BASKET":    60,
	"COCONUT":        300,
	"COCONUT_COUPON": 600,
}

// Level is a single price level with a non-negative resting volume.
type Level struct {
	Price  int `json:"price"`
	Volume int `json:"volume"`
}

// SnapshotRow is one product's market snapshot at one tick. Levels beyond
// what the source provides are simply absent from the slices, never
// zero-filled.
type SnapshotRow struct {
	Day        int
	Timestamp  int64
	Product    string
	Bids       []Level // best first, at most 3
	Asks       []Level // best first, at most 3
	MidPrice   float64
	ProfitLoss float64 // externally supplied baseline, not used by the engine
}

// Trade is one executed trade. Buyer and seller ids may be empty or
// anonymized in historical data.
type Trade struct {
	Timestamp int64
	Symbol    string
	Price     int
	Quantity  int
	Buyer     string
	Seller    string
}

// Listing is the metadata of a tradable product. The symbol acts as both
// identifier and display name.
type Listing struct {
	Symbol       string `json:"symbol"`
	Product      string `json:"product"`
	Denomination int    `json:"denomination"`
}

// Portfolio is the per-run mutable trading state: signed inventory and
// realized profit/loss per product. It is owned by the tick orchestrator
// and handed to components for the duration of one tick.
type Portfolio struct {
	Positions   map[string]int
	RealizedPnL map[string]float64
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		Positions:   make(map[string]int),
		RealizedPnL: make(map[string]float64),
	}
}

// DayData is the parsed market data of a single round/day combination.
type DayData struct {
	Round int
	Day   int

	// Prices maps tick timestamp -> product -> snapshot row.
	Prices map[int64]map[string]SnapshotRow
	// Trades maps tick timestamp -> product -> historical trades in data order.
	Trades map[int64]map[string][]Trade

	// Products is the sorted list of products present in the price data.
	Products []string
	// Timestamps is the sorted list of tick timestamps present in the price data.
	Timestamps []int64
}

// NewDayData indexes raw snapshot rows and trades by timestamp and product.
func NewDayData(round, day int, prices []SnapshotRow, trades []Trade) *DayData {
	data := &DayData{
		Round:  round,
		Day:    day,
		Prices: make(map[int64]map[string]SnapshotRow),
		Trades: make(map[int64]map[string][]Trade),
	}

	productSet := make(map[string]struct{})
	for _, row := range prices {
		byProduct, ok := data.Prices[row.Timestamp]
		if !ok {
			byProduct = make(map[string]SnapshotRow)
			data.Prices[row.Timestamp] = byProduct
			data.Timestamps = append(data.Timestamps, row.Timestamp)
		}
		byProduct[row.Product] = row
		productSet[row.Product] = struct{}{}
	}

	for _, trade := range trades {
		byProduct, ok := data.Trades[trade.Timestamp]
		if !ok {
			byProduct = make(map[string][]Trade)
			data.Trades[trade.Timestamp] = byProduct
		}
		byProduct[trade.Symbol] = append(byProduct[trade.Symbol], trade)
	}

	for product := range productSet {
		data.Products = append(data.Products, product)
	}
	sort.Strings(data.Products)
	sort.Slice(data.Timestamps, func(i, j int) bool {
		return data.Timestamps[i] < data.Timestamps[j]
	})

	return data
}

// TradeProducts returns the sorted list of products that appear in the
// day's historical trade data.
func (d *DayData) TradeProducts() []string {
	productSet := make(map[string]struct{})
	for _, byProduct := range d.Trades {
		for product := range byProduct {
			productSet[product] = struct{}{}
		}
	}

	products := make([]string, 0, len(productSet))
	for product := range productSet {
		products = append(products, product)
	}
	sort.Strings(products)
	return products
}
