package domain

// ValueType is the measurement type understood by the destination store.
type ValueType string

const (
	ValueTypeNumeric ValueType = "NUMERIC"
	ValueTypeText    ValueType = "TEXT"
)

// String returns the string representation of ValueType.
func (v ValueType) String() string {
	return string(v)
}

// IsValid checks if the value type is a known value.
func (v ValueType) IsValid() bool {
	return v == ValueTypeNumeric || v == ValueTypeText
}

// Dimension names written on every measurement.
const (
	DimensionAsset       = "asset"
	DimensionExchange    = "exchange"
	DimensionGranularity = "granularity"
)

// NoneValue is stored for missing or unrecognized values.
const NoneValue = "None"

// Dimension is a named attribute scoping a measurement.
type Dimension struct {
	Name  string
	Value string
}

// SyncKey identifies one mirrored series.
type SyncKey struct {
	Asset       string // trading pair, e.g. BTC/USDT
	Exchange    string // exchange name, e.g. Binance
	Granularity string // candle timeframe, e.g. 1m
}

// Dimensions returns the key as store dimensions in a fixed order.
func (k SyncKey) Dimensions() []Dimension {
	return []Dimension{
		{Name: DimensionAsset, Value: k.Asset},
		{Name: DimensionExchange, Value: k.Exchange},
		{Name: DimensionGranularity, Value: k.Granularity},
	}
}

// SyncKeyFromDimensions rebuilds a key from measurement dimensions.
// Unknown dimension names are ignored.
func SyncKeyFromDimensions(dims []Dimension) SyncKey {
	var k SyncKey
	for _, d := range dims {
		switch d.Name {
		case DimensionAsset:
			k.Asset = d.Value
		case DimensionExchange:
			k.Exchange = d.Value
		case DimensionGranularity:
			k.Granularity = d.Value
		}
	}
	return k
}

// Measurement is one metric value of one candle, as written to the store.
type Measurement struct {
	Dimensions []Dimension
	Name       string    // source column name
	Value      string    // stringified value
	Type       ValueType // NUMERIC or TEXT
	TimeMs     int64     // candle time in Unix milliseconds
}

// Key returns the sync key carried by the measurement's dimensions.
func (m Measurement) Key() SyncKey {
	return SyncKeyFromDimensions(m.Dimensions)
}

// Valid reports whether the measurement can be written.
func (m Measurement) Valid() bool {
	return m.Name != "" && m.Type.IsValid()
}
