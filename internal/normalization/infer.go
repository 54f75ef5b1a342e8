package normalization

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"candle-sync/internal/domain"
)

// Policy controls how candle values are classified.
type Policy struct {
	// ZeroAsMissing stores numeric zero as the "None" placeholder.
	// Off by default: a zero price or volume is a real value.
	ZeroAsMissing bool
}

// InferValue classifies v with the default policy.
func InferValue(v any) (string, domain.ValueType) {
	return Policy{}.Infer(v)
}

// Infer returns the store representation of v and its type.
// Finite numbers are NUMERIC; everything else is TEXT, with missing or
// unrecognized values rendered as domain.NoneValue.
func (p Policy) Infer(v any) (string, domain.ValueType) {
	switch x := v.(type) {
	case nil:
		return none()
	case string:
		if x == "" {
			return none()
		}
		return x, domain.ValueTypeText
	case bool:
		return strconv.FormatBool(x), domain.ValueTypeText
	case float64:
		return p.float(x)
	case float32:
		return p.float(float64(x))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return p.integer(i)
		}
		f, err := x.Float64()
		if err != nil {
			return none()
		}
		return p.float(f)
	case int:
		return p.integer(int64(x))
	case int8:
		return p.integer(int64(x))
	case int16:
		return p.integer(int64(x))
	case int32:
		return p.integer(int64(x))
	case int64:
		return p.integer(x)
	case uint:
		return p.unsigned(uint64(x))
	case uint8:
		return p.unsigned(uint64(x))
	case uint16:
		return p.unsigned(uint64(x))
	case uint32:
		return p.unsigned(uint64(x))
	case uint64:
		return p.unsigned(x)
	default:
		return none()
	}
}

func (p Policy) float(f float64) (string, domain.ValueType) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return none()
	}
	if f == 0 && p.ZeroAsMissing {
		return none()
	}
	return decimal.NewFromFloat(f).String(), domain.ValueTypeNumeric
}

func (p Policy) integer(i int64) (string, domain.ValueType) {
	if i == 0 && p.ZeroAsMissing {
		return none()
	}
	return strconv.FormatInt(i, 10), domain.ValueTypeNumeric
}

func (p Policy) unsigned(u uint64) (string, domain.ValueType) {
	if u == 0 && p.ZeroAsMissing {
		return none()
	}
	return strconv.FormatUint(u, 10), domain.ValueTypeNumeric
}

func none() (string, domain.ValueType) {
	return domain.NoneValue, domain.ValueTypeText
}
