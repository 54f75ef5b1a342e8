package timestream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamquery"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"

	"candle-sync/internal/domain"
	"candle-sync/internal/storage"
)

// scalarTimeLayout is how Timestream renders a timestamp scalar.
const scalarTimeLayout = "2006-01-02 15:04:05.999999999"

// MeasurementStore implements storage.MeasurementStore on one Timestream table.
type MeasurementStore struct {
	write WriteAPI
	query QueryAPI
	opts  Options
}

// NewMeasurementStore creates a store bound to opts.Database and opts.Table.
func NewMeasurementStore(write WriteAPI, query QueryAPI, opts Options) *MeasurementStore {
	opts.applyDefaults()
	return &MeasurementStore{write: write, query: query, opts: opts}
}

// Compile-time interface checks.
var (
	_ storage.MeasurementStore = (*MeasurementStore)(nil)
	_ storage.TableAdmin       = (*MeasurementStore)(nil)
)

// WriteRecords issues one WriteRecords call for the batch.
func (s *MeasurementStore) WriteRecords(ctx context.Context, records []domain.Measurement) error {
	if err := storage.ValidateBatch(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	in := &timestreamwrite.WriteRecordsInput{
		DatabaseName: aws.String(s.opts.Database),
		TableName:    aws.String(s.opts.Table),
		Records:      make([]types.Record, 0, len(records)),
	}
	for _, r := range records {
		in.Records = append(in.Records, toRecord(r))
	}

	if _, err := s.write.WriteRecords(ctx, in); err != nil {
		var rejected *types.RejectedRecordsException
		if errors.As(err, &rejected) {
			return fmt.Errorf("write records: %d rejected: %w", len(rejected.RejectedRecords), err)
		}
		return fmt.Errorf("write records: %w", err)
	}

	return nil
}

// LastTimestamp runs MAX(time) over the series.
func (s *MeasurementStore) LastTimestamp(ctx context.Context, key domain.SyncKey) (time.Time, error) {
	out, err := s.query.Query(ctx, &timestreamquery.QueryInput{
		QueryString: aws.String(s.LastTimestampQuery(key)),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("query last timestamp: %w", err)
	}

	if len(out.Rows) == 0 || len(out.Rows[0].Data) == 0 {
		return time.Time{}, storage.ErrNotFound
	}
	scalar := out.Rows[0].Data[0].ScalarValue
	if scalar == nil || *scalar == "" {
		return time.Time{}, storage.ErrNotFound
	}

	ts, err := time.ParseInLocation(scalarTimeLayout, *scalar, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last timestamp %q: %w", *scalar, err)
	}
	return ts, nil
}

// LastTimestampQuery renders the watermark query for the key.
func (s *MeasurementStore) LastTimestampQuery(key domain.SyncKey) string {
	return fmt.Sprintf(
		`SELECT MAX(time) AS last_time FROM %s.%s WHERE %s = %s AND %s = %s AND %s = %s`,
		quoteIdent(s.opts.Database), quoteIdent(s.opts.Table),
		domain.DimensionAsset, quoteLiteral(key.Asset),
		domain.DimensionExchange, quoteLiteral(key.Exchange),
		domain.DimensionGranularity, quoteLiteral(key.Granularity),
	)
}

func toRecord(m domain.Measurement) types.Record {
	dims := make([]types.Dimension, 0, len(m.Dimensions))
	for _, d := range m.Dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}

	return types.Record{
		Dimensions:       dims,
		MeasureName:      aws.String(m.Name),
		MeasureValue:     aws.String(m.Value),
		MeasureValueType: measureValueType(m.Type),
		Time:             aws.String(strconv.FormatInt(m.TimeMs, 10)),
		TimeUnit:         types.TimeUnitMilliseconds,
	}
}

func measureValueType(t domain.ValueType) types.MeasureValueType {
	if t == domain.ValueTypeNumeric {
		return types.MeasureValueTypeDouble
	}
	return types.MeasureValueTypeVarchar
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
