// Package timestream stores candle measurements in Amazon Timestream.
package timestream

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/timestreamquery"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
)

// WriteAPI is the subset of the Timestream write client used here.
type WriteAPI interface {
	WriteRecords(ctx context.Context, in *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error)
	CreateTable(ctx context.Context, in *timestreamwrite.CreateTableInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.CreateTableOutput, error)
	UpdateTable(ctx context.Context, in *timestreamwrite.UpdateTableInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.UpdateTableOutput, error)
	DeleteTable(ctx context.Context, in *timestreamwrite.DeleteTableInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.DeleteTableOutput, error)
}

// QueryAPI is the subset of the Timestream query client used here.
type QueryAPI interface {
	Query(ctx context.Context, in *timestreamquery.QueryInput, optFns ...func(*timestreamquery.Options)) (*timestreamquery.QueryOutput, error)
}

// Options identifies the destination table and its retention settings.
type Options struct {
	Database                  string
	Table                     string
	MemoryRetentionHours      int64 // default 48
	MagneticRetentionDays     int64 // default 730
	EnableMagneticStoreWrites bool
}

func (o *Options) applyDefaults() {
	if o.MemoryRetentionHours == 0 {
		o.MemoryRetentionHours = 48
	}
	if o.MagneticRetentionDays == 0 {
		o.MagneticRetentionDays = 730
	}
}

// Clients bundles the write and query clients for one region.
type Clients struct {
	Write WriteAPI
	Query QueryAPI
}

// NewClients loads the default AWS configuration chain for the region.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Clients{
		Write: timestreamwrite.NewFromConfig(cfg),
		Query: timestreamquery.NewFromConfig(cfg),
	}, nil
}
