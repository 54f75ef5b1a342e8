package timestream

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
)

// EnsureTable creates the table with its retention settings when missing,
// then enables magnetic store writes if configured.
func (s *MeasurementStore) EnsureTable(ctx context.Context) error {
	_, err := s.write.CreateTable(ctx, &timestreamwrite.CreateTableInput{
		DatabaseName: aws.String(s.opts.Database),
		TableName:    aws.String(s.opts.Table),
		RetentionProperties: &types.RetentionProperties{
			MemoryStoreRetentionPeriodInHours:  aws.Int64(s.opts.MemoryRetentionHours),
			MagneticStoreRetentionPeriodInDays: aws.Int64(s.opts.MagneticRetentionDays),
		},
	})
	if err != nil {
		var conflict *types.ConflictException
		if !errors.As(err, &conflict) {
			return fmt.Errorf("create table %s.%s: %w", s.opts.Database, s.opts.Table, err)
		}
	}

	if !s.opts.EnableMagneticStoreWrites {
		return nil
	}
	return s.EnableMagneticStoreWrites(ctx)
}

// EnableMagneticStoreWrites allows late records to land in the magnetic store.
func (s *MeasurementStore) EnableMagneticStoreWrites(ctx context.Context) error {
	_, err := s.write.UpdateTable(ctx, &timestreamwrite.UpdateTableInput{
		DatabaseName: aws.String(s.opts.Database),
		TableName:    aws.String(s.opts.Table),
		MagneticStoreWriteProperties: &types.MagneticStoreWriteProperties{
			EnableMagneticStoreWrites: aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("enable magnetic store writes: %w", err)
	}
	return nil
}

// DropTable deletes the table; a missing table is not an error.
func (s *MeasurementStore) DropTable(ctx context.Context) error {
	_, err := s.write.DeleteTable(ctx, &timestreamwrite.DeleteTableInput{
		DatabaseName: aws.String(s.opts.Database),
		TableName:    aws.String(s.opts.Table),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("delete table %s.%s: %w", s.opts.Database, s.opts.Table, err)
	}
	return nil
}
