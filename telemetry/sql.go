package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN is a shared in-memory SQLite database
const MemoryDSN = "file::memory:?cache=shared"

// SQLRecorder batches samples into a SQLite table through gorm
type SQLRecorder struct {
	mu     sync.Mutex
	db     *gorm.DB
	log    *zap.Logger
	batch  int
	buf    []Sample
	closed bool
	rows   int64
}

// OpenSQLite opens or creates the database at dsn and migrates the sample table
// An empty dsn uses MemoryDSN
func OpenSQLite(dsn string, batch int, log *zap.Logger) (*SQLRecorder, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if batch < 1 {
		batch = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        batch,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Sample{}); err != nil {
		return nil, fmt.Errorf("telemetry: migrate: %w", err)
	}
	log.Info("telemetry store ready", zap.String("dsn", dsn), zap.Int("batch", batch))
	return &SQLRecorder{
		db:    db,
		log:   log,
		batch: batch,
		buf:   make([]Sample, 0, batch),
	}, nil
}

// Record buffers s and writes the batch once it is full
func (r *SQLRecorder) Record(s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.buf = append(r.buf, s)
	if len(r.buf) < r.batch {
		return nil
	}
	return r.flushLocked(context.Background())
}

// Flush writes any buffered samples
func (r *SQLRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.flushLocked(ctx)
}

func (r *SQLRecorder) flushLocked(ctx context.Context) error {
	if len(r.buf) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(r.buf, r.batch)
	if res.Error != nil {
		return fmt.Errorf("telemetry: write %d samples: %w", len(r.buf), res.Error)
	}
	r.rows += res.RowsAffected
	r.log.Debug("telemetry flushed", zap.Int64("rows", res.RowsAffected))
	r.buf = r.buf[:0]
	return nil
}

// Close flushes and releases the connection
func (r *SQLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	ferr := r.flushLocked(context.Background())
	r.closed = true
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if cerr := sqlDB.Close(); cerr != nil {
		return cerr
	}
	return ferr
}

// Rows is the number of samples written so far
func (r *SQLRecorder) Rows() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// Samples loads a vehicle's written samples in step order
func (r *SQLRecorder) Samples(ctx context.Context, vehicleID string) ([]Sample, error) {
	var out []Sample
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("step").
		Find(&out).Error
	return out, err
}
