package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/config"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/mohamedkhairy/ichimoku-cloud/pkg/logger"
)

var (
	storeWriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bar_store_write_total",
			Help: "Total number of bar store write operations",
		},
		[]string{"status"}, // "success" or "error"
	)

	storeWriteLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bar_store_write_latency_seconds",
			Help:    "Bar store write latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
	)
)

// PostgresStore implements BarStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and ensures the schema exists.
func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Connected to Postgres bar store",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database),
	)
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_bars (
			ticker  TEXT             NOT NULL,
			time    DATE             NOT NULL,
			open    DOUBLE PRECISION NOT NULL,
			high    DOUBLE PRECISION NOT NULL,
			low     DOUBLE PRECISION NOT NULL,
			close   DOUBLE PRECISION NOT NULL,
			volume  DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (ticker, time)
		)`)
	if err != nil {
		return fmt.Errorf("migrate daily_bars: %w", err)
	}
	return nil
}

// SaveBars upserts the bars in one transaction.
func (s *PostgresStore) SaveBars(ctx context.Context, ticker string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_bars (ticker, time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, time) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high,
			low = EXCLUDED.low, close = EXCLUDED.close,
			volume = EXCLUDED.volume`)
	if err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			storeWriteTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("upsert bar %s/%s: %w", ticker, b.Time, err)
		}
	}
	if err := tx.Commit(); err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("commit: %w", err)
	}

	storeWriteTotal.WithLabelValues("success").Inc()
	storeWriteLatency.Observe(time.Since(start).Seconds())
	return nil
}

// LoadBars returns the ticker's bars inside [start, end).
func (s *PostgresStore) LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(time, 'YYYY-MM-DD'), open, high, low, close, volume
		FROM daily_bars
		WHERE ticker = $1 AND time >= $2 AND time < $3
		ORDER BY time ASC`,
		ticker, start.Format(models.TimeLayout), end.Format(models.TimeLayout))
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ListTickers returns the distinct tickers with stored bars.
func (s *PostgresStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM daily_bars ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
