// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// DataStore defines the interface for journal persistence. The import and
// analytics pipelines never talk to a store directly; they exchange plain
// TradeRecord slices with it.
type DataStore interface {
	// Trades
	ImportTrades(ctx context.Context, trades []models.TradeRecord) (int, error)
	SaveTrade(ctx context.Context, trade *models.TradeRecord) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)
	GetTradeByID(ctx context.Context, id string) (*models.TradeRecord, error)
	DeleteTrade(ctx context.Context, id string) error

	// Strategies
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	GetStrategies(ctx context.Context) ([]models.Strategy, error)
	GetStrategyByID(ctx context.Context, id string) (*models.Strategy, error)
	DeleteStrategy(ctx context.Context, id string) error

	// Rules (stored as opaque definitions, never evaluated here)
	SaveRule(ctx context.Context, rule *models.Rule) error
	GetRules(ctx context.Context) ([]models.Rule, error)
	DeleteRule(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Asset       string
	Market      models.Market
	Direction   models.Direction
	Result      models.Result
	StrategyRef string
	StartDate   time.Time
	EndDate     time.Time
	Limit       int
}
