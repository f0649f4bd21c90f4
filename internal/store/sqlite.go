package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table: one row per completed, validated trade
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		trade_date DATETIME NOT NULL,
		asset TEXT NOT NULL,
		market TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		position_size REAL NOT NULL,
		stop_loss REAL,
		take_profit REAL,
		profit_loss REAL NOT NULL,
		result TEXT NOT NULL,
		risk_reward REAL,
		strategy_ref TEXT,
		notes TEXT,
		attachments TEXT,
		rule_evaluations TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Strategies table
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trading rules table; definitions only, evaluation is external
	CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		cond_field TEXT NOT NULL,
		cond_operator TEXT NOT NULL,
		cond_value TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_asset ON trades(asset);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy_ref);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const tradeColumns = `id, trade_date, asset, market, direction, entry_price, exit_price,
	position_size, stop_loss, take_profit, profit_loss, result, risk_reward,
	strategy_ref, notes, attachments, rule_evaluations, created_at`

// ImportTrades persists an accepted import batch atomically and returns the
// number of rows written. Either the whole batch commits or none of it does.
func (s *SQLiteStore) ImportTrades(ctx context.Context, trades []models.TradeRecord) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range trades {
		if _, err := stmt.ExecContext(ctx, tradeArgs(&trades[i])...); err != nil {
			return 0, fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(trades), nil
}

// SaveTrade inserts or replaces a single trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.TradeRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tradeArgs(trade)...)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

func tradeArgs(t *models.TradeRecord) []interface{} {
	attachments, _ := json.Marshal(t.Attachments)
	evaluations, _ := json.Marshal(t.RuleEvaluations)
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return []interface{}{
		t.ID, t.TradeDate, t.Asset, string(t.Market), string(t.Direction),
		t.EntryPrice, t.ExitPrice, t.PositionSize,
		nullFloat(t.StopLoss), nullFloat(t.TakeProfit),
		t.ProfitLoss, string(t.Result), nullFloat(t.RiskReward),
		t.StrategyRef, t.Notes, string(attachments), string(evaluations), createdAt,
	}
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// GetTrades retrieves trades matching the filter, ordered by trade date then
// insertion order (ULIDs are time-sortable), so aggregation sees trades in
// ingestion order within a date.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Asset != "" {
		query += " AND asset = ?"
		args = append(args, filter.Asset)
	}
	if filter.Market != "" {
		query += " AND market = ?"
		args = append(args, string(filter.Market))
	}
	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, string(filter.Direction))
	}
	if filter.Result != "" {
		query += " AND result = ?"
		args = append(args, string(filter.Result))
	}
	if filter.StrategyRef != "" {
		query += " AND strategy_ref = ?"
		args = append(args, filter.StrategyRef)
	}
	if !filter.StartDate.IsZero() {
		query += " AND trade_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND trade_date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY trade_date ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// GetTradeByID retrieves a single trade, or ErrTradeNotFound.
func (s *SQLiteStore) GetTradeByID(ctx context.Context, id string) (*models.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrTradeNotFound
	}
	t, err := scanTrade(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrade(rows *sql.Rows) (models.TradeRecord, error) {
	var t models.TradeRecord
	var market, direction, result string
	var stopLoss, takeProfit, riskReward sql.NullFloat64
	var strategyRef, notes, attachmentsJSON, evaluationsJSON sql.NullString

	if err := rows.Scan(
		&t.ID, &t.TradeDate, &t.Asset, &market, &direction,
		&t.EntryPrice, &t.ExitPrice, &t.PositionSize,
		&stopLoss, &takeProfit, &t.ProfitLoss, &result, &riskReward,
		&strategyRef, &notes, &attachmentsJSON, &evaluationsJSON, &t.CreatedAt,
	); err != nil {
		return t, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.Market = models.Market(market)
	t.Direction = models.Direction(direction)
	t.Result = models.Result(result)
	if stopLoss.Valid {
		v := stopLoss.Float64
		t.StopLoss = &v
	}
	if takeProfit.Valid {
		v := takeProfit.Float64
		t.TakeProfit = &v
	}
	if riskReward.Valid {
		v := riskReward.Float64
		t.RiskReward = &v
	}
	t.StrategyRef = strategyRef.String
	t.Notes = notes.String
	if attachmentsJSON.Valid && attachmentsJSON.String != "" {
		json.Unmarshal([]byte(attachmentsJSON.String), &t.Attachments)
	}
	if evaluationsJSON.Valid && evaluationsJSON.String != "" {
		json.Unmarshal([]byte(evaluationsJSON.String), &t.RuleEvaluations)
	}
	return t, nil
}

// DeleteTrade removes a trade by ID.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// SaveStrategy inserts or replaces a strategy.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, strategy *models.Strategy) error {
	createdAt := strategy.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO strategies (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`, strategy.ID, strategy.Name, strategy.Description, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	return nil
}

// GetStrategies retrieves all strategies ordered by creation time.
func (s *SQLiteStore) GetStrategies(ctx context.Context) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at FROM strategies ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var strategies []models.Strategy
	for rows.Next() {
		var st models.Strategy
		var description sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &description, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		st.Description = description.String
		strategies = append(strategies, st)
	}
	return strategies, rows.Err()
}

// GetStrategyByID retrieves a single strategy, or ErrStrategyNotFound.
func (s *SQLiteStore) GetStrategyByID(ctx context.Context, id string) (*models.Strategy, error) {
	var st models.Strategy
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at FROM strategies WHERE id = ?
	`, id).Scan(&st.ID, &st.Name, &description, &st.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrStrategyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	st.Description = description.String
	return &st, nil
}

// DeleteStrategy removes a strategy by ID.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM strategies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.ErrStrategyNotFound
	}
	return nil
}

// SaveRule inserts or replaces a rule definition.
func (s *SQLiteStore) SaveRule(ctx context.Context, rule *models.Rule) error {
	createdAt := rule.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var condValue interface{}
	if rule.Condition.Value != nil {
		condValue = *rule.Condition.Value
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO rules (id, name, category, cond_field, cond_operator, cond_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rule.ID, rule.Name, string(rule.Category), rule.Condition.Field, rule.Condition.Operator, condValue, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// GetRules retrieves all rule definitions ordered by creation time.
func (s *SQLiteStore) GetRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, cond_field, cond_operator, cond_value, created_at
		FROM rules ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var r models.Rule
		var category string
		var condValue sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &category, &r.Condition.Field, &r.Condition.Operator, &condValue, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.Category = models.RuleCategory(category)
		if condValue.Valid {
			v := condValue.String
			r.Condition.Value = &v
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// DeleteRule removes a rule by ID.
func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.ErrRuleNotFound
	}
	return nil
}
