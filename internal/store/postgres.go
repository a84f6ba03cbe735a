package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Monetary columns are stored as decimal strings to avoid binary float
// round-tripping through the driver.

type accountRecord struct {
	UserID    string `gorm:"primaryKey;column:user_id"`
	Balance   string `gorm:"column:balance;not null"`
	CreatedAt int64  `gorm:"column:created_at"`
}

func (accountRecord) TableName() string { return "accounts" }

type positionRecord struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        string `gorm:"column:user_id;uniqueIndex:idx_user_symbol"`
	Symbol        string `gorm:"column:symbol;uniqueIndex:idx_user_symbol"`
	Quantity      int64  `gorm:"column:quantity;not null"`
	AveragePrice  string `gorm:"column:average_price;not null"`
	TotalInvested string `gorm:"column:total_invested;not null"`
}

func (positionRecord) TableName() string { return "positions" }

type transactionRecord struct {
	TransactionID string `gorm:"primaryKey;column:transaction_id"`
	UserID        string `gorm:"column:user_id;index"`
	Type          string `gorm:"column:type;not null"`
	Symbol        string `gorm:"column:symbol;index"`
	Quantity      int64  `gorm:"column:quantity;not null"`
	Price         string `gorm:"column:price;not null"`
	TotalAmount   string `gorm:"column:total_amount;not null"`
	Timestamp     int64  `gorm:"column:timestamp;index"`
}

func (transactionRecord) TableName() string { return "transactions" }

// PostgresStore is a Store backed by Postgres via gorm. ApplyTrade wraps the
// balance, position, and transaction writes in a single database
// transaction.
type PostgresStore struct {
	db             *gorm.DB
	defaultBalance decimal.Decimal
	log            *slog.Logger
}

// NewPostgresStore opens a connection with the given DSN and migrates the
// schema. defaultBalance is the documented reset value for a corrupted
// stored balance.
func NewPostgresStore(dsn string, defaultBalance decimal.Decimal, log *slog.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // map driver duplicate-key errors to gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&accountRecord{}, &positionRecord{}, &transactionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{db: db, defaultBalance: defaultBalance, log: log}, nil
}

// CreateAccount inserts a new account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, a *domain.Account) error {
	rec := accountRecord{
		UserID:    a.UserID,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt.Unix(),
	}
	err := s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// GetAccount loads an account row. A balance that does not parse or is
// negative is a data-integrity fault: it is reset to the default balance,
// persisted, and logged, rather than propagated.
func (s *PostgresStore) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	var rec accountRecord
	err := s.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	balance, ok := sanitizeBalance(rec.Balance, s.defaultBalance)
	if !ok {
		s.log.Warn("corrupted stored balance, resetting to default",
			slog.String("user_id", userID),
			slog.String("stored", rec.Balance),
		)
		if err := s.db.WithContext(ctx).Model(&accountRecord{}).
			Where("user_id = ?", userID).
			Update("balance", balance.String()).Error; err != nil {
			return nil, err
		}
	}

	return &domain.Account{
		UserID:    rec.UserID,
		Balance:   balance,
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
	}, nil
}

// GetPositions loads all positions for a user, sorted by symbol.
func (s *PostgresStore) GetPositions(ctx context.Context, userID string) ([]domain.Position, error) {
	var recs []positionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Position, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, nil
}

// GetPosition loads one position row.
func (s *PostgresStore) GetPosition(ctx context.Context, userID, symbol string) (*domain.Position, error) {
	var rec positionRecord
	err := s.db.WithContext(ctx).
		First(&rec, "user_id = ? AND symbol = ?", userID, symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// ApplyTrade commits the balance update, the position upsert or delete, and
// the transaction insert in one database transaction.
func (s *PostgresStore) ApplyTrade(ctx context.Context, args ApplyTradeArgs) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&accountRecord{}).
			Where("user_id = ?", args.UserID).
			Update("balance", args.NewBalance.String())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}

		if args.Position != nil {
			p := args.Position
			rec := positionRecord{
				UserID:        args.UserID,
				Symbol:        p.Symbol,
				Quantity:      p.Quantity,
				AveragePrice:  p.AveragePrice.String(),
				TotalInvested: p.TotalInvested.String(),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "average_price", "total_invested"}),
			}).Create(&rec).Error
			if err != nil {
				return err
			}
		} else if args.RemoveSymbol != "" {
			err := tx.Where("user_id = ? AND symbol = ?", args.UserID, args.RemoveSymbol).
				Delete(&positionRecord{}).Error
			if err != nil {
				return err
			}
		}

		txRec := transactionRecord{
			TransactionID: args.Transaction.TransactionID,
			UserID:        args.Transaction.UserID,
			Type:          string(args.Transaction.Type),
			Symbol:        args.Transaction.Symbol,
			Quantity:      args.Transaction.Quantity,
			Price:         args.Transaction.Price.String(),
			TotalAmount:   args.Transaction.TotalAmount.String(),
			Timestamp:     args.Transaction.Timestamp.UnixNano(),
		}
		return tx.Create(&txRec).Error
	})
}

// ListTransactions loads a user's transactions newest first with an optional
// symbol filter. limit <= 0 means no bound.
func (s *PostgresStore) ListTransactions(ctx context.Context, userID, symbol string, limit int) ([]domain.Transaction, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc")
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []transactionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	result := make([]domain.Transaction, 0, len(recs))
	for _, rec := range recs {
		price, err := decimal.NewFromString(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("parse price for %s: %w", rec.TransactionID, err)
		}
		total, err := decimal.NewFromString(rec.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("parse total for %s: %w", rec.TransactionID, err)
		}
		result = append(result, domain.Transaction{
			TransactionID: rec.TransactionID,
			UserID:        rec.UserID,
			Type:          domain.TransactionType(rec.Type),
			Symbol:        rec.Symbol,
			Quantity:      rec.Quantity,
			Price:         price,
			TotalAmount:   total,
			Timestamp:     time.Unix(0, rec.Timestamp).UTC(),
		})
	}
	return result, nil
}

// sanitizeBalance parses a stored balance string. A value that does not
// parse or is negative cannot have been produced by trade execution, so the
// default balance is substituted; ok reports whether the stored value was
// usable as-is.
func sanitizeBalance(stored string, def decimal.Decimal) (balance decimal.Decimal, ok bool) {
	b, err := decimal.NewFromString(stored)
	if err != nil || b.IsNegative() {
		return def, false
	}
	return b, true
}

func (rec positionRecord) toDomain() (*domain.Position, error) {
	avg, err := decimal.NewFromString(rec.AveragePrice)
	if err != nil {
		return nil, fmt.Errorf("parse average price for %s/%s: %w", rec.UserID, rec.Symbol, err)
	}
	invested, err := decimal.NewFromString(rec.TotalInvested)
	if err != nil {
		return nil, fmt.Errorf("parse total invested for %s/%s: %w", rec.UserID, rec.Symbol, err)
	}
	return &domain.Position{
		Symbol:        rec.Symbol,
		Quantity:      rec.Quantity,
		AveragePrice:  avg,
		TotalInvested: invested,
	}, nil
}
