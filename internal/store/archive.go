package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/woogles-client/internal/engine"
)

var ErrArchiveDisabled = errors.New("store: archive disabled")

// GameRecord is one finished game.
type GameRecord struct {
	GameID     string `gorm:"primaryKey"`
	Player1    string
	Player2    string
	Score1     int
	Score2     int
	TurnCount  int
	BoardText  string `gorm:"type:text"`
	FinalState string
	EndedAt    time.Time `gorm:"index"`
}

type Archive struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// Open connects to postgres and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Archive, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return New(db, log)
}

func New(db *gorm.DB, log *zap.Logger) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&GameRecord{}); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Archive{db: db, log: log, now: time.Now}, nil
}

// Save upserts the record for s. A nil Archive reports ErrArchiveDisabled.
func (a *Archive) Save(ctx context.Context, s engine.GameState) error {
	if a == nil || a.db == nil {
		return ErrArchiveDisabled
	}
	rec := NewRecord(s, a.now())
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save game %s: %w", s.GameID, err)
	}
	a.log.Info("game archived", zap.String("game_id", rec.GameID), zap.Int("turns", rec.TurnCount))
	return nil
}

// Get loads one archived game.
func (a *Archive) Get(ctx context.Context, gameID string) (*GameRecord, error) {
	if a == nil || a.db == nil {
		return nil, ErrArchiveDisabled
	}
	var rec GameRecord
	if err := a.db.WithContext(ctx).First(&rec, "game_id = ?", gameID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// NewRecord flattens a game state into its archive row.
func NewRecord(s engine.GameState, endedAt time.Time) GameRecord {
	rec := GameRecord{
		GameID:     s.GameID,
		TurnCount:  len(s.Turns),
		FinalState: string(s.PlayState),
		EndedAt:    endedAt.UTC(),
	}
	if len(s.CurrentTurn.Events) > 0 {
		rec.TurnCount++
	}
	if len(s.Players) > 0 {
		rec.Player1, rec.Score1 = s.Players[0].Nickname, s.Players[0].Score
	}
	if len(s.Players) > 1 {
		rec.Player2, rec.Score2 = s.Players[1].Nickname, s.Players[1].Score
	}
	if s.Board != nil {
		rec.BoardText = strings.Join(s.Board.Rows(), "\n")
	}
	return rec
}
