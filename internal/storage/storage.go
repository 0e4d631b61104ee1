package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/benbeisheim/cheesychess-backend/internal/model"
)

const (
	keyStats             = "stats"
	keyAchievementPrefix = "achievement/"
)

// GameStats aggregates every finished game hosted by this installation.
type GameStats struct {
	GamesPlayed int `json:"gamesPlayed"`
	WhiteWins   int `json:"whiteWins"`
	BlackWins   int `json:"blackWins"`
	Stalemates  int `json:"stalemates"`
	Abandoned   int `json:"abandoned"`
	// TotalPlies counts half-moves across all recorded games.
	TotalPlies   int `json:"totalPlies"`
	ShortestMate int `json:"shortestMate"`
}

// Result is how a game ended.
type Result string

const (
	ResultWhiteWins Result = "whiteWins"
	ResultBlackWins Result = "blackWins"
	ResultStalemate Result = "stalemate"
	ResultAbandoned Result = "abandoned"
)

type GameResult struct {
	GameID string
	Result Result
	Plies  int
}

// ResultOf maps a finished game's state onto its result. It reports false
// while the game is still being played.
func ResultOf(gameID string, state model.GameState) (GameResult, bool) {
	result := GameResult{GameID: gameID, Plies: state.MoveCount}
	switch state.Status {
	case model.StatusCheckmate:
		result.Result = ResultBlackWins
		if state.Winner == model.White {
			result.Result = ResultWhiteWins
		}
	case model.StatusStalemate:
		result.Result = ResultStalemate
	case model.StatusAbandoned:
		result.Result = ResultAbandoned
	default:
		return GameResult{}, false
	}
	return result, true
}

// Unlock is a persisted achievement.
type Unlock struct {
	ID         string    `json:"id"`
	GameID     string    `json:"gameId"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Storage wraps BadgerDB.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage at %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory storage: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// UnlockAchievement records id as unlocked. It reports false, and keeps the
// first unlock, if id was already unlocked.
func (s *Storage) UnlockAchievement(id, gameID string, at time.Time) (bool, error) {
	key := []byte(keyAchievementPrefix + id)
	unlocked := false

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(Unlock{ID: id, GameID: gameID, UnlockedAt: at})
		if err != nil {
			return err
		}
		unlocked = true
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("unlock achievement %s: %w", id, err)
	}
	return unlocked, nil
}

// Achievements returns every unlocked achievement, oldest first.
func (s *Storage) Achievements() ([]Unlock, error) {
	unlocks := []Unlock{}

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(keyAchievementPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var u Unlock
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return err
			}
			unlocks = append(unlocks, u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	sort.SliceStable(unlocks, func(i, j int) bool {
		return unlocks[i].UnlockedAt.Before(unlocks[j].UnlockedAt)
	})
	return unlocks, nil
}

// LoadStats loads game statistics, returning empty stats if none were saved.
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordGame folds a finished game into the statistics. The read and the
// write share one transaction so concurrent games do not lose updates.
func (s *Storage) RecordGame(result GameResult) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		stats := &GameStats{}
		item, err := txn.Get([]byte(keyStats))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		stats.GamesPlayed++
		stats.TotalPlies += result.Plies
		switch result.Result {
		case ResultWhiteWins:
			stats.WhiteWins++
		case ResultBlackWins:
			stats.BlackWins++
		case ResultStalemate:
			stats.Stalemates++
		case ResultAbandoned:
			stats.Abandoned++
		}
		if result.Result == ResultWhiteWins || result.Result == ResultBlackWins {
			if stats.ShortestMate == 0 || result.Plies < stats.ShortestMate {
				stats.ShortestMate = result.Plies
			}
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
	if err != nil {
		return fmt.Errorf("record game %s: %w", result.GameID, err)
	}
	return nil
}
