package main

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPuzzleNotFound  = errors.New("puzzle not found")
	ErrSessionNotFound = errors.New("session not found")
)

// PuzzleSummary is a catalog listing entry.
type PuzzleSummary struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Author  string    `json:"author,omitempty"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	AddedAt time.Time `json:"added_at"`
}

type storedPuzzle struct {
	puzzle  *Puzzle
	addedAt time.Time
}

// Store holds parsed puzzles and solving sessions in memory.
type Store struct {
	mu       sync.RWMutex
	puzzles  map[string]*storedPuzzle
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		puzzles:  make(map[string]*storedPuzzle),
		sessions: make(map[string]*Session),
	}
}

// SavePuzzle stores an uploaded puzzle under a generated ID.
func (s *Store) SavePuzzle(p *Puzzle) *Puzzle {
	p.ID = generateID()
	s.PutPuzzle(p)
	return p
}

// PutPuzzle stores p under its own ID, replacing any previous puzzle.
func (s *Store) PutPuzzle(p *Puzzle) {
	s.mu.Lock()
	s.puzzles[p.ID] = &storedPuzzle{puzzle: p, addedAt: time.Now()}
	s.mu.Unlock()
}

// GetPuzzle returns a puzzle by ID, or nil if not found.
func (s *Store) GetPuzzle(id string) *Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sp := s.puzzles[id]; sp != nil {
		return sp.puzzle
	}
	return nil
}

// ListPuzzles returns all puzzles, most recently added first.
func (s *Store) ListPuzzles() []PuzzleSummary {
	s.mu.RLock()
	list := make([]PuzzleSummary, 0, len(s.puzzles))
	for _, sp := range s.puzzles {
		list = append(list, PuzzleSummary{
			ID:      sp.puzzle.ID,
			Title:   sp.puzzle.Title,
			Author:  sp.puzzle.Author,
			Width:   sp.puzzle.Width,
			Height:  sp.puzzle.Height,
			AddedAt: sp.addedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].AddedAt.Equal(list[j].AddedAt) {
			return list[i].AddedAt.After(list[j].AddedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// CreateSession starts a blank session on a stored puzzle.
func (s *Store) CreateSession(puzzleID string) (*Session, error) {
	p := s.GetPuzzle(puzzleID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, puzzleID)
	}

	sess := NewSession(generateID(), p)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

// GetSession returns a session by ID, or nil if not found.
func (s *Store) GetSession(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// DropSession forgets a session.
func (s *Store) DropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func generateID() string {
	return uuid.NewString()
}
