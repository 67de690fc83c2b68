package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/estimation"
	"github.com/mkarvone/repsmith/internal/sqlite"
)

// Service runs the whole import pipeline: parse the document, match raw
// exercise names against the catalog, analyze the matched history, and
// persist targets, library membership, and optional historical sessions.
type Service struct {
	repo        *repository
	catalogRepo *catalog.Repository
	logger      *slog.Logger
	matcherCfg  MatcherConfig
	analyzerCfg AnalyzerConfig
	now         func() time.Time
}

func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:        newRepository(db),
		catalogRepo: catalog.NewRepository(db),
		logger:      logger,
		matcherCfg:  MatcherConfig{},
		analyzerCfg: DefaultAnalyzerConfig(),
		now:         time.Now,
	}
}

// Import processes one uploaded training history document for the user.
// Parse failures surface as errors; unmatched exercise names do not, they
// are reported in the result instead.
func (s *Service) Import(ctx context.Context, userID int, req Request) (Result, error) {
	started := s.now()
	runID := uuid.NewString()

	sessions, err := Parse(req.Document)
	if err != nil {
		return Result{}, fmt.Errorf("parse import document: %w", err)
	}

	snapshot, err := s.catalogRepo.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}

	matcher := NewMatcher(snapshot, s.matcherCfg)
	matches := matcher.MatchAll(sessions)

	analyzer := NewAnalyzer(s.analyzerCfg)
	report := analyzer.Analyze(sessions, matches, snapshot, req.Bodyweight, started)

	estimates := sessionEstimates(sessions, matches, started)

	stats, err := s.repo.persistImport(ctx, userID, runID, sessions, matches, estimates, req.CreateHistoricalSessions, started, s.now().Sub(started))
	if err != nil {
		return Result{}, fmt.Errorf("persist import run: %w", err)
	}

	result := Result{
		RunID:            runID,
		SessionsImported: len(sessions),
		TargetsCreated:   stats.targetsCreated,
		SessionsCreated:  stats.sessionsCreated,
		Intelligence:     report,
	}
	for _, m := range matches {
		if m.Matched() {
			result.ExercisesMatched++
		} else {
			result.ExercisesUnmatched = append(result.ExercisesUnmatched, m.RawName)
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "import run completed",
		slog.String("run_id", runID),
		slog.Int("sessions", result.SessionsImported),
		slog.Int("matched", result.ExercisesMatched),
		slog.Int("unmatched", len(result.ExercisesUnmatched)),
		slog.Int("targets_created", result.TargetsCreated),
		slog.Duration("duration", s.now().Sub(started)))

	return result, nil
}

// sessionEstimates computes one dated one-rep-max point per session for each
// matched exercise. Undated sessions fall back to the import date so their
// evidence still counts, at full recency.
func sessionEstimates(sessions []TrainingSession, matches []MatchResult, now time.Time) []exerciseEstimates {
	matchedID := map[string]int{}
	for _, m := range matches {
		if m.Matched() {
			matchedID[catalog.Normalize(m.RawName)] = m.ExerciseID
		}
	}

	points := map[int][]estimation.Point{}
	var order []int
	for _, session := range sessions {
		date := session.Date
		if date.IsZero() {
			date = now
		}
		for _, exercise := range session.Exercises {
			id, ok := matchedID[catalog.Normalize(exercise.RawName)]
			if !ok {
				continue
			}
			estimate, err := estimation.BestEstimate(exercise.Sets)
			if err != nil {
				continue
			}
			if _, seen := points[id]; !seen {
				order = append(order, id)
			}
			points[id] = append(points[id], estimation.Point{Date: date, Value: estimate})
		}
	}

	estimates := make([]exerciseEstimates, 0, len(order))
	for _, id := range order {
		estimates = append(estimates, exerciseEstimates{exerciseID: id, points: points[id]})
	}
	return estimates
}

// Targets returns the user's current strength records with history.
func (s *Service) Targets(ctx context.Context, userID int) ([]Target, error) {
	targets, err := s.repo.Targets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	return targets, nil
}

// LibraryExerciseIDs returns the ids of exercises in the user's library.
func (s *Service) LibraryExerciseIDs(ctx context.Context, userID int) ([]int, error) {
	ids, err := s.repo.LibraryExerciseIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list library exercises: %w", err)
	}
	return ids, nil
}
