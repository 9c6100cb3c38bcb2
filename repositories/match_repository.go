package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/sportlink/sportlink-backend/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchSideInvalid       = errors.New("match side conflict or invalid")

	// ErrGenerationConflict возвращается, когда для пары (турнир, фаза) матчи
	// уже сгенерированы: вставка строки-замка нарушает уникальный индекс.
	ErrGenerationConflict = errors.New("matches already generated for this tournament and phase")
)

type ListMatchesFilter struct {
	Phase  *models.MatchPhase
	Round  *int
	Status *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CreateGeneration(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.MatchPhase) error
	GenerationExists(ctx context.Context, tournamentID int, phase models.MatchPhase) (bool, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error)
	UpdateScore(ctx context.Context, id int, score1, score2 *int, status models.MatchStatus) error
	UpdateSides(ctx context.Context, id int, team1ID, team2ID, player1ID, player2ID *int, status models.MatchStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, match_number, round, phase, team1_id, team2_id, player1_id, player2_id, score1, score2, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.MatchNumber,
		match.Round,
		match.Phase,
		match.Team1ID,
		match.Team2ID,
		match.Player1ID,
		match.Player2ID,
		match.Score1,
		match.Score2,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

// CreateGeneration вставляет строку-замок генерации. Уникальный индекс
// (tournament_id, phase) делает проверку "матчи уже существуют" атомарной:
// из двух конкурентных генераций одна получит ErrGenerationConflict.
func (r *postgresMatchRepository) CreateGeneration(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.MatchPhase) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO match_generations (tournament_id, phase) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, tournamentID, phase)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrGenerationConflict
			case "23503": // foreign_key_violation
				return ErrMatchTournamentInvalid
			}
		}
		return fmt.Errorf("failed to create match generation: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GenerationExists(ctx context.Context, tournamentID int, phase models.MatchPhase) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM match_generations WHERE tournament_id = $1 AND phase = $2)`,
		tournamentID, phase,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check match generation: %w", err)
	}
	return exists, nil
}

const matchColumns = `id, tournament_id, match_number, round, phase, team1_id, team2_id, player1_id, player2_id, score1, score2, status, created_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := r.scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if filter.Phase != nil {
		queryBuilder.WriteString(" AND phase = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Phase)
		placeholder++
	}
	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Round)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
		placeholder++
	}

	queryBuilder.WriteString(" ORDER BY phase ASC, round ASC, match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if err := r.scanMatch(rows, &match); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id int, score1, score2 *int, status models.MatchStatus) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, status = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, score1, score2, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateSides заполняет стороны матча-заготовки (ручное продвижение сетки).
func (r *postgresMatchRepository) UpdateSides(ctx context.Context, id int, team1ID, team2ID, player1ID, player2ID *int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET team1_id = $1, team2_id = $2, player1_id = $3, player2_id = $4, status = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, team1ID, team2ID, player1ID, player2ID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }, m *models.Match) error {
	return rowScanner.Scan(
		&m.ID,
		&m.TournamentID,
		&m.MatchNumber,
		&m.Round,
		&m.Phase,
		&m.Team1ID,
		&m.Team2ID,
		&m.Player1ID,
		&m.Player2ID,
		&m.Score1,
		&m.Score2,
		&m.Status,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_team1_id_fkey", "matches_team2_id_fkey",
			"matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchSideInvalid
		}
	}
	return err
}
