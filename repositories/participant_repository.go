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
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: user or team already registered for this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
	ErrParticipantEntityInvalid     = errors.New("participant team or user conflict or invalid")
	ErrParticipantTypeViolation     = errors.New("participant type violation: either user_id or team_id must be set, but not both")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id int) (*models.Participant, error)
	FindByEntity(ctx context.Context, tournamentID int, mode models.ParticipantMode, entityID int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int, modeFilter *models.ParticipantMode) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int, modeFilter *models.ParticipantMode) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, mode, team_id, user_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at`

	err := r.db.QueryRowContext(ctx, query,
		p.TournamentID,
		p.Mode,
		p.TeamID,
		p.UserID,
		p.Status,
	).Scan(&p.ID, &p.RegisteredAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "participants_tournament_id_mode_team_id_key" ||
					pqErr.Constraint == "participants_tournament_id_mode_user_id_key" {
					return ErrParticipantConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "participants_tournament_id_fkey":
					return ErrParticipantTournamentInvalid
				case "participants_team_id_fkey", "participants_user_id_fkey":
					return ErrParticipantEntityInvalid
				}
			case "23514": // check_violation
				if pqErr.Constraint == "chk_participant_mode" {
					return ErrParticipantTypeViolation
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.TournamentID,
		&p.Mode,
		&p.TeamID,
		&p.UserID,
		&p.Status,
		&p.RegisteredAt,
	)
}

func (r *postgresParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Participant, error) {
	p := &models.Participant{}
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := r.scanParticipant(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, tournament_id, mode, team_id, user_id, status, registered_at
		FROM participants
		WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByEntity ищет регистрацию по кортежу (турнир, режим, команда|игрок).
func (r *postgresParticipantRepository) FindByEntity(ctx context.Context, tournamentID int, mode models.ParticipantMode, entityID int) (*models.Participant, error) {
	column := "user_id"
	if mode == models.ModeTeam {
		column = "team_id"
	}
	query := fmt.Sprintf(`
		SELECT id, tournament_id, mode, team_id, user_id, status, registered_at
		FROM participants
		WHERE tournament_id = $1 AND mode = $2 AND %s = $3`, column)
	return r.findOne(ctx, query, tournamentID, mode, entityID)
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int, modeFilter *models.ParticipantMode) ([]*models.Participant, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, tournament_id, mode, team_id, user_id, status, registered_at
		FROM participants
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if modeFilter != nil {
		queryBuilder.WriteString(" AND mode = $2")
		args = append(args, *modeFilter)
	}
	queryBuilder.WriteString(" ORDER BY registered_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := r.scanParticipant(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, &p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int, modeFilter *models.ParticipantMode) (int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM participants WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if modeFilter != nil {
		queryBuilder.WriteString(" AND mode = $" + strconv.Itoa(len(args)+1))
		args = append(args, *modeFilter)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, queryBuilder.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
