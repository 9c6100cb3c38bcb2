package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

// EventBroadcaster — то, что сервису нужно от WebSocket-хаба.
type EventBroadcaster interface {
	BroadcastToRoom(room string, event brackets.Event)
}

type TournamentInput struct {
	Name            string     `json:"name"`
	Sport           string     `json:"sport"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	RegDeadline     *time.Time `json:"reg_deadline"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	MaxParticipants *int       `json:"max_participants"`
	Status          *string    `json:"status"`
}

type MatchUpdateInput struct {
	Score1    *int    `json:"score1"`
	Score2    *int    `json:"score2"`
	Status    *string `json:"status"`
	Team1ID   *int    `json:"team1_id"`
	Team2ID   *int    `json:"team2_id"`
	Player1ID *int    `json:"player1_id"`
	Player2ID *int    `json:"player2_id"`
}

type BracketInput struct {
	AdvancingTeams int   `json:"advancing_teams"`
	Seeding        []int `json:"seeding"`
}

// GenerationResult — ответ генерации матчей одной фазы.
type GenerationResult struct {
	Count   int               `json:"count"`
	Phase   models.MatchPhase `json:"phase"`
	Matches []*models.Match   `json:"matches"`
}

type BracketResult struct {
	Rounds       int             `json:"rounds"`
	TotalMatches int             `json:"total_matches"`
	Matches      []*models.Match `json:"matches"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, role models.UserRole, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, actorID int, role models.UserRole, id int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, actorID int, role models.UserRole, id int) error

	Register(ctx context.Context, tournamentID, actorID int, mode models.ParticipantMode, teamID *int) (*models.Participant, bool, error)
	Withdraw(ctx context.Context, tournamentID, actorID int, mode models.ParticipantMode, teamID *int) error
	ListParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error)

	GenerateMatches(ctx context.Context, tournamentID, actorID int, phase models.MatchPhase) (*GenerationResult, error)
	GenerateBracket(ctx context.Context, tournamentID, actorID int, input BracketInput) (*BracketResult, error)
	QualifierStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
	ListMatches(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, actorID, tournamentID, matchID int, input MatchUpdateInput) (*models.Match, error)

	AutoUpdateStatuses(ctx context.Context, now time.Time) (int, error)
}

type tournamentService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	participantRepo  repositories.ParticipantRepository
	matchRepo        repositories.MatchRepository
	teamRepo         repositories.TeamRepository
	notificationRepo repositories.NotificationRepository
	hub              EventBroadcaster
	logger           *slog.Logger
	rng              *rand.Rand // nil — глобальный источник
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	notificationRepo repositories.NotificationRepository,
	hub EventBroadcaster,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		participantRepo:  participantRepo,
		matchRepo:        matchRepo,
		teamRepo:         teamRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

// runInTx выполняет fn в транзакции. При nil db (фейковые репозитории в
// тестах) fn получает nil-исполнитель и репозитории работают напрямую.
func (s *tournamentService) runInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if s.db == nil {
		return fn(nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *tournamentService) broadcast(room string, event brackets.Event) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(room, event)
	}
}

// ---- CRUD ----

func (s *tournamentService) Create(ctx context.Context, organizerID int, role models.UserRole, input TournamentInput) (*models.Tournament, error) {
	if role != models.RoleOrganizer && role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrValidationFailed
	}

	maxParticipants := 0
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		maxParticipants = *input.MaxParticipants
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrTournamentInvalidDateRange
	}

	t := &models.Tournament{
		Name:            name,
		Sport:           strings.TrimSpace(input.Sport),
		Description:     input.Description,
		Location:        input.Location,
		OrganizerID:     organizerID,
		RegDeadline:     input.RegDeadline,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.TournamentStatusUpcoming,
		MaxParticipants: maxParticipants,
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		case errors.Is(err, repositories.ErrTournamentOrgInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка создания турнира: %w", err)
	}
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("ошибка получения турнира: %w", err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Update(ctx context.Context, actorID int, role models.UserRole, id int, input TournamentInput) (*models.Tournament, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OrganizerID != actorID && role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		t.Name = name
	}
	if sport := strings.TrimSpace(input.Sport); sport != "" {
		t.Sport = sport
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Location != nil {
		t.Location = input.Location
	}
	if input.RegDeadline != nil {
		t.RegDeadline = input.RegDeadline
	}
	if input.StartDate != nil {
		t.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = input.EndDate
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		t.MaxParticipants = *input.MaxParticipants
	}
	if input.Status != nil {
		status := models.TournamentStatus(*input.Status)
		switch status {
		case models.TournamentStatusUpcoming, models.TournamentStatusOngoing,
			models.TournamentStatusCompleted, models.TournamentStatusCancelled:
			t.Status = status
		default:
			return nil, ErrTournamentInvalidStatus
		}
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return nil, ErrTournamentInvalidDateRange
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("ошибка обновления турнира: %w", err)
	}
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, actorID int, role models.UserRole, id int) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.OrganizerID != actorID && role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return s.tournamentRepo.Delete(ctx, id)
}

// ---- Реестр участников ----

// resolveEntity проверяет права на заявку и возвращает идентификатор стороны.
func (s *tournamentService) resolveEntity(ctx context.Context, actorID int, mode models.ParticipantMode, teamID *int) (int, error) {
	switch mode {
	case models.ModeIndividual:
		return actorID, nil
	case models.ModeTeam:
		if teamID == nil {
			return 0, ErrValidationFailed
		}
		team, err := s.teamRepo.GetByID(ctx, *teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return 0, ErrTeamNotFound
			}
			return 0, fmt.Errorf("ошибка получения команды: %w", err)
		}
		if team.CaptainID != actorID {
			return 0, ErrUserMustBeCaptain
		}
		return team.ID, nil
	default:
		return 0, ErrValidationFailed
	}
}

// Register подаёт заявку на турнир. Возвращает участника и признак того, что
// достижение вместимости запустило генерацию квалификации.
func (s *tournamentService) Register(ctx context.Context, tournamentID, actorID int, mode models.ParticipantMode, teamID *int) (*models.Participant, bool, error) {
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, false, err
	}
	if t.Status != models.TournamentStatusUpcoming {
		return nil, false, ErrRegistrationNotOpen
	}
	if t.RegDeadline != nil && time.Now().After(*t.RegDeadline) {
		return nil, false, ErrRegistrationNotOpen
	}

	entityID, err := s.resolveEntity(ctx, actorID, mode, teamID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.participantRepo.FindByEntity(ctx, tournamentID, mode, entityID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, false, fmt.Errorf("ошибка проверки заявки: %w", err)
	}
	if existing != nil {
		return nil, false, ErrRegistrationConflict
	}

	// Лимит проверяется в рамках режима заявки.
	if t.MaxParticipants > 0 {
		count, err := s.participantRepo.CountByTournament(ctx, tournamentID, &mode)
		if err != nil {
			return nil, false, fmt.Errorf("ошибка подсчёта участников: %w", err)
		}
		if count >= t.MaxParticipants {
			return nil, false, ErrTournamentFull
		}
	}

	p := &models.Participant{
		TournamentID: tournamentID,
		Mode:         mode,
		Status:       models.StatusRegistered,
	}
	if mode == models.ModeTeam {
		p.TeamID = &entityID
	} else {
		p.UserID = &entityID
	}

	if err := s.participantRepo.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, false, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
			return nil, false, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrParticipantEntityInvalid):
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("ошибка создания заявки: %w", err)
	}

	generated, err := s.maybeAutoGenerate(ctx, t)
	if err != nil {
		// Заявка уже принята; срыв автогенерации её не отменяет.
		s.logger.Error("auto generation failed",
			"tournament_id", tournamentID, "error", err)
		return p, false, nil
	}
	return p, generated, nil
}

// maybeAutoGenerate запускает квалификацию, когда суммарное число заявок обоих
// режимов достигло вместимости. Проигранная гонка с ручной генерацией — не
// ошибка: матчи уже есть.
func (s *tournamentService) maybeAutoGenerate(ctx context.Context, t *models.Tournament) (bool, error) {
	if t.MaxParticipants <= 0 {
		return false, nil
	}
	total, err := s.participantRepo.CountByTournament(ctx, t.ID, nil)
	if err != nil {
		return false, err
	}
	if total < t.MaxParticipants {
		return false, nil
	}

	if _, err := s.generateQualifier(ctx, t); err != nil {
		if errors.Is(err, ErrMatchesAlreadyGenerated) || errors.Is(err, ErrNotEnoughParticipants) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("qualifier matches auto-generated at capacity",
		"tournament_id", t.ID, "max_participants", t.MaxParticipants)
	return true, nil
}

func (s *tournamentService) Withdraw(ctx context.Context, tournamentID, actorID int, mode models.ParticipantMode, teamID *int) error {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return err
	}
	entityID, err := s.resolveEntity(ctx, actorID, mode, teamID)
	if err != nil {
		return err
	}

	p, err := s.participantRepo.FindByEntity(ctx, tournamentID, mode, entityID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("ошибка поиска заявки: %w", err)
	}
	if p == nil {
		return ErrParticipantNotFound
	}

	if err := s.participantRepo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("ошибка снятия с турнира: %w", err)
	}
	return nil
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.participantRepo.ListByTournament(ctx, tournamentID, nil)
}

// ---- Генерация матчей ----

func (s *tournamentService) GenerateMatches(ctx context.Context, tournamentID, actorID int, phase models.MatchPhase) (*GenerationResult, error) {
	if phase != models.PhaseQualifier {
		return nil, ErrInvalidPhase
	}
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.OrganizerID != actorID {
		return nil, ErrForbiddenOperation
	}

	matches, err := s.generateQualifier(ctx, t)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{
		Count:   len(matches),
		Phase:   models.PhaseQualifier,
		Matches: matches,
	}, nil
}

// generateQualifier строит полный круг по командным заявкам: каждая пара
// команд встречается один раз. Индивидуальные заявки в жеребьёвке не участвуют.
func (s *tournamentService) generateQualifier(ctx context.Context, t *models.Tournament) ([]*models.Match, error) {
	// Быстрый отказ до жеребьёвки; атомарность гарантирует замок в транзакции.
	exists, err := s.matchRepo.GenerationExists(ctx, t.ID, models.PhaseQualifier)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки генерации: %w", err)
	}
	if exists {
		return nil, ErrMatchesAlreadyGenerated
	}

	teamMode := models.ModeTeam
	participants, err := s.participantRepo.ListByTournament(ctx, t.ID, &teamMode)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участников: %w", err)
	}

	teamIDs := make([]int, 0, len(participants))
	for _, p := range participants {
		if p.TeamID != nil {
			teamIDs = append(teamIDs, *p.TeamID)
		}
	}
	if len(teamIDs) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	planned, err := brackets.GenerateRoundRobin(teamIDs, s.rng)
	if err != nil {
		return nil, ErrNotEnoughParticipants
	}

	created := make([]*models.Match, 0, len(planned))
	err = s.runInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateGeneration(ctx, exec, t.ID, models.PhaseQualifier); err != nil {
			if errors.Is(err, repositories.ErrGenerationConflict) {
				return ErrMatchesAlreadyGenerated
			}
			return fmt.Errorf("ошибка фиксации генерации: %w", err)
		}
		for _, pm := range planned {
			m := &models.Match{
				TournamentID: t.ID,
				MatchNumber:  pm.MatchNumber,
				Round:        pm.Round,
				Phase:        models.PhaseQualifier,
				Team1ID:      pm.Side1,
				Team2ID:      pm.Side2,
				Status:       models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("ошибка сохранения матча %d: %w", pm.MatchNumber, err)
			}
			created = append(created, m)
		}
		return s.scheduleMatchReminders(ctx, exec, t, teamIDs, len(planned))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("qualifier matches generated",
		"tournament_id", t.ID, "teams", len(teamIDs), "matches", len(created))
	s.broadcast(fmt.Sprintf("tournament:%d", t.ID), brackets.Event{
		Type:    "MATCHES_GENERATED",
		Payload: map[string]interface{}{"tournament_id": t.ID, "phase": models.PhaseQualifier, "count": len(created)},
	})
	return created, nil
}

// scheduleMatchReminders откладывает по одному напоминанию на каждого
// затронутого пользователя (для командного режима — капитанов) за сутки до
// старта турнира. Без даты старта напоминаний нет.
func (s *tournamentService) scheduleMatchReminders(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, teamIDs []int, matchCount int) error {
	if t.StartDate == nil {
		return nil
	}

	userIDs := make(map[int]bool)
	for _, teamID := range teamIDs {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return fmt.Errorf("ошибка получения команды %d: %w", teamID, err)
		}
		userIDs[team.CaptainID] = true
	}

	location := ""
	if t.Location != nil {
		location = *t.Location
	}
	data, err := json.Marshal(map[string]interface{}{
		"tournament_id": t.ID,
		"match_count":   matchCount,
		"start_date":    t.StartDate,
		"location":      location,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных уведомления: %w", err)
	}

	deliverAt := t.StartDate.Add(-24 * time.Hour)
	content := fmt.Sprintf("%s: scheduled %d matches, starting %s",
		t.Name, matchCount, t.StartDate.Format("2006-01-02 15:04"))
	if location != "" {
		content += " at " + location
	}

	// Стабильный порядок вставки.
	ids := make([]int, 0, len(userIDs))
	for id := range userIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, userID := range ids {
		n := &models.Notification{
			UserID:           userID,
			Type:             models.NotificationMatchSchedule,
			Title:            "Upcoming matches",
			Content:          content,
			Data:             data,
			NotificationDate: deliverAt,
		}
		if err := s.notificationRepo.Create(ctx, exec, n); err != nil {
			return fmt.Errorf("ошибка создания уведомления: %w", err)
		}
	}
	return nil
}

func (s *tournamentService) GenerateBracket(ctx context.Context, tournamentID, actorID int, input BracketInput) (*BracketResult, error) {
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.OrganizerID != actorID {
		return nil, ErrForbiddenOperation
	}

	// Быстрый отказ до расчёта посева; атомарность гарантирует замок в транзакции.
	exists, err := s.matchRepo.GenerationExists(ctx, tournamentID, models.PhaseBracket)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки генерации: %w", err)
	}
	if exists {
		return nil, ErrMatchesAlreadyGenerated
	}

	seeds, mode, err := s.resolveSeeding(ctx, tournamentID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.ListMatchesFilter{})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения матчей: %w", err)
	}

	planned, rounds, err := brackets.GenerateSingleElimination(seeds, len(existing))
	if err != nil {
		return nil, ErrNotEnoughParticipants
	}

	created := make([]*models.Match, 0, len(planned))
	err = s.runInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateGeneration(ctx, exec, tournamentID, models.PhaseBracket); err != nil {
			if errors.Is(err, repositories.ErrGenerationConflict) {
				return ErrMatchesAlreadyGenerated
			}
			return fmt.Errorf("ошибка фиксации генерации: %w", err)
		}
		for _, pm := range planned {
			m := &models.Match{
				TournamentID: tournamentID,
				MatchNumber:  pm.MatchNumber,
				Round:        pm.Round,
				Phase:        models.PhaseBracket,
				Status:       models.MatchStatusScheduled,
			}
			if pm.Placeholder {
				m.Status = models.MatchStatusPending
			} else if mode == models.ModeTeam {
				m.Team1ID, m.Team2ID = pm.Side1, pm.Side2
			} else {
				m.Player1ID, m.Player2ID = pm.Side1, pm.Side2
			}
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("ошибка сохранения матча %d: %w", pm.MatchNumber, err)
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		"tournament_id", tournamentID, "seeds", len(seeds), "rounds", rounds)
	s.broadcast(fmt.Sprintf("tournament:%d", tournamentID), brackets.Event{
		Type:    "MATCHES_GENERATED",
		Payload: map[string]interface{}{"tournament_id": tournamentID, "phase": models.PhaseBracket, "count": len(created)},
	})

	return &BracketResult{
		Rounds:       rounds,
		TotalMatches: len(created),
		Matches:      created,
	}, nil
}

// resolveSeeding возвращает посев сетки: явный список из запроса либо верх
// таблицы квалификации. Все посеянные должны быть заявлены в одном режиме,
// повторы запрещены.
func (s *tournamentService) resolveSeeding(ctx context.Context, tournamentID int, input BracketInput) ([]int, models.ParticipantMode, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка получения участников: %w", err)
	}

	registered := make(map[standingKey]bool, len(participants))
	for _, p := range participants {
		registered[standingKey{p.Mode, p.EntityID()}] = true
	}

	if len(input.Seeding) > 0 {
		if len(input.Seeding) < 2 {
			return nil, "", ErrInvalidAdvancingCount
		}
		seen := make(map[int]bool, len(input.Seeding))
		var mode models.ParticipantMode
		for _, id := range input.Seeding {
			if seen[id] {
				return nil, "", ErrSeedingDuplicate
			}
			seen[id] = true
			switch {
			case registered[standingKey{models.ModeTeam, id}]:
				if mode == models.ModeIndividual {
					return nil, "", ErrSeedingNotRegistered
				}
				mode = models.ModeTeam
			case registered[standingKey{models.ModeIndividual, id}]:
				if mode == models.ModeTeam {
					return nil, "", ErrSeedingNotRegistered
				}
				mode = models.ModeIndividual
			default:
				return nil, "", ErrSeedingNotRegistered
			}
		}
		return input.Seeding, mode, nil
	}

	if input.AdvancingTeams < 2 {
		return nil, "", ErrInvalidAdvancingCount
	}

	standings, err := s.QualifierStandings(ctx, tournamentID)
	if err != nil {
		return nil, "", err
	}

	seeds := make([]int, 0, input.AdvancingTeams)
	var mode models.ParticipantMode
	for _, st := range standings {
		if len(seeds) == input.AdvancingTeams {
			break
		}
		if mode == "" {
			mode = st.Mode
		}
		if st.Mode != mode {
			continue
		}
		if st.TeamID != nil {
			seeds = append(seeds, *st.TeamID)
		} else if st.UserID != nil {
			seeds = append(seeds, *st.UserID)
		}
	}
	if len(seeds) < input.AdvancingTeams || len(seeds) < 2 {
		return nil, "", ErrNotEnoughParticipants
	}
	return seeds, mode, nil
}

// ---- Таблица и результаты ----

func (s *tournamentService) QualifierStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участников: %w", err)
	}
	phase := models.PhaseQualifier
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.ListMatchesFilter{Phase: &phase})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения матчей: %w", err)
	}

	return ComputeStandings(participants, matches), nil
}

func (s *tournamentService) ListMatches(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, filter)
}

// UpdateMatch записывает результат и/или заполняет стороны матча-заготовки.
// Результат вносит организатор или участник матча; стороны — только организатор.
func (s *tournamentService) UpdateMatch(ctx context.Context, actorID, tournamentID, matchID int, input MatchUpdateInput) (*models.Match, error) {
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("ошибка получения матча: %w", err)
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}

	isOrganizer := t.OrganizerID == actorID
	hasSides := input.Team1ID != nil || input.Team2ID != nil ||
		input.Player1ID != nil || input.Player2ID != nil

	if hasSides && !isOrganizer {
		return nil, ErrForbiddenOperation
	}
	if !isOrganizer {
		ok, err := s.actorPlaysInMatch(ctx, actorID, match)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbiddenOperation
		}
		if match.Status == models.MatchStatusCompleted {
			// Исправить уже записанный результат может только организатор.
			return nil, ErrMatchNotEditable
		}
	}

	status := match.Status
	if input.Status != nil {
		status = models.MatchStatus(*input.Status)
		switch status {
		case models.MatchStatusPending, models.MatchStatusScheduled, models.MatchStatusCompleted:
		default:
			return nil, ErrValidationFailed
		}
	}

	if hasSides {
		team1, team2 := match.Team1ID, match.Team2ID
		player1, player2 := match.Player1ID, match.Player2ID
		if input.Team1ID != nil {
			team1 = input.Team1ID
		}
		if input.Team2ID != nil {
			team2 = input.Team2ID
		}
		if input.Player1ID != nil {
			player1 = input.Player1ID
		}
		if input.Player2ID != nil {
			player2 = input.Player2ID
		}
		if (team1 != nil || team2 != nil) && (player1 != nil || player2 != nil) {
			return nil, ErrValidationFailed
		}
		if input.Status == nil && status == models.MatchStatusPending &&
			((team1 != nil && team2 != nil) || (player1 != nil && player2 != nil)) {
			// Заполненная заготовка становится назначенным матчем.
			status = models.MatchStatusScheduled
		}
		if err := s.matchRepo.UpdateSides(ctx, matchID, team1, team2, player1, player2, status); err != nil {
			if errors.Is(err, repositories.ErrMatchSideInvalid) {
				return nil, ErrValidationFailed
			}
			return nil, fmt.Errorf("ошибка обновления сторон матча: %w", err)
		}
	}

	if input.Score1 != nil || input.Score2 != nil {
		if input.Score1 == nil || input.Score2 == nil || *input.Score1 < 0 || *input.Score2 < 0 {
			return nil, ErrValidationFailed
		}
		if input.Status == nil {
			status = models.MatchStatusCompleted
		}
		if err := s.matchRepo.UpdateScore(ctx, matchID, input.Score1, input.Score2, status); err != nil {
			return nil, fmt.Errorf("ошибка записи результата: %w", err)
		}
	} else if !hasSides && input.Status != nil {
		if err := s.matchRepo.UpdateScore(ctx, matchID, match.Score1, match.Score2, status); err != nil {
			return nil, fmt.Errorf("ошибка обновления статуса матча: %w", err)
		}
	}

	updated, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения матча: %w", err)
	}

	s.broadcast(fmt.Sprintf("tournament:%d", tournamentID), brackets.Event{
		Type:    "MATCH_UPDATED",
		Payload: updated,
	})
	return updated, nil
}

// actorPlaysInMatch: в индивидуальном режиме участником считается сам игрок,
// в командном — капитан одной из команд матча.
func (s *tournamentService) actorPlaysInMatch(ctx context.Context, actorID int, match *models.Match) (bool, error) {
	if match.HasSide(models.ModeIndividual, actorID) {
		return true, nil
	}
	for _, teamID := range []*int{match.Team1ID, match.Team2ID} {
		if teamID == nil {
			continue
		}
		team, err := s.teamRepo.GetByID(ctx, *teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return false, fmt.Errorf("ошибка получения команды: %w", err)
		}
		if team.CaptainID == actorID {
			return true, nil
		}
	}
	return false, nil
}

// ---- Фоновое обслуживание ----

// AutoUpdateStatuses переводит турниры вперёд по датам: upcoming → ongoing с
// наступлением старта, ongoing → completed после окончания.
func (s *tournamentService) AutoUpdateStatuses(ctx context.Context, now time.Time) (int, error) {
	due, err := s.tournamentRepo.ListForAutoStatusUpdate(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка выборки турниров: %w", err)
	}

	updated := 0
	for _, t := range due {
		var next models.TournamentStatus
		switch {
		case t.Status == models.TournamentStatusUpcoming &&
			t.StartDate != nil && !t.StartDate.After(now):
			next = models.TournamentStatusOngoing
		case t.Status == models.TournamentStatusOngoing &&
			t.EndDate != nil && !t.EndDate.After(now):
			next = models.TournamentStatusCompleted
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to roll tournament status",
				"tournament_id", t.ID, "status", next, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}
