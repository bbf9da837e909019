package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/ledger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// CollectionClient — операции над строками профиль-навык в бэкенде.
type CollectionClient interface {
	CreateProfileSkill(ctx context.Context, token string, profileID, skillID, level int) (*models.ProfileSkillRow, error)
	UpdateProfileSkill(ctx context.Context, token, key string, patch strapi.ProfileSkillPatch) error
	DeleteProfileSkill(ctx context.Context, token, key string) error
	ListProfileSkills(ctx context.Context, token string, profileID int) ([]models.ProfileSkillRow, error)
}

// CommitNotifier рассылает события хода сохранения в интерфейс.
type CommitNotifier interface {
	CommitEvent(userID int, event string, payload map[string]any)
}

// OpFailure — одна неудавшаяся операция батча.
type OpFailure struct {
	Op    string `json:"op"`
	Row   string `json:"row"`
	Error string `json:"error"`
}

// CommitReport — итог батч-сохранения: сколько операций прошло и какие упали.
type CommitReport struct {
	Deleted  int         `json:"deleted"`
	Created  int         `json:"created"`
	Updated  int         `json:"updated"`
	Failures []OpFailure `json:"failures"`
}

// Ok сообщает, что весь батч применился без ошибок.
func (r *CommitReport) Ok() bool {
	return len(r.Failures) == 0
}

// PendingCounts — размеры очередей леджера для индикации в интерфейсе.
type PendingCounts struct {
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// editSession — сессия редактирования навыков одного пользователя:
// леджер, последний загруженный снапшот и флаг идущего коммита.
type editSession struct {
	mu         sync.Mutex
	ledger     *ledger.Ledger
	snapshot   []models.ProfileSkillRow
	profileID  int
	loaded     bool
	committing bool
}

// SkillsService владеет сессиями редактирования и применяет леджер к бэкенду.
type SkillsService struct {
	mu       sync.Mutex
	sessions map[int]*editSession
	client   CollectionClient
	notifier CommitNotifier
	log      *logrus.Entry
}

// NewSkillsService создаёт сервис. notifier может быть nil.
func NewSkillsService(client CollectionClient, notifier CommitNotifier) *SkillsService {
	return &SkillsService{
		sessions: make(map[int]*editSession),
		client:   client,
		notifier: notifier,
		log:      logger.WithComponent("skills"),
	}
}

// ProfileFor возвращает id профиля активной сессии пользователя или 0.
// Позволяет хэндлерам не ходить за профилем в бэкенд на каждый запрос.
func (s *SkillsService) ProfileFor(userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.profileID
	}
	return 0
}

// Discard сбрасывает сессию пользователя; следующий запрос загрузит
// свежий снапшот и пустой леджер.
func (s *SkillsService) Discard(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// session возвращает сессию пользователя, создавая её при необходимости.
// Снапшот загружается лениво при первом обращении.
func (s *SkillsService) session(ctx context.Context, token string, userID, profileID int) (*editSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.profileID != profileID {
		sess = &editSession{ledger: ledger.New(), profileID: profileID}
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.committing {
		return nil, apperror.ErrCommitInProgress
	}
	if !sess.loaded {
		rows, err := s.client.ListProfileSkills(ctx, token, profileID)
		if err != nil {
			return nil, err
		}
		sess.snapshot = rows
		sess.loaded = true
	}
	return sess, nil
}

// View возвращает отображаемый список строк и размеры очередей.
func (s *SkillsService) View(ctx context.Context, token string, userID, profileID int, catalog []models.Skill) ([]ledger.DisplayRow, PendingCounts, error) {
	sess, err := s.session(ctx, token, userID, profileID)
	if err != nil {
		return nil, PendingCounts{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	rows := ledger.Project(sess.snapshot, sess.ledger, catalog)
	creates, updates, deletes := sess.ledger.Counts()
	return rows, PendingCounts{Creates: creates, Updates: updates, Deletes: deletes}, nil
}

// StageCreate ставит в очередь добавление навыка и возвращает временный id.
func (s *SkillsService) StageCreate(ctx context.Context, token string, userID, profileID, skillID int, level float64) (ledger.RowID, error) {
	sess, err := s.session(ctx, token, userID, profileID)
	if err != nil {
		return ledger.RowID{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.committing {
		return ledger.RowID{}, apperror.ErrCommitInProgress
	}
	return sess.ledger.StageCreate(sess.snapshot, skillID, level)
}

// StageLevelEdit ставит в очередь правку уровня.
func (s *SkillsService) StageLevelEdit(ctx context.Context, token string, userID, profileID int, row ledger.RowID, level float64) error {
	sess, err := s.session(ctx, token, userID, profileID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.committing {
		return apperror.ErrCommitInProgress
	}
	sess.ledger.StageLevelEdit(row, level)
	return nil
}

// StageLinkEdit ставит в очередь смену навыка строки.
func (s *SkillsService) StageLinkEdit(ctx context.Context, token string, userID, profileID int, row ledger.RowID, skillID int) error {
	sess, err := s.session(ctx, token, userID, profileID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.committing {
		return apperror.ErrCommitInProgress
	}
	return sess.ledger.StageLinkEdit(sess.snapshot, row, skillID)
}

// StageDelete помечает строку на удаление или снимает пометку.
func (s *SkillsService) StageDelete(ctx context.Context, token string, userID, profileID int, row ledger.RowID) error {
	sess, err := s.session(ctx, token, userID, profileID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.committing {
		return apperror.ErrCommitInProgress
	}
	sess.ledger.StageDelete(row)
	return nil
}

// Commit применяет леджер к бэкенду в фиксированном порядке:
// удаления, создания, обновления. Ошибки отдельных операций не прерывают
// батч; после прохода очереди леджер сбрасывается и снапшот перечитывается
// из бэкенда ровно один раз.
func (s *SkillsService) Commit(ctx context.Context, token string, userID int) (*CommitReport, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()

	report := &CommitReport{Failures: []OpFailure{}}
	if !ok {
		return report, nil
	}

	// Защита от повторного входа: второй коммит поверх идущего ломал бы
	// гарантию порядка удалений и обновлений.
	sess.mu.Lock()
	if sess.committing {
		sess.mu.Unlock()
		return nil, apperror.ErrCommitInProgress
	}
	if sess.ledger.Empty() {
		sess.mu.Unlock()
		return report, nil
	}
	sess.committing = true
	deletes := sess.ledger.Deletes()
	creates := sess.ledger.Creates()
	updates := sess.ledger.Updates()
	profileID := sess.profileID
	sess.mu.Unlock()

	s.notify(userID, "save_started", map[string]any{
		"queued": len(deletes) + len(creates) + len(updates),
	})

	deleted := make(map[int]bool, len(deletes))
	for _, rowID := range deletes {
		deleted[rowID] = true
	}

	// 1) удаления
	for _, rowID := range deletes {
		key := strconv.Itoa(rowID)
		if err := s.client.DeleteProfileSkill(ctx, token, key); err != nil {
			s.recordFailure(userID, report, "delete", key, err)
		} else {
			report.Deleted++
		}
	}

	// 2) создания, в порядке постановки в очередь
	for _, cr := range creates {
		if _, err := s.client.CreateProfileSkill(ctx, token, profileID, cr.SkillID, cr.Level); err != nil {
			s.recordFailure(userID, report, "create", cr.TempID.String(), err)
		} else {
			report.Created++
		}
	}

	// 3) обновления, минуя удалённые строки и пустые patch-и
	for _, up := range updates {
		if deleted[up.ID] {
			continue
		}
		patch := strapi.ProfileSkillPatch{Level: up.Patch.Level, SkillID: up.Patch.SkillID}
		if patch.Empty() {
			continue
		}
		key := strconv.Itoa(up.ID)
		if err := s.client.UpdateProfileSkill(ctx, token, key, patch); err != nil {
			s.recordFailure(userID, report, "update", key, err)
		} else {
			report.Updated++
		}
	}

	// Единственная перечитка источника правды, уже после всей очереди.
	rows, reloadErr := s.client.ListProfileSkills(ctx, token, profileID)

	sess.mu.Lock()
	sess.ledger.Reset()
	sess.committing = false
	if reloadErr == nil {
		sess.snapshot = rows
	} else {
		// Снапшот устарел; сессия сбрасывается, следующий запрос перечитает.
		sess.loaded = false
		s.log.WithError(reloadErr).Warn("не удалось перечитать навыки после сохранения")
	}
	sess.mu.Unlock()

	s.notify(userID, "save_finished", map[string]any{
		"deleted":  report.Deleted,
		"created":  report.Created,
		"updated":  report.Updated,
		"failures": len(report.Failures),
	})

	return report, nil
}

// recordFailure фиксирует ошибку операции, не прерывая батч.
func (s *SkillsService) recordFailure(userID int, report *CommitReport, op, row string, err error) {
	report.Failures = append(report.Failures, OpFailure{Op: op, Row: row, Error: err.Error()})
	s.log.WithFields(logrus.Fields{
		"op":  op,
		"row": row,
	}).WithError(err).Warn("операция батча не применилась")
	s.notify(userID, "op_failed", map[string]any{"op": op, "row": row})
}

func (s *SkillsService) notify(userID int, event string, payload map[string]any) {
	if s.notifier != nil {
		s.notifier.CommitEvent(userID, event, payload)
	}
}
