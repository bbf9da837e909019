package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/ledger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// fakeCollection записывает обращения к бэкенду в порядке вызовов.
type fakeCollection struct {
	rows  []models.ProfileSkillRow
	calls []string

	deleteErr map[string]error
	createErr error
	updateErr map[string]error
	listErr   error

	nextID int
}

func newFakeCollection(rows ...models.ProfileSkillRow) *fakeCollection {
	return &fakeCollection{
		rows:      rows,
		deleteErr: map[string]error{},
		updateErr: map[string]error{},
		nextID:    1000,
	}
}

func (f *fakeCollection) CreateProfileSkill(ctx context.Context, token string, profileID, skillID, level int) (*models.ProfileSkillRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("create skill=%d level=%d", skillID, level))
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	row := models.ProfileSkillRow{ID: f.nextID, Level: level, Skill: models.Skill{ID: skillID}}
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeCollection) UpdateProfileSkill(ctx context.Context, token, key string, patch strapi.ProfileSkillPatch) error {
	f.calls = append(f.calls, "update "+key)
	return f.updateErr[key]
}

func (f *fakeCollection) DeleteProfileSkill(ctx context.Context, token, key string) error {
	f.calls = append(f.calls, "delete "+key)
	return f.deleteErr[key]
}

func (f *fakeCollection) ListProfileSkills(ctx context.Context, token string, profileID int) ([]models.ProfileSkillRow, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ProfileSkillRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeCollection) countCalls(prefix string) int {
	n := 0
	for _, call := range f.calls {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// recordingNotifier копит события сохранения.
type recordingNotifier struct {
	events []string
}

func (r *recordingNotifier) CommitEvent(userID int, event string, payload map[string]any) {
	r.events = append(r.events, event)
}

func baseRows() []models.ProfileSkillRow {
	return []models.ProfileSkillRow{
		{ID: 10, DocumentID: "doc-10", Level: 50, Skill: models.Skill{ID: 1, Name: "Go"}},
		{ID: 11, DocumentID: "doc-11", Level: 70, Skill: models.Skill{ID: 2, Name: "TypeScript"}},
	}
}

func TestCommit_OrderDeletesCreatesUpdates(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	// удалить A, добавить новый навык, поправить уровень B
	assert.NoError(t, svc.StageDelete(ctx, "tok", 1, 7, ledger.PersistedID(10)))
	_, err := svc.StageCreate(ctx, "tok", 1, 7, 3, 30)
	assert.NoError(t, err)
	assert.NoError(t, svc.StageLevelEdit(ctx, "tok", 1, 7, ledger.PersistedID(11), 80))

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)

	// первый list — ленивая загрузка снапшота, последний — перечитка
	assert.Equal(t, []string{
		"list",
		"delete 10",
		"create skill=3 level=30",
		"update 11",
		"list",
	}, client.calls)
}

func TestCommit_CreateAndEditLevelEndToEnd(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	tempID, err := svc.StageCreate(ctx, "tok", 1, 7, 3, 150)
	assert.NoError(t, err)
	assert.NoError(t, svc.StageLevelEdit(ctx, "tok", 1, 7, tempID, 40))

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Equal(t, 1, report.Created)

	// ровно одно создание, с последним уровнем после клампа
	assert.Equal(t, 1, client.countCalls("create"))
	assert.Contains(t, client.calls, "create skill=3 level=40")
	assert.Zero(t, client.countCalls("update"))

	// после коммита очереди пусты
	rows, pending, err := svc.View(ctx, "tok", 1, 7, nil)
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Zero(t, pending.Creates+pending.Updates+pending.Deletes)
}

func TestCommit_DeleteSuppressesUpdateForSameRow(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	assert.NoError(t, svc.StageLevelEdit(ctx, "tok", 1, 7, ledger.PersistedID(10), 90))
	assert.NoError(t, svc.StageDelete(ctx, "tok", 1, 7, ledger.PersistedID(10)))

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Zero(t, report.Updated)
	assert.Zero(t, client.countCalls("update"))
}

func TestCommit_PartialFailureDoesNotAbort(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	client.deleteErr["10"] = apperror.ErrRowNotFound
	notifier := &recordingNotifier{}
	svc := NewSkillsService(client, notifier)
	ctx := context.Background()

	assert.NoError(t, svc.StageDelete(ctx, "tok", 1, 7, ledger.PersistedID(10)))
	assert.NoError(t, svc.StageDelete(ctx, "tok", 1, 7, ledger.PersistedID(11)))

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.False(t, report.Ok())
	assert.Equal(t, 1, report.Deleted)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, "delete", report.Failures[0].Op)
	assert.Equal(t, "10", report.Failures[0].Row)

	// обе операции дошли до бэкенда, перечитка ровно одна
	assert.Equal(t, 2, client.countCalls("delete"))
	assert.Equal(t, 2, client.countCalls("list"))
	assert.Equal(t, []string{"save_started", "op_failed", "save_finished"}, notifier.events)

	// леджер сброшен несмотря на ошибку
	_, pending, viewErr := svc.View(ctx, "tok", 1, 7, nil)
	assert.NoError(t, viewErr)
	assert.Zero(t, pending.Deletes)
}

func TestCommit_EmptyLedgerTouchesNothing(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Empty(t, client.calls)
}

func TestCommit_SkipsEmptyPatches(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	// смена навыка с последующим сбросом оставляет пустой patch
	assert.NoError(t, svc.StageLinkEdit(ctx, "tok", 1, 7, ledger.PersistedID(10), 3))
	assert.NoError(t, svc.StageLinkEdit(ctx, "tok", 1, 7, ledger.PersistedID(10), 0))
	assert.NoError(t, svc.StageLevelEdit(ctx, "tok", 1, 7, ledger.PersistedID(11), 60))

	report, err := svc.Commit(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, client.countCalls("update"))
	assert.Contains(t, client.calls, "update 11")
}

func TestView_ProjectsLedger(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	catalog := []models.Skill{{ID: 3, Name: "PostgreSQL"}}
	_, err := svc.StageCreate(ctx, "tok", 1, 7, 3, 20)
	assert.NoError(t, err)

	rows, pending, err := svc.View(ctx, "tok", 1, 7, catalog)
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.True(t, rows[2].IsNew)
	assert.Equal(t, "PostgreSQL", rows[2].Skill.Name)
	assert.Equal(t, 1, pending.Creates)

	// снапшот загружен один раз, повторный просмотр сеть не трогает
	_, _, err = svc.View(ctx, "tok", 1, 7, catalog)
	assert.NoError(t, err)
	assert.Equal(t, 1, client.countCalls("list"))
}

func TestDiscard_DropsPendingEdits(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	_, err := svc.StageCreate(ctx, "tok", 1, 7, 3, 20)
	assert.NoError(t, err)
	assert.Equal(t, 7, svc.ProfileFor(1))

	svc.Discard(1)
	assert.Zero(t, svc.ProfileFor(1))

	_, pending, err := svc.View(ctx, "tok", 1, 7, nil)
	assert.NoError(t, err)
	assert.Zero(t, pending.Creates)
	assert.Zero(t, client.countCalls("create"))
}

func TestCommit_DuplicateGuardAcrossSnapshot(t *testing.T) {
	client := newFakeCollection(baseRows()...)
	svc := NewSkillsService(client, nil)
	ctx := context.Background()

	_, err := svc.StageCreate(ctx, "tok", 1, 7, 1, 20)
	assert.ErrorIs(t, err, apperror.ErrDuplicateSkill)

	// после пометки строки на удаление навык освобождается
	assert.NoError(t, svc.StageDelete(ctx, "tok", 1, 7, ledger.PersistedID(10)))
	_, err = svc.StageCreate(ctx, "tok", 1, 7, 1, 20)
	assert.NoError(t, err)
}
