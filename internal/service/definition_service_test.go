package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/validation"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
)

type mockDefinitionRepo struct {
	defs    map[string]*models.SessionDefinition
	created *models.SessionDefinition
	updated *models.SessionDefinition
}

func (m *mockDefinitionRepo) FindByID(_ context.Context, id string) (*models.SessionDefinition, error) {
	if d, ok := m.defs[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDefinitionRepo) FindByPeriod(_ context.Context, period models.PeriodCode) (*models.SessionDefinition, error) {
	for _, d := range m.defs {
		if d.Period == period {
			return d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDefinitionRepo) List(_ context.Context, _ models.DefinitionFilter) ([]models.SessionDefinition, error) {
	var out []models.SessionDefinition
	for _, d := range m.defs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDefinitionRepo) Create(_ context.Context, def *models.SessionDefinition) error {
	def.ID = "def-new"
	m.created = def
	return nil
}

func (m *mockDefinitionRepo) Update(_ context.Context, def *models.SessionDefinition) error {
	m.updated = def
	if m.defs == nil {
		m.defs = map[string]*models.SessionDefinition{}
	}
	m.defs[def.ID] = def
	return nil
}

func definitionRequest() DefinitionRequest {
	return DefinitionRequest{
		Period:           "F",
		SessionDate:      "2026-06-10",
		ProposalDeadline: "2026-06-05",
		Topics:           map[int]string{1: "Esame dei voti proposti"},
		Steps: []models.SessionStep{
			{Kind: models.StepSessionStart},
			{Kind: models.StepDiscussionTopic, TopicRef: 1},
			{Kind: models.StepSessionEnd},
		},
		ClassVisibility: map[string]string{
			"class-1": "2026-06-12T08:00:00Z",
			"class-2": "",
		},
	}
}

func TestDefinitionCreate(t *testing.T) {
	repo := &mockDefinitionRepo{}
	svc := NewDefinitionService(repo, zap.NewNop())

	def, err := svc.Create(context.Background(), definitionRequest())
	require.NoError(t, err)
	assert.Equal(t, "def-new", def.ID)
	assert.Equal(t, models.PeriodFinal, def.Period)
	assert.Equal(t, "2026-06-10", def.SessionDate.Format("2006-01-02"))
	require.Len(t, def.Steps, 3)

	require.Contains(t, def.ClassVisibility, "class-1")
	require.NotNil(t, def.ClassVisibility["class-1"])
	assert.Equal(t, time.UTC, def.ClassVisibility["class-1"].Location())
	require.Contains(t, def.ClassVisibility, "class-2")
	assert.Nil(t, def.ClassVisibility["class-2"], "empty release keeps the class gated")
}

func TestDefinitionCreateInvalid(t *testing.T) {
	svc := NewDefinitionService(&mockDefinitionRepo{}, zap.NewNop())

	req := definitionRequest()
	req.Period = "X1"
	req.SessionDate = "10/06/2026"
	req.Steps = nil
	req.ClassVisibility = map[string]string{"class-1": "domani"}

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	list := violationsOf(t, err)
	assert.True(t, list.Has("period", validation.Choice))
	assert.True(t, list.Has("session_date", validation.Date))
	assert.True(t, list.Has("steps", validation.NotBlank))
	assert.True(t, list.Has("class_visibility[class-1]", validation.DateTime))
}

func TestDefinitionCreateDanglingTopicRef(t *testing.T) {
	svc := NewDefinitionService(&mockDefinitionRepo{}, zap.NewNop())

	req := definitionRequest()
	req.Steps = append(req.Steps, models.SessionStep{Kind: models.StepDiscussionTopic, TopicRef: 9})

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	list := violationsOf(t, err)
	assert.True(t, list.Has("steps[3].topic_ref", validation.Choice))
}

func TestDefinitionUpdate(t *testing.T) {
	repo := &mockDefinitionRepo{defs: map[string]*models.SessionDefinition{
		"def-1": {ID: "def-1", Period: models.PeriodFirstTerm},
	}}
	svc := NewDefinitionService(repo, zap.NewNop())

	def, err := svc.Update(context.Background(), "def-1", definitionRequest())
	require.NoError(t, err)
	assert.Equal(t, "def-1", def.ID)
	assert.Equal(t, models.PeriodFinal, def.Period)
	require.NotNil(t, repo.updated)

	_, err = svc.Update(context.Background(), "ghost", definitionRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDefinitionIsClassVisible(t *testing.T) {
	release := time.Date(2026, 6, 12, 8, 0, 0, 0, time.UTC)
	repo := &mockDefinitionRepo{defs: map[string]*models.SessionDefinition{
		"def-1": {
			ID:     "def-1",
			Period: models.PeriodFinal,
			ClassVisibility: models.VisibilityMap{
				"class-1": &release,
				"class-2": nil,
			},
		},
	}}
	svc := NewDefinitionService(repo, zap.NewNop())

	visible, err := svc.IsClassVisible(context.Background(), models.PeriodFinal, "class-1", release.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, visible)

	visible, err = svc.IsClassVisible(context.Background(), models.PeriodFinal, "class-1", release.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, visible)

	visible, err = svc.IsClassVisible(context.Background(), models.PeriodFinal, "class-2", release)
	require.NoError(t, err)
	assert.False(t, visible, "nil release never publishes")

	visible, err = svc.IsClassVisible(context.Background(), models.PeriodSecondTerm, "class-1", release)
	require.NoError(t, err)
	assert.False(t, visible, "missing definition hides everything")
}
