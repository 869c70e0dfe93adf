package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func statusPtr(s domain.KnowledgeBaseStatus) *domain.KnowledgeBaseStatus {
	return &s
}

func TestKnowledgeBaseManager_Create(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	req := domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}
	api.On("CreateKnowledgeBase", mock.Anything, req).Return(&domain.KnowledgeBase{
		ID: "kb-1", Name: "KB1", Path: "/p", Status: domain.KnowledgeBasePending,
	}, nil)

	m := NewKnowledgeBaseManager(api, WithPollInterval(time.Hour))
	defer m.Close()

	ok := m.CreateKnowledgeBase(context.Background(), req)
	require.True(t, ok)

	state := m.State()
	require.Len(t, state.KnowledgeBases, 1)
	assert.Equal(t, "kb-1", state.KnowledgeBases[0].ID)
	require.NotNil(t, state.CurrentImport)
	assert.Equal(t, "kb-1", state.CurrentImport.ID)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
	assert.Equal(t, "kb-1", m.PollingID())
}

func TestKnowledgeBaseManager_Create_PrependsToList(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("ListKnowledgeBases", mock.Anything).Return([]domain.KnowledgeBase{{ID: "old", Status: domain.KnowledgeBaseReady}}, nil)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "new", Status: domain.KnowledgeBasePending}, nil)

	m := NewKnowledgeBaseManager(api, WithPollInterval(time.Hour))
	defer m.Close()

	require.True(t, m.GetKnowledgeBases(context.Background()))
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "n", Path: "/docs"}))

	kbs := m.State().KnowledgeBases
	require.Len(t, kbs, 2)
	assert.Equal(t, "new", kbs[0].ID)
	assert.Equal(t, "old", kbs[1].ID)
}

func TestKnowledgeBaseManager_Create_Failure(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(nil, errors.New("Path does not exist"))

	m := NewKnowledgeBaseManager(api)
	ok := m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/missing"})

	assert.False(t, ok)
	state := m.State()
	assert.Equal(t, "Path does not exist", state.Error)
	assert.Empty(t, state.KnowledgeBases)
	assert.Nil(t, state.CurrentImport)
	assert.False(t, state.IsLoading)
	assert.Empty(t, m.PollingID())
}

func TestKnowledgeBaseManager_Create_Validation(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	m := NewKnowledgeBaseManager(api)

	ok := m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB", Path: "/docs/../etc"})

	assert.False(t, ok)
	assert.Equal(t, `path must not contain ".."`, m.State().Error)
	api.AssertNotCalled(t, "CreateKnowledgeBase", mock.Anything, mock.Anything)
}

func TestKnowledgeBaseManager_List(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("ListKnowledgeBases", mock.Anything).Return([]domain.KnowledgeBase{{ID: "a"}, {ID: "b"}}, nil).Once()
	api.On("ListKnowledgeBases", mock.Anything).Return(nil, errors.New("server error")).Once()

	m := NewKnowledgeBaseManager(api)
	assert.True(t, m.GetKnowledgeBases(context.Background()))
	assert.Len(t, m.State().KnowledgeBases, 2)
	assert.NotNil(t, m.GetKnowledgeBaseByID("b"))
	assert.Nil(t, m.GetKnowledgeBaseByID("z"))

	assert.False(t, m.RefreshKnowledgeBases(context.Background()))
	assert.Equal(t, "server error", m.State().Error)
	assert.Len(t, m.State().KnowledgeBases, 2)

	m.ClearError()
	assert.Empty(t, m.State().Error)
}

func TestKnowledgeBaseManager_StatusMerge(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBasePending}, nil)
	docs := 4
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-1").Return(&domain.KnowledgeBaseUpdate{
		Status:        statusPtr(domain.KnowledgeBaseProcessing),
		DocumentCount: &docs,
	}, nil).Once()

	m := NewKnowledgeBaseManager(api, WithPollInterval(time.Hour))
	defer m.Close()
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}))

	m.GetKnowledgeBaseStatus(context.Background(), "kb-1")

	state := m.State()
	assert.Equal(t, domain.KnowledgeBaseProcessing, state.KnowledgeBases[0].Status)
	assert.Equal(t, 4, state.KnowledgeBases[0].DocumentCount)
	require.NotNil(t, state.CurrentImport)
	assert.Equal(t, domain.KnowledgeBaseProcessing, state.CurrentImport.Status)
	assert.Equal(t, "kb-1", m.PollingID())
}

func TestKnowledgeBaseManager_StatusTerminalClearsImport(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBaseProcessing}, nil)
	details := "unreadable file"
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-1").Return(&domain.KnowledgeBaseUpdate{
		Status:       statusPtr(domain.KnowledgeBaseError),
		ErrorDetails: &details,
	}, nil).Once()

	m := NewKnowledgeBaseManager(api, WithPollInterval(time.Hour))
	defer m.Close()
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}))

	m.GetKnowledgeBaseStatus(context.Background(), "kb-1")

	state := m.State()
	assert.Nil(t, state.CurrentImport)
	assert.Equal(t, domain.KnowledgeBaseError, state.KnowledgeBases[0].Status)
	require.NotNil(t, state.KnowledgeBases[0].ErrorDetails)
	assert.Equal(t, "unreadable file", *state.KnowledgeBases[0].ErrorDetails)
	assert.Empty(t, m.PollingID())
}

func TestKnowledgeBaseManager_StatusFailureIsSwallowed(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-1").Return(nil, errors.New("timeout"))

	m := NewKnowledgeBaseManager(api)
	m.GetKnowledgeBaseStatus(context.Background(), "kb-1")

	assert.Empty(t, m.State().Error)
}

func TestKnowledgeBaseManager_PollingStopsAtTerminalStatus(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBasePending}, nil)
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-1").Return(&domain.KnowledgeBaseUpdate{Status: statusPtr(domain.KnowledgeBaseProcessing)}, nil).Twice()
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-1").Return(&domain.KnowledgeBaseUpdate{Status: statusPtr(domain.KnowledgeBaseReady)}, nil).Once()

	m := NewKnowledgeBaseManager(api, WithPollInterval(10*time.Millisecond))
	defer m.Close()
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}))

	assert.Eventually(t, func() bool {
		return m.State().CurrentImport == nil && m.PollingID() == ""
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	api.AssertNumberOfCalls(t, "KnowledgeBaseStatus", 3)
	assert.Equal(t, domain.KnowledgeBaseReady, m.GetKnowledgeBaseByID("kb-1").Status)
}

func TestKnowledgeBaseManager_PollingStopsWhenRecordDisappears(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBasePending}, nil)
	api.On("ListKnowledgeBases", mock.Anything).Return([]domain.KnowledgeBase{}, nil)

	m := NewKnowledgeBaseManager(api, WithPollInterval(50*time.Millisecond))
	defer m.Close()
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}))
	require.True(t, m.GetKnowledgeBases(context.Background()))

	assert.Eventually(t, func() bool { return m.PollingID() == "" }, 2*time.Second, 5*time.Millisecond)
	api.AssertNotCalled(t, "KnowledgeBaseStatus", mock.Anything, mock.Anything)
}

func TestKnowledgeBaseManager_SinglePoll(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, domain.KnowledgeBaseCreate{Name: "first", Path: "/a"}).
		Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBasePending}, nil)
	api.On("CreateKnowledgeBase", mock.Anything, domain.KnowledgeBaseCreate{Name: "second", Path: "/b"}).
		Return(&domain.KnowledgeBase{ID: "kb-2", Status: domain.KnowledgeBasePending}, nil)
	api.On("KnowledgeBaseStatus", mock.Anything, "kb-2").Return(&domain.KnowledgeBaseUpdate{Status: statusPtr(domain.KnowledgeBaseProcessing)}, nil)

	m := NewKnowledgeBaseManager(api, WithPollInterval(30*time.Millisecond))
	defer m.Close()

	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "first", Path: "/a"}))
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "second", Path: "/b"}))
	assert.Equal(t, "kb-2", m.PollingID())

	time.Sleep(100 * time.Millisecond)
	api.AssertNotCalled(t, "KnowledgeBaseStatus", mock.Anything, "kb-1")

	m.StopPolling()
	assert.Empty(t, m.PollingID())
}

func TestKnowledgeBaseManager_Delete(t *testing.T) {
	api := new(MockKnowledgeBaseAPI)
	api.On("CreateKnowledgeBase", mock.Anything, mock.Anything).Return(&domain.KnowledgeBase{ID: "kb-1", Status: domain.KnowledgeBasePending}, nil)
	api.On("DeleteKnowledgeBase", mock.Anything, "kb-1").Return(nil).Once()
	api.On("DeleteKnowledgeBase", mock.Anything, "kb-9").Return(errors.New("Knowledge base not found")).Once()

	m := NewKnowledgeBaseManager(api, WithPollInterval(time.Hour))
	defer m.Close()
	require.True(t, m.CreateKnowledgeBase(context.Background(), domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"}))

	assert.True(t, m.DeleteKnowledgeBase(context.Background(), "kb-1"))
	state := m.State()
	assert.Empty(t, state.KnowledgeBases)
	assert.Nil(t, state.CurrentImport)
	assert.Empty(t, m.PollingID())

	assert.False(t, m.DeleteKnowledgeBase(context.Background(), "kb-9"))
	assert.Equal(t, "Knowledge base not found", m.State().Error)
}

func TestKnowledgeBaseManager_SetLoading(t *testing.T) {
	m := NewKnowledgeBaseManager(new(MockKnowledgeBaseAPI))
	m.SetLoading(true)
	assert.True(t, m.State().IsLoading)
	m.SetLoading(false)
	assert.False(t, m.State().IsLoading)
}
