package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
)

func TestUpsertAndGet(t *testing.T) {
	s := New()

	t.Run("insert then fetch", func(t *testing.T) {
		task := &model.Task{ID: "t1", ContextID: "c1", Status: &model.TaskStatus{State: model.TaskStateWorking}}
		stored := s.Upsert(task)
		require.NotNil(t, stored)

		fetched, ok := s.Get("t1", -1)
		require.True(t, ok)
		assert.Equal(t, ids.TaskID("t1"), fetched.ID)
		assert.Equal(t, model.TaskStateWorking, fetched.Status.State)
	})

	t.Run("mutating the returned copy does not affect the store", func(t *testing.T) {
		fetched, ok := s.Get("t1", -1)
		require.True(t, ok)
		fetched.Status.State = model.TaskStateFailed

		again, _ := s.Get("t1", -1)
		assert.Equal(t, model.TaskStateWorking, again.Status.State)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, ok := s.Get("missing", -1)
		assert.False(t, ok)
	})

	t.Run("empty id is a no-op", func(t *testing.T) {
		assert.Nil(t, s.Upsert(&model.Task{ID: ""}))
	})
}

func TestHistoryTruncation(t *testing.T) {
	s := New()
	s.Upsert(&model.Task{ID: "t2", History: make([]model.Message, 5)})

	got, ok := s.Get("t2", 2)
	require.True(t, ok)
	assert.Len(t, got.History, 2)

	got, ok = s.Get("t2", 0)
	require.True(t, ok)
	assert.Nil(t, got.History)

	got, ok = s.Get("t2", -1)
	require.True(t, ok)
	assert.Len(t, got.History, 5)
}

func TestListPagination(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		id := ids.TaskID(string(rune('a' + i)))
		s.Upsert(&model.Task{ID: id, ContextID: "shared"})
	}

	t.Run("default page size returns all when under 50", func(t *testing.T) {
		resp := s.List(ListRequest{HistoryLength: -1})
		assert.Len(t, resp.Tasks, 5)
		assert.Equal(t, 5, resp.TotalSize)
		assert.Empty(t, resp.NextPageToken)
	})

	t.Run("small page size paginates with a next token", func(t *testing.T) {
		resp := s.List(ListRequest{PageSize: 2, HistoryLength: -1})
		assert.Len(t, resp.Tasks, 2)
		assert.Equal(t, "2", resp.NextPageToken)

		next := s.List(ListRequest{PageSize: 2, PageToken: resp.NextPageToken, HistoryLength: -1})
		assert.Len(t, next.Tasks, 2)
		assert.Equal(t, "4", next.NextPageToken)

		last := s.List(ListRequest{PageSize: 2, PageToken: next.NextPageToken, HistoryLength: -1})
		assert.Len(t, last.Tasks, 1)
		assert.Empty(t, last.NextPageToken)
	})

	t.Run("filters by contextId", func(t *testing.T) {
		s.Upsert(&model.Task{ID: "other", ContextID: "different"})
		resp := s.List(ListRequest{ContextID: "different", HistoryLength: -1})
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, ids.TaskID("other"), resp.Tasks[0].ID)
	})

	t.Run("excludes artifacts unless requested", func(t *testing.T) {
		s.Upsert(&model.Task{ID: "withart", ContextID: "shared", Artifacts: []model.Artifact{{Name: "a"}}})
		resp := s.List(ListRequest{ContextID: "shared", HistoryLength: -1})
		for _, task := range resp.Tasks {
			assert.Nil(t, task.Artifacts)
		}
		resp = s.List(ListRequest{ContextID: "shared", IncludeArtifacts: true, HistoryLength: -1})
		found := false
		for _, task := range resp.Tasks {
			if task.ID == "withart" {
				found = true
				assert.Len(t, task.Artifacts, 1)
			}
		}
		assert.True(t, found)
	})
}

func TestCancelSetsTerminalState(t *testing.T) {
	s := New()
	s.Upsert(&model.Task{ID: "t3", Status: &model.TaskStatus{State: model.TaskStateWorking}})

	task, ok := s.Cancel("t3")
	require.True(t, ok)
	assert.Equal(t, model.TaskStateCanceled, task.Status.State)

	_, ok = s.Cancel("missing")
	assert.False(t, ok)
}

func TestInsertMessageRequiresKnownTask(t *testing.T) {
	s := New()
	s.Upsert(&model.Task{ID: "t4"})

	assert.True(t, s.InsertMessage(model.Message{TaskID: "t4", Role: model.RoleUser}))
	assert.False(t, s.InsertMessage(model.Message{TaskID: "unknown"}))
	assert.False(t, s.InsertMessage(model.Message{}))

	got, ok := s.Get("t4", -1)
	require.True(t, ok)
	assert.Len(t, got.History, 1)
}

func TestDrainUpdatesIsFIFOAndOnceOnly(t *testing.T) {
	s := New()
	s.RecordStatusUpdate("t5", "c5", model.TaskStatus{State: model.TaskStateWorking}, false)
	s.RecordStatusUpdate("t5", "c5", model.TaskStatus{State: model.TaskStateCompleted}, true)

	updates := s.DrainUpdates("t5")
	require.Len(t, updates, 2)
	assert.Equal(t, model.TaskStateWorking, updates[0].Status.Status.State)
	assert.Equal(t, model.TaskStateCompleted, updates[1].Status.Status.State)

	assert.Empty(t, s.DrainUpdates("t5"))
}
