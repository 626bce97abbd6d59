package httphandler_test

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityapp "github.com/themery/themery/internal/application/activity"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
	httphandler "github.com/themery/themery/internal/handler/http"
)

type fakeActivityRepo struct {
	activities map[uuid.UUID]*activity.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[uuid.UUID]*activity.Activity)}
}

func (r *fakeActivityRepo) Save(_ context.Context, a *activity.Activity) error {
	r.activities[a.ID()] = a
	return nil
}

func (r *fakeActivityRepo) FindByID(_ context.Context, id uuid.UUID) (*activity.Activity, error) {
	a, ok := r.activities[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return a, nil
}

func (r *fakeActivityRepo) FindByName(_ context.Context, name string) ([]*activity.Activity, error) {
	var matches []*activity.Activity
	for _, a := range r.activities {
		if a.Name() == name {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (r *fakeActivityRepo) FindByThemeID(_ context.Context, themeID uuid.UUID) ([]*activity.Activity, error) {
	var matches []*activity.Activity
	for _, a := range r.activities {
		if a.ThemeID() == themeID {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (r *fakeActivityRepo) List(_ context.Context, offset, limit int) ([]*activity.Activity, error) {
	all := make([]*activity.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		all = append(all, a)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *fakeActivityRepo) Count(_ context.Context) (int, error) {
	return len(r.activities), nil
}

func (r *fakeActivityRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.activities[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

var _ activity.Repository = (*fakeActivityRepo)(nil)

type fakeProjectionStore struct {
	rows map[uuid.UUID]*activity.ThemeProjection
}

func newFakeProjectionStore() *fakeProjectionStore {
	return &fakeProjectionStore{rows: make(map[uuid.UUID]*activity.ThemeProjection)}
}

func (s *fakeProjectionStore) Upsert(_ context.Context, p *activity.ThemeProjection) error {
	s.rows[p.ID()] = p
	return nil
}

func (s *fakeProjectionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeProjectionStore) FindByID(_ context.Context, id uuid.UUID) (*activity.ThemeProjection, error) {
	p, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return p, nil
}

func (s *fakeProjectionStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.rows[id]
	return ok, nil
}

func (s *fakeProjectionStore) List(_ context.Context, offset, limit int) ([]*activity.ThemeProjection, error) {
	all := make([]*activity.ThemeProjection, 0, len(s.rows))
	for _, p := range s.rows {
		all = append(all, p)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

var _ activity.ThemeProjectionRepository = (*fakeProjectionStore)(nil)

func newActivityHandler(repo *fakeActivityRepo, store *fakeProjectionStore) *httphandler.ActivityHandler {
	return httphandler.NewActivityHandler(
		activityapp.NewCreateActivityUseCase(repo, store),
		activityapp.NewUpdateActivityUseCase(repo, store),
		activityapp.NewDeleteActivityUseCase(repo),
		activityapp.NewGetActivityUseCase(repo),
		activityapp.NewFindActivitiesByNameUseCase(repo),
		activityapp.NewFindActivitiesByThemeUseCase(repo),
		activityapp.NewListActivitiesUseCase(repo),
		activityapp.NewListThemeProjectionsUseCase(store),
	)
}

func replicateTheme(t *testing.T, store *fakeProjectionStore, name string) uuid.UUID {
	t.Helper()
	id := uuid.NewUUID()
	p, err := activity.NewThemeProjection(id, name)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), p))
	return id
}

func createActivityBody(themeID uuid.UUID) string {
	return `{
		"theme_id": "` + themeID.String() + `",
		"name": "Kickoff Meetup",
		"details": {"url": "https://example.org/kickoff"}
	}`
}

func TestActivityHandler_Create(t *testing.T) {
	t.Run("successful create", func(t *testing.T) {
		repo := newFakeActivityRepo()
		store := newFakeProjectionStore()
		themeID := replicateTheme(t, store, "Autumn Campaign")
		handler := newActivityHandler(repo, store)

		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/activities", createActivityBody(themeID), nil)

		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Len(t, repo.activities, 1)
	})

	t.Run("unreplicated theme rejected", func(t *testing.T) {
		repo := newFakeActivityRepo()
		store := newFakeProjectionStore()
		handler := newActivityHandler(repo, store)

		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/activities", createActivityBody(uuid.NewUUID()), nil)

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "THEME_NOT_REPLICATED", resp.Error.Code)
		assert.Empty(t, repo.activities)
	})

	t.Run("missing url", func(t *testing.T) {
		store := newFakeProjectionStore()
		themeID := replicateTheme(t, store, "Autumn Campaign")
		handler := newActivityHandler(newFakeActivityRepo(), store)

		body := `{"theme_id": "` + themeID.String() + `", "name": "Kickoff Meetup", "details": {}}`
		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/activities", body, nil)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}

func TestActivityHandler_Update(t *testing.T) {
	repo := newFakeActivityRepo()
	store := newFakeProjectionStore()
	themeID := replicateTheme(t, store, "Autumn Campaign")
	handler := newActivityHandler(repo, store)

	a, err := activity.NewActivity(themeID, "Kickoff Meetup", activity.Details{URL: "https://example.org/kickoff"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), a))

	t.Run("retarget to replicated theme", func(t *testing.T) {
		otherTheme := replicateTheme(t, store, "Winter Campaign")

		body := `{
			"theme_id": "` + otherTheme.String() + `",
			"name": "Kickoff Meetup",
			"details": {"url": "https://example.org/kickoff"}
		}`
		rec := doRequest(t, handler.Update, stdhttp.MethodPut, "/api/v1/activities/"+a.ID().String(), body, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(a.ID().String())
		})

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, otherTheme, repo.activities[a.ID()].ThemeID())
	})

	t.Run("retarget to unreplicated theme rejected", func(t *testing.T) {
		body := `{
			"theme_id": "` + uuid.NewUUID().String() + `",
			"name": "Kickoff Meetup",
			"details": {"url": "https://example.org/kickoff"}
		}`
		rec := doRequest(t, handler.Update, stdhttp.MethodPut, "/api/v1/activities/"+a.ID().String(), body, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(a.ID().String())
		})

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})
}

func TestActivityHandler_GetAndDelete(t *testing.T) {
	repo := newFakeActivityRepo()
	store := newFakeProjectionStore()
	themeID := replicateTheme(t, store, "Autumn Campaign")
	handler := newActivityHandler(repo, store)

	a, err := activity.NewActivity(themeID, "Kickoff Meetup", activity.Details{URL: "https://example.org/kickoff"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), a))

	t.Run("get found", func(t *testing.T) {
		rec := doRequest(t, handler.Get, stdhttp.MethodGet, "/api/v1/activities/"+a.ID().String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(a.ID().String())
		})

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("get not found", func(t *testing.T) {
		missing := uuid.NewUUID()
		rec := doRequest(t, handler.Get, stdhttp.MethodGet, "/api/v1/activities/"+missing.String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(missing.String())
		})

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, handler.Delete, stdhttp.MethodDelete, "/api/v1/activities/"+a.ID().String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(a.ID().String())
		})

		assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
		assert.Empty(t, repo.activities)
	})
}

func TestActivityHandler_ListThemes(t *testing.T) {
	repo := newFakeActivityRepo()
	store := newFakeProjectionStore()
	replicateTheme(t, store, "Autumn Campaign")
	replicateTheme(t, store, "Winter Campaign")
	handler := newActivityHandler(repo, store)

	rec := doRequest(t, handler.ListThemes, stdhttp.MethodGet, "/api/v1/themes", "", nil)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data httphandler.ThemeProjectionListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Themes, 2)
}
