package httphandler_test

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	themeapp "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
	httphandler "github.com/themery/themery/internal/handler/http"
	"github.com/themery/themery/internal/infrastructure/httpserver"
)

type fakeThemeRepo struct {
	themes map[uuid.UUID]*theme.Theme
}

func newFakeThemeRepo() *fakeThemeRepo {
	return &fakeThemeRepo{themes: make(map[uuid.UUID]*theme.Theme)}
}

func (r *fakeThemeRepo) Save(_ context.Context, t *theme.Theme) error {
	r.themes[t.ID()] = t
	t.ClearEvents()
	return nil
}

func (r *fakeThemeRepo) FindByID(_ context.Context, id uuid.UUID) (*theme.Theme, error) {
	t, ok := r.themes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return t, nil
}

func (r *fakeThemeRepo) FindByName(_ context.Context, name string) ([]*theme.Theme, error) {
	var matches []*theme.Theme
	for _, t := range r.themes {
		if t.Name() == name {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (r *fakeThemeRepo) FindByDate(_ context.Context, date time.Time) ([]*theme.Theme, error) {
	var matches []*theme.Theme
	for _, t := range r.themes {
		if !date.Before(t.StartDate()) && !date.After(t.EndDate()) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (r *fakeThemeRepo) List(_ context.Context, offset, limit int) ([]*theme.Theme, error) {
	all := make([]*theme.Theme, 0, len(r.themes))
	for _, t := range r.themes {
		all = append(all, t)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *fakeThemeRepo) Count(_ context.Context) (int, error) {
	return len(r.themes), nil
}

func (r *fakeThemeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.themes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.themes, id)
	return nil
}

var _ theme.Repository = (*fakeThemeRepo)(nil)

func newThemeHandler(repo *fakeThemeRepo) *httphandler.ThemeHandler {
	return httphandler.NewThemeHandler(
		themeapp.NewCreateThemeUseCase(repo),
		themeapp.NewUpdateThemeUseCase(repo),
		themeapp.NewDeleteThemeUseCase(repo),
		themeapp.NewGetThemeUseCase(repo),
		themeapp.NewFindThemesByNameUseCase(repo),
		themeapp.NewFindThemesByDateUseCase(repo),
		themeapp.NewListThemesUseCase(repo),
	)
}

func seedHandlerTheme(t *testing.T, repo *fakeThemeRepo, name string) *theme.Theme {
	t.Helper()
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	th, err := theme.NewTheme(name, 7, "AC", start, start.AddDate(0, 1, 0), "tester", event.NewMetadata("", ""))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), th))
	return th
}

func doRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	require.NoError(t, handler(c))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httpserver.Response {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestThemeHandler_Create(t *testing.T) {
	t.Run("successful create", func(t *testing.T) {
		repo := newFakeThemeRepo()
		handler := newThemeHandler(repo)

		reqBody := `{
			"name": "Autumn Campaign",
			"number": 7,
			"letter": "AC",
			"start_date": "2025-09-01T00:00:00Z",
			"end_date": "2025-10-01T00:00:00Z",
			"created_by": "tester"
		}`
		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/themes", reqBody, nil)

		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Len(t, repo.themes, 1)
	})

	t.Run("invalid letter", func(t *testing.T) {
		handler := newThemeHandler(newFakeThemeRepo())

		reqBody := `{
			"name": "Autumn Campaign",
			"number": 7,
			"letter": "ABC",
			"start_date": "2025-09-01T00:00:00Z",
			"end_date": "2025-10-01T00:00:00Z",
			"created_by": "tester"
		}`
		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/themes", reqBody, nil)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := newThemeHandler(newFakeThemeRepo())

		rec := doRequest(t, handler.Create, stdhttp.MethodPost, "/api/v1/themes", `{"name":`, nil)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
	})
}

func TestThemeHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := newFakeThemeRepo()
		th := seedHandlerTheme(t, repo, "Autumn Campaign")
		handler := newThemeHandler(repo)

		rec := doRequest(t, handler.Get, stdhttp.MethodGet, "/api/v1/themes/"+th.ID().String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(th.ID().String())
		})

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("not found", func(t *testing.T) {
		handler := newThemeHandler(newFakeThemeRepo())
		missing := uuid.NewUUID()

		rec := doRequest(t, handler.Get, stdhttp.MethodGet, "/api/v1/themes/"+missing.String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(missing.String())
		})

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		handler := newThemeHandler(newFakeThemeRepo())

		rec := doRequest(t, handler.Get, stdhttp.MethodGet, "/api/v1/themes/garbage", "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("not-a-uuid")
		})

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}

func TestThemeHandler_List(t *testing.T) {
	repo := newFakeThemeRepo()
	seedHandlerTheme(t, repo, "First Theme")
	seedHandlerTheme(t, repo, "Second Theme")
	handler := newThemeHandler(repo)

	rec := doRequest(t, handler.List, stdhttp.MethodGet, "/api/v1/themes", "", nil)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Success bool                          `json:"success"`
		Data    httphandler.ThemeListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Len(t, resp.Data.Themes, 2)
}

func TestThemeHandler_FindByDate(t *testing.T) {
	repo := newFakeThemeRepo()
	seedHandlerTheme(t, repo, "Autumn Campaign")
	handler := newThemeHandler(repo)

	t.Run("matching date", func(t *testing.T) {
		rec := doRequest(t, handler.FindByDate, stdhttp.MethodGet, "/api/v1/themes/by-date/2025-09-15", "", func(c echo.Context) {
			c.SetParamNames("date")
			c.SetParamValues("2025-09-15")
		})

		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Data httphandler.ThemeListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Total)
	})

	t.Run("invalid date", func(t *testing.T) {
		rec := doRequest(t, handler.FindByDate, stdhttp.MethodGet, "/api/v1/themes/by-date/tomorrow", "", func(c echo.Context) {
			c.SetParamNames("date")
			c.SetParamValues("tomorrow")
		})

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "INVALID_DATE", resp.Error.Code)
	})
}

func TestThemeHandler_Update(t *testing.T) {
	repo := newFakeThemeRepo()
	th := seedHandlerTheme(t, repo, "Autumn Campaign")
	handler := newThemeHandler(repo)

	reqBody := `{
		"name": "Winter Campaign",
		"number": 8,
		"letter": "WC",
		"start_date": "2025-12-01T00:00:00Z",
		"end_date": "2026-01-01T00:00:00Z",
		"modified_by": "editor"
	}`
	rec := doRequest(t, handler.Update, stdhttp.MethodPut, "/api/v1/themes/"+th.ID().String(), reqBody, func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(th.ID().String())
	})

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "Winter Campaign", repo.themes[th.ID()].Name())
}

func TestThemeHandler_Delete(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		repo := newFakeThemeRepo()
		th := seedHandlerTheme(t, repo, "Autumn Campaign")
		handler := newThemeHandler(repo)

		rec := doRequest(t, handler.Delete, stdhttp.MethodDelete, "/api/v1/themes/"+th.ID().String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(th.ID().String())
		})

		assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
		assert.Empty(t, repo.themes)
	})

	t.Run("not found", func(t *testing.T) {
		handler := newThemeHandler(newFakeThemeRepo())
		missing := uuid.NewUUID()

		rec := doRequest(t, handler.Delete, stdhttp.MethodDelete, "/api/v1/themes/"+missing.String(), "", func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(missing.String())
		})

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})
}
