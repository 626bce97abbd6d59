package httphandler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	activityapp "github.com/themery/themery/internal/application/activity"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/infrastructure/httpserver"
)

// ActivityDetailsPayload carries the descriptive attributes of an activity.
type ActivityDetailsPayload struct {
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date,omitempty"`
}

// CreateActivityRequest represents the request to create an activity.
type CreateActivityRequest struct {
	ThemeID uuid.UUID              `json:"theme_id"`
	Name    string                 `json:"name"`
	Details ActivityDetailsPayload `json:"details"`
}

// UpdateActivityRequest represents the request to update an activity.
type UpdateActivityRequest struct {
	ThemeID uuid.UUID              `json:"theme_id"`
	Name    string                 `json:"name"`
	Details ActivityDetailsPayload `json:"details"`
}

// ActivityResponse represents an activity in API responses.
type ActivityResponse struct {
	ID        uuid.UUID              `json:"id"`
	ThemeID   uuid.UUID              `json:"theme_id"`
	Name      string                 `json:"name"`
	Details   ActivityDetailsPayload `json:"details"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

// ActivityListResponse represents a list of activities in API responses.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Total      int                `json:"total"`
	Offset     int                `json:"offset"`
	Limit      int                `json:"limit"`
}

// ThemeProjectionResponse represents a replicated theme in API responses.
// Only the replicated projection fields are exposed; the full theme record
// lives in the theme service.
type ThemeProjectionResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ThemeProjectionListResponse represents a list of replicated themes.
type ThemeProjectionListResponse struct {
	Themes []ThemeProjectionResponse `json:"themes"`
	Offset int                       `json:"offset"`
	Limit  int                       `json:"limit"`
}

// ActivityHandler handles activity-related HTTP requests.
type ActivityHandler struct {
	createUC          *activityapp.CreateActivityUseCase
	updateUC          *activityapp.UpdateActivityUseCase
	deleteUC          *activityapp.DeleteActivityUseCase
	getUC             *activityapp.GetActivityUseCase
	findByNameUC      *activityapp.FindActivitiesByNameUseCase
	findByThemeUC     *activityapp.FindActivitiesByThemeUseCase
	listUC            *activityapp.ListActivitiesUseCase
	listProjectionsUC *activityapp.ListThemeProjectionsUseCase
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(
	createUC *activityapp.CreateActivityUseCase,
	updateUC *activityapp.UpdateActivityUseCase,
	deleteUC *activityapp.DeleteActivityUseCase,
	getUC *activityapp.GetActivityUseCase,
	findByNameUC *activityapp.FindActivitiesByNameUseCase,
	findByThemeUC *activityapp.FindActivitiesByThemeUseCase,
	listUC *activityapp.ListActivitiesUseCase,
	listProjectionsUC *activityapp.ListThemeProjectionsUseCase,
) *ActivityHandler {
	return &ActivityHandler{
		createUC:          createUC,
		updateUC:          updateUC,
		deleteUC:          deleteUC,
		getUC:             getUC,
		findByNameUC:      findByNameUC,
		findByThemeUC:     findByThemeUC,
		listUC:            listUC,
		listProjectionsUC: listProjectionsUC,
	}
}

// RegisterRoutes registers activity routes with the router.
func (h *ActivityHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/activities", h.Create)
	r.API().GET("/activities", h.List)
	r.API().GET("/activities/:id", h.Get)
	r.API().GET("/activities/by-name/:name", h.FindByName)
	r.API().GET("/activities/by-theme/:themeId", h.FindByTheme)
	r.API().PUT("/activities/:id", h.Update)
	r.API().DELETE("/activities/:id", h.Delete)

	// Read-only view of the replicated theme set for clients that need to
	// know which theme ids this service will accept.
	r.API().GET("/themes", h.ListThemes)
}

// Create handles POST /api/v1/activities.
// Rejects activities referencing themes that have not been replicated yet.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	result, err := h.createUC.Execute(c.Request().Context(), activityapp.CreateActivityCommand{
		ThemeID: req.ThemeID,
		Name:    req.Name,
		Details: activityapp.DetailsInput{
			Description: req.Details.Description,
			URL:         req.Details.URL,
			Date:        req.Details.Date,
		},
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToActivityResponse(result.Value))
}

// List handles GET /api/v1/activities.
func (h *ActivityHandler) List(c echo.Context) error {
	offset, limit := ParsePagination(c)

	result, err := h.listUC.Execute(c.Request().Context(), activityapp.ListActivitiesQuery{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToActivityListResponse(result))
}

// Get handles GET /api/v1/activities/:id.
func (h *ActivityHandler) Get(c echo.Context) error {
	activityID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_ACTIVITY_ID", "Invalid activity ID format")
	}

	result, err := h.getUC.Execute(c.Request().Context(), activityapp.GetActivityQuery{ActivityID: activityID})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToActivityResponse(result.Value))
}

// FindByName handles GET /api/v1/activities/by-name/:name.
func (h *ActivityHandler) FindByName(c echo.Context) error {
	result, err := h.findByNameUC.Execute(c.Request().Context(), activityapp.GetActivitiesByNameQuery{
		Name: c.Param("name"),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToActivityListResponse(result))
}

// FindByTheme handles GET /api/v1/activities/by-theme/:themeId.
func (h *ActivityHandler) FindByTheme(c echo.Context) error {
	themeID, err := uuid.ParseUUID(c.Param("themeId"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THEME_ID", "Invalid theme ID format")
	}

	result, err := h.findByThemeUC.Execute(c.Request().Context(), activityapp.GetActivitiesByThemeQuery{
		ThemeID: themeID,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToActivityListResponse(result))
}

// Update handles PUT /api/v1/activities/:id.
func (h *ActivityHandler) Update(c echo.Context) error {
	activityID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_ACTIVITY_ID", "Invalid activity ID format")
	}

	var req UpdateActivityRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	result, err := h.updateUC.Execute(c.Request().Context(), activityapp.UpdateActivityCommand{
		ActivityID: activityID,
		ThemeID:    req.ThemeID,
		Name:       req.Name,
		Details: activityapp.DetailsInput{
			Description: req.Details.Description,
			URL:         req.Details.URL,
			Date:        req.Details.Date,
		},
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToActivityResponse(result.Value))
}

// Delete handles DELETE /api/v1/activities/:id.
func (h *ActivityHandler) Delete(c echo.Context) error {
	activityID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_ACTIVITY_ID", "Invalid activity ID format")
	}

	_, err = h.deleteUC.Execute(c.Request().Context(), activityapp.DeleteActivityCommand{ActivityID: activityID})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

// ListThemes handles GET /api/v1/themes on the activity service.
func (h *ActivityHandler) ListThemes(c echo.Context) error {
	offset, limit := ParsePagination(c)

	result, err := h.listProjectionsUC.Execute(c.Request().Context(), activityapp.ListThemeProjectionsQuery{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	themes := make([]ThemeProjectionResponse, 0, len(result.Themes))
	for _, p := range result.Themes {
		themes = append(themes, ThemeProjectionResponse{ID: p.ID(), Name: p.Name()})
	}

	return httpserver.RespondOK(c, ThemeProjectionListResponse{
		Themes: themes,
		Offset: result.Offset,
		Limit:  result.Limit,
	})
}

// ToActivityResponse converts a domain Activity to an ActivityResponse.
func ToActivityResponse(a *activity.Activity) ActivityResponse {
	details := a.Details()
	return ActivityResponse{
		ID:      a.ID(),
		ThemeID: a.ThemeID(),
		Name:    a.Name(),
		Details: ActivityDetailsPayload{
			Description: details.Description,
			URL:         details.URL,
			Date:        details.Date,
		},
		CreatedAt: a.CreatedAt().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt().Format(time.RFC3339),
	}
}

// ToActivityListResponse converts a list result to an ActivityListResponse.
func ToActivityListResponse(result activityapp.ListResult) ActivityListResponse {
	activities := make([]ActivityResponse, 0, len(result.Activities))
	for _, a := range result.Activities {
		activities = append(activities, ToActivityResponse(a))
	}

	return ActivityListResponse{
		Activities: activities,
		Total:      result.TotalCount,
		Offset:     result.Offset,
		Limit:      result.Limit,
	}
}
