package hemodynamics

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	subjects := api.Group("/subjects/:id")
	subjects.GET("/snapshots", h.ListSnapshots)
	subjects.POST("/snapshots", h.CreateSnapshot)
	subjects.GET("/report", h.ExportReport)
	subjects.GET("/report/outline", h.ReportOutline)
}

func subjectID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid subject id")
	}
	return id, nil
}

// httpError maps domain and export failures onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoRecords):
		return echo.NewHTTPError(http.StatusNotFound, ErrNoRecords.Error())
	case errors.Is(err, ErrSubjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrSubjectNotFound.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report export timed out")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ListSnapshots(c echo.Context) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSnapshots(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) CreateSnapshot(c echo.Context) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	var s Snapshot
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.ID = uuid.Nil
	s.SubjectID = id
	if err := h.svc.CreateSnapshot(c.Request().Context(), &s); err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) ExportReport(c echo.Context) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	path, _, err := h.svc.ExportToOutputDir(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	defer os.Remove(path)
	return c.Attachment(path, filepath.Base(path))
}

func (h *Handler) ReportOutline(c echo.Context) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	outline, err := h.svc.Outline(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pages": outline,
		"total": len(outline),
	})
}
