package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/api/resource"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking"
)

// HeaderSessionID carries the session identifier of a release request.
const HeaderSessionID = "X-Session-ID"

func (h *Handler) handleClaimSession(c echo.Context) error {
	req := resource.ClaimRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: "invalid request body"})
	}

	if req.Latitude == nil {
		return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: "latitude is required"})
	}
	if req.Longitude == nil {
		return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: "longitude is required"})
	}

	accuracy := model.DefaultAccuracy
	if req.Accuracy != nil {
		accuracy = *req.Accuracy
	}

	sess, err := h.ctrl.ClaimSession(req.BusNumber, tracking.ClaimLocation{
		Latitude:  float64(*req.Latitude),
		Longitude: float64(*req.Longitude),
		Accuracy:  accuracy,
	})
	if err != nil {
		if tracking.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: err.Error()})
		}
		if tracking.IsConflictError(err) {
			conflict := err.(*tracking.ConflictError)
			return c.JSON(http.StatusConflict, resource.ConflictResponse{
				Error: err.Error(),
				ExistingTracker: resource.ExistingTrackerResource{
					BusNumber:   conflict.BusNumber,
					TrackerID:   conflict.TrackerID,
					LastUpdated: conflict.LastUpdated,
				},
			})
		}
		return c.JSON(http.StatusInternalServerError, resource.ErrorResponse{Error: "could not claim session"})
	}

	return c.JSON(http.StatusCreated, resource.NewClaim(sess))
}

func (h *Handler) handleReleaseSession(c echo.Context) error {
	sessionID := c.Request().Header.Get(HeaderSessionID)
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: "missing " + HeaderSessionID + " header"})
	}

	busNumber, err := h.ctrl.ReleaseSession(sessionID)
	if err != nil {
		if tracking.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, resource.ErrorResponse{Error: err.Error()})
		}
		if tracking.IsInvalidSessionError(err) {
			return c.JSON(http.StatusNotFound, resource.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, resource.ErrorResponse{Error: "could not release session"})
	}

	return c.JSON(http.StatusOK, resource.ReleaseResponse{BusNumber: busNumber})
}

func (h *Handler) handleFetchSessions(c echo.Context) error {
	m, err := h.store.Sessions().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, resource.ErrorResponse{Error: "could not fetch sessions"})
	}

	return c.JSON(http.StatusOK, resource.NewSessionList(m))
}

func (h *Handler) handleGetBusSession(c echo.Context) error {
	busNumber := c.Param("busNumber")

	sess, err := h.store.Sessions().FindActiveByBus(busNumber)
	if err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, resource.ErrorResponse{Error: "no active tracker for bus " + busNumber})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, resource.ErrorResponse{Error: "could not fetch session"})
	}

	return c.JSON(http.StatusOK, resource.NewSession(sess))
}
