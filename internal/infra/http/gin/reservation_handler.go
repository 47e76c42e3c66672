package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	reservationapp "staybook/internal/app/handlers/reservations"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
)

const reservationDateLayout = "2006-01-02"

type ReservationHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type reserveRequest struct {
	AdvertID  string `json:"advert_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, errors.New("invalid request"))
		return
	}
	if strings.TrimSpace(req.AdvertID) == "" {
		h.respondWithError(c, http.StatusBadRequest, errors.New("advert_id is required"))
		return
	}
	start, err := time.Parse(reservationDateLayout, req.StartDate)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, errors.New("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(reservationDateLayout, req.EndDate)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, errors.New("end_date must be YYYY-MM-DD"))
		return
	}

	cmd := reservationapp.ReserveCommand{
		UserID:   principalUserID(p),
		AdvertID: domainadvert.ID(strings.TrimSpace(req.AdvertID)),
		Start:    start,
		End:      end,
	}
	result, err := commands.Dispatch[reservationapp.ReserveCommand, *dto.ReservationView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainreservation.ErrConflict), errors.Is(err, domainadvert.ErrConcurrentWrite):
		h.respondWithError(c, http.StatusConflict, err)
	case errors.Is(err, domainadvert.ErrNotFound):
		h.respondWithError(c, http.StatusNotFound, err)
	case isValidationError(err):
		h.respondWithError(c, http.StatusBadRequest, err)
	default:
		h.respondWithError(c, http.StatusInternalServerError, err)
	}
}

func (h ReservationHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "user_id", p.ID)
		}
		h.Logger.Error("reservation request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ ReservationHTTP = (*ReservationHandler)(nil)
