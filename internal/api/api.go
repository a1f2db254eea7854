package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/ports"
	"github.com/chrisdamba/skybooker/internal/utils"
	"github.com/chrisdamba/skybooker/internal/validator"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const AdminKeyHeader = "X-Admin-Key"

type AdminLoginRequest struct {
	Key string `json:"key" validate:"required"`
}

type sessionAction func(ctx context.Context, id uuid.UUID) (*models.SessionView, error)

// RegisterRoutes mounts the session and admin endpoints on r.
func RegisterRoutes(r *mux.Router, service ports.BookingService) {
	v := validator.NewCustomValidator()

	r.HandleFunc("/sessions", CreateSessionHandler(service)).Methods(http.MethodPost)

	r.HandleFunc("/sessions/{id}", GetSessionHandler(service)).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", DeleteSessionHandler(service)).Methods(http.MethodDelete)

	s := r.PathPrefix("/sessions/{id}").Subrouter()
	s.HandleFunc("/search", jsonOnly(SubmitSearchHandler(service))).Methods(http.MethodPost)
	s.HandleFunc("/itineraries/{itineraryId}/select", SelectItineraryHandler(service)).Methods(http.MethodPost)
	s.HandleFunc("/modal/close", ActionHandler(service.CloseModal)).Methods(http.MethodPost)
	s.HandleFunc("/payment", jsonOnly(UpdatePaymentHandler(service))).Methods(http.MethodPut)
	s.HandleFunc("/payment/proceed", ActionHandler(service.ProceedToPayment)).Methods(http.MethodPost)
	s.HandleFunc("/payment/submit", ActionHandler(service.SubmitPayment)).Methods(http.MethodPost)
	s.HandleFunc("/back", ActionHandler(service.GoBack)).Methods(http.MethodPost)
	s.HandleFunc("/home", ActionHandler(service.GoToSearch)).Methods(http.MethodPost)
	s.HandleFunc("/start-over", ActionHandler(service.StartOver)).Methods(http.MethodPost)
	s.HandleFunc("/admin/open", ActionHandler(service.OpenAdminLogin)).Methods(http.MethodPost)
	s.HandleFunc("/admin/login", jsonOnly(AdminLoginHandler(service, v))).Methods(http.MethodPost)

	r.HandleFunc("/admin/bookings", ListBookingsHandler(service)).Methods(http.MethodGet)
	r.HandleFunc("/admin/bookings/{reference}", GetBookingHandler(service)).Methods(http.MethodGet)
}

func CreateSessionHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := service.CreateSession(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusCreated, view)
	}
}

func GetSessionHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		sort := models.SortMode(r.URL.Query().Get("sort"))
		view, err := service.GetSession(r.Context(), id, sort)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

func DeleteSessionHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		if err := service.DeleteSession(r.Context(), id); err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusNoContent, nil)
	}
}

func SubmitSearchHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var criteria models.SearchCriteria
		if err := utils.JsonDecodeBody(r, &criteria); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		view, err := service.SubmitSearch(r.Context(), id, criteria)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

func SelectItineraryHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		view, err := service.SelectItinerary(r.Context(), id, mux.Vars(r)["itineraryId"])
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

func UpdatePaymentHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var draft models.PaymentFormData
		if err := utils.JsonDecodeBody(r, &draft); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		view, err := service.UpdatePayment(r.Context(), id, draft)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

func AdminLoginHandler(service ports.BookingService, v *validator.CustomValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req AdminLoginRequest
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		if err := v.Validate(req); err != nil {
			ae := utils.NewBadRequest(err.Error())
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		view, err := service.AdminLogin(r.Context(), id, req.Key)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

// ActionHandler serves the bodiless transitions that only need the session id.
func ActionHandler(action sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		view, err := action(r.Context(), id)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}

func ListBookingsHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.GetBookingsRequest{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				ae := utils.NewBadRequest("invalid limit")
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}
			req.Limit = limit
		}

		res, err := service.AllBookings(r.Context(), r.Header.Get(AdminKeyHeader), req)
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, res)
	}
}

func GetBookingHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := service.BookingByReference(r.Context(), r.Header.Get(AdminKeyHeader), mux.Vars(r)["reference"])
		if err != nil {
			renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, booking)
	}
}

func jsonOnly(next http.HandlerFunc) http.HandlerFunc {
	return utils.AllowedContentTypes(next, string(utils.ContentTypeJSON))
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		ae := utils.NewBadRequest(models.ErrInvalidUUID.Error())
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return uuid.Nil, false
	}
	return id, true
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	ae := getApiError(err)
	utils.RenderResponse(r, w, ae.StatusCode, ae)
}

func getApiError(err error) utils.ApiError {
	msg := err.Error()
	switch {
	case errors.Is(err, models.ErrInvalidUUID),
		errors.Is(err, models.ErrInvalidCriteria),
		errors.Is(err, models.ErrInvalidPayment),
		errors.Is(err, models.ErrInvalidSortMode),
		errors.Is(err, models.ErrInvalidCursor):
		return utils.NewBadRequest(msg)
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrItineraryNotFound),
		errors.Is(err, models.ErrBookingNotFound):
		return utils.NewNotFound(msg)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrBusy),
		errors.Is(err, models.ErrNoSelection):
		return utils.NewConflict(msg)
	case errors.Is(err, models.ErrInvalidAdminKey):
		return utils.NewUnauthorized(msg)
	case errors.Is(err, models.ErrLedgerDisabled):
		return utils.NewServiceUnavailable(msg)
	default:
		return utils.NewInternalServerError(msg)
	}
}
