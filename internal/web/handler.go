package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wolfman30/booking-wizard/internal/wizard"
	"github.com/wolfman30/booking-wizard/pkg/logging"
)

// SessionCookie names the cookie that carries the wizard session ID.
const SessionCookie = "wizard_session"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/wizard.html"))

// Handler serves the booking wizard pages and actions.
type Handler struct {
	manager      *wizard.Manager
	logger       *logging.Logger
	secureCookie bool
}

// Option customises a Handler.
type Option func(*Handler)

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) { h.secureCookie = secure }
}

// NewHandler creates the wizard handler.
func NewHandler(manager *wizard.Manager, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{manager: manager, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the wizard endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandlePage)
	r.Post("/service", h.HandleSelectService)
	r.Post("/date", h.HandleSelectDate)
	r.Post("/time", h.HandleSelectTime)
	r.Post("/contact/field", h.HandleContactField)
	r.Post("/contact", h.HandleSubmit)
	r.Post("/restart", h.HandleRestart)
	r.Get("/api/state", h.HandleState)
	r.Get("/ws", h.HandleWebSocket)
	return r
}

// HandlePage renders the current step.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)
	st, err := h.manager.Current(r.Context(), id)
	if err != nil {
		h.logger.Error("wizard: failed to load session", "error", err, "session_id", id)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, newPageView(st, h.manager.Machine().Today()))
}

// HandleSelectService handles POST /service.
func (h *Handler) HandleSelectService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.Atoi(r.FormValue("service_id"))
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, wizard.SelectService{ServiceID: serviceID})
}

// HandleSelectDate handles POST /date.
func (h *Handler) HandleSelectDate(w http.ResponseWriter, r *http.Request) {
	date, err := wizard.ParseDateKey(r.FormValue("date"), h.manager.Machine().Location())
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, wizard.SelectDate{Date: date})
}

// HandleSelectTime handles POST /time.
func (h *Handler) HandleSelectTime(w http.ResponseWriter, r *http.Request) {
	slot := strings.TrimSpace(r.FormValue("time"))
	if slot == "" {
		http.Error(w, "time is required", http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, wizard.SelectTime{Time: slot})
}

// HandleContactField binds one keystroke-level field update and answers
// with the JSON snapshot instead of a redirect.
func (h *Handler) HandleContactField(w http.ResponseWriter, r *http.Request) {
	field, err := wizard.ParseContactField(r.FormValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := h.session(w, r)
	st, err := h.manager.Dispatch(r.Context(), id, wizard.UpdateContact{Field: field, Value: r.FormValue("value")})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, newStateView(st, h.manager.Machine().Today()))
}

// HandleSubmit binds all three contact fields and confirms the booking.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := h.session(w, r)
	for _, f := range wizard.ContactFields {
		if _, err := h.manager.Dispatch(r.Context(), id, wizard.UpdateContact{Field: f, Value: r.PostForm.Get(string(f))}); err != nil {
			h.fail(w, r, id, err)
			return
		}
	}
	h.dispatchAs(w, r, id, wizard.Submit{})
}

// HandleRestart handles POST /restart.
func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, wizard.Restart{})
}

// HandleState returns the JSON snapshot of the session's wizard.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)
	st, err := h.manager.Current(r.Context(), id)
	if err != nil {
		h.logger.Error("wizard: failed to load session", "error", err, "session_id", id)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, newStateView(st, h.manager.Machine().Today()))
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, a wizard.Action) {
	h.dispatchAs(w, r, h.session(w, r), a)
}

func (h *Handler) dispatchAs(w http.ResponseWriter, r *http.Request, id string, a wizard.Action) {
	if _, err := h.manager.Dispatch(r.Context(), id, a); err != nil {
		h.fail(w, r, id, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail re-renders the step for user-correctable errors and answers the rest
// with a plain status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	status := statusFor(err)
	if status != http.StatusUnprocessableEntity {
		h.writeError(w, err)
		return
	}

	st, loadErr := h.manager.Current(r.Context(), id)
	if loadErr != nil {
		h.logger.Error("wizard: failed to load session", "error", loadErr, "session_id", id)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}
	view := newPageView(st, h.manager.Machine().Today())
	view.Error = userMessage(err)
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		view.ErrorField = string(verr.Field)
	}
	h.render(w, status, view)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("wizard: action failed", "error", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, userMessage(err), status)
}

func statusFor(err error) int {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, wizard.ErrSlotUnavailable),
		errors.Is(err, wizard.ErrDateOutsideWindow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrUnknownService),
		errors.Is(err, wizard.ErrUnknownSlot),
		errors.Is(err, wizard.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrStepNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr) && errors.Is(err, wizard.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.As(err, &verr):
		return "Please fill in your " + fieldLabel(verr.Field) + "."
	case errors.Is(err, wizard.ErrSlotUnavailable):
		return "That time slot is not available."
	case errors.Is(err, wizard.ErrDateOutsideWindow):
		return "Please pick a date within the next 7 days."
	case errors.Is(err, wizard.ErrStepNotActive):
		return "That choice is not available right now."
	default:
		return strings.TrimPrefix(err.Error(), "wizard: ")
	}
}

func fieldLabel(f wizard.ContactField) string {
	switch f {
	case wizard.FieldName:
		return "full name"
	case wizard.FieldPhone:
		return "phone number"
	default:
		return string(f)
	}
}

// session returns the visitor's session ID, issuing a cookie when absent or malformed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := wizard.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) render(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("wizard: render failed", "error", err, "step", view.Step)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}
