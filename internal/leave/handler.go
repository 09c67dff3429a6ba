package leave

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/transport"
	"github.com/frahmantamala/leave-request/web"
	"github.com/go-chi/chi"
)

const maxFormBytes = 64 << 10

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitLeaveDTO) (*SubmitResult, error)
	Get(ctx context.Context, id int64) (*LeaveApplication, error)
	List(ctx context.Context, filter ListFilter) (*ListResponse, error)
	Approve(ctx context.Context, id int64) (*LeaveApplication, error)
	Reject(ctx context.Context, id int64) (*LeaveApplication, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

type formPage struct {
	Values SubmitLeaveDTO
	Errors map[string]string
}

type errorPage struct {
	Message string
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.Log(r).Debug("rendering leave form")
	h.RenderHTML(w, http.StatusOK, web.FormPage, formPage{Errors: map[string]string{}})
}

// Submit handles POST /apply. Validation problems re-render the form with
// 422, storage problems render the error page with 500. Email and calendar
// failures never change the outcome.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.Log(r).Warn("Submit: unreadable form", "error", err)
		h.RenderHTML(w, http.StatusBadRequest, web.ErrorPage, errorPage{
			Message: "The form could not be read. Please try again.",
		})
		return
	}

	dto := SubmitLeaveDTOFromForm(r.PostForm)

	result, err := h.Service.Submit(r.Context(), dto)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation {
			h.RenderHTML(w, http.StatusUnprocessableEntity, web.FormPage, formPage{
				Values: dto.Normalize(),
				Errors: appErr.FieldErrors(),
			})
			return
		}

		h.Log(r).Error("Submit: leave application not recorded", "error", err)
		h.RenderHTML(w, http.StatusInternalServerError, web.ErrorPage, errorPage{
			Message: "Your leave application could not be saved. Please try again later.",
		})
		return
	}

	h.Log(r).Info("Submit: leave application recorded",
		"application_id", result.Application.ID,
		"notification_queued", result.NotificationQueued,
		"calendar_status", result.Calendar)

	h.RenderHTML(w, http.StatusOK, web.ResultPage, result)
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Status: r.URL.Query().Get("status")}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = o
		}
	}

	resp, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}

	app, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action func(context.Context, int64) (*LeaveApplication, error)) {
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}

	app, err := action(r.Context(), id)
	if err != nil {
		h.Log(r).Warn("decision failed", "application_id", id, "user_id", internal.UserIDFromContext(r.Context()), "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Log(r).Info("leave application decided",
		"application_id", app.ID,
		"status", app.Status,
		"user_id", internal.UserIDFromContext(r.Context()))

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return 0, false
	}
	return id, true
}
