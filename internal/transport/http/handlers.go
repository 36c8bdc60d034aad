package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

// Handler bundles the use-case services behind the REST surface.
type Handler struct {
	surveys     *app.SurveyService
	eligibility *app.EligibilityResolver
	responses   *app.ResponseService
	jobs        *app.JobService
	hub         *app.ResponseHub
	auth        *Auth
}

func NewHandler(
	surveys *app.SurveyService,
	eligibility *app.EligibilityResolver,
	responses *app.ResponseService,
	jobs *app.JobService,
	hub *app.ResponseHub,
	auth *Auth,
) *Handler {
	return &Handler{
		surveys:     surveys,
		eligibility: eligibility,
		responses:   responses,
		jobs:        jobs,
		hub:         hub,
		auth:        auth,
	}
}

// Router wires every endpoint onto a ServeMux.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// participant-facing survey surface
	mux.HandleFunc("GET /api/surveys", h.auth.Optional(h.listEligibleSurveys))
	mux.HandleFunc("GET /api/surveys/{id}", h.auth.Optional(h.getSurveyDetail))
	mux.HandleFunc("POST /api/surveys/{id}/responses", h.auth.Required(h.submitResponse))

	// job board
	mux.HandleFunc("GET /api/jobs", h.listJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.getJob)
	mux.HandleFunc("GET /api/companies", h.listCompanies)

	// admin surface
	mux.HandleFunc("GET /api/admin/surveys", h.auth.Admin(h.adminListSurveys))
	mux.HandleFunc("POST /api/admin/surveys", h.auth.Admin(h.createSurvey))
	mux.HandleFunc("GET /api/admin/surveys/{id}", h.auth.Admin(h.adminGetSurvey))
	mux.HandleFunc("PUT /api/admin/surveys/{id}", h.auth.Admin(h.updateSurvey))
	mux.HandleFunc("DELETE /api/admin/surveys/{id}", h.auth.Admin(h.deleteSurvey))
	mux.HandleFunc("GET /api/admin/surveys/{id}/responses", h.auth.Admin(h.listResponses))
	mux.HandleFunc("GET /api/admin/surveys/{id}/responses/export", h.auth.Admin(h.exportResponses))
	mux.HandleFunc("GET /api/admin/surveys/{id}/responses/feed", h.auth.Admin(h.serveResponseFeed))
	mux.HandleFunc("DELETE /api/admin/responses/{id}", h.auth.Admin(h.deleteResponse))
	mux.HandleFunc("POST /api/admin/companies", h.auth.Admin(h.createCompany))
	mux.HandleFunc("DELETE /api/admin/companies/{id}", h.auth.Admin(h.deleteCompany))
	mux.HandleFunc("POST /api/admin/jobs", h.auth.Admin(h.createJob))
	mux.HandleFunc("PUT /api/admin/jobs/{id}", h.auth.Admin(h.updateJob))
	mux.HandleFunc("DELETE /api/admin/jobs/{id}", h.auth.Admin(h.deleteJob))
	return mux
}

type errorBody struct {
	Error    string `json:"error"`
	Question string `json:"question,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto the HTTP taxonomy. Anything
// unexpected is logged and surfaced as a plain 500.
func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Question: validation.Question})
	case errors.Is(err, domain.ErrInvalidReference):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSurveyInactive):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrDuplicateResponse):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// --- participant surface ---

func (h *Handler) listEligibleSurveys(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	surveys, err := h.eligibility.EligibleSurveys(r.Context(), principal.ID, principal.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (h *Handler) getSurveyDetail(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	survey, err := h.eligibility.VisibleSurvey(r.Context(), r.PathValue("id"), principal.ID, principal.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

type submitRequest struct {
	Answers []app.RawAnswer `json:"answers"`
}

func (h *Handler) submitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed answer payload"})
		return
	}
	principal := principalOf(r)
	response, err := h.responses.Submit(r.Context(), r.PathValue("id"), principal.ID, principal.Role, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

// --- admin survey surface ---

func (h *Handler) adminListSurveys(w http.ResponseWriter, r *http.Request) {
	filter := app.SurveyFilter{Title: r.URL.Query().Get("title")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = domain.NormalizeStatus(raw)
	}
	surveys, err := h.surveys.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (h *Handler) createSurvey(w http.ResponseWriter, r *http.Request) {
	var spec app.SurveySpec
	if err := decodeBody(r, &spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed survey payload"})
		return
	}
	survey, err := h.surveys.Create(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

func (h *Handler) adminGetSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveys.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *Handler) updateSurvey(w http.ResponseWriter, r *http.Request) {
	var spec app.SurveySpec
	if err := decodeBody(r, &spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed survey payload"})
		return
	}
	survey, err := h.surveys.Update(r.Context(), r.PathValue("id"), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *Handler) deleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := h.surveys.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listResponses(w http.ResponseWriter, r *http.Request) {
	filter := app.ResponseFilter{ParticipantID: r.URL.Query().Get("participant")}
	responses, err := h.responses.ForSurvey(r.Context(), r.PathValue("id"), filter, r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) exportResponses(w http.ResponseWriter, r *http.Request) {
	data, err := h.responses.ExportCSV(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	_, _ = w.Write(data)
}

func (h *Handler) deleteResponse(w http.ResponseWriter, r *http.Request) {
	if err := h.responses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- job board ---

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	filter := app.JobFilter{
		Title:    r.URL.Query().Get("q"),
		Location: r.URL.Query().Get("location"),
	}
	jobs, err := h.jobs.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.jobs.ListCompanies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var company domain.Company
	if err := decodeBody(r, &company); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed company payload"})
		return
	}
	created, err := h.jobs.CreateCompany(r.Context(), company)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.DeleteCompany(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var job domain.Job
	if err := decodeBody(r, &job); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed job payload"})
		return
	}
	created, err := h.jobs.CreateJob(r.Context(), job)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	var job domain.Job
	if err := decodeBody(r, &job); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed job payload"})
		return
	}
	updated, err := h.jobs.UpdateJob(r.Context(), r.PathValue("id"), job)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
