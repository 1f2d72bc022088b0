package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/usecase"
)

// API holds the handlers for every use case endpoint. Handlers flatten
// the JSON body plus path and query parameters into the raw input map;
// all validation happens in the use case layer.
type API struct {
	svc *usecase.Service
}

// NewAPI builds the handler set over the service.
func NewAPI(svc *usecase.Service) *API {
	return &API{svc: svc}
}

// decodeBody reads an optional JSON object body into a map. An empty
// body yields an empty map.
func decodeBody(r *http.Request) (map[string]any, error) {
	raw := make(map[string]any)
	if r.Body == nil {
		return raw, nil
	}
	err := json.NewDecoder(r.Body).Decode(&raw)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return raw, nil
		}
		return nil, models.NewValidationError([]models.FieldError{
			{Path: "body", Message: "must be a JSON object"},
		})
	}
	return raw, nil
}

// invoke runs one use case: decode, merge path/query fields, execute,
// respond. extra values override body fields so path parameters win.
func invoke[Out any](w http.ResponseWriter, r *http.Request, status int, extra map[string]any, call func(context.Context, map[string]any, *models.OperationContext) (Out, error)) {
	octx := operationContext(r)

	raw, err := decodeBody(r)
	if err != nil {
		writeError(w, octx.RequestID, err)
		return
	}
	for name, value := range extra {
		raw[name] = value
	}

	out, err := call(r.Context(), raw, octx)
	if err != nil {
		writeError(w, octx.RequestID, err)
		return
	}
	writeJSON(w, status, out)
}

func orgIDParam(r *http.Request) map[string]any {
	return map[string]any{"organizationId": chi.URLParam(r, "orgID")}
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusCreated, nil, a.svc.CreateUser)
}

func (a *API) getSelf(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, nil, a.svc.GetSelf)
}

func (a *API) updateSelf(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, nil, a.svc.UpdateSelf)
}

func (a *API) deleteSelf(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, nil, a.svc.DeleteSelf)
}

func (a *API) listSelfOrganizations(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, nil, a.svc.ListSelfOrganizations)
}

func (a *API) createOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusCreated, nil, a.svc.CreateOrganization)
}

func (a *API) getOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.GetOrganization)
}

func (a *API) renameOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.RenameOrganization)
}

func (a *API) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.DeleteOrganization)
}

func (a *API) archiveOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.ArchiveOrganization)
}

func (a *API) restoreOrganization(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.RestoreOrganization)
}

func (a *API) transferOwnership(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.TransferOwnership)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	extra := orgIDParam(r)

	octx := operationContext(r)
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, octx.RequestID, models.NewValidationError([]models.FieldError{
				{Path: "page", Message: "must be a number"},
			}))
			return
		}
		extra["page"] = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, octx.RequestID, models.NewValidationError([]models.FieldError{
				{Path: "pageSize", Message: "must be a number"},
			}))
			return
		}
		extra["pageSize"] = n
	}
	if v := q.Get("include_inactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, octx.RequestID, models.NewValidationError([]models.FieldError{
				{Path: "includeInactive", Message: "must be a boolean"},
			}))
			return
		}
		extra["includeInactive"] = b
	}

	invoke(w, r, http.StatusOK, extra, a.svc.ListMembers)
}

func (a *API) addMember(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusCreated, orgIDParam(r), a.svc.AddMember)
}

func (a *API) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.AcceptInvitation)
}

func (a *API) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	extra := orgIDParam(r)
	extra["userId"] = chi.URLParam(r, "userID")
	invoke(w, r, http.StatusOK, extra, a.svc.UpdateMemberRole)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	extra := orgIDParam(r)
	extra["userId"] = chi.URLParam(r, "userID")
	invoke(w, r, http.StatusOK, extra, a.svc.RemoveMember)
}

func (a *API) leave(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, orgIDParam(r), a.svc.Leave)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
