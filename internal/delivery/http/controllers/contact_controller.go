package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"contactmanager/internal/delivery/http/helpers"
	"contactmanager/internal/domain"
)

// ContactRequest is the request body for POST and PUT on /api/contacts.
// An id in the body is accepted and ignored; the path or the server decides it.
type ContactRequest struct {
	ID          domain.RecordID `json:"id,omitempty" swaggerignore:"true"`
	FullName    string          `json:"full_name" example:"Ann Lee"`
	PhoneNumber string          `json:"phone_number" example:"555-123-4567"`
	Email       string          `json:"email" example:"ann@example.com"`
	Tags        string          `json:"tags" example:"work,vip"`
}

// Validate implements Validator.
func (c ContactRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.FullName) == "" {
		errs = append(errs, "full_name is required")
	}
	return errs
}

func (c ContactRequest) fields() domain.ContactFields {
	return domain.ContactFields{
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Tags:        c.Tags,
	}
}

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{
		Logger:  logger,
		Service: svc,
	}
}

// ListContacts godoc
// @Summary List contacts
// @Description Returns every contact ordered by id. The body is a bare JSON array.
// @Tags contacts
// @Produce json
// @Success 200 {array} domain.ContactRecord
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/contacts/ [get]
func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	records, err := c.Service.ListContacts(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, records)
}

// GetContact godoc
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} domain.ContactRecord
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/contacts/{id} [get]
func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	rec, err := c.Service.GetContact(r.Context(), r.PathValue("id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, rec)
}

// CreateContact godoc
// @Summary Create a contact
// @Description Creates a contact. The id is assigned by the server; tags is a comma separated list.
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body ContactRequest true "Contact data"
// @Success 201 {object} domain.ContactRecord
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/contacts/ [post]
func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.Service.CreateContact(r.Context(), req.fields())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, rec)
}

// UpdateContact godoc
// @Summary Replace a contact
// @Description Replaces every field of the contact. An id in the body is ignored.
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param contact body ContactRequest true "Contact data"
// @Success 200 {object} domain.ContactRecord
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/contacts/{id} [put]
func (c *ContactController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.Service.UpdateContact(r.Context(), r.PathValue("id"), req.fields())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, rec)
}

// DeleteContact godoc
// @Summary Delete a contact
// @Tags contacts
// @Param id path string true "Contact ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/contacts/{id} [delete]
func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteContact(r.Context(), r.PathValue("id")); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ContactController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "contact not found")
	case errors.Is(err, domain.ErrValidation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
