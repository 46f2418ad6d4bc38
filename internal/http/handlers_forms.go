package http

import (
	"context"
	"errors"
	"net/http"

	"donatrack/internal/core"
	"donatrack/internal/form"
	"donatrack/internal/metrics"
)

// Form submission outcomes, used as the metric label.
const (
	outcomeSubmitted = "submitted"
	outcomeInvalid   = "invalid"
	outcomeFailed    = "failed"
)

type schemaResponse struct {
	Kind   core.Kind     `json:"kind"`
	Fields []form.Widget `json:"fields"`
}

type sessionResponse struct {
	ID     string            `json:"id"`
	Kind   core.Kind         `json:"kind"`
	State  string            `json:"state"`
	Values form.Values       `json:"values"`
	Errors map[string]string `json:"errors"`
}

type submitResponse struct {
	Kind   core.Kind `json:"kind"`
	Record any       `json:"record"`
}

type openSessionRequest struct {
	Values map[string]string `json:"values"`
}

type setFieldRequest struct {
	Value string `json:"value"`
}

func newSessionResponse(sess *form.Session) sessionResponse {
	return sessionResponse{
		ID:     sess.ID,
		Kind:   sess.Kind,
		State:  sess.State().String(),
		Values: sess.Values(),
		Errors: sess.Errors(),
	}
}

func (s *Server) handleFormSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	schema, err := form.SchemaFor(kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{Kind: kind, Fields: schema.Render()})
}

// handleOpenSession opens a form, optionally prefilled with a draft.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req openSessionRequest
	if err := DecodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Open(kind, sanitizeValues(req.Values))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.DebugContext(r.Context(), "Form session opened", "session_id", sess.ID, "kind", kind)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/forms/sessions/"+sess.ID).
		Body(newSessionResponse(sess)).
		Write(w)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chiParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chiParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req setFieldRequest
	if err := DecodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := sess.Set(chiParam(r, "key"), sanitizeInput(req.Value)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// handleSubmitSession validates the draft and adds the record. Field
// errors from the form or from the store come back as 422 and keep the
// session open; a successful submit ends it.
func (s *Server) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	sid := chiParam(r, "sid")
	sess, err := s.sessions.Get(sid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var record any
	err = sess.Submit(func(v form.Values) error {
		var addErr error
		record, addErr = s.addFromForm(r.Context(), sess.Kind, v)
		return addErr
	})

	switch {
	case err == nil:
		metrics.RecordFormSubmission(sess.Kind.String(), outcomeSubmitted)
		if derr := s.sessions.Discard(sid); derr != nil && !errors.Is(derr, form.ErrSessionNotFound) {
			s.logger.WarnContext(r.Context(), "Failed to discard submitted session", "session_id", sid, "error", derr)
		}
		writeJSON(w, http.StatusCreated, submitResponse{Kind: sess.Kind, Record: record})
	case errors.Is(err, core.ErrValidation):
		metrics.RecordFormSubmission(sess.Kind.String(), outcomeInvalid)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Error:  core.ErrValidation.Error(),
			Fields: sess.Errors(),
		})
	default:
		metrics.RecordFormSubmission(sess.Kind.String(), outcomeFailed)
		writeError(w, r, err)
	}
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Discard(chiParam(r, "sid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addFromForm decodes the validated string record and adds it.
func (s *Server) addFromForm(ctx context.Context, kind core.Kind, v form.Values) (any, error) {
	switch kind {
	case core.KindCampaigns:
		c, err := form.DecodeCampaign(v)
		if err != nil {
			return nil, err
		}
		return s.records.AddCampaign(ctx, c)
	case core.KindDonations:
		d, err := form.DecodeDonation(v)
		if err != nil {
			return nil, err
		}
		return s.records.AddDonation(ctx, d)
	case core.KindBeneficiaries:
		b, err := form.DecodeBeneficiary(v)
		if err != nil {
			return nil, err
		}
		return s.records.AddBeneficiary(ctx, b)
	default:
		return nil, core.ErrInvalidKind
	}
}
