package http

import (
	"context"
	"net/http"

	"donatrack/internal/core"
)

type listResponse[T any] struct {
	Kind  core.Kind `json:"kind"`
	Total int       `json:"total"`
	Items []T       `json:"items"`
}

func newListResponse[T any](kind core.Kind, items []T, match func(T) bool) listResponse[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return listResponse[T]{Kind: kind, Total: len(out), Items: out}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once the store answers a read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
	defer cancel()

	if _, err := s.records.ListCampaigns(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorBody{Error: "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.records.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := ParseFilter(r)
	ctx := r.Context()

	var payload any
	switch kind {
	case core.KindCampaigns:
		var items []core.Campaign
		if items, err = s.records.ListCampaigns(ctx); err == nil {
			payload = newListResponse(kind, items, f.MatchCampaign)
		}
	case core.KindDonations:
		var items []core.Donation
		if items, err = s.records.ListDonations(ctx); err == nil {
			payload = newListResponse(kind, items, f.MatchDonation)
		}
	case core.KindBeneficiaries:
		var items []core.Beneficiary
		if items, err = s.records.ListBeneficiaries(ctx); err == nil {
			payload = newListResponse(kind, items, f.MatchBeneficiary)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := sanitizeInput(chiParam(r, "id"))
	ctx := r.Context()

	var record any
	switch kind {
	case core.KindCampaigns:
		record, err = s.records.GetCampaign(ctx, id)
	case core.KindDonations:
		record, err = s.records.GetDonation(ctx, id)
	case core.KindBeneficiaries:
		record, err = s.records.GetBeneficiary(ctx, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleCreate adds a record from a JSON body. Requests carrying an
// Idempotency-Key are replayed instead of re-executed.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.withIdempotency(w, r, kind, func() *JSONResponseBuilder {
		record, err := s.create(w, r, kind)
		if err != nil {
			return requestError(r, err)
		}
		return NewJSONResponse().Status(http.StatusCreated).Body(record)
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, kind core.Kind) (any, error) {
	ctx := r.Context()
	switch kind {
	case core.KindCampaigns:
		var c core.Campaign
		if err := DecodeJSON(w, r, &c, false); err != nil {
			return nil, err
		}
		return s.records.AddCampaign(ctx, c)
	case core.KindDonations:
		var d core.Donation
		if err := DecodeJSON(w, r, &d, false); err != nil {
			return nil, err
		}
		return s.records.AddDonation(ctx, d)
	default:
		var b core.Beneficiary
		if err := DecodeJSON(w, r, &b, false); err != nil {
			return nil, err
		}
		return s.records.AddBeneficiary(ctx, b)
	}
}

// handleUpdate merges a JSON patch over the stored record. Absent and null
// fields keep their stored values.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := sanitizeInput(chiParam(r, "id"))
	ctx := r.Context()

	var record any
	switch kind {
	case core.KindCampaigns:
		var p core.CampaignPatch
		if err = DecodeJSON(w, r, &p, true); err == nil {
			record, err = s.records.UpdateCampaign(ctx, id, p)
		}
	case core.KindDonations:
		var p core.DonationPatch
		if err = DecodeJSON(w, r, &p, true); err == nil {
			record, err = s.records.UpdateDonation(ctx, id, p)
		}
	case core.KindBeneficiaries:
		var p core.BeneficiaryPatch
		if err = DecodeJSON(w, r, &p, true); err == nil {
			record, err = s.records.UpdateBeneficiary(ctx, id, p)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.records.Remove(r.Context(), kind, sanitizeInput(chiParam(r, "id"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
