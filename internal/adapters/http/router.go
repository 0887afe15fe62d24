package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

// IngestMetrics records upload and extraction outcomes. A nil recorder
// disables instrumentation.
type IngestMetrics interface {
	RecordUpload(status string)
	RecordExtraction(outcome string)
	RecordExtractionFields(sources map[string]int)
}

type Router struct {
	ingestor      ports.RFPIngestor
	manager       ports.RFPManager
	rfps          ports.RFPRepository
	vendors       ports.VendorRepository
	scores        ports.ScoreRepository
	notifications ports.NotificationStore
	metrics       IngestMetrics
}

func NewRouter(
	ingestor ports.RFPIngestor,
	manager ports.RFPManager,
	rfps ports.RFPRepository,
	vendors ports.VendorRepository,
	scores ports.ScoreRepository,
	notifications ports.NotificationStore,
	metrics IngestMetrics,
) *Router {
	return &Router{
		ingestor:      ingestor,
		manager:       manager,
		rfps:          rfps,
		vendors:       vendors,
		scores:        scores,
		notifications: notifications,
		metrics:       metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/rfps", rt.rfpCollection)
	mux.HandleFunc("/v1/rfps/upload", rt.uploadRFP)
	mux.HandleFunc("/v1/rfps/extract", rt.previewExtraction)
	mux.HandleFunc("/v1/rfps/", rt.rfpSubresource)
	mux.HandleFunc("/v1/vendors", rt.vendorCollection)
	mux.HandleFunc("/v1/vendors/", rt.vendorSubresource)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) rfpCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.listRFPs(w, r)
	case http.MethodPost:
		rt.createRFP(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) listRFPs(w http.ResponseWriter, r *http.Request) {
	filter := domain.RFPFilter{
		Status: domain.RFPStatus(r.URL.Query().Get("status")),
		Agency: r.URL.Query().Get("agency"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status filter"})
		return
	}

	rfps, err := rt.rfps.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rfps": rfps})
}

func (rt *Router) createRFP(w http.ResponseWriter, r *http.Request) {
	var rfp domain.RFP
	if err := json.NewDecoder(r.Body).Decode(&rfp); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.manager.Create(r.Context(), rfp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) uploadRFP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload("rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	rfp, extracted, err := rt.ingestor.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		rt.recordUpload("failed")
		rt.recordExtraction(nil)
		writeError(w, err)
		return
	}
	rt.recordUpload("accepted")
	rt.recordExtraction(extracted)

	writeJSON(w, http.StatusCreated, map[string]any{
		"rfp":        rfp,
		"extraction": extracted,
	})
}

func (rt *Router) previewExtraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	extracted, err := rt.ingestor.Preview(r.Context(), fileHeader.Filename, file)
	if err != nil {
		rt.recordExtraction(nil)
		writeError(w, err)
		return
	}
	rt.recordExtraction(extracted)
	writeJSON(w, http.StatusOK, extracted)
}

func (rt *Router) rfpSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/rfps/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rfp id is required"})
		return
	}

	if len(parts) == 1 {
		rt.getRFP(w, r, id)
		return
	}

	switch parts[1] {
	case "status":
		rt.updateRFPStatus(w, r, id)
	case "scores":
		rt.listRFPScores(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getRFP(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rfp, err := rt.rfps.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

func (rt *Router) updateRFPStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rfp, err := rt.manager.UpdateStatus(r.Context(), id, domain.RFPStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

func (rt *Router) listRFPScores(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	scores, err := rt.scores.ListByRFP(r.Context(), id, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

func (rt *Router) vendorCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vendors, err := rt.vendors.ListVendors(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"vendors": vendors})
	case http.MethodPost:
		rt.createVendor(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) createVendor(w http.ResponseWriter, r *http.Request) {
	var vendor domain.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(vendor.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vendor name is required"})
		return
	}

	vendor.ID = uuid.NewString()
	vendor.CreatedAt = time.Now().UTC()
	if vendor.Capabilities == nil {
		vendor.Capabilities = []string{}
	}
	if vendor.Certifications == nil {
		vendor.Certifications = []string{}
	}
	if vendor.Specialties == nil {
		vendor.Specialties = []string{}
	}

	if err := rt.vendors.Create(r.Context(), &vendor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vendor)
}

func (rt *Router) vendorSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/vendors/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vendor id is required"})
		return
	}

	if len(parts) == 1 {
		vendor, err := rt.vendors.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vendor)
		return
	}

	switch parts[1] {
	case "scores":
		scores, err := rt.scores.ListByVendor(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
	case "notifications":
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		notifications, err := rt.notifications.ListByVendor(r.Context(), id, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) recordUpload(status string) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload(status)
	}
}

// recordExtraction classifies an extraction by its field provenance: any
// extracted field counts the document as extracted, otherwise defaulted.
func (rt *Router) recordExtraction(doc *domain.ExtractedDocument) {
	if rt.metrics == nil {
		return
	}
	if doc == nil {
		rt.metrics.RecordExtraction("failed")
		return
	}
	counts := make(map[string]int)
	for _, source := range doc.FieldSources {
		counts[string(source)]++
	}
	outcome := "defaulted"
	if counts[string(domain.FieldExtracted)] > 0 {
		outcome = "extracted"
	}
	rt.metrics.RecordExtraction(outcome)
	rt.metrics.RecordExtractionFields(counts)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
