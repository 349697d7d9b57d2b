package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"
	"github.com/186mph/calsoft-assets/internal/service"

	"go.uber.org/zap"
)

// CatalogHandler exposes catalog search, job asset listing, identity
// issuance, lineage operations and document upload.
type CatalogHandler struct {
	search    service.CatalogSearch
	issuer    service.IdentityIssuer
	projector service.StatusProjector
	lineage   service.LineageEngine
	assets    repository.AssetsRepository
	reports   repository.ReportsRepository
	filestore *service.FilestoreClient // nil disables uploads
	logger    *zap.Logger
}

func NewCatalogHandler(
	search service.CatalogSearch,
	issuer service.IdentityIssuer,
	projector service.StatusProjector,
	lineage service.LineageEngine,
	assets repository.AssetsRepository,
	reports repository.ReportsRepository,
	filestore *service.FilestoreClient,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		search:    search,
		issuer:    issuer,
		projector: projector,
		lineage:   lineage,
		assets:    assets,
		reports:   reports,
		filestore: filestore,
		logger:    logger,
	}
}

// partitionFromReq reads and validates the division query parameter.
// Writes the error response itself when the value is missing or bad.
func partitionFromReq(w http.ResponseWriter, r *http.Request) (domain.Partition, bool) {
	p := domain.Partition(r.URL.Query().Get("division"))
	if !p.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("unknown division %q", string(p))))
		return "", false
	}
	return p, true
}

// SearchCatalog handles
// GET /assets/api/v1/catalog/search?division=neta_ops&q=...&currentJobId=...
func (h *CatalogHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	currentJobID := r.URL.Query().Get("currentJobId")

	candidates, err := h.search.Search(r.Context(), partition, currentJobID, q)
	if err != nil {
		h.logger.Error("catalog search failed",
			zap.String("division", string(partition)),
			zap.String("q", q),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	writeJSON(w, http.StatusOK, Ok(candidates))
}

// jobAssetRow is one row of the job asset listing, the asset plus its
// projected status.
type jobAssetRow struct {
	AssetID    string              `json:"asset_id"`
	Identity   string              `json:"identity"`
	Name       string              `json:"name"`
	ReportKind *domain.ReportKind  `json:"report_kind,omitempty"`
	ReportID   *string             `json:"report_id,omitempty"`
	Status     domain.ReportStatus `json:"status"`
}

// GetJobAssets handles
// GET /assets/api/v1/jobs/{jobID}/assets?division=...
func (h *CatalogHandler) GetJobAssets(w http.ResponseWriter, r *http.Request, jobID string) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}

	rows, err := h.collectJobAssets(r, partition, jobID)
	if err != nil {
		h.logger.Error("list job assets failed",
			zap.String("division", string(partition)),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rows))
}

func (h *CatalogHandler) collectJobAssets(r *http.Request, partition domain.Partition, jobID string) ([]jobAssetRow, error) {
	assets, err := h.assets.ListJobAssets(r.Context(), partition, jobID)
	if err != nil {
		return nil, err
	}
	rows := make([]jobAssetRow, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, jobAssetRow{
			AssetID:    a.AssetID,
			Identity:   a.AssetIdentity,
			Name:       a.Name,
			ReportKind: a.ReportKind,
			ReportID:   a.ReportID,
			Status:     h.projector.ProjectStatus(r.Context(), partition, a),
		})
	}
	return rows, nil
}

// ExportJobAssets handles
// GET /assets/api/v1/jobs/{jobID}/assets/export?division=...
// The response is an XLSX workbook.
func (h *CatalogHandler) ExportJobAssets(w http.ResponseWriter, r *http.Request, jobID string) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}

	rows, err := h.collectJobAssets(r, partition, jobID)
	if err != nil {
		h.logger.Error("export job assets failed",
			zap.String("division", string(partition)),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	data, err := GenerateJobAssetsExport(rows)
	if err != nil {
		h.logger.Error("generate export workbook failed",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="job-%s-assets.xlsx"`, jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// IssueIdentity handles POST /assets/api/v1/identities/issue
func (h *CatalogHandler) IssueIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyKey string `json:"company_key"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	identity, err := h.issuer.IssueIdentity(r.Context(), req.CompanyKey)
	if err != nil {
		h.logger.Error("identity issuance failed",
			zap.String("company_key", req.CompanyKey),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"identity": identity}))
}

// Link handles POST /assets/api/v1/lineage/link?division=...
func (h *CatalogHandler) Link(w http.ResponseWriter, r *http.Request) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	var req struct {
		TargetJobID string `json:"target_job_id"`
		AssetID     string `json:"asset_id"`
		ReportKind  string `json:"report_kind"`
		ReportID    string `json:"report_id"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.TargetJobID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("target_job_id is required"))
		return
	}

	result, err := h.lineage.Link(r.Context(), partition, service.LinkRequest{
		TargetJobID: req.TargetJobID,
		AssetID:     req.AssetID,
		ReportKind:  domain.ReportKind(req.ReportKind),
		ReportID:    req.ReportID,
	})
	if err != nil {
		h.logger.Error("link failed",
			zap.String("division", string(partition)),
			zap.String("target_job_id", req.TargetJobID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// Clone handles POST /assets/api/v1/lineage/clone?division=...
func (h *CatalogHandler) Clone(w http.ResponseWriter, r *http.Request) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	var req struct {
		TargetJobID    string `json:"target_job_id"`
		SourceKind     string `json:"source_kind"`
		SourceReportID string `json:"source_report_id"`
		KeepStatus     bool   `json:"keep_status"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	kind := domain.ReportKind(req.SourceKind)
	if req.TargetJobID == "" || req.SourceReportID == "" || !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail("target_job_id, source_kind and source_report_id are required"))
		return
	}

	result, err := h.lineage.CloneForRetest(r.Context(), partition, service.CloneRequest{
		TargetJobID:    req.TargetJobID,
		SourceKind:     kind,
		SourceReportID: req.SourceReportID,
		KeepStatus:     req.KeepStatus,
	})
	if err != nil {
		h.logger.Error("clone for retest failed",
			zap.String("division", string(partition)),
			zap.String("target_job_id", req.TargetJobID),
			zap.String("source_kind", req.SourceKind),
			zap.String("source_report_id", req.SourceReportID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// Promote handles POST /assets/api/v1/lineage/promote?division=...
func (h *CatalogHandler) Promote(w http.ResponseWriter, r *http.Request) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	var req struct {
		TargetJobID string `json:"target_job_id"`
		AssetID     string `json:"asset_id"`
		Kind        string `json:"kind"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.TargetJobID == "" || req.AssetID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("target_job_id and asset_id are required"))
		return
	}

	result, err := h.lineage.Promote(r.Context(), partition, service.PromoteRequest{
		TargetJobID: req.TargetJobID,
		AssetID:     req.AssetID,
		Kind:        domain.ReportKind(req.Kind),
	})
	if err != nil {
		h.logger.Error("promote failed",
			zap.String("division", string(partition)),
			zap.String("target_job_id", req.TargetJobID),
			zap.String("asset_id", req.AssetID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// DeleteAsset handles
// DELETE /assets/api/v1/assets/{assetID}?division=...
func (h *CatalogHandler) DeleteAsset(w http.ResponseWriter, r *http.Request, assetID string) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	if err := h.assets.SoftDeleteAsset(r.Context(), partition, assetID); err != nil {
		h.logger.Error("soft delete asset failed",
			zap.String("division", string(partition)),
			zap.String("asset_id", assetID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}

// DeleteReport handles
// DELETE /assets/api/v1/reports/{kind}/{reportID}?division=...
func (h *CatalogHandler) DeleteReport(w http.ResponseWriter, r *http.Request, kind domain.ReportKind, reportID string) {
	partition, ok := partitionFromReq(w, r)
	if !ok {
		return
	}
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("unknown report kind %q", string(kind))))
		return
	}
	if err := h.reports.SoftDeleteReport(r.Context(), partition, kind, reportID); err != nil {
		h.logger.Error("soft delete report failed",
			zap.String("division", string(partition)),
			zap.String("kind", string(kind)),
			zap.String("report_id", reportID),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}

// UploadDocument handles POST /assets/api/v1/documents/upload
// (multipart form, field name "file").
func (h *CatalogHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.filestore == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("filestore is not configured"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read uploaded file"))
		return
	}

	filename := header.Filename
	if strings.TrimSpace(filename) == "" {
		filename = "document"
	}

	url, err := h.filestore.Upload(r.Context(), filename, data)
	if err != nil {
		h.logger.Error("document upload failed",
			zap.String("filename", filename),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"url": url, "filename": filename}))
}
