package httpapi

import (
	"net/http"
	"strings"

	"github.com/186mph/calsoft-assets/internal/domain"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party
// router dependency needed for this route surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterCatalogRoutes registers the asset catalog API.
func (r *Router) RegisterCatalogRoutes(h *CatalogHandler) {
	r.Handle("/assets/api/v1/catalog/search", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SearchCatalog(w, req)
	})

	// jobs/{jobID}/assets and jobs/{jobID}/assets/export
	r.Handle("/assets/api/v1/jobs/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/assets/api/v1/jobs/")
		switch {
		case strings.HasSuffix(rest, "/assets/export"):
			jobID := strings.TrimSuffix(rest, "/assets/export")
			if jobID == "" || strings.Contains(jobID, "/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			h.ExportJobAssets(w, req, jobID)
		case strings.HasSuffix(rest, "/assets"):
			jobID := strings.TrimSuffix(rest, "/assets")
			if jobID == "" || strings.Contains(jobID, "/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			h.GetJobAssets(w, req, jobID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r.Handle("/assets/api/v1/identities/issue", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.IssueIdentity(w, req)
	})

	r.Handle("/assets/api/v1/lineage/link", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Link(w, req)
	})

	r.Handle("/assets/api/v1/lineage/clone", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Clone(w, req)
	})

	r.Handle("/assets/api/v1/lineage/promote", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Promote(w, req)
	})

	r.Handle("/assets/api/v1/assets/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		assetID := strings.TrimPrefix(req.URL.Path, "/assets/api/v1/assets/")
		if assetID == "" || strings.Contains(assetID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeleteAsset(w, req, assetID)
	})

	// reports/{kind}/{reportID}
	r.Handle("/assets/api/v1/reports/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/assets/api/v1/reports/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeleteReport(w, req, domain.ReportKind(parts[0]), parts[1])
	})

	r.Handle("/assets/api/v1/documents/upload", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UploadDocument(w, req)
	})
}
