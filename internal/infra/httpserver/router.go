package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appanalysis "github.com/printmailhq/printmail/internal/application/analysis"
	appdocs "github.com/printmailhq/printmail/internal/application/documents"
	appmod "github.com/printmailhq/printmail/internal/application/moderation"
	apporders "github.com/printmailhq/printmail/internal/application/orders"
	apprel "github.com/printmailhq/printmail/internal/application/relations"
	apptax "github.com/printmailhq/printmail/internal/application/taxonomy"
	domanalysis "github.com/printmailhq/printmail/internal/domain/analysis"
	domdocs "github.com/printmailhq/printmail/internal/domain/documents"
	dommod "github.com/printmailhq/printmail/internal/domain/moderation"
	domorders "github.com/printmailhq/printmail/internal/domain/orders"
	"github.com/printmailhq/printmail/internal/domain/pipelineerrors"
	domrel "github.com/printmailhq/printmail/internal/domain/relations"
	domtax "github.com/printmailhq/printmail/internal/domain/taxonomy"
	"github.com/printmailhq/printmail/internal/middleware"
)

const maxUploadBytes = 32 << 20 // 32 MB multipart limit

type Router struct {
	docsSvc     *appdocs.Service
	analysisSvc *appanalysis.Service
	taxSvc      *apptax.Service
	modSvc      *appmod.Service
	relSvc      *apprel.Service
	ordersSvc   *apporders.Service
	errorsRepo  pipelineerrors.Repository
}

type Deps struct {
	Docs       *appdocs.Service
	Analysis   *appanalysis.Service
	Taxonomy   *apptax.Service
	Moderation *appmod.Service
	Relations  *apprel.Service
	Orders     *apporders.Service
	Errors     pipelineerrors.Repository

	AdminAPIKey string
	Log         *logrus.Logger
	Health      map[string]middleware.HealthChecker
	RateCap     int
	RateRefill  int
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		docsSvc:     d.Docs,
		analysisSvc: d.Analysis,
		taxSvc:      d.Taxonomy,
		modSvc:      d.Moderation,
		relSvc:      d.Relations,
		ordersSvc:   d.Orders,
		errorsRepo:  d.Errors,
	}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if d.Log != nil {
		mux.Use(middleware.LoggingMiddleware(d.Log))
	}
	mux.Use(middleware.MetricsMiddleware)
	if d.RateCap > 0 && d.RateRefill > 0 {
		mux.Use(middleware.RateLimitMiddleware(d.RateCap, d.RateRefill))
	}

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/metrics", middleware.MetricsHandler)

	admin := middleware.AdminOnly(d.AdminAPIKey)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/documents", r.wrap(r.handleUpload))
		rt.Get("/documents", r.wrap(r.handleList))
		rt.Get("/documents/search", r.wrap(r.handleSearch))
		rt.Get("/documents/top", r.wrap(r.handleTop))
		rt.Get("/documents/{id}", r.wrap(r.handleGet))
		rt.Post("/documents/{id}/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/documents/{id}/view", r.wrap(r.handleView))
		rt.Post("/documents/{id}/download", r.wrap(r.handleDownload))
		rt.Post("/documents/{id}/ratings", r.wrap(r.handleRate))
		rt.Post("/documents/{id}/flags", r.wrap(r.handleFlag))
		rt.Get("/documents/{id}/related", r.wrap(r.handleRelated))
		rt.Get("/relationships/theme", r.wrap(r.handleSharingTheme))

		rt.Get("/categories", r.wrap(r.handleCategories))

		rt.Post("/checkout/payment-intent", r.wrap(r.handlePaymentIntent))
		rt.Post("/orders", r.wrap(r.handlePlaceOrder))
		rt.Get("/orders", r.wrap(r.handleOrders))
		rt.Get("/orders/{id}", r.wrap(r.handleGetOrder))
		rt.Post("/orders/{id}/status", r.wrap(r.handleOrderStatus))

		rt.Group(func(ad chi.Router) {
			ad.Use(admin)
			ad.Get("/documents/{id}/flags", r.wrap(r.handleDocumentFlags))
			ad.Post("/documents/{id}/visibility", r.wrap(r.handleSetPublic))
			ad.Post("/documents/{id}/relationships", r.wrap(r.handleLink))
			ad.Get("/documents/{id}/errors", r.wrap(r.handlePipelineErrors))
			ad.Post("/categories", r.wrap(r.handleRegisterCategory))
			ad.Delete("/categories/{id}", r.wrap(r.handleDeactivateCategory))
			ad.Get("/moderation/pending", r.wrap(r.handlePendingFlags))
			ad.Post("/moderation/flags/{id}/review", r.wrap(r.handleReviewFlag))
			ad.Get("/moderation/flagged", r.wrap(r.handleHighlyFlagged))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client errors that should map to 400 instead of 500
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows),
				errors.Is(err, domdocs.ErrNotFound),
				errors.Is(err, dommod.ErrNotFound),
				errors.Is(err, domorders.ErrNotFound),
				errors.Is(err, domtax.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domtax.ErrDuplicateName),
				errors.Is(err, dommod.ErrAlreadyResolved):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domanalysis.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, dommod.ErrInvalidStatus):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				var br badRequest
				if errors.As(err, &br) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

//
// ==== documents ====
//

// POST /v1/documents (multipart: file + metadata fields)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest{fmt.Errorf("parse multipart form: %w", err)}
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest{fmt.Errorf("file field is required")}
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := middleware.ValidateContentType(contentType); err != nil {
		return badRequest{err}
	}

	ownership := req.FormValue("ownership_status")
	if ownership != "" {
		if err := middleware.ValidateOwnershipStatus(ownership); err != nil {
			return badRequest{err}
		}
	}

	year, _ := strconv.Atoi(req.FormValue("publication_year"))

	cmd := appdocs.UploadCommand{
		File:        file,
		FileName:    middleware.SanitizeString(header.Filename),
		FileSize:    header.Size,
		ContentType: contentType,

		IsPublic:        req.FormValue("is_public") == "true",
		Name:            middleware.SanitizeString(req.FormValue("name")),
		Description:     middleware.SanitizeString(req.FormValue("description")),
		DocumentType:    middleware.SanitizeString(req.FormValue("document_type")),
		OwnershipStatus: ownership,

		Tags:            splitTags(req.FormValue("tags")),
		Language:        middleware.SanitizeString(req.FormValue("language")),
		PublicationYear: year,
		TargetAudience:  middleware.SanitizeString(req.FormValue("target_audience")),
		ContentRating:   middleware.SanitizeString(req.FormValue("content_rating")),
		IsOriginalWork:  req.FormValue("is_original_work") == "true",

		UploaderName:  middleware.SanitizeString(req.FormValue("uploader_name")),
		UploaderEmail: middleware.SanitizeString(req.FormValue("uploader_email")),
	}

	doc, err := r.docsSvc.Upload(req.Context(), cmd)
	if err != nil {
		return err
	}
	middleware.IncrementUploads()

	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, doc)
}

// GET /v1/documents?category=&type=&tag=&language=&audience=&content_rating=&year=&ownership=&limit=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := domdocs.ListFilter{
		Category:        q.Get("category"),
		DocumentType:    q.Get("type"),
		Tag:             q.Get("tag"),
		Language:        q.Get("language"),
		TargetAudience:  q.Get("audience"),
		ContentRating:   q.Get("content_rating"),
		PublicationYear: year,
		OwnershipStatus: q.Get("ownership"),
	}

	list, err := r.docsSvc.ListPublic(req.Context(), filter, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/documents/search?q=&limit=
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.docsSvc.Search(req.Context(), req.URL.Query().Get("q"), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/documents/top?by=prints|views|downloads|rating&limit=
func (r *Router) handleTop(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.docsSvc.Top(req.Context(), req.URL.Query().Get("by"), middleware.ValidateLimit(limit))
	if err != nil {
		if strings.HasPrefix(err.Error(), "unknown ranking") {
			return badRequest{err}
		}
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/documents/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	doc, err := r.docsSvc.Get(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, doc)
}

// POST /v1/documents/{id}/analyze — manual, idempotent re-run
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	res, err := r.analysisSvc.Analyze(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")))
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, res)
}

// POST /v1/documents/{id}/view
func (r *Router) handleView(w http.ResponseWriter, req *http.Request) error {
	count, err := r.docsSvc.RecordView(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]int{"view_count": count})
}

// POST /v1/documents/{id}/download
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	count, err := r.docsSvc.RecordDownload(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]int{"download_count": count})
}

// POST /v1/documents/{id}/visibility (admin)
// Body: {"is_public": true|false}
func (r *Router) handleSetPublic(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		IsPublic bool `json:"is_public"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := r.docsSvc.SetPublic(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")), body.IsPublic); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/documents/{id}/ratings
// Body: {"stars": 1..5, "review": "...", "user_id": "..."}
func (r *Router) handleRate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Stars  int    `json:"stars"`
		Review string `json:"review"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateStars(body.Stars); err != nil {
		return badRequest{err}
	}

	avg, err := r.docsSvc.Rate(req.Context(), domdocs.DocumentID(chi.URLParam(req, "id")),
		body.Stars, middleware.SanitizeString(body.Review), body.UserID)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]float64{"average_rating": avg})
}

//
// ==== moderation ====
//

// POST /v1/documents/{id}/flags
func (r *Router) handleFlag(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Reason      string `json:"reason"`
		Description string `json:"description"`
		FlaggedBy   string `json:"flagged_by"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if body.Reason == "" {
		return badRequest{fmt.Errorf("reason is required")}
	}

	flag, err := r.modSvc.FlagDocument(req.Context(), chi.URLParam(req, "id"),
		middleware.SanitizeString(body.Reason),
		middleware.SanitizeString(body.Description),
		middleware.SanitizeString(body.FlaggedBy))
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, flag)
}

// GET /v1/documents/{id}/flags (admin)
func (r *Router) handleDocumentFlags(w http.ResponseWriter, req *http.Request) error {
	flags, err := r.modSvc.FlagsByDocument(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, flags)
}

// GET /v1/moderation/pending?limit= (admin)
func (r *Router) handlePendingFlags(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	flags, err := r.modSvc.Pending(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, flags)
}

// POST /v1/moderation/flags/{id}/review (admin)
// Body: {"status": "accepted"|"rejected", "reviewed_by": "...", "notes": "..."}
func (r *Router) handleReviewFlag(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Status     string `json:"status"`
		ReviewedBy string `json:"reviewed_by"`
		Notes      string `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}

	flag, err := r.modSvc.ReviewFlag(req.Context(), dommod.FlagID(chi.URLParam(req, "id")),
		dommod.Status(body.Status), middleware.SanitizeString(body.ReviewedBy),
		middleware.SanitizeString(body.Notes))
	if err != nil {
		return err
	}
	return writeJSON(w, flag)
}

// GET /v1/moderation/flagged?threshold=&limit= (admin)
func (r *Router) handleHighlyFlagged(w http.ResponseWriter, req *http.Request) error {
	threshold, _ := strconv.Atoi(req.URL.Query().Get("threshold"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.modSvc.HighlyFlagged(req.Context(), threshold, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

//
// ==== relationships ====
//

// GET /v1/documents/{id}/related
func (r *Router) handleRelated(w http.ResponseWriter, req *http.Request) error {
	list, err := r.relSvc.Related(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/relationships/theme?value=
func (r *Router) handleSharingTheme(w http.ResponseWriter, req *http.Request) error {
	value := req.URL.Query().Get("value")
	if strings.TrimSpace(value) == "" {
		return badRequest{fmt.Errorf("value is required")}
	}
	list, err := r.relSvc.SharingTheme(req.Context(), value)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /v1/documents/{id}/relationships (admin)
// Body: {"related_id": "...", "type": "theme|category|entity", "value": "...", "strength": 0..1}
func (r *Router) handleLink(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RelatedID string  `json:"related_id"`
		Type      string  `json:"type"`
		Value     string  `json:"value"`
		Strength  float64 `json:"strength"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if body.RelatedID == "" {
		return badRequest{fmt.Errorf("related_id is required")}
	}

	rel, err := r.relSvc.Link(req.Context(), chi.URLParam(req, "id"), body.RelatedID,
		domrel.Type(body.Type), middleware.SanitizeString(body.Value), body.Strength)
	if err != nil {
		if strings.HasPrefix(err.Error(), "unknown relationship type") ||
			strings.Contains(err.Error(), "cannot relate to itself") {
			return badRequest{err}
		}
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, rel)
}

//
// ==== taxonomy ====
//

// GET /v1/categories
func (r *Router) handleCategories(w http.ResponseWriter, req *http.Request) error {
	cats, err := r.taxSvc.ListActive(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, cats)
}

// POST /v1/categories (admin)
func (r *Router) handleRegisterCategory(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ParentID    string `json:"parent_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if strings.TrimSpace(body.Name) == "" {
		return badRequest{fmt.Errorf("name is required")}
	}

	cat, err := r.taxSvc.Register(req.Context(), middleware.SanitizeString(body.Name),
		middleware.SanitizeString(body.Description), domtax.CategoryID(body.ParentID))
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, cat)
}

// DELETE /v1/categories/{id} (admin, soft delete)
func (r *Router) handleDeactivateCategory(w http.ResponseWriter, req *http.Request) error {
	if err := r.taxSvc.Deactivate(req.Context(), domtax.CategoryID(chi.URLParam(req, "id"))); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

//
// ==== pipeline errors ====
//

// GET /v1/documents/{id}/errors?limit= (admin)
func (r *Router) handlePipelineErrors(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.errorsRepo.ListByDocument(req.Context(), chi.URLParam(req, "id"), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

//
// ==== checkout & orders ====
//

// POST /v1/checkout/payment-intent
// Body: {"document_id": "...", "mail_type": "standard"|"premium"}
func (r *Router) handlePaymentIntent(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		DocumentID string `json:"document_id"`
		MailType   string `json:"mail_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateMailType(body.MailType); err != nil {
		return badRequest{err}
	}

	intent, err := r.ordersSvc.CreatePaymentIntent(req.Context(), body.DocumentID,
		domorders.MailType(strings.ToLower(body.MailType)))
	if err != nil {
		return err
	}
	return writeJSON(w, intent)
}

// POST /v1/orders
// Body: {"document_id": "...", "mail_type": "...", "recipient": {...}}
func (r *Router) handlePlaceOrder(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		DocumentID string            `json:"document_id"`
		MailType   string            `json:"mail_type"`
		Recipient  domorders.Address `json:"recipient"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateMailType(body.MailType); err != nil {
		return badRequest{err}
	}
	if body.Recipient.Name == "" || body.Recipient.Line1 == "" {
		return badRequest{fmt.Errorf("recipient name and address_line1 are required")}
	}

	order, err := r.ordersSvc.PlaceOrder(req.Context(), body.DocumentID, body.Recipient,
		domorders.MailType(strings.ToLower(body.MailType)))
	if err != nil {
		return err
	}
	middleware.IncrementOrders()

	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, order)
}

// GET /v1/orders?limit=
func (r *Router) handleOrders(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.ordersSvc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/orders/{id}
func (r *Router) handleGetOrder(w http.ResponseWriter, req *http.Request) error {
	order, err := r.ordersSvc.Get(req.Context(), domorders.OrderID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, order)
}

// POST /v1/orders/{id}/status
// Body: {"status": "created"|"in_transit"|"delivered"|"failed"}
func (r *Router) handleOrderStatus(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}

	if err := r.ordersSvc.UpdateStatus(req.Context(), domorders.OrderID(chi.URLParam(req, "id")),
		domorders.Status(body.Status)); err != nil {
		if strings.HasPrefix(err.Error(), "unknown order status") {
			return badRequest{err}
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
