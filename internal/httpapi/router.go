package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/service"
)

// NewRouter builds the complete chi.Mux for the server: global middleware
// (request ID, access log, panic recovery, CORS) per the teacher pack's
// own chi+cors composition, the unauthenticated health/metrics endpoints,
// and the authenticated /api tree behind the bearer/X-API-Key check and
// the per-key rate limiter.
func NewRouter(svc *service.Service, backupEng backupEngine, gw http.Handler, cfg config.Config, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(tracing)
	r.Use(accessLog(log))
	r.Use(recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Rate-Limit-Remaining", "X-Rate-Limit-Reset"},
		MaxAge:           300,
	}))

	r.Get("/api/database/health", newHealthHandler(svc, cfg).handle)
	r.Handle("/metrics", promhttp.Handler())

	if gw != nil {
		r.Handle("/ws", gw)
	}

	h := newHandlers(svc, backupEng, cfg.DatabasePath)

	r.Route("/api", func(api chi.Router) {
		api.Use(authenticate(svc))
		api.Use(rateLimit(cfg.RateLimitMax, cfg.RateLimitWindow))

		api.Route("/boards", func(br chi.Router) {
			br.Post("/", h.createBoard)
			br.Get("/", h.listBoards)
			br.Get("/{id}", h.getBoard)
			br.Post("/{id}/archive", h.archiveBoard)
			br.Post("/{id}/columns", h.createColumn)
			br.Get("/{id}/columns", h.listColumns)
		})

		api.Route("/tasks", func(tr chi.Router) {
			tr.Post("/", h.createTask)
			tr.Get("/", h.listTasks)
			tr.Get("/{id}", h.getTask)
			tr.Patch("/{id}", h.updateTaskStatus)
			tr.Delete("/{id}", h.deleteTask)
			tr.Post("/{id}/move", h.moveTask)
			tr.Post("/{id}/subtasks", h.createSubtask)
			tr.Get("/{id}/subtasks", h.listSubtasks)
			tr.Post("/{id}/dependencies", h.addDependency)
			tr.Delete("/{id}/dependencies/{depId}", h.removeDependency)
			tr.Get("/{id}/dependencies", h.listDependencies)
			tr.Post("/{id}/notes", h.addNote)
			tr.Get("/{id}/notes", h.listNotes)
		})

		api.Route("/priorities", func(pr chi.Router) {
			pr.Get("/next", h.getNextTask)
			pr.Post("/calculate", h.recomputeScores)
		})

		api.Route("/backup", func(bk chi.Router) {
			bk.Post("/", h.createBackup)
			bk.Get("/", h.listBackups)
			bk.Get("/{name}", h.getBackup)
			bk.Delete("/{name}", h.deleteBackup)
			bk.Post("/{name}/restore", h.restoreBackup)
		})

		api.Route("/tags", func(tg chi.Router) {
			tg.Post("/", h.createTag)
			tg.Get("/", h.listTags)
		})

		api.Route("/mappings", func(mp chi.Router) {
			mp.Post("/", h.createMapping)
			mp.Get("/", h.listMappings)
			mp.Delete("/{id}", h.deleteMapping)
		})
	})

	return r
}

// pagination reads limit/offset query params per spec.md §6's bounds:
// limit in [1,1000] default 50, offset >= 0 default 0.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
