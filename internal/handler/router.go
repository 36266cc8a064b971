package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/workplanner/internal/metrics"
	"github.com/hitoshi/workplanner/internal/middleware"
)

// ルートパラメータの制約。一致しないパスは404になる。
const (
	workerIDPattern = `{id:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}`
	shiftIDPattern  = `{shiftId:[0-9]+}`
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker HealthChecker
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// ドメインサービス
	WorkerService WorkerServiceInterface
	ShiftService  ShiftServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → Metrics → SecurityHeaders → CORS
//	→ RateLimit(General) → RateLimit(Write)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(middleware.WriteNotFound)
	r.MethodNotAllowed(middleware.WriteMethodNotAllowed)

	var recorder DomainErrorRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	workerHandler := NewWorkerHandler(deps.WorkerService, recorder)
	shiftHandler := NewShiftHandler(deps.ShiftService, recorder)

	// --- 監視用ルート ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General) → RateLimit(Write)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.WriteMiddleware())
		}

		r.Route("/worker", func(r chi.Router) {
			r.Get("/", workerHandler.ListWorkers)
			r.Post("/", workerHandler.CreateWorker)

			r.Route("/"+workerIDPattern, func(r chi.Router) {
				r.Get("/", workerHandler.GetWorker)
				r.Put("/", workerHandler.UpdateWorker)
				r.Put("/deactivate", workerHandler.DeactivateWorker)
				r.Put("/reactivate", workerHandler.ReactivateWorker)

				r.Route("/shift", func(r chi.Router) {
					r.Get("/", shiftHandler.ListShifts)
					r.Post("/", shiftHandler.LogShift)
					r.Put("/"+shiftIDPattern, shiftHandler.UpdateShift)
					r.Delete("/"+shiftIDPattern, shiftHandler.DeleteShift)
				})
			})
		})
	})

	return r
}
