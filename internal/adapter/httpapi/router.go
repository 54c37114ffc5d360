package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"os228/internal/domain"
	"os228/internal/port"
)

// SessionReader 从请求中读取登录会话
type SessionReader interface {
	Session(r *http.Request) (*domain.Session, bool)
}

// AuthHandler GitHub 登录流程
type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

// ProjectSnapshot 当前的富化结果，富化进行中也可以读取
type ProjectSnapshot interface {
	Snapshot() []domain.EnrichedProject
}

// ContributorLister 目录仓库的贡献者
type ContributorLister interface {
	EventContributors(ctx context.Context) []domain.Contributor
}

// Deps 路由依赖；Auth/Projects/Contributors 为 nil 时对应路由不注册
type Deps struct {
	Aggregator   port.ContributionAggregator
	Sessions     SessionReader
	Auth         AuthHandler
	Projects     ProjectSnapshot
	Contributors ContributorLister
}

// NewRouter 注册所有路由
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()
	h := &handlers{deps: deps}

	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/contributions", h.contributions)

	if deps.Projects != nil {
		mux.HandleFunc("GET /api/projects", h.projects)
		mux.HandleFunc("GET /api/languages", h.languages)
	}
	if deps.Contributors != nil {
		mux.HandleFunc("GET /api/contributors", h.contributors)
	}
	if deps.Auth != nil {
		mux.HandleFunc("GET /auth/login", deps.Auth.Login)
		mux.HandleFunc("GET /auth/callback", deps.Auth.Callback)
		mux.HandleFunc("POST /auth/logout", deps.Auth.Logout)
	}

	return logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[HTTP] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
