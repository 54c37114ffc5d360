package httpapi

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"os228/internal/common"
	"os228/internal/domain"
	"os228/internal/view"
)

type handlers struct {
	deps Deps
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// contributions GET /api/contributions
// 未登录 401，聚合失败 500，内部错误细节只写日志
func (h *handlers) contributions(w http.ResponseWriter, r *http.Request) {
	var session *domain.Session
	if h.deps.Sessions != nil {
		session, _ = h.deps.Sessions.Session(r)
	}
	if !session.Authenticated() {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	result, err := h.deps.Aggregator.Aggregate(r.Context(), *session)
	if err != nil {
		if common.CodeOf(err) == common.ErrCodeUnauthenticated {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		log.Printf("[HTTP] ❌ 聚合 %s 的贡献失败: %v", session.Username, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// projects GET /api/projects?q=&sort=&lang=&page=&size=&limit=
// 带 page 时按分页返回，否则按无限滚动返回前 limit 个
func (h *handlers) projects(w http.ResponseWriter, r *http.Request) {
	state, err := parseViewState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view.Derive(h.deps.Projects.Snapshot(), state))
}

func (h *handlers) languages(w http.ResponseWriter, r *http.Request) {
	languages := view.Languages(h.deps.Projects.Snapshot())
	if languages == nil {
		languages = []string{}
	}
	writeJSON(w, http.StatusOK, languages)
}

// contributors 拉取失败时返回空数组，页面显示占位文案
func (h *handlers) contributors(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Contributors.EventContributors(r.Context())
	if list == nil {
		list = []domain.Contributor{}
	}
	writeJSON(w, http.StatusOK, list)
}

func parseViewState(r *http.Request) (view.State, error) {
	q := r.URL.Query()

	sortKey, err := view.ParseSortKey(q.Get("sort"))
	if err != nil {
		return view.State{}, err
	}

	var languages []string
	for _, raw := range q["lang"] {
		languages = append(languages, view.SplitLanguages(raw)...)
	}

	size, err := positiveParam(q.Get("size"))
	if err != nil {
		return view.State{}, err
	}

	state := view.State{
		SearchQuery:       q.Get("q"),
		SortKey:           sortKey,
		SelectedLanguages: languages,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := positiveParam(raw)
		if err != nil {
			return view.State{}, err
		}
		state.Window = view.PageWindow{Page: page, PageSize: size}
		return state, nil
	}

	limit, err := positiveParam(q.Get("limit"))
	if err != nil {
		return view.State{}, err
	}
	state.Window = view.RevealWindow{Displayed: limit, Increment: size}
	return state, nil
}

// positiveParam 空字符串返回 0 (使用默认值)
func positiveParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, common.NewError(common.ErrCodeInvalidInput, "参数必须是正整数: "+raw)
	}
	return n, nil
}
