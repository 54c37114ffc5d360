package auth

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"

	"os228/internal/domain"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const stateCookie = "os228_oauth_state"

// UserLoader 用 OAuth 令牌读取当前用户，github.Client 实现了它
type UserLoader interface {
	FetchAuthenticatedUser(ctx context.Context, token string) (*domain.Session, error)
}

// OAuthConfig GitHub OAuth 应用配置
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint // 为空时使用 github.com
}

// Handler GitHub 登录流程：/auth/login → GitHub → /auth/callback
type Handler struct {
	oauth    *oauth2.Config
	users    UserLoader
	sessions *SessionStore
}

// NewHandler 组装登录处理器
func NewHandler(cfg OAuthConfig, users UserLoader, sessions *SessionStore) *Handler {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = githuboauth.Endpoint
	}
	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user"},
		},
		users:    users,
		sessions: sessions,
	}
}

// Login 生成 state 并跳转到 GitHub 授权页
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomID()
	if err != nil {
		log.Printf("[Auth] ❌ %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback 校验 state，换取令牌，读取用户并创建会话
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || query.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(c.Value), []byte(query.Get("state"))) != 1 {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	if reason := query.Get("error"); reason != "" {
		log.Printf("[Auth] ⚠️ 用户拒绝授权: %s", reason)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[Auth] ❌ 换取令牌失败: %v", err)
		http.Error(w, "oauth exchange failed", http.StatusBadGateway)
		return
	}

	session, err := h.users.FetchAuthenticatedUser(r.Context(), token.AccessToken)
	if err != nil {
		log.Printf("[Auth] ❌ 读取用户失败: %v", err)
		http.Error(w, "failed to load user", http.StatusBadGateway)
		return
	}

	if err := h.sessions.Create(w, r, *session); err != nil {
		log.Printf("[Auth] ❌ 创建会话失败: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Printf("[Auth] ✅ %s 已登录", session.Username)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout 清除会话
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}
