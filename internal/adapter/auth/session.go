package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"os228/internal/adapter/cache"
	"os228/internal/common"
	"os228/internal/domain"
	"os228/internal/port"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie 浏览器持有的会话 cookie，只包含签名过的会话 id
	SessionCookie = "os228_session"

	sessionKeyPrefix = "session:"
	issuer           = "os228"
)

// sessionClaims cookie 里的 JWT 负载
type sessionClaims struct {
	jwt.RegisteredClaims
	SID string `json:"sid"`
}

// SessionStore 会话保存在服务端缓存里，访问令牌不会离开服务端
type SessionStore struct {
	cache  port.Cache
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore secret 用来签名 cookie，不能为空
func NewSessionStore(c port.Cache, secret []byte, ttl time.Duration) (*SessionStore, error) {
	if len(secret) == 0 {
		return nil, common.NewError(common.ErrCodeInvalidInput, "会话密钥不能为空")
	}
	if ttl <= 0 {
		return nil, common.NewError(common.ErrCodeInvalidInput, "会话 TTL 必须大于 0")
	}
	return &SessionStore{cache: c, secret: secret, ttl: ttl, now: time.Now}, nil
}

// Create 保存会话并写入 cookie
func (s *SessionStore) Create(w http.ResponseWriter, r *http.Request, session domain.Session) error {
	if !session.Authenticated() {
		return common.NewError(common.ErrCodeUnauthenticated, "会话缺少用户名或令牌")
	}

	sid, err := randomID()
	if err != nil {
		return err
	}
	token, err := s.sign(sid)
	if err != nil {
		return err
	}

	s.cache.Set(sessionKeyPrefix+sid, session, s.ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Session 从请求中取出会话；cookie 缺失、签名无效或会话已过期都返回 false
func (s *SessionStore) Session(r *http.Request) (*domain.Session, bool) {
	sid, err := s.sessionID(r)
	if err != nil {
		return nil, false
	}
	session, ok := cache.Lookup[domain.Session](s.cache, sessionKeyPrefix+sid)
	if !ok || !session.Authenticated() {
		return nil, false
	}
	return &session, true
}

// Destroy 删除服务端会话并清除 cookie
func (s *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	if sid, err := s.sessionID(r); err == nil {
		s.cache.Delete(sessionKeyPrefix + sid)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionStore) sign(sid string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SID: sid,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("签名会话失败: %w", err)
	}
	return signed, nil
}

func (s *SessionStore) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.SID) == "" {
		return "", errors.New("会话 id 为空")
	}
	return claims.SID, nil
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机 id 失败: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
