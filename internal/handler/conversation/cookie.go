package conversation

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName 是保存客户端标识的 cookie 名称。
const CookieName = "funds_session"

// CookieOptions 控制会话 cookie 的属性。
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   o.Secure,
	}
}

// clientKey 读取请求中的客户端标识，不存在时返回空字符串。
func clientKey(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// ensureClientKey 返回已有的客户端标识，没有时生成一个新的。
func ensureClientKey(r *http.Request) string {
	if key := clientKey(r); key != "" {
		return key
	}
	return uuid.NewString()
}

// setClientCookie 写入（或续期）客户端 cookie。
func (o CookieOptions) setClientCookie(w http.ResponseWriter, key string) {
	http.SetCookie(w, o.cookie(key))
}
