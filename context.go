package securelogin

import "context"

type contextKey int

const contextKeyClientIP contextKey = iota

// WithClientIP attaches the caller's IP address to ctx. The Engine uses
// it for per-IP login throttling and audit attribution. Leaving it unset
// disables the per-IP dimension for that call.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(contextKeyClientIP).(string)
	return ip
}
