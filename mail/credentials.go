package mail

import "context"

type credentialsKeyT struct{}

// Credentials authenticate against the relay provider on behalf of one
// request. Providers with service-level credentials ignore them.
type Credentials struct {
	Username string
	Password string
}

// WithCredentials attaches per-request credentials to ctx.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKeyT{}, c)
}

// CredentialsFromContext returns the credentials attached by WithCredentials.
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKeyT{}).(Credentials)
	return c, ok && c.Username != ""
}
