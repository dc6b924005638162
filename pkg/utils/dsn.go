package utils

import (
	"fmt"
	"net/url"
)

// PostgresDSN assembles a libpq connection string from discrete parts so
// callers never have to hand-quote a URL themselves. sslmode follows libpq's
// own vocabulary ("disable", "require", "verify-full", ...).
func PostgresDSN(host string, port int, user, password, dbname, sslmode string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + dbname,
	}
	q := url.Values{}
	if sslmode == "" {
		sslmode = "disable"
	}
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}
