package database

import "net/url"

// ConstructDatabaseURL points a base connection URL at the named database,
// adding sslmode=disable when the base specifies no sslmode. An empty
// database name, or a base that does not parse as a URL, passes through
// untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	u.Path = "/" + databaseName

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
	}

	return u.String()
}
