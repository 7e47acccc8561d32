package responses

import (
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

var statusByName = func() map[string]int {
	m := make(map[string]int)
	for code := 100; code < 600; code++ {
		if text := http.StatusText(code); text != "" {
			m[normalizeStatusName(text)] = code
		}
	}
	return m
}()

func normalizeStatusName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", " ", "-", " ", "'", "").Replace(s)
}

// StatusText returns the reason phrase of code.
func StatusText(code int) (string, error) {
	if text := http.StatusText(code); text != "" {
		return text, nil
	}
	return "", errors.UnsupportedError("unknown HTTP status code").WithContext("status", code).Build()
}

// ParseStatus accepts a numeric code ("302") or a reason phrase in any case
// ("Found", "moved_permanently") and returns the status code.
func ParseStatus(nameOrCode string) (int, error) {
	if code, err := strconv.Atoi(strings.TrimSpace(nameOrCode)); err == nil {
		if _, textErr := StatusText(code); textErr != nil {
			return 0, textErr
		}
		return code, nil
	}
	if code, ok := statusByName[normalizeStatusName(nameOrCode)]; ok {
		return code, nil
	}
	return 0, errors.UnsupportedError("unknown HTTP status").WithContext("status", nameOrCode).Build()
}

// IsRedirect reports whether code is a 3xx status usable with a Location header.
func IsRedirect(code int) bool {
	return code >= 300 && code < 400 && code != http.StatusNotModified
}
