package repository

import (
	"errors"
	"strings"
)

// ErrVersionConflict is returned when an update carries a stale version.
var ErrVersionConflict = errors.New("version conflict")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lowercase substring pattern for LIKE with wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
