// Package pagination normalizes page sizes, ordering and offset page tokens.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPageToken indicates a token that was not produced by EncodeOffset.
var ErrInvalidPageToken = errors.New("invalid page token")

const offsetTokenPrefix = "offset:"

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeOrderBy validates order_by and applies defaults. Whitespace and
// case are ignored.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(orderBy)), " ")
	if normalized == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if normalized == allowed {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid order_by: %s", orderBy)
}

// EncodeOffset returns an opaque token for the given row offset.
func EncodeOffset(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(offsetTokenPrefix + strconv.Itoa(offset)))
}

// DecodeOffset returns the offset in token; an empty token is offset 0.
func DecodeOffset(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	value, ok := strings.CutPrefix(string(raw), offsetTokenPrefix)
	if !ok {
		return 0, ErrInvalidPageToken
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return offset, nil
}
