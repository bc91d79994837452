package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"finbook/internal/core"
	"finbook/internal/period"
)

// maxBodySize limits JSON request bodies to 64KB.
const maxBodySize = 64 << 10

// parseAccounts reads the "accounts" query parameter: absent or "all" means
// every account, otherwise a comma-separated id list.
func parseAccounts(r *http.Request) (core.AccountFilter, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("accounts"))
	if raw == "" || raw == "all" {
		return core.AllAccounts(), nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return core.AccountFilter{}, fmt.Errorf("invalid account id %q: %w", p, core.ErrEmptyFilter)
		}
		ids = append(ids, id)
	}
	return core.Accounts(ids...), nil
}

// parsePeriod reads the "period" query parameter with a "month" default,
// resolving "year" to the calendar semantics.
func parsePeriod(r *http.Request) (period.Period, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		raw = string(period.Month)
	}
	return period.Parse(raw)
}

// parseLimit reads an optional positive "limit" query parameter; zero means
// no limit.
func parseLimit(r *http.Request) int {
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// errBadBody marks request body decoding failures so they surface as 400s.
var errBadBody = errors.New("invalid request body")

// decodeBody unmarshals a JSON request body into dst, enforcing the body
// size limit and rejecting trailing garbage.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", errBadBody)
	}
	return nil
}

// pathID parses the {id} path value of a route.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", r.PathValue("id"), core.ErrNotFound)
	}
	return id, nil
}
