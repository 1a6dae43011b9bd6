package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintech/internal/core"
	"fintech/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads one JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		// field-level date and amount errors are validation failures
		if core.IsValidationError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// ListQuery is the parsed form of an expense list request.
type ListQuery struct {
	Filter services.Filter
	Sort   services.Sort
	Page   services.Page
}

// ParseListQuery reads filter, sort and paging parameters:
// from, to, category, min, max, q, tax, sort, page, page_size.
func ParseListQuery(q url.Values) (ListQuery, error) {
	var out ListQuery
	var err error

	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }

	if v := get("from"); v != "" {
		if out.Filter.From, err = core.ParseDate(v); err != nil {
			return ListQuery{}, fmt.Errorf("%w: from: %v", errBadRequest, err)
		}
	}
	if v := get("to"); v != "" {
		if out.Filter.To, err = core.ParseDate(v); err != nil {
			return ListQuery{}, fmt.Errorf("%w: to: %v", errBadRequest, err)
		}
	}
	out.Filter.Category = get("category")
	out.Filter.Description = get("q")

	if out.Filter.MinAmount, err = parseAmountParam(get("min")); err != nil {
		return ListQuery{}, fmt.Errorf("%w: min: %v", errBadRequest, err)
	}
	if out.Filter.MaxAmount, err = parseAmountParam(get("max")); err != nil {
		return ListQuery{}, fmt.Errorf("%w: max: %v", errBadRequest, err)
	}

	if v := get("tax"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ListQuery{}, fmt.Errorf("%w: tax must be a boolean", errBadRequest)
		}
		out.Filter.TaxDeductible = &b
	}

	if out.Sort, err = services.ParseSort(get("sort")); err != nil {
		return ListQuery{}, err
	}

	if out.Page.Number, err = parsePositiveInt(get("page")); err != nil {
		return ListQuery{}, fmt.Errorf("%w: page: %v", errBadRequest, err)
	}
	if out.Page.Size, err = parsePositiveInt(get("page_size")); err != nil {
		return ListQuery{}, fmt.Errorf("%w: page_size: %v", errBadRequest, err)
	}
	if out.Page.Size > 500 {
		out.Page.Size = 500
	}
	return out, nil
}

func parseAmountParam(v string) (*core.Money, error) {
	if v == "" {
		return nil, nil
	}
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		return nil, err
	}
	return &core.Money{Cents: cents}, nil
}

// parsePositiveInt returns 0 for an empty value.
func parsePositiveInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer, got %q", v)
	}
	return n, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid expense id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
