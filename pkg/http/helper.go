package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"
)

// RequesterIDHeader identifies the caller of mutating booking operations.
const RequesterIDHeader = "X-Requester-ID"

func ExtractRequesterID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(RequesterIDHeader))
}

// ParseTimeParam parses a local "YYYY-MM-DD HH:MM" or RFC3339 value, naming
// the parameter in the error.
func ParseTimeParam(name, value string) (time.Time, error) {
	t, err := model.ParseLocalTime(value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, err.Error()))
	}
	return t, nil
}

// ExtractInterval reads the start and end query parameters. Ordering is left
// to the caller so the domain decides how a reversed range is reported.
func ExtractInterval(r *http.Request) (model.Interval, error) {
	query := r.URL.Query()
	startStr, endStr := query.Get("start"), query.Get("end")
	if startStr == "" || endStr == "" {
		return model.Interval{}, apperrors.InvalidInput("both 'start' and 'end' query parameters are required")
	}

	start, err := ParseTimeParam("start", startStr)
	if err != nil {
		return model.Interval{}, err
	}
	end, err := ParseTimeParam("end", endStr)
	if err != nil {
		return model.Interval{}, err
	}

	return model.Interval{Start: start, End: end}, nil
}

func ExtractMinCapacity(r *http.Request) (int, error) {
	s := r.URL.Query().Get("min_capacity")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid min_capacity parameter: " + s)
	}
	return v, nil
}

// ExtractEquipment splits the comma separated equipment parameter. Empty
// entries are dropped.
func ExtractEquipment(r *http.Request) []string {
	raw := r.URL.Query().Get("equipment")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
