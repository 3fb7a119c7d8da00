package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// requireForm returns the values of keys in order. ok is false when any key is
// absent from the submitted form; an empty value still counts as present.
func requireForm(r *http.Request, keys ...string) (values []string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return nil, false
	}
	values = make([]string, 0, len(keys))
	for _, key := range keys {
		v, present := r.PostForm[key]
		if !present || len(v) == 0 {
			return nil, false
		}
		values = append(values, v[0])
	}
	return values, true
}

// formIDs collects every numeric value submitted under key. Anything that isn't
// an id is skipped, the same way ids without a matching row are.
func formIDs(r *http.Request, key string) []uint {
	var ids []uint
	for _, v := range r.PostForm[key] {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// urlID reads a numeric path parameter. The router only matches digits, so a
// failed parse can only be an overflow, which no row can have.
func urlID(r *http.Request, key string) uint {
	id, err := strconv.ParseUint(chi.URLParam(r, key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
