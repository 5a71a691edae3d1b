package handler

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

const invalidBody = "Invalid request body"

// decodeJSON rejects malformed bodies and values of the wrong JSON type.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID reads the numeric {id} route variable. The routes only match digits,
// so a failure here means the value overflowed.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
