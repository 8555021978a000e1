package param

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
}

// Binding binds query values, chi route params and an optional json body
// into v, keyed by json tags.
func Binding(r *http.Request, v interface{}) error {
	values := url.Values{}
	for key, vs := range r.URL.Query() {
		values[key] = vs
	}

	if c := chi.RouteContext(r.Context()); c != nil {
		for idx, key := range c.URLParams.Keys {
			values.Set(key, c.URLParams.Values[idx])
		}
	}

	if err := decoder.Decode(v, values); err != nil {
		return err
	}

	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return err
		}
	}

	return nil
}
