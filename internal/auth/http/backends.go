package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// BackendsHandler godoc
//
//	@Summary		List backends
//	@Description	Names of the enabled authentication backends, sorted.
//	@Tags			Backends
//	@Produce		json
//	@Success		200	{object}	authsdk.BackendsResponse
//	@Router			/backends [get].
func BackendsHandler(names func() []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := names()
		if data == nil {
			data = []string{}
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.BackendsResponse{Data: data})
	}
}
