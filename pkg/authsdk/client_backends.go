package authsdk

import (
	"context"
	"net/http"
)

// ListBackends returns the names of the enabled authentication backends.
func (c *SDKClient) ListBackends(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/backends", nil, nil)
	if err != nil {
		return nil, err
	}

	var out BackendsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}
