package leetcode

import (
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/utils/safe"
	"golang.org/x/time/rate"
)

// transport throttles outgoing requests, sets the headers the platform
// expects, and turns any non-2xx response into ErrUnexpectedStatus.
type transport struct {
	base      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
	referer   string
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, goerr.Wrap(err, "rate limiter wait aborted")
		}
	}

	req = req.Clone(req.Context())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.referer != "" {
		req.Header.Set("Referer", t.referer)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		safe.Drain(req.Context(), resp.Body)
		return nil, goerr.Wrap(ErrUnexpectedStatus, "platform request failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	return resp, nil
}
