// Package metrics emits the portal's domain metrics through a statsd.Sink.
package metrics

import (
	"time"

	obserrors "github.com/fstgc/vms-portal/internal/observability/errors"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultError    = "error"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultStale    = "stale"
	ResultTimeout  = "timeout"
	ResultCanceled = "canceled"
)

// LoaderMetric describes one data loader run.
type LoaderMetric struct {
	Portal   string
	Loader   string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitLoader records the outcome and latency of a loader.
func EmitLoader(sink statsd.Sink, in LoaderMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"portal": in.Portal,
		"loader": in.Loader,
		"result": in.Result,
	}
	addErrorClass(tags, in.Result, in.Err)

	sink.Count("loader.result", 1, tags)
	if in.Duration > 0 {
		sink.Timing("loader.duration", in.Duration, CloneTags(tags))
	}
}

// EmitLogin records a login attempt outcome.
func EmitLogin(sink statsd.Sink, result string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": result}
	addErrorClass(tags, result, err)
	sink.Count("login.result", 1, tags)
}

// EmitGuardRedirect records a request the session guard turned away.
func EmitGuardRedirect(sink statsd.Sink, portal, reason string) {
	if sink == nil {
		return
	}
	sink.Count("guard.redirect", 1, map[string]string{"portal": portal, "reason": reason})
}

// EmitStaleRender records a response dropped because a newer one superseded it.
func EmitStaleRender(sink statsd.Sink, container string) {
	if sink == nil {
		return
	}
	sink.Count("render.stale", 1, map[string]string{"container": container})
}

func addErrorClass(tags map[string]string, result string, err error) {
	if err == nil || result == ResultOK || result == ResultEmpty {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k != "" {
			out[k] = v
		}
	}
	return out
}
