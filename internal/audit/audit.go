// Package audit records every verification outcome. Events go to a Kafka
// topic when brokers are configured, and to the service log otherwise. The
// trail is best effort: a failed publish is logged, never surfaced to the
// request that produced it.
package audit

import (
	"context"
	"time"
)

// ClientInfo describes the caller's device, parsed from the User-Agent by the
// transport middleware. Informational only.
type ClientInfo struct {
	OS      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
}

// Event is one verification outcome. SubjectHash is the peppered hash of the
// resolved identity; raw identities never enter the trail.
type Event struct {
	OccurredAt  time.Time  `json:"occurredAt"`
	Plugin      string     `json:"plugin"`
	Outcome     string     `json:"outcome"`
	SubjectHash string     `json:"subjectHash,omitempty"`
	Client      ClientInfo `json:"client"`
}

// Publisher delivers events to the trail.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

type clientInfoKey struct{}

// WithClientInfo stashes parsed client metadata on the request context for
// the verification service to pick up when it emits events.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFromContext returns the stashed client metadata, zero if none.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}
