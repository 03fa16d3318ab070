package health

import "context"

// HealthPinger is the probe hook a store adapter exposes when it can check
// connectivity directly, typically a driver-level ping. A nil return means
// the component is reachable.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
