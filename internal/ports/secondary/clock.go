package secondary

import "time"

// Clock defines the secondary port for time. The daemon reads time only
// through this port so ticks are testable; implementations must be
// monotonically non-decreasing for due-ordering to hold.
type Clock interface {
	Now() time.Time
}
