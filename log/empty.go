package log

// Returned by V() when the level is disabled so callers don't pay for
// formatting.
type emptyI struct{}

func (emptyI) Info(...interface{}) {}

func (emptyI) Infof(string, ...interface{}) {}
