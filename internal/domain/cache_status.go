package domain

type CacheStatus string

const (
	StatusFresh   CacheStatus = "fresh"
	StatusStale   CacheStatus = "stale"
	StatusPending CacheStatus = "pending"
	StatusFailed  CacheStatus = "error"
)

// NeedsFetch reports whether an entry in this state must go to the network.
func (s CacheStatus) NeedsFetch() bool {
	switch s {
	case StatusFresh, StatusPending:
		return false
	default:
		return true
	}
}
