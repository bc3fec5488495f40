package client

import "time"

// Observer receives client traffic measurements.
type Observer interface {
	ObserveRequest(method, status string, d time.Duration)
	RecordRefresh(ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration) {}
func (nopObserver) RecordRefresh(bool)                            {}
