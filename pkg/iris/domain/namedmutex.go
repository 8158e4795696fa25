package domain

import "time"

// NamedMutex a lock shared across processes (e.g. the console and the IRC front ends grabbing the same camera).
type NamedMutex interface {
	Release()
}

type NamedMutexAcquirer interface {
	AcquireNamedMutex(name string, timeout time.Duration) (NamedMutex, error)
}
