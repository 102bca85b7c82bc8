package systemadapter

import "time"

// Clock reads the wall clock in UTC. Every durable store shares it.
type Clock struct{}

func (Clock) Now() time.Time {
	return time.Now().UTC()
}
