////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package measure

// metrics.go contains the metrics object and its methods

import (
	"sync"
	"time"
)

// Metrics structure holds the list of events recorded while running the
// protocol. The RWMutex prevents two threads from writing to the list at the
// same time.
type Metrics struct {
	Events []Metric
	sync.RWMutex
}

// Metric structure holds a single measurement, which contains a stage tag and
// a timestamp from when the measurement was taken.
type Metric struct {
	Tag       string
	Timestamp time.Time
}

// Measure creates a new Metric object and appends it to the Metrics's event
// list. The Metric object is created from the specified tag and a timestamp
// created at the time of function call. The timestamp is returned.
func (ms *Metrics) Measure(tag string) time.Time {
	// Create new Metric object from the tag and new timestamp
	metric := Metric{
		Tag:       tag,
		Timestamp: time.Now(),
	}

	// Append the metric to the event list
	ms.Lock()
	ms.Events = append(ms.Events, metric)
	ms.Unlock()

	return metric.Timestamp
}

// GetEvents returns a copy of the Events array.
func (ms *Metrics) GetEvents() []Metric {
	ms.RLock()
	defer ms.RUnlock()
	metricsEvents := make([]Metric, len(ms.Events))

	copy(metricsEvents, ms.Events)

	return metricsEvents
}

// Durations returns, for every event after the first, the time elapsed since
// the previous event, keyed by the later event's tag. A stage measured when it
// finishes is therefore keyed by its own name.
func (ms *Metrics) Durations() map[string]time.Duration {
	events := ms.GetEvents()
	durations := make(map[string]time.Duration, len(events))
	for i := 1; i < len(events); i++ {
		durations[events[i].Tag] +=
			events[i].Timestamp.Sub(events[i-1].Timestamp)
	}
	return durations
}
