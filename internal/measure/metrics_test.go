////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package measure

import (
	"reflect"
	"testing"
	"time"
)

var stageTags = []string{TagStart, TagSetup, TagKeyDraw, TagPublicValues,
	TagSharedSecret, TagVerification, TagFinish}

// Tests that Measure() records all the tags in order with non-decreasing
// timestamps.
func TestMetrics_Measure(t *testing.T) {
	metrics := new(Metrics)

	testTimestamps := make([]time.Time, len(stageTags))
	for i, tag := range stageTags {
		testTimestamps[i] = metrics.Measure(tag)
	}

	if len(metrics.Events) != len(stageTags) {
		t.Fatalf("Measure() did not record the correct number of Metric "+
			"events\n\texpected: %d\n\treceived: %d",
			len(stageTags), len(metrics.Events))
	}

	for i, metric := range metrics.Events {
		if metric.Tag != stageTags[i] {
			t.Errorf("Measure() did not properly record the Metric tag on "+
				"index %d\n\texpected: %s\n\treceived: %s",
				i, stageTags[i], metric.Tag)
		}
		if !metric.Timestamp.Equal(testTimestamps[i]) {
			t.Errorf("Measure() did not properly record the Metric "+
				"timestamp on index %d\n\texpected: %s\n\treceived: %s",
				i, testTimestamps[i], metric.Timestamp)
		}
		if i > 0 && metric.Timestamp.Before(metrics.Events[i-1].Timestamp) {
			t.Errorf("Metric[%d] occurred before Metric[%d]", i, i-1)
		}
	}
}

// Test that Measure() is thread safe by checking if it correctly locks Metrics
// when writing to Events.
func TestMetrics_Measure_Lock(t *testing.T) {
	metrics := new(Metrics)
	metrics.Lock()

	result := make(chan bool)
	go func() {
		metrics.Measure(TagSetup)
		result <- true
	}()

	select {
	case <-result:
		t.Error("Measure() did not correctly lock the thread when expected")
	case <-time.After(100 * time.Millisecond):
		metrics.Unlock()
		<-result
	}
}

// Tests that the array returned by GetEvents() is a copy of Metrics.Events.
func TestMetrics_GetEvents_Copy(t *testing.T) {
	metrics := new(Metrics)
	metrics.Measure(TagStart)
	metrics.Measure(TagSetup)

	events := metrics.GetEvents()
	if !reflect.DeepEqual(events, metrics.Events) {
		t.Errorf("GetEvents() did not return the recorded events"+
			"\n\texpected: %v\n\treceived: %v", metrics.Events, events)
	}

	metrics.Events[0].Tag = "something else"
	if reflect.DeepEqual(events, metrics.Events) {
		t.Errorf("GetEvents() returned the array instead of a copy")
	}
}

// Tests that Durations() keys each gap by the later tag.
func TestMetrics_Durations(t *testing.T) {
	start := time.Now()
	metrics := &Metrics{Events: []Metric{
		{TagStart, start},
		{TagSetup, start.Add(2 * time.Second)},
		{TagKeyDraw, start.Add(5 * time.Second)},
	}}

	expected := map[string]time.Duration{
		TagSetup:   2 * time.Second,
		TagKeyDraw: 3 * time.Second,
	}
	if received := metrics.Durations(); !reflect.DeepEqual(expected, received) {
		t.Errorf("Durations() mismatch\n\texpected: %v\n\treceived: %v",
			expected, received)
	}
}

// Tests that a finished TrialMetrics carries its stage durations.
func TestTrialMetrics_Finish(t *testing.T) {
	tm := NewTrialMetrics("trial", 3, 8, 16)
	metrics := new(Metrics)
	for _, tag := range stageTags {
		metrics.Measure(tag)
	}
	tm.Finish(metrics)

	if len(tm.Stages) != len(stageTags)-1 {
		t.Errorf("Expected %d stage durations, received %d",
			len(stageTags)-1, len(tm.Stages))
	}
	if tm.EndTime.Before(tm.StartTime) || tm.Duration() < 0 {
		t.Errorf("Trial ended before it started")
	}
	if tm.TrialID != "trial" || tm.Index != 3 || tm.UniverseSize != 8 ||
		tm.ExponentBits != 16 {
		t.Errorf("Trial identity was not recorded: %+v", tm)
	}
}
