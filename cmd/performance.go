////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"fmt"
	"runtime"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

// monitorMemoryUsage logs a warning every time heap use of the process grows
// by more than threshold since the last warning. It returns when ctx is done.
func monitorMemoryUsage(ctx context.Context, period time.Duration,
	threshold uint64) {
	var lastHeap uint64
	lastTrigger := time.Now()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case triggerTime := <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			if ms.HeapInuse > lastHeap && ms.HeapInuse-lastHeap > threshold {
				jww.WARN.Printf("Heap grew to %s in %s (%d goroutines)",
					convertToReadableBytes(ms.HeapInuse),
					triggerTime.Sub(lastTrigger), runtime.NumGoroutine())
				lastHeap = ms.HeapInuse
				lastTrigger = triggerTime
			}
		}
	}
}

var sizeLookup = []string{"B", "KiB", "MiB", "GiB"}

func convertToReadableBytes(b uint64) string {
	for i := 0; i < len(sizeLookup)-1; i++ {
		if b < 1024 {
			return fmt.Sprintf("%v%v", b, sizeLookup[i])
		}
		b = b / 1024
	}

	return fmt.Sprintf("%v%v", b, sizeLookup[len(sizeLookup)-1])
}
