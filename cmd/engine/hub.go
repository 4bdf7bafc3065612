package main

import (
	"io"
	"sync"

	"companyclean-engine/internal/events"
)

// streamEvents copies journal events to w as JSON lines until the returned
// stop function is called. stop waits for the writer to drain.
func streamEvents(j *events.Journal, w io.Writer) (stop func()) {
	ch := j.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range ch {
			_, _ = io.WriteString(w, e.String()+"\n")
		}
	}()
	return func() {
		j.Unsubscribe(ch)
		wg.Wait()
	}
}
