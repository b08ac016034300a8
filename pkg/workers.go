package pixelproc

import (
	"fmt"
	"sync"
)

// ProcessEvents analyses events on nWorkers goroutines until events is
// closed, then closes results. Results are delivered in completion order.
func ProcessEvents(analyzer *Analyzer, nWorkers int, events <-chan EventType, results chan<- EventResult) {
	if nWorkers < 1 {
		nWorkers = 1
	}
	var wg sync.WaitGroup
	for w := 1; w <= nWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id, analyzer, events, results)
		}(w)
	}
	wg.Wait()
	close(results)
}

func worker(id int, analyzer *Analyzer, events <-chan EventType, results chan<- EventResult) {
	for event := range events {
		if analyzer.config.Verbosity > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, event.EventID)
			logger.Info(message, "workers")
		}
		results <- processEvent(analyzer, event)
	}
}

func processEvent(analyzer *Analyzer, event EventType) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("analyzer recovered from panic on event %d: %v", event.EventID, r)
			logger.Error(errMessage.Error())
			message := fmt.Sprintf("discarding event %d", event.EventID)
			logger.Error(message)
			analyzer.counters.eventsSkipped.Add(1)
			result = EventResult{RunNumber: event.RunNumber, EventID: event.EventID, Error: true, Err: errMessage}
		}
	}()

	if event.Error && analyzer.config.Discard {
		message := fmt.Sprintf("discarding event %d", event.EventID)
		logger.Error(message)
		analyzer.counters.eventsSkipped.Add(1)
		return EventResult{RunNumber: event.RunNumber, EventID: event.EventID, Error: true}
	}
	return analyzer.ProcessEvent(event)
}
