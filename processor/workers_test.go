package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
)

func TestProcessWorkerResults(t *testing.T) {
	results := make(chan pixelproc.EventResult, 3)
	results <- pixelproc.EventResult{
		EventID: 1,
		Cleaned: []cleaning.Pixel{{Image: true}, {Border: true}, {}, {Image: true}},
		Summary: cleaning.Summary{NClustersCleaned: 1},
		Truth: &pixelproc.EventTruth{
			Image: []bool{true, false, true, true},
		},
	}
	results <- pixelproc.EventResult{EventID: 2, Error: true}
	results <- pixelproc.EventResult{
		EventID: 3,
		Cleaned: []cleaning.Pixel{{}, {Image: true}},
	}
	close(results)

	summary := processWorkerResults(results)
	assert.Equal(t, 3, summary.Events)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []float64{2, 1}, summary.imagePixels)
	assert.Equal(t, []float64{1, 0}, summary.borderPixels)
	assert.Equal(t, 3, summary.truthTotal)
	assert.Equal(t, 2, summary.truthFound)
	assert.Equal(t, 1, summary.fakes)
	assert.Equal(t, 3, summary.selected)
}

func TestSendEventsToWorkers(t *testing.T) {
	camera := pixelproc.NewHexagonalCamera(1, 1, 2, 0.15, 20., 1., 2.6)
	settings := pixelproc.DefaultSyntheticSettings()
	settings.Events = 4
	jobs := make(chan pixelproc.EventType)
	go sendEventsToWorkers(pixelproc.NewSyntheticSource(camera, settings), jobs)

	var ids []uint32
	for event := range jobs {
		ids = append(ids, event.EventID)
	}
	assert.Equal(t, []uint32{1, 2, 3, 4}, ids)
}
