package room

import (
	"time"

	"github.com/wfunc/gridarena/models"
)

// Metrics is the subset of the monitor the room reports to.
// This is defined here to keep room free of the prometheus dependency.
type Metrics interface {
	PlayerJoined()
	PlayerLeft()
	CommandReceived(command string)
	InvalidCommand()
	BroadcastSent()
	DeliveryFailed()
	PlayerEliminated()
	ConnectionRejected()
	ObserveCommandLatency(duration time.Duration)
}

// Recorder receives match events. Record must not block; it is called with
// the room lock held.
type Recorder interface {
	Record(event models.MatchEvent)
}

type nopMetrics struct{}

func (nopMetrics) PlayerJoined() {}
func (nopMetrics) PlayerLeft() {}
func (nopMetrics) CommandReceived(string) {}
func (nopMetrics) InvalidCommand() {}
func (nopMetrics) BroadcastSent() {}
func (nopMetrics) DeliveryFailed() {}
func (nopMetrics) PlayerEliminated() {}
func (nopMetrics) ConnectionRejected() {}
func (nopMetrics) ObserveCommandLatency(time.Duration) {}

type nopRecorder struct{}

func (nopRecorder) Record(models.MatchEvent) {}
