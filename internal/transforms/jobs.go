package transforms

import (
	"fmt"
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/lithammer/shortuuid/v3"
	log "github.com/sirupsen/logrus"

	"github.com/pixelform/pixelform/configs"
)

// RunBatch applies fn to every source on a worker pool sized from the
// configuration, waits for completion and returns the number of
// failed jobs. Each job gets its own id in the log fields; a panic in
// one job is recovered and counted as a failure without stopping the
// batch.
func RunBatch(sources []string, fn func(l *log.Entry, src string) error) int {
	wp := workerpool.New(configs.Config.Images.NumWorkers)

	var failed int32
	for _, src := range sources {
		src := src
		wp.Submit(func() {
			l := log.WithFields(log.Fields{
				"@id": shortuuid.New(),
				"src": src,
			})

			defer func() {
				if r := recover(); r != nil {
					l.WithField("recover", r).Error("transform failed")
					atomic.AddInt32(&failed, 1)
				}
			}()

			l.Debug("transform started")
			if err := fn(l, src); err != nil {
				l.WithError(err).Error("transform failed")
				atomic.AddInt32(&failed, 1)
				return
			}
			l.Info("done")
		})
	}

	wp.StopWait()
	return int(atomic.LoadInt32(&failed))
}

// BatchError is returned by CLI commands when some sources failed.
type BatchError int

func (e BatchError) Error() string {
	return fmt.Sprintf("%d file(s) could not be processed", int(e))
}
