package tracer

import (
	"fmt"
	"sync"
	"time"

	"github.com/swatinair123/OSprayLoadObj/log"
)

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Relative speed estimate.
	speed uint32

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *Stats
}

// Create a new tracer that processes block requests on a dedicated go-routine.
func NewCPUTracer(id string, speed uint32) Tracer {
	tr := &cpuTracer{
		logger:       log.New(fmt.Sprintf("tracer (%s)", id)),
		id:           id,
		speed:        speed,
		blockReqChan: make(chan BlockRequest),
		stats:        &Stats{},
	}
	tr.startWorker()
	return tr
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *cpuTracer) Speed() uint32 {
	return tr.speed
}

// Shutdown tracer and wait for its worker to exit.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan == nil {
		return
	}

	tr.closeChan <- struct{}{}
	tr.wg.Wait()
	close(tr.closeChan)
	tr.closeChan = nil
}

// Enqueue block request. The call blocks until the worker picks up the request.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	tr.blockReqChan <- blockReq
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *Stats {
	return tr.stats
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()
				err = blockReq.Trace(&blockReq)
				if err != nil {
					tr.logger.Errorf("error tracing rows [%d, %d): %v", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, err)
					blockReq.ErrChan <- err
					continue
				}

				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}
