package tracer

import "errors"

var ErrNoTracers = errors.New("tracer: no tracers available")

// Split the frame described by frameReq into row blocks using the supplied
// scheduler, hand one block to each tracer and wait until all blocks are
// done. The returned slice holds the block height assigned to each tracer.
//
// Dispatch never returns while a tracer is still working on a block, even
// when another block fails.
func Dispatch(tracers []Tracer, scheduler BlockScheduler, frameReq BlockRequest) ([]uint32, error) {
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}

	blockAssignment := scheduler.Schedule(tracers, frameReq.FrameH)

	doneChan := make(chan uint32, len(tracers))
	errChan := make(chan error, len(tracers))

	pending := 0
	var blockY uint32
	for idx, tr := range tracers {
		blockH := blockAssignment[idx]
		if blockH == 0 {
			continue
		}

		blockReq := frameReq
		blockReq.BlockY = blockY
		blockReq.BlockH = blockH
		blockReq.DoneChan = doneChan
		blockReq.ErrChan = errChan
		tr.Enqueue(blockReq)

		blockY += blockH
		pending++
	}

	var err error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case blockErr := <-errChan:
			if err == nil {
				err = blockErr
			}
		}
	}

	return blockAssignment, err
}
