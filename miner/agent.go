package miner

import (
	"sync"
	"sync/atomic"

	"github.com/jacobireland/cryptonet/blockchain"
)

// miningTask is one block the agent has been asked to seal: extend prev
// with txPayload, or — when prev is nil — seal a fresh genesis block.
type miningTask struct {
	prev      *blockchain.Block
	txPayload string
}

// miningResult is what the agent hands back once a task finishes or is
// abandoned.
type miningResult struct {
	task  *miningTask
	block *blockchain.Block // nil if the search was interrupted
}

// cpuAgent runs the proof-of-work search on its own goroutine so a new
// task (the tip moved while searching) can interrupt an in-flight one
// instead of racing it to completion, mirroring the teacher's
// work.CpuAgent start/stop-via-atomic-flag shape adapted from
// sealing-an-Engine-supplied-block to sealing a blockchain.Block directly.
type cpuAgent struct {
	mu sync.Mutex

	workCh        chan *miningTask
	stop          chan struct{}
	quitCurrentOp chan struct{}
	returnCh      chan<- *miningResult

	isMining int32
}

func newCPUAgent(returnCh chan<- *miningResult) *cpuAgent {
	return &cpuAgent{
		workCh:   make(chan *miningTask, 1),
		stop:     make(chan struct{}, 1),
		returnCh: returnCh,
	}
}

// Submit hands the agent a new task, replacing and interrupting whatever
// it is currently sealing. Non-blocking: a stale pending task in the
// buffered channel is drained first.
func (a *cpuAgent) Submit(task *miningTask) {
done:
	for {
		select {
		case <-a.workCh:
		default:
			break done
		}
	}
	a.workCh <- task
}

func (a *cpuAgent) Start() {
	if !atomic.CompareAndSwapInt32(&a.isMining, 0, 1) {
		return
	}
	go a.run()
}

func (a *cpuAgent) Stop() {
	if !atomic.CompareAndSwapInt32(&a.isMining, 1, 0) {
		return
	}
	a.stop <- struct{}{}
}

func (a *cpuAgent) run() {
	for {
		select {
		case task := <-a.workCh:
			a.mu.Lock()
			if a.quitCurrentOp != nil {
				close(a.quitCurrentOp)
			}
			a.quitCurrentOp = make(chan struct{})
			quit := a.quitCurrentOp
			a.mu.Unlock()
			go a.seal(task, quit)

		case <-a.stop:
			a.mu.Lock()
			if a.quitCurrentOp != nil {
				close(a.quitCurrentOp)
				a.quitCurrentOp = nil
			}
			a.mu.Unlock()
			return
		}
	}
}

func (a *cpuAgent) seal(task *miningTask, quit <-chan struct{}) {
	var block *blockchain.Block
	var ok bool
	if task.prev == nil {
		block, ok = blockchain.NewGenesisBlockStoppable(quit)
	} else {
		block, ok = blockchain.MineStoppable(task.prev, task.txPayload, quit)
	}
	if !ok {
		a.returnCh <- &miningResult{task: task, block: nil}
		return
	}
	log.Info("sealed new block", "index", block.Index, "hash", block.Hash)
	a.returnCh <- &miningResult{task: task, block: block}
}
