// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Resolution is how often due tasks are checked.
const Resolution = 50 * time.Millisecond

type TimerTask struct {
	Id       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// TimerManager runs one-shot and repeating callbacks from a single goroutine.
// Callbacks run on their own goroutine and must do their own locking.
type TimerManager struct {
	queue     TimerQueue
	mutex     sync.Mutex
	nextId    int64
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewTimerManager() *TimerManager {
	manager := &TimerManager{
		queue:     make(TimerQueue, 0),
		nextId:    1,
		closeChan: make(chan struct{}),
	}
	heap.Init(&manager.queue)
	manager.wg.Add(1)
	go manager.process()
	return manager
}

// AddTimer schedules callback after delay, then every interval if interval > 0.
func (m *TimerManager) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextId++

	heap.Push(&m.queue, task)
	return task.Id
}

func (m *TimerManager) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.Id == timerId {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Len 返回待执行任务数
func (m *TimerManager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Stop halts scheduling and waits for the scheduler goroutine to exit.
// Callbacks already started are not waited for.
func (m *TimerManager) Stop() {
	m.closeOnce.Do(func() { close(m.closeChan) })
	m.wg.Wait()
}

func (m *TimerManager) process() {
	defer m.wg.Done()
	ticker := time.NewTicker(Resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, cb := range m.due(time.Now()) {
				go cb()
			}
		case <-m.closeChan:
			return
		}
	}
}

// due pops every task whose time has come and re-queues repeating ones.
func (m *TimerManager) due(now time.Time) []func() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var callbacks []func()
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}

		heap.Pop(&m.queue)
		callbacks = append(callbacks, task.Callback)

		if task.Interval > 0 {
			task.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, task)
		}
	}
	return callbacks
}
