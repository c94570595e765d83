package intake

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
)

var _ submissionStore = &submissionStoreMock{}

type submissionStoreMock struct {
	InsertFunc func(ctx context.Context, s *domain.Submission) (uuid.UUID, error)
	CountFunc  func(ctx context.Context, q domain.Query) (int, error)

	calls struct {
		Insert []struct {
			S *domain.Submission
		}
		Count []struct {
			Q domain.Query
		}
	}
	lockInsert sync.RWMutex
	lockCount  sync.RWMutex
}

func (mock *submissionStoreMock) Insert(ctx context.Context, s *domain.Submission) (uuid.UUID, error) {
	if mock.InsertFunc == nil {
		panic("submissionStoreMock.InsertFunc: method is nil but submissionStore.Insert was just called")
	}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, struct{ S *domain.Submission }{S: s})
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, s)
}

func (mock *submissionStoreMock) InsertCalls() []struct{ S *domain.Submission } {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

func (mock *submissionStoreMock) Count(ctx context.Context, q domain.Query) (int, error) {
	if mock.CountFunc == nil {
		panic("submissionStoreMock.CountFunc: method is nil but submissionStore.Count was just called")
	}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, struct{ Q domain.Query }{Q: q})
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, q)
}

func (mock *submissionStoreMock) CountCalls() []struct{ Q domain.Query } {
	mock.lockCount.RLock()
	calls := mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct{}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{}{})
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct{} {
	mock.lockRunInTx.RLock()
	calls := mock.calls.RunInTx
	mock.lockRunInTx.RUnlock()
	return calls
}

var _ dispatcher = &dispatcherMock{}

type dispatcherMock struct {
	DispatchFunc func(ctx context.Context, job notify.Job) notify.Report

	calls struct {
		Dispatch []struct {
			Job notify.Job
		}
	}
	lockDispatch sync.RWMutex
}

func (mock *dispatcherMock) Dispatch(ctx context.Context, job notify.Job) notify.Report {
	if mock.DispatchFunc == nil {
		panic("dispatcherMock.DispatchFunc: method is nil but dispatcher.Dispatch was just called")
	}
	mock.lockDispatch.Lock()
	mock.calls.Dispatch = append(mock.calls.Dispatch, struct{ Job notify.Job }{Job: job})
	mock.lockDispatch.Unlock()
	return mock.DispatchFunc(ctx, job)
}

func (mock *dispatcherMock) DispatchCalls() []struct{ Job notify.Job } {
	mock.lockDispatch.RLock()
	calls := mock.calls.Dispatch
	mock.lockDispatch.RUnlock()
	return calls
}

var _ jobQueue = &jobQueueMock{}

type jobQueueMock struct {
	EnqueueFunc func(job notify.Job) bool

	calls struct {
		Enqueue []struct {
			Job notify.Job
		}
	}
	lockEnqueue sync.RWMutex
}

func (mock *jobQueueMock) Enqueue(job notify.Job) bool {
	if mock.EnqueueFunc == nil {
		panic("jobQueueMock.EnqueueFunc: method is nil but jobQueue.Enqueue was just called")
	}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, struct{ Job notify.Job }{Job: job})
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(job)
}

func (mock *jobQueueMock) EnqueueCalls() []struct{ Job notify.Job } {
	mock.lockEnqueue.RLock()
	calls := mock.calls.Enqueue
	mock.lockEnqueue.RUnlock()
	return calls
}

var _ eventPublisher = &eventPublisherMock{}

type eventPublisherMock struct {
	PublishCreatedFunc func(ctx context.Context, s *domain.Submission) error

	calls struct {
		PublishCreated []struct {
			S *domain.Submission
		}
	}
	lockPublishCreated sync.RWMutex
}

func (mock *eventPublisherMock) PublishCreated(ctx context.Context, s *domain.Submission) error {
	if mock.PublishCreatedFunc == nil {
		panic("eventPublisherMock.PublishCreatedFunc: method is nil but eventPublisher.PublishCreated was just called")
	}
	mock.lockPublishCreated.Lock()
	mock.calls.PublishCreated = append(mock.calls.PublishCreated, struct{ S *domain.Submission }{S: s})
	mock.lockPublishCreated.Unlock()
	return mock.PublishCreatedFunc(ctx, s)
}

func (mock *eventPublisherMock) PublishCreatedCalls() []struct{ S *domain.Submission } {
	mock.lockPublishCreated.RLock()
	calls := mock.calls.PublishCreated
	mock.lockPublishCreated.RUnlock()
	return calls
}

// recordingObserver collects submission outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveSubmission(form, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, form+":"+outcome)
}

func (r *recordingObserver) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}
