package notify

import (
	"context"
	"sync"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

var _ mailer = &mailerMock{}

type mailerMock struct {
	SendFunc func(ctx context.Context, msg provider.Email) error

	calls struct {
		Send []struct {
			Msg provider.Email
		}
	}
	lockSend sync.RWMutex
}

func (mock *mailerMock) Send(ctx context.Context, msg provider.Email) error {
	if mock.SendFunc == nil {
		panic("mailerMock.SendFunc: method is nil but mailer.Send was just called")
	}
	mock.lockSend.Lock()
	mock.calls.Send = append(mock.calls.Send, struct{ Msg provider.Email }{Msg: msg})
	mock.lockSend.Unlock()
	return mock.SendFunc(ctx, msg)
}

func (mock *mailerMock) SendCalls() []struct{ Msg provider.Email } {
	mock.lockSend.RLock()
	calls := mock.calls.Send
	mock.lockSend.RUnlock()
	return calls
}

var _ renderer = &rendererMock{}

type rendererMock struct {
	RenderFunc func(ctx context.Context, doc domain.Document) ([]byte, error)

	calls struct {
		Render []struct {
			Doc domain.Document
		}
	}
	lockRender sync.RWMutex
}

func (mock *rendererMock) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	if mock.RenderFunc == nil {
		panic("rendererMock.RenderFunc: method is nil but renderer.Render was just called")
	}
	mock.lockRender.Lock()
	mock.calls.Render = append(mock.calls.Render, struct{ Doc domain.Document }{Doc: doc})
	mock.lockRender.Unlock()
	return mock.RenderFunc(ctx, doc)
}

func (mock *rendererMock) RenderCalls() []struct{ Doc domain.Document } {
	mock.lockRender.RLock()
	calls := mock.calls.Render
	mock.lockRender.RUnlock()
	return calls
}

var _ archive = &archiveMock{}

type archiveMock struct {
	PutFunc func(ctx context.Context, reference string, pdf []byte) error

	calls struct {
		Put []struct {
			Reference string
			PDF       []byte
		}
	}
	lockPut sync.RWMutex
}

func (mock *archiveMock) Put(ctx context.Context, reference string, pdf []byte) error {
	if mock.PutFunc == nil {
		panic("archiveMock.PutFunc: method is nil but archive.Put was just called")
	}
	callInfo := struct {
		Reference string
		PDF       []byte
	}{Reference: reference, PDF: pdf}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, callInfo)
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, reference, pdf)
}

func (mock *archiveMock) PutCalls() []struct {
	Reference string
	PDF       []byte
} {
	mock.lockPut.RLock()
	calls := mock.calls.Put
	mock.lockPut.RUnlock()
	return calls
}

var _ alerter = &alerterMock{}

type alerterMock struct {
	NotifyFunc func(ctx context.Context, alert provider.Alert) error

	calls struct {
		Notify []struct {
			Alert provider.Alert
		}
	}
	lockNotify sync.RWMutex
}

func (mock *alerterMock) Notify(ctx context.Context, alert provider.Alert) error {
	if mock.NotifyFunc == nil {
		panic("alerterMock.NotifyFunc: method is nil but alerter.Notify was just called")
	}
	mock.lockNotify.Lock()
	mock.calls.Notify = append(mock.calls.Notify, struct{ Alert provider.Alert }{Alert: alert})
	mock.lockNotify.Unlock()
	return mock.NotifyFunc(ctx, alert)
}

func (mock *alerterMock) NotifyCalls() []struct{ Alert provider.Alert } {
	mock.lockNotify.RLock()
	calls := mock.calls.Notify
	mock.lockNotify.RUnlock()
	return calls
}

var _ dispatcher = &dispatcherMock{}

type dispatcherMock struct {
	DispatchFunc func(ctx context.Context, job Job) Report

	calls struct {
		Dispatch []struct {
			Job Job
		}
	}
	lockDispatch sync.RWMutex
}

func (mock *dispatcherMock) Dispatch(ctx context.Context, job Job) Report {
	if mock.DispatchFunc == nil {
		panic("dispatcherMock.DispatchFunc: method is nil but dispatcher.Dispatch was just called")
	}
	mock.lockDispatch.Lock()
	mock.calls.Dispatch = append(mock.calls.Dispatch, struct{ Job Job }{Job: job})
	mock.lockDispatch.Unlock()
	return mock.DispatchFunc(ctx, job)
}

func (mock *dispatcherMock) DispatchCalls() []struct{ Job Job } {
	mock.lockDispatch.RLock()
	calls := mock.calls.Dispatch
	mock.lockDispatch.RUnlock()
	return calls
}
