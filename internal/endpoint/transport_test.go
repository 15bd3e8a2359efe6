package endpoint

import (
	"context"
	"sync"
)

type recordedCall struct {
	Method     string
	Descriptor Descriptor
	Request    any
}

// recordingTransport records every request and answers with a fixed result.
type recordingTransport struct {
	mu     sync.Mutex
	calls  []recordedCall
	result Result
	err    error
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{result: Result{"ok": true}}
}

func (t *recordingTransport) record(c recordedCall) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
	return t.result, t.err
}

func (t *recordingTransport) last() recordedCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return recordedCall{}
	}
	return t.calls[len(t.calls)-1]
}

func (t *recordingTransport) GetRequest(_ context.Context, d Descriptor) (Result, error) {
	return t.record(recordedCall{Method: "GET", Descriptor: d})
}

func (t *recordingTransport) PostRequest(_ context.Context, d Descriptor) (Result, error) {
	return t.record(recordedCall{Method: "POST", Descriptor: d})
}

func (t *recordingTransport) PutRequest(_ context.Context, d Descriptor) (Result, error) {
	return t.record(recordedCall{Method: "PUT", Descriptor: d})
}

func (t *recordingTransport) PatchRequest(_ context.Context, d Descriptor) (Result, error) {
	return t.record(recordedCall{Method: "PATCH", Descriptor: d})
}

func (t *recordingTransport) DeleteRequest(_ context.Context, d Descriptor) (Result, error) {
	return t.record(recordedCall{Method: "DELETE", Descriptor: d})
}

func (t *recordingTransport) DownloadFile(_ context.Context, req DownloadRequest) (Result, error) {
	return t.record(recordedCall{Method: MethodCustom, Request: req})
}

func (t *recordingTransport) UploadFile(_ context.Context, req UploadRequest) (Result, error) {
	return t.record(recordedCall{Method: MethodCustom, Request: req})
}

func (t *recordingTransport) ExportFile(_ context.Context, req ExportRequest) (Result, error) {
	return t.record(recordedCall{Method: MethodCustom, Descriptor: Descriptor{Path: req.Path, Params: req.Params}, Request: req})
}

func (t *recordingTransport) DownloadExportLink(_ context.Context, req ExportLinkRequest) (Result, error) {
	return t.record(recordedCall{Method: MethodCustom, Request: req})
}
