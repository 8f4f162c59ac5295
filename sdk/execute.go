package sdk

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// Execute sends cmd and returns immediately with a Future for its result.
// The transport performs the I/O on its own goroutine and the shared
// completion handler validates the status and decodes the body with the
// command's result type before completing the future.
//
// Errors raised while rendering the command complete the future at once;
// nothing is sent.
//
// Example:
//
//	products := sdk.Execute(ctx, client, productSearch)
//	categories := sdk.Execute(ctx, client, categoryQuery)
//
//	p, err := products.Await(ctx)
//	c, err := categories.Await(ctx)
func Execute[R any](ctx context.Context, c *Client, cmd Command[R]) *Future[R] {
	if err := c.checkClosed(); err != nil {
		return Failed[R](err)
	}

	req, err := cmd.HTTPRequest()
	if err != nil {
		return Failed[R](asInvalidArgument(err))
	}
	resultType := cmd.ResultType()
	if !resultType.Valid() {
		return Failed[R](InvalidArgument("command for %s %s has no result type", req.Method, req.Path))
	}
	req = c.prepare(req)

	ctx, cancel := context.WithCancel(ctx)
	future := newFuture[R](cancel)

	ctx, span := c.tracer.Start(ctx, "commerce "+req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
			attribute.String("commerce.project", c.config.ProjectKey),
			attribute.String("commerce.result_type", resultType.Name()),
		))

	log := c.logger.WithFields(logrus.Fields{
		"method":         req.Method,
		"correlation_id": req.Header.Get(CorrelationIDHeader),
	})
	log.Trace(req.URL)

	start := time.Now()
	c.observer.OnRequestStart(req.Method, req.Path)

	c.transport.Send(ctx, req, func(resp *HTTPResponse, sendErr error) {
		value, err := handleResponse(cmd, resultType, req, resp, sendErr)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		duration := time.Since(start)
		c.observer.OnRequestEnd(req.Method, req.Path, status, duration, err)
		finishSpan(span, status, err)
		logOutcome(log, req, status, duration, err)

		cancel()
		future.complete(value, err)
	})

	return future
}

// ExecuteBlocking sends cmd and waits for its result. It is Execute followed
// by Await on the same context.
//
// Example:
//
//	category, err := sdk.ExecuteBlocking(ctx, client, request.GetByID(resources.Categories, id))
//	if err != nil {
//	    return err
//	}
//	if category == nil {
//	    // No such category
//	}
func ExecuteBlocking[R any](ctx context.Context, c *Client, cmd Command[R]) (R, error) {
	return Execute(ctx, c, cmd).Await(ctx)
}

// handleResponse is the completion stage shared by the blocking and the
// asynchronous path: classify transport failures, check the status against
// what the command expects, then decode.
func handleResponse[R any](cmd Command[R], resultType codec.Type[R], req *HTTPRequest, resp *HTTPResponse, sendErr error) (R, error) {
	var zero R

	if sendErr == nil && resp == nil {
		sendErr = errors.New("transport completed without a response")
	}
	if sendErr != nil {
		err := transportError(req.Method+" "+req.Path, sendErr)
		if err.Context == nil {
			err.WithContext(&ErrorContext{URL: req.URL, Method: req.Method})
		}
		err.RequestID = req.Header.Get(CorrelationIDHeader)
		return zero, err
	}

	if resp.StatusCode == 404 && notFoundIsAbsent(cmd) {
		return zero, nil
	}

	if !slices.Contains(expectedStatus(cmd), resp.StatusCode) {
		err := parseBackendError(req.Method, req.URL, resp.StatusCode, resp.Body).ToError()
		err.RequestID = req.Header.Get(CorrelationIDHeader)
		return zero, err
	}

	value, err := resultType.Decode(resp.Body)
	if err != nil {
		sdkErr := NewError(ErrorTypeDeserialization, err.Error(), err).
			WithContext(&ErrorContext{URL: req.URL, Method: req.Method, StatusCode: resp.StatusCode})
		sdkErr.RequestID = req.Header.Get(CorrelationIDHeader)
		return zero, sdkErr
	}
	return value, nil
}

func asInvalidArgument(err error) error {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr
	}
	return NewError(ErrorTypeInvalidArgument, err.Error(), err)
}

func finishSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func logOutcome(log logrus.FieldLogger, req *HTTPRequest, status int, duration time.Duration, err error) {
	if err == nil {
		log.WithFields(logrus.Fields{"status": status, "duration_ms": duration.Milliseconds()}).Debug("request completed")
		return
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		log.WithFields(logrus.Fields{
			"status":      status,
			"duration_ms": duration.Milliseconds(),
		}).Error(backendErr.Error())
		return
	}
	log.WithError(err).WithField("url", req.URL).Warn("request failed")
}
