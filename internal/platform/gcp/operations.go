package gcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/compute/v1"
	"google.golang.org/api/googleapi"
)

const operationDone = "DONE"

// waitZoneOperation blocks until a zonal operation is done. Wait returns
// early on long operations, so it is called until the status is DONE.
func (c *Client) waitZoneOperation(ctx context.Context, zone string, op *compute.Operation) error {
	for op.Status != operationDone {
		var err error
		op, err = c.svc.ZoneOperations.Wait(c.project, zone, op.Name).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to wait for operation: %w", err)
		}
	}
	return operationError(op)
}

// waitRegionOperation is waitZoneOperation for regional operations.
func (c *Client) waitRegionOperation(ctx context.Context, region string, op *compute.Operation) error {
	for op.Status != operationDone {
		var err error
		op, err = c.svc.RegionOperations.Wait(c.project, region, op.Name).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to wait for operation: %w", err)
		}
	}
	return operationError(op)
}

// operationError converts the errors of a finished operation. A not found
// error is reported as a *googleapi.Error so callers can classify it.
func operationError(op *compute.Operation) error {
	if op.Error == nil || len(op.Error.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(op.Error.Errors))
	notFound := false
	for _, e := range op.Error.Errors {
		msgs = append(msgs, e.Code+": "+e.Message)
		if e.Code == "RESOURCE_NOT_FOUND" {
			notFound = true
		}
	}
	err := &googleapi.Error{Code: int(op.HttpErrorStatusCode), Message: strings.Join(msgs, "; ")}
	if notFound {
		err.Code = http.StatusNotFound
	}
	return fmt.Errorf("operation %s failed: %w", op.Name, err)
}
