// Package converter turns one uploaded file and a target format into the
// converted bytes.
//
// A request moves through these steps:
//
//	received -> workspace created -> input stored -> variant selected
//	         -> primary run -> [software fallback] -> output read -> cleaned up
//
// Missing inputs fail with [ErrBadRequest] before anything touches the disk.
// Everything that goes wrong after that surfaces as [ErrConversionFailed]
// (or [ErrTooLarge] for oversized uploads) with the cause logged against the
// request ID; callers should not show the wrapped detail to clients.
//
// When a history store is set every request that got a workspace is recorded,
// and when an archiver is set successful outputs are uploaded in the
// background. Call [Service.Wait] on shutdown to let pending uploads finish.
package converter
