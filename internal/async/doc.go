// Package async runs a computation on its own goroutine and exposes its eventual result
// as a Future. Actors use it to run invoke effects off the dispatching goroutine.
//
//	f := async.Async(ctx, details, fetchUser)
//	select {
//	case <-f.Done():
//	    res, err := f.Await()
//	case <-ctx.Done():
//	}
package async
