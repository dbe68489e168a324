// Package pagination drives a caller-supplied page fetch function until the
// data source is exhausted.
//
// Pages are fetched strictly one after another. Each call to the page
// function receives the running offset and the fixed PageSize; a page with
// fewer than PageSize items ends the loop. An optional inclusive upper bound
// on the running offset stops the loop early:
//
//	issues, err := pagination.RecursiveRestCall(ctx, 0, nil,
//		func(ctx context.Context, offset, pageSize int) ([]Issue, error) {
//			resp, err := httpclient.ExecuteGetReturnList[Issue](ctx, c, "rest/api/2/issues",
//				httpclient.Params{"startAt": strconv.Itoa(offset), "maxResults": strconv.Itoa(pageSize)})
//			return resp.Body, err
//		})
//
// The first failing page aborts the loop and its error is returned as is;
// items fetched before the failure are discarded. A page function that
// always returns a full page loops until max is reached, or forever when
// max is nil.
package pagination
