/*
Package resilience provides the circuit breakers that guard page fetching.

A stats site that starts failing should not be hammered by every page of
every job. A Breaker fails fast once its upstream looks down and lets a few
trial requests through after Timeout:

	Closed --[ReadyToTrip]--> Open --[Timeout]--> Half-Open --[MaxRequests successes]--> Closed
	                                                  |
	                                                  +--[any failure]--> Open

Context cancellation is not counted against the upstream unless IsFailure
says otherwise.

A Group holds one breaker per host, so an outage on one site leaves jobs
against other sites alone:

	breakers := resilience.NewGroup("page-fetch", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 10
		},
	})
	resp, err := resilience.Call(breakers.Get(host), func() (*resty.Response, error) {
		return req.Get(url)
	})
*/
package resilience
