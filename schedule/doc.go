// Package schedule coalesces document-mutation notifications into single
// pagination passes.
//
// An editor calls [Scheduler.NotifyMutated] on every keystroke or structural
// edit. The scheduler holds a short coalescing window open, queries the
// geometry source once after the burst settles, runs one pagination pass,
// and publishes the result. Interactive edit latency stays bounded no matter
// how fast mutations arrive.
//
// # Usage
//
//	sched := schedule.NewScheduler(source)
//	sched.Subscribe(func(res model.PaginationResult) {
//	    // redraw page boundaries
//	})
//	sched.Start(ctx)
//	defer sched.Stop()
//
//	// on every edit:
//	sched.NotifyMutated()
//
// # Coalescing
//
// Notifications land in a one-slot mailbox: they record that state changed,
// never how often. The first notification of a burst opens a window (one
// 60 Hz frame by default); everything arriving inside the window is absorbed
// into the same pass, which queries the source fresh when the window closes
// and therefore observes the latest state. A notification arriving while a
// pass is running re-arms the mailbox, so one follow-up pass runs; state is
// never left permanently stale once mutations stop.
//
// # Failure Semantics
//
// A geometry-source error is a normal transient state (a rendering surface
// not yet mounted, a file mid-save): the pass is skipped, the published
// result stays in place, and the next notification retries. An engine
// rejection (contract-violating geometry) is logged and the last-known-good
// result is kept. The notification path never panics. Before the first
// successful pass, [Scheduler.Result] reports a degenerate single page so a
// caller can always render something.
package schedule
