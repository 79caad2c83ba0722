// Package schedule runs work on a cron cadence.
//
// NextRunAfter parses a cron expression and computes the following run time.
// Every blocks, invoking a function at each run time until its context ends.
package schedule
