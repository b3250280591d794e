// Package schedule provides cron expression handling and deferred execution
// for scheduled sound plays.
//
// Cron functions parse and validate cron expressions and compute upcoming
// run times. Scheduler queues jobs to fire at those times, deduplicating
// submissions so periodic polling can resubmit the same upcoming run safely.
package schedule
