/*
Package status turns per-file pipeline results into progress lines and a
batch report.

	+-----------+      +-----------+      +-----------+
	| Scheduler | ---> |  Tracker  | ---> |  Report   |
	| (results) |      | (progress)|      | (summary) |
	+-----------+      +-----------+      +-----------+

🎯 Purpose:
- Tracks how many files of a batch are done
- Classifies each result as ready, failed or cancelled
- Renders the summary table and the elapsed time line

🔄 Flow:
 1. The scheduler starts a Tracker with the number of files
 2. Every finished file is recorded and logged with its outcome
 3. The scheduler builds a Report once the last file is done
 4. The CLI renders the Report

🔍 Example:

	tracker := status.NewTracker(ctx, status.NewDefaultFileFormatter())
	tracker.StartOperation(ctx, len(tasks))
	tracker.Record(ctx, result)
	tracker.FinishOperation(ctx)

	report := status.NewReport(runID, results, elapsed)
	table, err := report.Table()
*/
package status
