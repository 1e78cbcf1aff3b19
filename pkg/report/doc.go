/*
Package report turns a finished run into a structured, reproducible summary.

	+-----------+        +--------+        +----------------------+
	| RunResult +------->+ Build  +------->+ Report (named fields)|
	+-----------+        +--------+        +----------+-----------+
	                                                  |
	                                   +--------------+--------------+
	                                   |              |              |
	                               +---+---+      +---+---+      +---+---+
	                               | JSON  |      | YAML  |      | Text  |
	                               +-------+      +-------+      +-------+

🎯 Purpose:
- Builds the report value from the run accumulator and the config echo
- Sorts changes and errors so concurrent runs emit identical bytes
- Renders through an encoder registry keyed by output file extension

📝 Design Philosophy:
The report is a value with named fields, not a bag of maps. Encoders only
render; everything they need is computed once in Build. Sorting happens in
Build rather than per encoder so that every format agrees on ordering.

🔍 Example:

	rep := report.Build(cfg, result)
	if err := report.Write(ctx, "patch-report.json", rep); err != nil {
		return err
	}
*/
package report
