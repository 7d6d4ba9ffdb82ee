/*
Package config loads the settings of a substitution batch.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads the input and output directories, sizes and rules
- Fills anything left out with defaults
- Rejects sizes and rules the pipeline cannot run with

🔄 Flow:
 1. Picks a parser from the file extension
 2. Decodes, refusing unknown fields
 3. Applies defaults
 4. Validates against the pipeline and the file filter

🔍 Example:

	cfg, err := config.Load(ctx, "filechanger.yaml")
	if err != nil {
		return err
	}
	opts, err := cfg.PipelineOptions()
*/
package config
