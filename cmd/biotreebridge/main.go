// Package main provides the CLI entrypoint for biotreebridge.
//
// biotreebridge is a schema-to-FHIR mapping tool that:
//   - Parses JSON-LD schema graphs and answers hierarchy queries
//   - Generates editable mapping templates and applies them to the schema
//   - Keeps class and field mappings in YAML or annotated JSON-LD
//   - Transforms CSV/TSV records into FHIR NDJSON
package main

import "biotreebridge/internal/cli"

func main() {
	cli.Execute()
}
