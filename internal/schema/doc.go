// Package schema loads JSON-LD schema graphs (class/property hierarchies such
// as the HTAN data model) and answers hierarchy queries over them.
//
// # Document shape
//
// A schema document is either a JSON array of nodes or an object carrying the
// nodes under "@graph" (or "graph"):
//
//	{
//	  "@context": {...},
//	  "@graph": [
//	    {"@id": "bts:Biospecimen", "rdfs:label": "Biospecimen",
//	     "rdfs:subClassOf": [{"@id": "bts:Thing"}],
//	     "sms:required": "sms:false",
//	     "sms:requiresDependency": [{"@id": "bts:HTANParentID"}]}
//	  ]
//	}
//
// # References
//
// Every reference-valued attribute (any key ending in "subClassOf",
// "sms:requiresComponent", "sms:requiresDependency", "schema:rangeIncludes")
// may be a single {"@id": ...} object, a list of such objects or strings, or
// a bare string. ParseReferences handles all three shapes and is the only
// place that inspects them.
//
// # Identifiers
//
// Hierarchy queries work on prefix-stripped ids ("bts:Sample" -> "Sample").
// Node and Name look a node up by its id exactly as stored.
//
// # Hierarchy
//
// Edges are derived from the node list on every query; graphs are small
// (a few thousand nodes) and loaded once per run. BuildTree materializes a
// nested view from a root with optional depth limit and requirement metadata.
package schema
