// Package template generates blank mapping templates from a schema graph and
// applies hand-filled templates back onto a registry's document.
//
// A template is a JSON array with one entry per mappable node:
//
//	[
//	  {
//	    "node": "Biospecimen",
//	    "fhir:resourceType": "",
//	    "fhir:reference": [{"fhir:path":"","fhir:resourceType":""}],
//	    "fhir:validation": [{}],
//	    "fhir:fieldMapping": [{"fhir:path":""}],
//	    "rdfs:subClassOf": "Thing",
//	    "fhir:schema_subClassOf": "",
//	    "range_values": []
//	  }
//	]
//
// Nodes referenced through schema:rangeIncludes are value sets, not
// entities, and are left out. The three placeholder arrays are always written
// on a single line.
package template
