// Package mapping holds the registry of source-class to FHIR resource-type
// mappings and per-class field mappings, and applies field mappings to
// resource records.
//
// # Classes
//
// A class mapping sends a prefix-stripped source class id to a FHIR resource
// type. The registry starts with a small set of defaults:
//
//	Assay       -> ServiceRequest
//	Biospecimen -> Specimen
//	Patient     -> Patient
//	Diagnosis   -> Condition
//	File        -> DocumentReference
//
// When a graph is attached, ResourceType falls back to the nearest registered
// ancestor of the class (breadth-first over subClassOf edges).
//
// # Fields
//
// Field mappings are keyed by the exact field name. Each class also keeps an
// alias from the normalized name (whitespace removed, lower-cased) to the
// most recently registered exact name, so "HTAN Participant ID" and
// "htanparticipantid" resolve to the same path.
//
// Every field mapping has a PathKind fixed at registration:
//
//	simple      dotted path, intermediate objects created on demand
//	identifier  appended to the "identifier" list with metadata merged in
//	extension   appended to the "extension" list as {valueString, url}
//
// # Mapping files
//
// Mappings can be kept in a YAML file:
//
//	version: "1"
//	classes:
//	  Biospecimen: Specimen
//	fields:
//	  - class: Patient
//	    field: HTAN Participant ID
//	    path: identifier
//	    metadata:
//	      system: https://data.humantumoratlas.org
//	      use: official
//	  - class: Patient
//	    field: Ethnicity
//	    path: extension
//	    kind: extension
//	systems:
//	  htan: https://data.humantumoratlas.org
//
// or exported as an annotated JSON-LD document (Export, LoadMappingSchema).
//
// # Documents
//
// A registry may also carry a loaded schema document whose nodes are
// annotated in place with "fhir:" properties (AddProperty, AddFieldMapping)
// and written back with SaveDocument.
package mapping
