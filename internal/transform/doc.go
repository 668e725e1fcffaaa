// Package transform converts rows of source tables into FHIR resources.
//
// Every cell is routed through the registry's field mapping for the row's
// class. The resource id is a v5 UUID minted from the project id and the
// first identifier ("<resourceType>/<system>|<value>"), so re-running a
// transformation reproduces the same ids and CreateOrExtend can merge
// NDJSON output files by id.
package transform
