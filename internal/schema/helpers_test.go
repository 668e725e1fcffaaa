package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const rppaSchema = `{
  "@graph": [
    {"@id": "RPPALevel2", "rdfs:label": "RPPALevel2", "rdf:subClassOf": "Base"},
    {"@id": "Base", "rdfs:label": "Base", "rdf:subClassOf": []},
    {"@id": "NormalizationMethod", "rdfs:label": "NormalizationMethod", "rdf:subClassOf": "RPPALevel2"},
    {"@id": "HTANRPPAAntibodyTable", "rdfs:label": "HTANRPPAAntibodyTable", "rdf:subClassOf": "RPPALevel2"}
  ]
}`

const htanSchema = `{
  "@context": {"bts": "http://schema.biothings.io/", "sms": "http://schema.biothings.io/sms/"},
  "@graph": [
    {"@id": "bts:Thing", "rdfs:label": "Thing"},
    {"@id": "bts:Biospecimen", "rdfs:label": "Biospecimen",
     "rdfs:subClassOf": [{"@id": "bts:Thing"}],
     "sms:displayName": "Biospecimen",
     "sms:required": "sms:true",
     "sms:requiresComponent": [{"@id": "bts:Patient"}],
     "sms:requiresDependency": [{"@id": "bts:HTANBiospecimenID"}, "bts:HTANParentID"]},
    {"@id": "bts:CustomBiospecimen", "schema:name": "Custom Biospecimen",
     "rdfs:subClassOf": {"@id": "bts:Biospecimen"}},
    {"@id": "bts:Patient", "rdfs:label": "Patient", "rdfs:subClassOf": {"@id": "bts:Thing"},
     "sms:required": "sms:false",
     "sms:requiresDependency": "bts:HTANParticipantID"},
    {"@id": "bts:HTANBiospecimenID", "rdfs:label": "HTAN Biospecimen ID", "sms:required": "sms:true"},
    {"@id": "bts:HTANParentID", "rdfs:label": "HTAN Parent ID"},
    {"@id": "bts:HTANParticipantID", "rdfs:label": "HTAN Participant ID"},
    {"rdfs:label": "node without id", "rdfs:subClassOf": "bts:Thing"}
  ]
}`

func mustParse(t *testing.T, doc string) *Graph {
	t.Helper()

	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	return g
}
