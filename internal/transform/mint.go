package transform

import (
	"github.com/google/uuid"
)

// DefaultProjectID scopes minted ids when no project is configured.
const DefaultProjectID = "HTAN2_BForePC"

// SystemHTAN is the DNS name the default id namespace is derived from.
const SystemHTAN = "humantumoratlas.org"

// NamespaceHTAN is the default namespace for minted ids (a name-based v3
// UUID of SystemHTAN in the DNS namespace).
var NamespaceHTAN = uuid.NewMD5(uuid.NameSpaceDNS, []byte(SystemHTAN))

// IdentifierString renders an identifier the way minted ids consume it:
// "<resourceType>/<system>|<value>".
func IdentifierString(resourceType, system, value string) string {
	return resourceType + "/" + system + "|" + value
}

// MintID derives a stable resource id from an identifier string. The same
// namespace, project and identifier always produce the same v5 UUID.
func MintID(namespace uuid.UUID, projectID, identifier string) string {
	return uuid.NewSHA1(namespace, []byte(projectID+"/"+identifier)).String()
}
