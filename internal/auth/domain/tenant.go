package domain

// Tenant is a node of the tenant forest. A tenant with an empty ParentUUID, or
// whose ParentUUID equals its own UUID, is a root.
type Tenant struct {
	UUID       string `yaml:"uuid"`
	ParentUUID string `yaml:"parent_uuid"`
	Name       string `yaml:"name"`
}

// IsRoot reports whether the tenant has no parent.
func (t Tenant) IsRoot() bool {
	return t.ParentUUID == "" || t.ParentUUID == t.UUID
}
