package models

// Inventory is the persisted on-hand set plus pinned favorites
type Inventory struct {
	IDs       []string `json:"ids"`
	Favorites []string `json:"favorites"`
}

// Has reports whether id is on hand
func (inv *Inventory) Has(id string) bool {
	return contains(inv.IDs, id)
}

// IsFavorite reports whether id is pinned
func (inv *Inventory) IsFavorite(id string) bool {
	return contains(inv.Favorites, id)
}

// RoleGroup lists catalog entries that share a role
type RoleGroup struct {
	Role    FunctionalRole `json:"role"`
	Entries []CatalogEntry `json:"entries"`
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
