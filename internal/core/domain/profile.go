package domain

// DocumentType is the detected category of a source document.
type DocumentType string

const (
	TypeScientificPaper DocumentType = "scientific_paper"
	TypeNewsArticle     DocumentType = "news_article"
	TypeBlogPost        DocumentType = "blog_post"
	TypeDatasetReadme   DocumentType = "dataset_readme"
	TypeGeneric         DocumentType = "generic"
)

// ZoneRole is the structural role of a contiguous block range.
type ZoneRole string

const (
	ZoneFrontMatter  ZoneRole = "front_matter"
	ZoneBody         ZoneRole = "body"
	ZoneBackMatter   ZoneRole = "back_matter"
	ZoneBiographical ZoneRole = "biographical"
	ZoneBoilerplate  ZoneRole = "boilerplate"
)

// DocumentZone covers blocks [StartBlock, EndBlock] inclusive. Biographical
// zones may nest inside front_matter; otherwise zones do not overlap.
type DocumentZone struct {
	Role       ZoneRole `json:"role"`
	StartBlock int      `json:"start_block"`
	EndBlock   int      `json:"end_block"`
	Label      string   `json:"label,omitempty"`
}

func (z DocumentZone) Contains(blockIndex int) bool {
	return blockIndex >= z.StartBlock && blockIndex <= z.EndBlock
}

// ContentProfile is the zone classifier's output. It is immutable once
// produced and drives all downstream topic/entity filtering.
type ContentProfile struct {
	DocumentType DocumentType   `json:"document_type"`
	Confidence   float64        `json:"confidence"`
	Zones        []DocumentZone `json:"zones"`

	TopicZones    []ZoneRole `json:"topic_zones"`
	EntityZones   []ZoneRole `json:"entity_zones"`
	MetadataZones []ZoneRole `json:"metadata_zones"`

	Authors      []string `json:"authors,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
	DOI          string   `json:"doi,omitempty"`
}

// ZoneRoleAt returns the role covering the block. Single-block biographical
// sub-zones shadow the front_matter zone that contains them; otherwise the
// first matching zone wins.
func (p ContentProfile) ZoneRoleAt(blockIndex int) (ZoneRole, bool) {
	var found ZoneRole
	var ok bool
	for _, z := range p.Zones {
		if !z.Contains(blockIndex) {
			continue
		}
		if z.Role == ZoneBiographical {
			return ZoneBiographical, true
		}
		if !ok {
			found = z.Role
			ok = true
		}
	}
	return found, ok
}

// IsMetadataBlock reports whether the block belongs to a metadata-only zone.
// It depends only on zone membership, never on classifier output.
func (p ContentProfile) IsMetadataBlock(blockIndex int) bool {
	role, ok := p.ZoneRoleAt(blockIndex)
	if !ok {
		return false
	}
	return containsRole(p.MetadataZones, role)
}

// AllowsTopics reports whether topics may be kept for the block's zone.
func (p ContentProfile) AllowsTopics(blockIndex int) bool {
	return !p.IsMetadataBlock(blockIndex)
}

func containsRole(roles []ZoneRole, role ZoneRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
